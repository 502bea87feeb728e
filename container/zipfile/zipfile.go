// seehuhn.de/go/fixdoc - serialize paginated documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package zipfile implements a zip based storage backend for containers.
//
// Parts are written as zip entries as soon as they are complete.  The
// content type table "[Content_Types].xml" and the relationship parts
// "_rels/*.rels" are written when the package is finished.
package zipfile

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"seehuhn.de/go/fixdoc/container"
)

// Writer stores the parts of a package in a zip archive.
type Writer struct {
	zw *zip.Writer

	types map[string]string // part name -> content type
	rels  map[string][]container.Relation

	isClosed bool
}

var _ container.Storage = (*Writer)(nil)

// New creates a new zip storage writing to w.
func New(w io.Writer) *Writer {
	return &Writer{
		zw:    zip.NewWriter(w),
		types: make(map[string]string),
		rels:  make(map[string][]container.Relation),
	}
}

// Put implements the [container.Storage] interface.
func (w *Writer) Put(p *container.Part) error {
	if w.isClosed {
		return errClosed
	}
	if _, dup := w.types[p.Name]; dup {
		return fmt.Errorf("zipfile: duplicate part %q", p.Name)
	}
	w.types[p.Name] = p.ContentType
	if len(p.Relations) > 0 {
		w.rels[p.Name] = p.Relations
	}
	return w.writeEntry(p.Name, p.Data)
}

// Finish implements the [container.Storage] interface.
func (w *Writer) Finish(startPart string) error {
	if w.isClosed {
		return errClosed
	}

	names := make([]string, 0, len(w.rels))
	for name := range w.rels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := marshalRelationships(name, w.rels[name])
		if err != nil {
			return err
		}
		err = w.writeEntry(relsName(name), data)
		if err != nil {
			return err
		}
	}

	data, err := marshalRelationships("/", []container.Relation{
		{Type: container.StartPartRelation, Target: startPart},
	})
	if err != nil {
		return err
	}
	err = w.writeEntry("/_rels/.rels", data)
	if err != nil {
		return err
	}

	data, err = w.marshalContentTypes()
	if err != nil {
		return err
	}
	err = w.writeEntry("/[Content_Types].xml", data)
	if err != nil {
		return err
	}

	w.isClosed = true
	return w.zw.Close()
}

// Abort implements the [container.Storage] interface.
// The zip archive is left incomplete.
func (w *Writer) Abort() {
	w.isClosed = true
}

func (w *Writer) writeEntry(name string, data []byte) error {
	f, err := w.zw.Create(strings.TrimPrefix(name, "/"))
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

// relsName returns the name of the relationship part for the given part.
func relsName(name string) string {
	dir, file := path.Split(name)
	return dir + "_rels/" + file + ".rels"
}

type relationships struct {
	XMLName      xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationship []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

func marshalRelationships(source string, rels []container.Relation) ([]byte, error) {
	doc := relationships{}
	for i, r := range rels {
		doc.Relationship = append(doc.Relationship, relationship{
			ID:     fmt.Sprintf("R%d", i+1),
			Type:   r.Type,
			Target: r.Target,
		})
	}
	data, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("zipfile: relationships of %s: %w", source, err)
	}
	return append([]byte(xml.Header), data...), nil
}

type contentTypes struct {
	XMLName  xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Default  []typeDefault  `xml:"Default"`
	Override []typeOverride `xml:"Override"`
}

type typeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type typeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// marshalContentTypes builds the content type table.  Each file name
// extension gets a default entry for the first content type seen for it,
// parts which differ from the default get an override.
func (w *Writer) marshalContentTypes() ([]byte, error) {
	names := make([]string, 0, len(w.types))
	for name := range w.types {
		names = append(names, name)
	}
	sort.Strings(names)

	defaults := map[string]string{
		"rels": "application/vnd.openxmlformats-package.relationships+xml",
	}
	doc := contentTypes{}
	for _, name := range names {
		ext := strings.TrimPrefix(path.Ext(name), ".")
		tp := w.types[name]
		if ext != "" {
			if _, seen := defaults[ext]; !seen {
				defaults[ext] = tp
			}
		}
		if ext == "" || defaults[ext] != tp {
			doc.Override = append(doc.Override, typeOverride{PartName: name, ContentType: tp})
		}
	}

	exts := make([]string, 0, len(defaults))
	for ext := range defaults {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		doc.Default = append(doc.Default, typeDefault{Extension: ext, ContentType: defaults[ext]})
	}

	data, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

var errClosed = errors.New("zipfile: archive already closed")
