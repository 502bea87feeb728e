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

package container

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path"

	"seehuhn.de/go/xmp"

	"seehuhn.de/go/fixdoc/markup"
	"seehuhn.de/go/fixdoc/resource"
	"seehuhn.de/go/fixdoc/ticket"
)

// Package implements the [Writer] interface on top of a [Storage] backend.
// Every level is buffered in memory until it is closed, and then handed to
// the storage as a single part.
type Package struct {
	storage Storage
	seq     *sequenceWriter

	isClosed  bool
	isAborted bool
}

var _ Writer = (*Package)(nil)

// New creates a package which stores its parts in s.
func New(s Storage) *Package {
	return &Package{storage: s}
}

// OpenSequence implements the [Writer] interface.
func (p *Package) OpenSequence() (SequenceWriter, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if p.seq != nil {
		return nil, errors.New("container: sequence already opened")
	}
	p.seq = &sequenceWriter{
		level: newLevel(p, "/FixedDocumentSequence.fdseq", SequenceType),
	}
	return p.seq, nil
}

// Close implements the [Writer] interface.
func (p *Package) Close() error {
	if err := p.check(); err != nil {
		return err
	}
	if p.seq == nil || !p.seq.isClosed {
		return errors.New("container: sequence not closed")
	}
	p.isClosed = true
	return p.storage.Finish(p.seq.name)
}

// Abort implements the [Writer] interface.
func (p *Package) Abort() {
	if p.isClosed || p.isAborted {
		return
	}
	if p.seq != nil {
		p.seq.Abort()
	}
	p.isAborted = true
	p.storage.Abort()
}

// IsAborted reports whether the package was aborted.
func (p *Package) IsAborted() bool {
	return p.isAborted
}

func (p *Package) check() error {
	if p.isAborted {
		return errAborted
	}
	if p.isClosed {
		return errClosed
	}
	return nil
}

func (p *Package) put(part *Part) error {
	if err := p.check(); err != nil {
		return err
	}
	return p.storage.Put(part)
}

// level holds the state shared by all structural levels.
type level struct {
	pkg         *Package
	name        string
	contentType string
	buf         bytes.Buffer
	w           *markup.Writer
	rels        []Relation

	isClosed bool
}

func newLevel(pkg *Package, name, contentType string) level {
	return level{
		pkg:         pkg,
		name:        name,
		contentType: contentType,
	}
}

func (l *level) markup() *markup.Writer {
	if l.w == nil {
		l.w = markup.NewWriter(&l.buf, Namespace)
		l.w.Start(rootElement[l.contentType])
	}
	return l.w
}

func (l *level) URI() string {
	return l.name
}

func (l *level) Markup() *markup.Writer {
	return l.markup()
}

func (l *level) SetPrintTicket(t *ticket.Ticket) error {
	if l.isClosed {
		return errClosed
	}
	if t.IsEmpty() {
		return nil
	}
	name := l.name + ".ticket"
	err := l.pkg.put(&Part{
		Name:        name,
		ContentType: TicketType,
		Data:        []byte(t.String()),
	})
	if err != nil {
		return err
	}
	l.rels = append(l.rels, Relation{Type: PrintTicketRelation, Target: name})
	return nil
}

func (l *level) finish() error {
	if l.isClosed {
		return errClosed
	}
	l.isClosed = true

	w := l.markup()
	w.End()
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%s: %w", l.name, err)
	}
	return l.pkg.put(&Part{
		Name:        l.name,
		ContentType: l.contentType,
		Data:        l.buf.Bytes(),
		Relations:   l.rels,
	})
}

func (l *level) abort() {
	l.isClosed = true
	l.buf.Reset()
	l.rels = nil
}

var rootElement = map[string]string{
	SequenceType: "FixedDocumentSequence",
	DocumentType: "FixedDocument",
	PageType:     "FixedPage",
}

type sequenceWriter struct {
	level
	doc   *documentWriter
	nDocs int
}

func (s *sequenceWriter) OpenDocument() (DocumentWriter, error) {
	if s.isClosed {
		return nil, errClosed
	}
	if s.doc != nil && !s.doc.isClosed {
		return nil, errors.New("container: previous document still open")
	}
	s.nDocs++
	dir := fmt.Sprintf("/Documents/%d", s.nDocs)
	s.doc = &documentWriter{
		level: newLevel(s.pkg, dir+"/FixedDocument.fdoc", DocumentType),
		dir:   dir,
		names: make(map[string]bool),
		open:  make(map[*resourceStream]bool),
	}

	w := s.markup()
	w.Start("DocumentReference")
	w.Attr("Source", s.doc.name)
	w.End()
	return s.doc, w.Err()
}

func (s *sequenceWriter) Close() error {
	if s.doc != nil && !s.doc.isClosed {
		return errors.New("container: document still open")
	}
	return s.finish()
}

func (s *sequenceWriter) Abort() {
	if s.isClosed {
		return
	}
	if s.doc != nil {
		s.doc.Abort()
	}
	s.abort()
}

type documentWriter struct {
	level
	dir    string
	page   *pageWriter
	nPages int
	nRes   int

	// names holds the resource part names used so far
	names map[string]bool

	// open holds the resource streams which are not yet closed
	open map[*resourceStream]bool
}

func (d *documentWriter) OpenPage() (PageWriter, error) {
	if d.isClosed {
		return nil, errClosed
	}
	if d.page != nil && !d.page.isClosed {
		return nil, errors.New("container: previous page still open")
	}
	d.nPages++
	d.page = &pageWriter{
		level:   newLevel(d.pkg, fmt.Sprintf("%s/Pages/%d.fpage", d.dir, d.nPages), PageType),
		related: make(map[string]bool),
	}

	w := d.markup()
	w.Start("PageContent")
	w.Attr("Source", d.page.name)
	w.End()
	return d.page, w.Err()
}

func (d *documentWriter) SetMetadata(p *xmp.Packet) error {
	if d.isClosed {
		return errClosed
	}
	if p == nil {
		return nil
	}
	buf := &bytes.Buffer{}
	err := p.Write(buf, nil)
	if err != nil {
		return err
	}
	name := d.dir + "/Metadata/core.xmp"
	err = d.pkg.put(&Part{
		Name:        name,
		ContentType: MetadataType,
		Data:        buf.Bytes(),
	})
	if err != nil {
		return err
	}
	d.rels = append(d.rels, Relation{Type: MetadataRelation, Target: name})
	return nil
}

// CreateResource implements the [resource.Store] interface.
func (d *documentWriter) CreateResource(kind resource.Kind, id string) (resource.Stream, error) {
	if d.isClosed {
		return nil, errClosed
	}
	dir, ok := resourceDirs[kind]
	if !ok {
		return nil, fmt.Errorf("container: unsupported resource kind %s", kind)
	}

	var base string
	if id == "" {
		d.nRes++
		base = fmt.Sprintf("R%d", d.nRes)
	} else {
		base = url.PathEscape(id)
	}
	name := d.dir + "/Resources/" + dir + "/" + base
	if d.names[name] {
		return nil, fmt.Errorf("container: duplicate resource %q", name)
	}
	d.names[name] = true

	stm := &resourceStream{
		doc:         d,
		name:        name,
		contentType: resourceType(kind, path.Ext(base)),
	}
	d.open[stm] = true
	return stm, nil
}

func (d *documentWriter) Close() error {
	if d.page != nil && !d.page.isClosed {
		return errors.New("container: page still open")
	}
	if len(d.open) > 0 {
		return fmt.Errorf("container: %d resource streams still open", len(d.open))
	}
	return d.finish()
}

func (d *documentWriter) Abort() {
	if d.isClosed {
		return
	}
	if d.page != nil {
		d.page.Abort()
	}
	for stm := range d.open {
		stm.Abort()
	}
	d.abort()
}

var resourceDirs = map[resource.Kind]string{
	resource.Font:         "Fonts",
	resource.Image:        "Images",
	resource.ColorProfile: "ColorProfiles",
	resource.Dictionary:   "Dictionaries",
}

func resourceType(kind resource.Kind, ext string) string {
	switch kind {
	case resource.Font:
		return FontType
	case resource.ColorProfile:
		return ProfileType
	case resource.Dictionary:
		return DictionaryType
	}
	if tp, ok := imageTypes[ext]; ok {
		return tp
	}
	return BinaryType
}

type pageWriter struct {
	level
	related map[string]bool
}

func (p *pageWriter) RelateResource(uri string) {
	if p.isClosed || p.related[uri] {
		return
	}
	p.related[uri] = true
	p.rels = append(p.rels, Relation{Type: ResourceRelation, Target: uri})
}

func (p *pageWriter) Close() error {
	return p.finish()
}

func (p *pageWriter) Abort() {
	p.abort()
}

type resourceStream struct {
	doc         *documentWriter
	name        string
	contentType string
	buf         bytes.Buffer
	done        bool
}

func (s *resourceStream) Write(data []byte) (int, error) {
	if s.done {
		return 0, errClosed
	}
	return s.buf.Write(data)
}

func (s *resourceStream) URI() string {
	return s.name
}

func (s *resourceStream) Close() error {
	if s.done {
		return errClosed
	}
	s.done = true
	delete(s.doc.open, s)
	return s.doc.pkg.put(&Part{
		Name:        s.name,
		ContentType: s.contentType,
		Data:        s.buf.Bytes(),
	})
}

func (s *resourceStream) Abort() {
	s.done = true
	delete(s.doc.open, s)
	s.buf.Reset()
}

var (
	errClosed  = errors.New("container: already closed")
	errAborted = errors.New("container: package aborted")
)
