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

// Package markup writes structured XML markup, one element at a time.
//
// A [Writer] keeps the first error it encounters.  All later calls are
// no-ops, and the error is reported by [Writer.Flush] or [Writer.Err].  This
// allows callers to check for errors once, after a sequence of calls.
package markup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/language"
)

// xmlNamespace is the namespace bound to the "xml" prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Writer writes XML elements.
type Writer struct {
	enc       *xml.Encoder
	namespace string

	// open holds the names of the open elements.  If pending is true, the
	// start tag of the innermost element has not been written yet, and
	// attributes can still be added.
	open    []string
	start   xml.StartElement
	pending bool

	started bool
	err     error
}

// NewWriter creates a new markup writer.  The namespace, if non-empty, is
// declared on the root element.
func NewWriter(w io.Writer, namespace string) *Writer {
	return &Writer{
		enc:       xml.NewEncoder(w),
		namespace: namespace,
	}
}

// Header writes the XML declaration.  This must be called before the root
// element is started.
func (w *Writer) Header() {
	if w.err != nil {
		return
	}
	if w.started {
		w.err = errors.New("markup: XML declaration after content")
		return
	}
	w.err = w.enc.EncodeToken(xml.ProcInst{
		Target: "xml",
		Inst:   []byte(`version="1.0" encoding="UTF-8"`),
	})
}

// Start opens a new element.
func (w *Writer) Start(name string) {
	if w.err != nil {
		return
	}
	if name == "" {
		w.err = errors.New("markup: empty element name")
		return
	}
	if len(w.open) == 0 && w.started {
		w.err = fmt.Errorf("markup: second root element %q", name)
		return
	}
	w.flushStart()

	w.start = xml.StartElement{Name: xml.Name{Local: name}}
	if !w.started && w.namespace != "" {
		w.start.Attr = append(w.start.Attr, xml.Attr{
			Name:  xml.Name{Local: "xmlns"},
			Value: w.namespace,
		})
	}
	w.started = true
	w.pending = true
	w.open = append(w.open, name)
}

// Attr adds an attribute to the element which was most recently started.
// Attributes must be added before any content.
func (w *Writer) Attr(name, value string) {
	if w.err != nil {
		return
	}
	if !w.pending {
		w.err = fmt.Errorf("markup: attribute %q after element content", name)
		return
	}
	if w.hasAttr("", name) {
		w.err = fmt.Errorf("markup: duplicate attribute %q", name)
		return
	}
	w.start.Attr = append(w.start.Attr, xml.Attr{
		Name:  xml.Name{Local: name},
		Value: value,
	})
}

// Lang sets the xml:lang attribute of the current element.
// Nothing is written if tag is undefined.
func (w *Writer) Lang(tag language.Tag) {
	if w.err != nil || tag == language.Und {
		return
	}
	if !w.pending {
		w.err = errors.New("markup: xml:lang after element content")
		return
	}
	if w.hasAttr(xmlNamespace, "lang") {
		w.err = errors.New("markup: duplicate attribute xml:lang")
		return
	}
	w.start.Attr = append(w.start.Attr, xml.Attr{
		Name:  xml.Name{Space: xmlNamespace, Local: "lang"},
		Value: tag.String(),
	})
}

func (w *Writer) hasAttr(space, local string) bool {
	for _, a := range w.start.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return true
		}
	}
	return false
}

// Text writes character data into the current element.
func (w *Writer) Text(s string) {
	if w.err != nil {
		return
	}
	if len(w.open) == 0 {
		w.err = errors.New("markup: text outside of root element")
		return
	}
	w.flushStart()
	if w.err == nil && s != "" {
		w.err = w.enc.EncodeToken(xml.CharData(s))
	}
}

// End closes the current element.
func (w *Writer) End() {
	if w.err != nil {
		return
	}
	n := len(w.open)
	if n == 0 {
		w.err = errors.New("markup: unbalanced end tag")
		return
	}
	w.flushStart()
	if w.err != nil {
		return
	}
	name := w.open[n-1]
	w.open = w.open[:n-1]
	w.err = w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

// Depth returns the number of open elements.
func (w *Writer) Depth() int {
	return len(w.open)
}

// Current returns the name of the innermost open element, or the empty
// string if no element is open.
func (w *Writer) Current() string {
	if len(w.open) == 0 {
		return ""
	}
	return w.open[len(w.open)-1]
}

// Flush writes all buffered data to the underlying writer and returns the
// first error encountered.  An error is also returned if elements are
// still open.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.flushStart()
	if w.err != nil {
		return w.err
	}
	w.err = w.enc.Flush()
	if w.err == nil && len(w.open) > 0 {
		w.err = fmt.Errorf("markup: %d unclosed elements", len(w.open))
	}
	return w.err
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}

// SetErr records err, unless an error was recorded before.
func (w *Writer) SetErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) flushStart() {
	if !w.pending || w.err != nil {
		return
	}
	w.pending = false
	w.err = w.enc.EncodeToken(w.start)
	w.start = xml.StartElement{}
}
