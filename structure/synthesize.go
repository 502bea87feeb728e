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

package structure

import (
	"reflect"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/visual"
)

// Synthesize wraps the root object of a serialization run into a complete
// sequence.
//
// A bare page is placed into a new document, a paginator becomes the page
// source of a new document, and a visual becomes the only content of a new
// page.  Documents are placed into a new sequence.  The wrapper objects
// created here are reported by [Controller.IsSynthesized].
func (c *Controller) Synthesize(root any) (*fixdoc.Sequence, error) {
	switch r := root.(type) {
	case nil:
		return nil, &fixdoc.InvalidArgumentError{Arg: "root"}

	case *fixdoc.Sequence:
		if r == nil {
			return nil, &fixdoc.InvalidArgumentError{Arg: "root"}
		}
		return r, nil

	case *fixdoc.Document:
		if r == nil {
			return nil, &fixdoc.InvalidArgumentError{Arg: "root"}
		}
		return c.wrapDocument(r), nil

	case *fixdoc.Page:
		if r == nil {
			return nil, &fixdoc.InvalidArgumentError{Arg: "root"}
		}
		return c.wrapPage(r), nil

	case fixdoc.Paginator:
		doc := &fixdoc.Document{Paginator: r}
		c.synthetic[doc] = true
		return c.wrapDocument(doc), nil

	case visual.Visual:
		page, err := c.SynthesizePage(r)
		if err != nil {
			return nil, err
		}
		return c.wrapPage(page), nil
	}

	return nil, &fixdoc.TypeMismatchError{
		Want: "sequence, document, page, paginator or visual",
		Got:  reflect.TypeOf(root),
	}
}

// SynthesizePage returns obj as a page.  A visual is placed on a new page,
// a page is returned unchanged.
func (c *Controller) SynthesizePage(obj any) (*fixdoc.Page, error) {
	switch r := obj.(type) {
	case nil:
		return nil, &fixdoc.InvalidArgumentError{Arg: "page"}
	case *fixdoc.Page:
		if r == nil {
			return nil, &fixdoc.InvalidArgumentError{Arg: "page"}
		}
		return r, nil
	case visual.Visual:
		page := &fixdoc.Page{Children: []any{r}}
		c.synthetic[page] = true
		return page, nil
	}
	return nil, &fixdoc.TypeMismatchError{Want: "page or visual", Got: reflect.TypeOf(obj)}
}

// IsSynthesized reports whether obj is a wrapper created by
// [Controller.Synthesize].
func (c *Controller) IsSynthesized(obj any) bool {
	switch obj.(type) {
	case *fixdoc.Sequence, *fixdoc.Document, *fixdoc.Page:
		return c.synthetic[obj]
	}
	return false
}

func (c *Controller) wrapPage(page *fixdoc.Page) *fixdoc.Sequence {
	doc := &fixdoc.Document{Pages: []*fixdoc.Page{page}}
	c.synthetic[doc] = true
	return c.wrapDocument(doc)
}

func (c *Controller) wrapDocument(doc *fixdoc.Document) *fixdoc.Sequence {
	seq := &fixdoc.Sequence{Documents: []*fixdoc.Document{doc}}
	c.synthetic[seq] = true
	return seq
}
