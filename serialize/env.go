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

package serialize

import (
	"golang.org/x/exp/slices"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/markup"
	"seehuhn.de/go/fixdoc/resource"
	"seehuhn.de/go/fixdoc/visual"
)

// pageEnv gives the flattener access to the current page.  It keeps track
// of all acquired resources, so that they can be released when the page
// ends.
type pageEnv struct {
	c    *Context
	held []heldResource
}

type heldResource struct {
	kind resource.Kind
	id   string
}

var _ visual.Env = (*pageEnv)(nil)

func (e *pageEnv) Markup() *markup.Writer {
	return e.c.Structure.Markup()
}

func (e *pageEnv) Acquire(kind resource.Kind, id string) (*resource.Handle, error) {
	h, err := e.c.Structure.Resources().Acquire(kind, id)
	if err != nil {
		return nil, err
	}
	e.held = append(e.held, heldResource{kind: kind, id: id})
	if page := e.c.Structure.PageWriter(); page != nil {
		page.RelateResource(h.URI)
	}
	return h, nil
}

func (e *pageEnv) Release(kind resource.Kind, id string) error {
	for i := len(e.held) - 1; i >= 0; i-- {
		if e.held[i].kind == kind && e.held[i].id == id {
			e.held = slices.Delete(e.held, i, i+1)
			return e.c.Structure.Resources().Release(kind, id)
		}
	}
	return &fixdoc.StructuralError{Op: "release " + kind.String(), Err: fixdoc.ErrNotAcquired}
}

// releaseAll gives up all resources which are still held, in reverse order
// of acquisition.
func (e *pageEnv) releaseAll() error {
	res := e.c.Structure.Resources()
	for len(e.held) > 0 {
		r := e.held[len(e.held)-1]
		e.held = e.held[:len(e.held)-1]
		if err := res.Release(r.kind, r.id); err != nil {
			return err
		}
	}
	return nil
}
