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

package resource

import (
	"errors"
	"sort"

	"seehuhn.de/go/fixdoc"
)

// Mode is the acquisition discipline for one kind of resource.
type Mode int

// Within one page, all resources of a given kind are acquired using the
// same mode.
const (
	// Unset means that no resource of the kind was acquired yet.
	Unset Mode = iota

	// Single mode uses one implicit, unnamed resource per kind.
	Single

	// Multiple mode uses named resources, looked up by identifier.
	Multiple
)

func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	default:
		return "unset"
	}
}

type key struct {
	kind Kind
	id   string
}

// Manager keeps track of the resources used by the current page.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	store Store

	inDocument bool
	inPage     bool

	modes  map[Kind]Mode
	single map[Kind]*Handle
	named  map[key]*Handle

	// committed maps the resources written in the current document to
	// their URIs.
	committed map[key]string

	isClosed bool
}

// NewManager creates a new resource manager, which obtains streams from
// the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:     store,
		modes:     make(map[Kind]Mode),
		single:    make(map[Kind]*Handle),
		named:     make(map[key]*Handle),
		committed: make(map[key]string),
	}
}

// BeginDocument starts a new document scope.  Resources are only shared
// between pages of the same document.
func (m *Manager) BeginDocument() error {
	if m.isClosed {
		return errClosed
	}
	if m.inDocument {
		return &fixdoc.StructuralError{Op: "begin document resources", Err: fixdoc.ErrNesting}
	}
	m.inDocument = true
	clear(m.committed)
	return nil
}

// EndDocument ends the current document scope.
func (m *Manager) EndDocument() error {
	if !m.inDocument || m.inPage {
		return &fixdoc.StructuralError{Op: "end document resources", Err: fixdoc.ErrNesting}
	}
	m.inDocument = false
	clear(m.committed)
	return nil
}

// BeginPage starts a new page scope.
func (m *Manager) BeginPage() error {
	if m.isClosed {
		return errClosed
	}
	if !m.inDocument || m.inPage {
		return &fixdoc.StructuralError{Op: "begin page resources", Err: fixdoc.ErrNesting}
	}
	m.inPage = true
	clear(m.modes)
	return nil
}

// EndPage ends the current page scope.
// All resources acquired on the page must have been released.
func (m *Manager) EndPage() error {
	if !m.inPage {
		return &fixdoc.StructuralError{Op: "end page resources", Err: fixdoc.ErrNesting}
	}
	if n := m.Outstanding(); n > 0 {
		return &fixdoc.StructuralError{Op: "end page resources", Err: fixdoc.ErrUnreleased}
	}
	m.inPage = false
	clear(m.modes)
	return nil
}

// Acquire returns a handle for the resource with the given kind and
// identifier.  If id is empty, the resource is acquired in single mode,
// otherwise in multiple mode.  Mixing both modes for the same kind within
// one page is an error.
//
// Every successful call must be matched by a call to [Manager.Release].
func (m *Manager) Acquire(kind Kind, id string) (*Handle, error) {
	if m.isClosed {
		return nil, errClosed
	}
	if !kind.IsValid() {
		return nil, &fixdoc.InvalidArgumentError{Arg: "kind", Reason: kind.String()}
	}
	if !m.inPage {
		return nil, &fixdoc.StructuralError{Op: "acquire " + kind.String(), Err: fixdoc.ErrNesting}
	}

	mode := Multiple
	if id == "" {
		mode = Single
	}
	if cur := m.modes[kind]; cur != Unset && cur != mode {
		return nil, &fixdoc.StructuralError{Op: "acquire " + kind.String(), Err: fixdoc.ErrAcquireMode}
	}
	m.modes[kind] = mode

	if mode == Single {
		if h := m.single[kind]; h != nil {
			h.refs++
			return h, nil
		}
		stm, err := m.store.CreateResource(kind, "")
		if err != nil {
			return nil, err
		}
		h := &Handle{Kind: kind, URI: stm.URI(), Stream: stm, refs: 1}
		m.single[kind] = h
		return h, nil
	}

	id = NormalizeID(id)
	k := key{kind, id}
	if h := m.named[k]; h != nil {
		h.refs++
		return h, nil
	}

	h := &Handle{Kind: kind, ID: id, refs: 1}
	if uri, ok := m.committed[k]; ok {
		h.URI = uri
	} else {
		stm, err := m.store.CreateResource(kind, id)
		if err != nil {
			return nil, err
		}
		h.URI = stm.URI()
		h.Stream = stm
	}
	m.named[k] = h
	return h, nil
}

// Release gives up one reference to a resource.  When the last reference
// is released, the resource stream is returned to the store.
func (m *Manager) Release(kind Kind, id string) error {
	if m.isClosed {
		return errClosed
	}

	var h *Handle
	if id == "" {
		h = m.single[kind]
	} else {
		id = NormalizeID(id)
		h = m.named[key{kind, id}]
	}
	if h == nil {
		return &fixdoc.StructuralError{Op: "release " + kind.String(), Err: fixdoc.ErrNotAcquired}
	}

	h.refs--
	if h.refs > 0 {
		return nil
	}

	if id == "" {
		delete(m.single, kind)
	} else {
		delete(m.named, key{kind, id})
	}
	if h.Stream == nil {
		return nil
	}
	err := h.Stream.Close()
	if err != nil {
		return err
	}
	if id != "" {
		m.committed[key{kind, id}] = h.URI
	}
	return nil
}

// RefCount returns the number of outstanding references to a resource.
func (m *Manager) RefCount(kind Kind, id string) int {
	var h *Handle
	if id == "" {
		h = m.single[kind]
	} else {
		h = m.named[key{kind, NormalizeID(id)}]
	}
	if h == nil {
		return 0
	}
	return h.refs
}

// Mode returns the acquisition mode used for kind on the current page.
func (m *Manager) Mode(kind Kind) Mode {
	return m.modes[kind]
}

// Outstanding returns the number of resources which are currently acquired.
func (m *Manager) Outstanding() int {
	return len(m.single) + len(m.named)
}

// Committed returns the URIs of all resources written in the current
// document, in sorted order.
func (m *Manager) Committed() []string {
	res := make([]string, 0, len(m.committed))
	for _, uri := range m.committed {
		res = append(res, uri)
	}
	sort.Strings(res)
	return res
}

// Abort discards all outstanding resources without committing them.
// After Abort has been called, the manager can no longer be used.
func (m *Manager) Abort() {
	if m.isClosed {
		return
	}
	m.isClosed = true

	for _, h := range m.single {
		if h.Stream != nil {
			h.Stream.Abort()
		}
	}
	for _, h := range m.named {
		if h.Stream != nil {
			h.Stream.Abort()
		}
	}
	clear(m.single)
	clear(m.named)
	clear(m.committed)
	clear(m.modes)
	m.inPage = false
	m.inDocument = false
}

var errClosed = errors.New("resource manager is already closed")
