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

// Package memory implements an in-memory storage backend for containers.
//
// The stored parts can be inspected directly, and [Storage.WriteTo] writes a
// deterministic text dump of the whole package.  Two runs which produce the
// same parts in the same order produce identical dumps.
package memory

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/fixdoc/container"
)

// Storage keeps the parts of a package in memory.
type Storage struct {
	Parts []*container.Part

	// StartPart is the name of the start part, once the package is
	// finished.
	StartPart string

	finished bool
	aborted  bool
}

var _ container.Storage = (*Storage)(nil)

// New creates an empty storage.
func New() *Storage {
	return &Storage{}
}

// Put implements the [container.Storage] interface.
func (s *Storage) Put(p *container.Part) error {
	if s.finished || s.aborted {
		return errDone
	}
	for _, q := range s.Parts {
		if q.Name == p.Name {
			return fmt.Errorf("memory: duplicate part %q", p.Name)
		}
	}

	// copy the data, since the caller may reuse the buffer
	stored := &container.Part{
		Name:        p.Name,
		ContentType: p.ContentType,
		Data:        bytes.Clone(p.Data),
		Relations:   append([]container.Relation(nil), p.Relations...),
	}
	s.Parts = append(s.Parts, stored)
	return nil
}

// Finish implements the [container.Storage] interface.
func (s *Storage) Finish(startPart string) error {
	if s.finished || s.aborted {
		return errDone
	}
	s.finished = true
	s.StartPart = startPart
	return nil
}

// Abort implements the [container.Storage] interface.
// All parts stored so far are discarded.
func (s *Storage) Abort() {
	s.aborted = true
	s.Parts = nil
}

// IsFinished reports whether the package was completed successfully.
func (s *Storage) IsFinished() bool {
	return s.finished
}

// IsAborted reports whether the package was aborted.
func (s *Storage) IsAborted() bool {
	return s.aborted
}

// Part returns the part with the given name, or nil if there is no such
// part.
func (s *Storage) Part(name string) *container.Part {
	for _, p := range s.Parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Names returns the part names, in the order in which the parts were
// stored.
func (s *Storage) Names() []string {
	res := make([]string, len(s.Parts))
	for i, p := range s.Parts {
		res[i] = p.Name
	}
	return res
}

// WriteTo writes a text dump of the package to w.
func (s *Storage) WriteTo(w io.Writer) (int64, error) {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "start %s\n", s.StartPart)
	for _, p := range s.Parts {
		fmt.Fprintf(buf, "part %s %q %d\n", p.Name, p.ContentType, len(p.Data))
		for _, r := range p.Relations {
			fmt.Fprintf(buf, "  rel %s %s\n", r.Target, r.Type)
		}
		buf.Write(p.Data)
		buf.WriteByte('\n')
	}
	return buf.WriteTo(w)
}

var errDone = errors.New("memory: storage already finished or aborted")
