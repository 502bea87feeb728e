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

// Package resource manages the shared resources of a page: fonts, images,
// colour profiles and resource dictionaries.
//
// Resources are acquired while a page is written and released when the page
// no longer needs them.  The [Manager] keeps a reference count per resource.
// When the count drops to zero, the backing stream is returned to the
// [Store], which commits the data to the output.  A resource which was
// committed earlier in the same document is shared: later acquisitions get
// a [Handle] without a stream, and the data is not written a second time.
package resource

import (
	"fmt"
	"io"

	"golang.org/x/text/unicode/norm"
)

// Kind identifies the type of a shared resource.
type Kind int

// These are the supported resource kinds.
const (
	Font Kind = iota + 1
	Image
	ColorProfile
	Dictionary
)

func (k Kind) String() string {
	switch k {
	case Font:
		return "Font"
	case Image:
		return "Image"
	case ColorProfile:
		return "ColorProfile"
	case Dictionary:
		return "Dictionary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	return k >= Font && k <= Dictionary
}

// Store provides the backing streams for resources.
type Store interface {
	// CreateResource starts a new resource of the given kind.  The id is
	// empty for resources acquired in single mode.
	CreateResource(kind Kind, id string) (Stream, error)
}

// Stream receives the data of one resource.
type Stream interface {
	io.Writer

	// URI identifies the resource within the output.
	URI() string

	// Close commits the resource data to the output.
	Close() error

	// Abort discards the resource.
	Abort()
}

// Handle is an acquired resource.
type Handle struct {
	Kind Kind

	// ID is the normalised resource identifier.  This is empty for
	// resources acquired in single mode.
	ID string

	// URI identifies the resource within the output.
	URI string

	// Stream receives the resource data.  This is nil if the resource was
	// already written earlier in the same document.  The stream must not
	// be closed by the caller; this happens when the last reference is
	// released.
	Stream Stream

	refs    int
	written bool
}

// RefCount returns the number of outstanding acquisitions of h.
func (h *Handle) RefCount() int {
	return h.refs
}

// IsShared reports whether the resource data was already written earlier
// in the document.
func (h *Handle) IsShared() bool {
	return h.Stream == nil
}

// WriteData writes the resource data to the stream.  Only the first call
// for a handle writes anything; later acquisitions of the same resource on
// the page get the same handle and must not repeat the data.
func (h *Handle) WriteData(data []byte) error {
	if h.Stream == nil || h.written {
		return nil
	}
	h.written = true
	_, err := h.Stream.Write(data)
	return err
}

// NormalizeID brings a resource identifier into NFC form, so that
// canonically equivalent identifiers refer to the same resource.
func NormalizeID(id string) string {
	return norm.NFC.String(id)
}
