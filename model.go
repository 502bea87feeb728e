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

package fixdoc

import (
	"time"

	"golang.org/x/text/language"

	"seehuhn.de/go/fixdoc/ticket"
)

// Sequence is the outermost level of the document hierarchy.
type Sequence struct {
	Documents []*Document

	// PrintSetting, if non-nil, applies to all documents in the sequence
	// which do not override it.
	PrintSetting *ticket.Ticket
}

// Document is a list of pages.
type Document struct {
	// Title, Creators and Created are written to the document metadata.
	// If all of them are unset, no metadata is written.
	Title    string
	Creators []string
	Created  time.Time

	// Language is the default language of the document content.
	Language language.Tag

	// Pages lists the pages of the document.  This is ignored if
	// Paginator is set.
	Pages []*Page

	// Paginator, if non-nil, produces the pages of the document.
	Paginator Paginator

	PrintSetting *ticket.Ticket
}

// Page is a single fixed-layout page.
type Page struct {
	// Width and Height give the page size in units of 1/96 inch.  If the
	// size is not set, the size is taken from the print setting, or from
	// the default paper size.
	Width, Height float64

	Language language.Tag

	// Children is the content of the page, in painting order.  Elements can
	// be visuals (see the visual package) or Go structs, which are
	// serialized via their exported fields.
	Children []any

	PrintSetting *ticket.Ticket
}

// Paginator produces the pages of a document on demand.
//
// Pages are requested with increasing index, starting at 0, until
// PageCountKnown reports true and the index reaches PageCount.  A paginator
// which never reports a known page count must eventually do so, otherwise
// serialization does not terminate.
type Paginator interface {
	// PageCountKnown reports whether the total number of pages is known.
	PageCountKnown() bool

	// PageCount returns the number of pages.  The value is only meaningful
	// if PageCountKnown returns true.
	PageCount() int

	// Page returns the page with index i.  A nil page indicates a missing
	// page, which is skipped.
	Page(i int) (*Page, error)
}

// PageList is a [Paginator] for a fixed list of pages.
type PageList []*Page

// PageCountKnown implements the [Paginator] interface.
func (l PageList) PageCountKnown() bool {
	return true
}

// PageCount implements the [Paginator] interface.
func (l PageList) PageCount() int {
	return len(l)
}

// Page implements the [Paginator] interface.
func (l PageList) Page(i int) (*Page, error) {
	if i < 0 || i >= len(l) {
		return nil, &InvalidArgumentError{Arg: "i", Reason: "page index out of range"}
	}
	return l[i], nil
}
