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

// Package layout determines the size of pages.
//
// All lengths are in units of 1/96 inch.
package layout

import (
	"math"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/fixdoc/ticket"
)

// Common paper sizes, in units of 1/96 inch.
var (
	Letter = rect.Rect{URx: 96 * 8.5, URy: 96 * 11}
	Legal  = rect.Rect{URx: 96 * 8.5, URy: 96 * 14}
	A4     = rect.Rect{URx: 96 * 210 / 25.4, URy: 96 * 297 / 25.4}
	A5     = rect.Rect{URx: 96 * 148 / 25.4, URy: 96 * 210 / 25.4}
)

// Service measures pages.
type Service interface {
	// Measure returns the concrete page box for a page which declares the
	// given width and height.  A width or height which is zero, negative or
	// not finite means that the page does not declare a usable size.  The
	// setting may be nil.
	Measure(width, height float64, setting *ticket.Ticket) (rect.Rect, error)
}

// Default is the standard layout service.
//
// If the page declares a usable size, this size is used unchanged.
// Otherwise the size is taken from the print setting or, if the setting
// does not specify a size either, the US Letter default is used.  In the
// latter two cases, width and height are swapped if the setting asks for
// landscape orientation.
type Default struct {
	// Fallback, if non-zero, replaces US Letter as the default page size.
	Fallback rect.Rect
}

// Measure implements the [Service] interface.
func (d Default) Measure(width, height float64, setting *ticket.Ticket) (rect.Rect, error) {
	if isUsable(width) && isUsable(height) {
		return rect.Rect{URx: width, URy: height}, nil
	}

	var w, h float64
	if setting != nil && isUsable(setting.PageWidth) && isUsable(setting.PageHeight) {
		w, h = setting.PageWidth, setting.PageHeight
	} else if !d.Fallback.IsZero() {
		w, h = d.Fallback.Dx(), d.Fallback.Dy()
	} else {
		w, h = Letter.Dx(), Letter.Dy()
	}

	if setting != nil && setting.Orientation == ticket.Landscape && w < h {
		w, h = h, w
	}
	return rect.Rect{URx: w, URy: h}, nil
}

func isUsable(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
