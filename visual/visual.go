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

// Package visual defines the visual tree which makes up the content of a
// page, and the flattener which turns visual nodes into page markup.
package visual

import (
	"golang.org/x/text/language"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/fixdoc/resource"
)

// Visual is a node in the visual tree.
type Visual interface {
	// VisualChildren returns the children of the node, in painting order.
	// Nil entries are ignored.
	VisualChildren() []Visual
}

// Group combines several visuals.
type Group struct {
	// Transform maps the coordinates of the items to the coordinates of
	// the parent.  The zero matrix is treated as the identity.
	Transform matrix.Matrix

	// Transparency is 0 for opaque groups and 1 for invisible groups.
	Transparency float64

	// Clip, if non-nil, restricts painting to a rectangle.
	Clip *rect.Rect

	Items []Visual
}

// VisualChildren implements the [Visual] interface.
func (g *Group) VisualChildren() []Visual {
	return g.Items
}

// Shape is a filled or stroked path.
type Shape struct {
	// Outline is a closed polygon.  If Outline is empty, Data is used
	// instead.
	Outline []vec.Vec2

	// Data is the path in abbreviated path syntax.
	Data string

	// Fill and Stroke are colours in "#RRGGBB" or "#AARRGGBB" form.  An
	// empty string means no fill or no stroke.
	Fill, Stroke string

	StrokeWidth float64
}

// VisualChildren implements the [Visual] interface.
func (s *Shape) VisualChildren() []Visual {
	return nil
}

// Text is a single run of text.
type Text struct {
	Font *resource.FontData
	Size float64

	// Origin is the start of the base line.
	Origin vec.Vec2

	Text     string
	Fill     string
	Language language.Tag
}

// VisualChildren implements the [Visual] interface.
func (t *Text) VisualChildren() []Visual {
	return nil
}

// Picture is a raster image, scaled to fill a rectangle.
type Picture struct {
	Image *resource.ImageData

	// Profile, if non-nil, is the colour profile of the image data.
	Profile *resource.ProfileData

	Bounds rect.Rect
}

// VisualChildren implements the [Visual] interface.
func (p *Picture) VisualChildren() []Visual {
	return nil
}
