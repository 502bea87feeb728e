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

package visual

import (
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/markup"
	"seehuhn.de/go/fixdoc/resource"
)

// Env gives a flattener access to the page being written.
type Env interface {
	// Markup returns the markup writer of the page.
	Markup() *markup.Writer

	// Acquire obtains a shared resource and relates it to the page.  The
	// caller passes the resource data to [resource.Handle.WriteData].
	// Resources acquired in multiple mode are released automatically
	// when the page ends.
	Acquire(kind resource.Kind, id string) (*resource.Handle, error)

	// Release gives up a resource before the end of the page.
	Release(kind resource.Kind, id string) error
}

// Flattener turns visual nodes into page markup.
type Flattener interface {
	// Enter is called before the children of v are visited.  If descend
	// is false, the children are skipped.
	Enter(env Env, v Visual) (descend bool, err error)

	// Leave is called after the children of v have been visited.
	Leave(env Env, v Visual) error
}

// MarkupFlattener is the default flattener.  It writes the standard
// visuals as Canvas, Path and Glyphs elements.  Visuals of other types
// become a plain Canvas containing their children.
type MarkupFlattener struct{}

var _ Flattener = MarkupFlattener{}

// Enter implements the [Flattener] interface.
func (MarkupFlattener) Enter(env Env, v Visual) (bool, error) {
	w := env.Markup()
	switch v := v.(type) {
	case *Group:
		w.Start("Canvas")
		if !isIdentity(v.Transform) {
			w.Attr("RenderTransform", formatMatrix(v.Transform))
		}
		if v.Transparency != 0 {
			w.Attr("Opacity", formatNumber(1-v.Transparency))
		}
		if v.Clip != nil {
			w.Attr("Clip", rectPath(*v.Clip))
		}
		return true, w.Err()

	case *Shape:
		w.Start("Path")
		if len(v.Outline) > 0 {
			w.Attr("Data", polygonPath(v.Outline))
		} else if v.Data != "" {
			w.Attr("Data", v.Data)
		}
		if v.Fill != "" {
			w.Attr("Fill", v.Fill)
		}
		if v.Stroke != "" {
			w.Attr("Stroke", v.Stroke)
			if v.StrokeWidth > 0 {
				w.Attr("StrokeThickness", formatNumber(v.StrokeWidth))
			}
		}
		return false, w.Err()

	case *Text:
		if v.Font == nil {
			return false, &fixdoc.InvalidArgumentError{Arg: "Text.Font"}
		}
		h, err := env.Acquire(resource.Font, v.Font.Key())
		if err != nil {
			return false, err
		}
		if err := h.WriteData(v.Font.Data); err != nil {
			return false, err
		}
		w.Start("Glyphs")
		w.Attr("FontUri", h.URI)
		w.Attr("FontRenderingEmSize", formatNumber(v.Size))
		w.Attr("OriginX", formatNumber(v.Origin.X))
		w.Attr("OriginY", formatNumber(v.Origin.Y))
		w.Attr("UnicodeString", v.Text)
		if v.Fill != "" {
			w.Attr("Fill", v.Fill)
		}
		w.Lang(v.Language)
		return false, w.Err()

	case *Picture:
		if v.Image == nil {
			return false, &fixdoc.InvalidArgumentError{Arg: "Picture.Image"}
		}
		id := ""
		if !v.Image.SingleUse {
			id = v.Image.Key()
		}
		img, err := env.Acquire(resource.Image, id)
		if err != nil {
			return false, err
		}
		if err := img.WriteData(v.Image.Data); err != nil {
			return false, err
		}
		var profileURI string
		if v.Profile != nil {
			if _, err := v.Profile.Info(); err != nil {
				return false, &fixdoc.InvalidArgumentError{Arg: "Picture.Profile", Err: err}
			}
			prof, err := env.Acquire(resource.ColorProfile, v.Profile.Key())
			if err != nil {
				return false, err
			}
			if err := prof.WriteData(v.Profile.Data); err != nil {
				return false, err
			}
			profileURI = prof.URI
		}

		w.Start("Path")
		w.Attr("Data", rectPath(v.Bounds))
		w.Start("Path.Fill")
		w.Start("ImageBrush")
		w.Attr("ImageSource", img.URI)
		if profileURI != "" {
			w.Attr("ColorProfile", profileURI)
		}
		w.Attr("Viewport", formatRect(v.Bounds))
		w.End()
		w.End()
		return false, w.Err()

	default:
		w.Start("Canvas")
		return true, w.Err()
	}
}

// Leave implements the [Flattener] interface.
func (MarkupFlattener) Leave(env Env, v Visual) error {
	w := env.Markup()
	w.End()
	if p, ok := v.(*Picture); ok && p.Image.SingleUse {
		if err := env.Release(resource.Image, ""); err != nil {
			return err
		}
	}
	return w.Err()
}

func isIdentity(m matrix.Matrix) bool {
	return m == matrix.Matrix{} || m == matrix.Identity
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func formatPoint(x, y float64) string {
	return formatNumber(x) + "," + formatNumber(y)
}

func formatMatrix(m matrix.Matrix) string {
	parts := make([]string, len(m))
	for i, x := range m {
		parts[i] = formatNumber(x)
	}
	return strings.Join(parts, ",")
}

func formatRect(r rect.Rect) string {
	return formatPoint(r.LLx, r.LLy) + "," + formatPoint(r.Dx(), r.Dy())
}

func rectPath(r rect.Rect) string {
	return polygonPath([]vec.Vec2{
		{X: r.LLx, Y: r.LLy},
		{X: r.URx, Y: r.LLy},
		{X: r.URx, Y: r.URy},
		{X: r.LLx, Y: r.URy},
	})
}

func polygonPath(pts []vec.Vec2) string {
	b := &strings.Builder{}
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatPoint(p.X, p.Y))
	}
	b.WriteString(" Z")
	return b.String()
}
