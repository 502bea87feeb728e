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

// Package testdoc provides documents for use in tests.
package testdoc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"time"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/icc"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/resource"
	"seehuhn.de/go/fixdoc/visual"
)

// Font returns the Go Regular font.
func Font() *resource.FontData {
	return &resource.FontData{ID: "GoRegular.ttf", Data: goregular.TTF}
}

// Profile returns the sRGB colour profile.
func Profile() *resource.ProfileData {
	return &resource.ProfileData{ID: "sRGB.icc", Data: icc.SRGBv4Profile}
}

// Image returns a small PNG image.
func Image(id string) *resource.ImageData {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := range 3 {
		for x := range 4 {
			img.Set(x, y, color.NRGBA{R: uint8(60 * x), G: uint8(80 * y), B: 200, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	err := png.Encode(buf, img)
	if err != nil {
		panic(err)
	}
	return &resource.ImageData{ID: id, Data: buf.Bytes()}
}

// Caption is page content which is written via reflection.
type Caption struct {
	Name     string  `fixdoc:"name=Key"`
	Size     float64 `fixdoc:"default=12"`
	Position vec.Vec2
	Text     string
	Notes    []string
	Extra    map[string]string `fixdoc:"attached"`
}

// Page returns a page with a heading, a framed picture and a caption.
// The font is shared between pages.
func Page(n int, font *resource.FontData) *fixdoc.Page {
	label := string(rune('A' + n - 1))
	return &fixdoc.Page{
		Children: []any{
			&visual.Group{
				Transform: matrix.Translate(48, 48),
				Items: []visual.Visual{
					&visual.Text{
						Font:   font,
						Size:   24,
						Origin: vec.Vec2{X: 0, Y: 24},
						Text:   "Page " + label,
						Fill:   "#000000",
					},
					&visual.Shape{
						Outline:     []vec.Vec2{{X: 0, Y: 40}, {X: 200, Y: 40}, {X: 200, Y: 140}, {X: 0, Y: 140}},
						Stroke:      "#FF0000",
						StrokeWidth: 2,
					},
					&visual.Picture{
						Image:  Image("picture.png"),
						Bounds: rect.Rect{LLx: 10, LLy: 50, URx: 190, URy: 130},
					},
				},
			},
			&Caption{
				Name:     "caption-" + label,
				Size:     12,
				Position: vec.Vec2{X: 48, Y: 200},
				Text:     " figure " + label + " ",
				Notes:    []string{"first", "second"},
				Extra:    map[string]string{"Canvas.Left": "48"},
			},
		},
	}
}

// ThreePages returns a document with three pages.
func ThreePages() *fixdoc.Document {
	font := Font()
	return &fixdoc.Document{
		Title:    "Three Pages",
		Creators: []string{"Test Author"},
		Created:  time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Language: language.BritishEnglish,
		Pages: []*fixdoc.Page{
			Page(1, font),
			Page(2, font),
			Page(3, font),
		},
	}
}

// Deep returns a visual tree which consists of n nested groups.
func Deep(n int) visual.Visual {
	var v visual.Visual = &visual.Shape{Data: "M 0,0 L 10,10", Fill: "#00FF00"}
	for range n {
		v = &visual.Group{Transform: matrix.Identity, Items: []visual.Visual{v}}
	}
	return v
}
