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

// Fixdoc-demo writes a small demonstration document into a zip container.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"time"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/term"
	"golang.org/x/text/language"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/icc"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/container"
	"seehuhn.de/go/fixdoc/container/zipfile"
	"seehuhn.de/go/fixdoc/continuation"
	"seehuhn.de/go/fixdoc/resource"
	"seehuhn.de/go/fixdoc/serialize"
	"seehuhn.de/go/fixdoc/structure"
	"seehuhn.de/go/fixdoc/ticket"
	"seehuhn.de/go/fixdoc/visual"
)

func main() {
	out := flag.String("o", "demo.zip", "output file name")
	numPages := flag.Int("n", 3, "number of pages")
	syncMode := flag.Bool("sync", false, "write the document synchronously")
	landscape := flag.Bool("landscape", false, "use landscape orientation")
	flag.Parse()

	if *numPages < 1 {
		fmt.Fprintln(os.Stderr, "need at least one page")
		os.Exit(1)
	}

	fd, err := os.Create(*out)
	check(err)
	zw := zipfile.New(fd)

	doc := makeDocument(*numPages)
	if *landscape {
		doc.PrintSetting = &ticket.Ticket{Orientation: ticket.Landscape}
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	pages := 0
	opt := &serialize.Options{
		StructureChanged: func(e structure.Event) {
			if e.Level != structure.Page || e.Opened {
				return
			}
			pages++
			if interactive {
				fmt.Printf("\rwritten %d of %d pages", pages, *numPages)
			}
		},
	}

	var loop *continuation.Loop
	var res serialize.Completion
	if !*syncMode {
		loop = continuation.NewLoop()
		opt.Dispatcher = loop
		opt.Completed = func(c serialize.Completion) { res = c }
	}

	m := serialize.NewManager(container.New(zw), opt)
	if *syncMode {
		err = m.Save(doc)
	} else {
		err = m.SaveAsync(doc)
		if err == nil {
			err = loop.Run(context.Background())
		}
		if err == nil {
			err = res.Err
		}
		if interactive {
			fmt.Printf(" (%d turns)", loop.Turns())
		}
	}
	if interactive {
		fmt.Println()
	}
	check(err)
	check(fd.Close())

	fmt.Printf("wrote %d pages to %s\n", pages, *out)
}

func makeDocument(n int) *fixdoc.Document {
	regular := &resource.FontData{Data: goregular.TTF}
	bold := &resource.FontData{Data: gobold.TTF}
	profile := &resource.ProfileData{Data: icc.SRGBv4Profile}
	logo := &resource.ImageData{ID: "logo.png", Data: makeImage()}

	doc := &fixdoc.Document{
		Title:    "fixdoc demonstration",
		Creators: []string{"fixdoc-demo"},
		Created:  time.Now(),
		Language: language.English,
	}
	for i := range n {
		page := &fixdoc.Page{
			Children: []any{
				&visual.Group{
					Transform: matrix.Translate(72, 72),
					Items: []visual.Visual{
						&visual.Text{
							Font:   bold,
							Size:   28,
							Origin: vec.Vec2{Y: 28},
							Text:   fmt.Sprintf("Page %d", i+1),
						},
						&visual.Text{
							Font:   regular,
							Size:   14,
							Origin: vec.Vec2{Y: 64},
							Text:   "Written one step at a time.",
						},
						&visual.Shape{
							Outline:     []vec.Vec2{{X: 0, Y: 96}, {X: 320, Y: 96}, {X: 320, Y: 300}, {X: 0, Y: 300}},
							Stroke:      "#336699",
							StrokeWidth: 1.5,
						},
						&visual.Picture{
							Image:   logo,
							Profile: profile,
							Bounds:  rect.Rect{LLx: 16, LLy: 112, URx: 304, URy: 284},
						},
					},
				},
			},
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

func makeImage() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := range 48 {
		for x := range 64 {
			img.Set(x, y, color.NRGBA{R: uint8(4 * x), G: uint8(5 * y), B: 160, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	check(png.Encode(buf, img))
	return buf.Bytes()
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
