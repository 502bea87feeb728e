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

package container_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"seehuhn.de/go/xmp"

	"seehuhn.de/go/fixdoc/container"
	"seehuhn.de/go/fixdoc/container/memory"
	"seehuhn.de/go/fixdoc/resource"
	"seehuhn.de/go/fixdoc/ticket"
)

func writeSample(t *testing.T, pkg *container.Package) {
	t.Helper()

	seq, err := pkg.OpenSequence()
	if err != nil {
		t.Fatal(err)
	}
	err = seq.SetPrintTicket(&ticket.Ticket{Copies: 2})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := seq.OpenDocument()
	if err != nil {
		t.Fatal(err)
	}

	packet := xmp.NewPacket()
	dc := &xmp.DublinCore{}
	dc.Title.Set(language.Und, "Sample")
	if err := packet.Set(dc); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetMetadata(packet); err != nil {
		t.Fatal(err)
	}

	for i := range 2 {
		page, err := doc.OpenPage()
		if err != nil {
			t.Fatal(err)
		}
		w := page.Markup()
		w.Attr("Width", "816")
		w.Start("Path")
		w.Attr("Data", "M 0,0 L 10,10")
		w.End()

		if i == 0 {
			stm, err := doc.CreateResource(resource.Font, "Go Regular.ttf")
			if err != nil {
				t.Fatal(err)
			}
			_, _ = stm.Write([]byte("font data"))
			if err := stm.Close(); err != nil {
				t.Fatal(err)
			}
			page.RelateResource(stm.URI())
			page.RelateResource(stm.URI())
		}

		if err := page.Close(); err != nil {
			t.Fatal(err)
		}
	}

	if err := doc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := seq.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pkg.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPackage(t *testing.T) {
	store := memory.New()
	writeSample(t, container.New(store))

	wantNames := []string{
		"/FixedDocumentSequence.fdseq.ticket",
		"/Documents/1/Metadata/core.xmp",
		"/Documents/1/Resources/Fonts/Go%20Regular.ttf",
		"/Documents/1/Pages/1.fpage",
		"/Documents/1/Pages/2.fpage",
		"/Documents/1/FixedDocument.fdoc",
		"/FixedDocumentSequence.fdseq",
	}
	if d := cmp.Diff(wantNames, store.Names()); d != "" {
		t.Errorf("part names (-want +got):\n%s", d)
	}
	if !store.IsFinished() || store.StartPart != "/FixedDocumentSequence.fdseq" {
		t.Error("package not finished")
	}

	page := store.Part("/Documents/1/Pages/1.fpage")
	wantPage := `<FixedPage xmlns="http://schemas.microsoft.com/xps/2005/06" Width="816">` +
		`<Path Data="M 0,0 L 10,10"></Path></FixedPage>`
	if d := cmp.Diff(wantPage, string(page.Data)); d != "" {
		t.Errorf("page markup (-want +got):\n%s", d)
	}
	wantRels := []container.Relation{{
		Type:   container.ResourceRelation,
		Target: "/Documents/1/Resources/Fonts/Go%20Regular.ttf",
	}}
	if d := cmp.Diff(wantRels, page.Relations); d != "" {
		t.Errorf("page relations (-want +got):\n%s", d)
	}

	doc := store.Part("/Documents/1/FixedDocument.fdoc")
	wantDoc := `<FixedDocument xmlns="http://schemas.microsoft.com/xps/2005/06">` +
		`<PageContent Source="/Documents/1/Pages/1.fpage"></PageContent>` +
		`<PageContent Source="/Documents/1/Pages/2.fpage"></PageContent>` +
		`</FixedDocument>`
	if d := cmp.Diff(wantDoc, string(doc.Data)); d != "" {
		t.Errorf("document markup (-want +got):\n%s", d)
	}

	meta := store.Part("/Documents/1/Metadata/core.xmp")
	packet, err := xmp.Read(bytes.NewReader(meta.Data))
	if err != nil {
		t.Fatal(err)
	}
	orig := xmp.NewPacket()
	src := &xmp.DublinCore{}
	src.Title.Set(language.Und, "Sample")
	if err := orig.Set(src); err != nil {
		t.Fatal(err)
	}
	var dc, want xmp.DublinCore
	packet.Get(&dc)
	orig.Get(&want)
	if d := cmp.Diff(want, dc); d != "" {
		t.Errorf("metadata (-want +got):\n%s", d)
	}

	tk := store.Part("/FixedDocumentSequence.fdseq.ticket")
	if string(tk.Data) != "Copies=2\n" {
		t.Errorf("wrong print ticket %q", tk.Data)
	}
}

func TestDeterministicDump(t *testing.T) {
	dump := func() string {
		store := memory.New()
		writeSample(t, container.New(store))
		buf := &bytes.Buffer{}
		_, err := store.WriteTo(buf)
		if err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	a, b := dump(), dump()
	if a != b {
		t.Error("two identical runs gave different output")
	}
}

func TestAbort(t *testing.T) {
	store := memory.New()
	pkg := container.New(store)
	seq, _ := pkg.OpenSequence()
	doc, _ := seq.OpenDocument()
	page, _ := doc.OpenPage()
	stm, _ := doc.CreateResource(resource.Image, "")
	_, _ = io.WriteString(stm, "pixels")

	pkg.Abort()
	if !store.IsAborted() || len(store.Parts) != 0 {
		t.Error("storage not aborted")
	}
	if err := page.Close(); err == nil {
		t.Error("page of aborted package closed successfully")
	}
	if err := pkg.Close(); err == nil {
		t.Error("aborted package was finalised")
	}
	if _, err := stm.Write([]byte("more")); err == nil {
		t.Error("write to aborted resource succeeded")
	}
}

func TestNesting(t *testing.T) {
	pkg := container.New(memory.New())
	seq, _ := pkg.OpenSequence()
	if _, err := pkg.OpenSequence(); err == nil {
		t.Error("second sequence opened")
	}
	doc, _ := seq.OpenDocument()
	if _, err := seq.OpenDocument(); err == nil {
		t.Error("document opened while previous document open")
	}
	_, _ = doc.OpenPage()
	if _, err := doc.OpenPage(); err == nil {
		t.Error("page opened while previous page open")
	}
	if err := doc.Close(); err == nil {
		t.Error("document closed with open page")
	}
	if err := pkg.Close(); err == nil {
		t.Error("package closed with open sequence")
	}
}
