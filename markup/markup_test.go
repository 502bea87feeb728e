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

package markup

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func TestWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf, "urn:test")
	w.Header()
	w.Start("Page")
	w.Attr("Width", "10")
	w.Lang(language.German)
	w.Start("Page.Title")
	w.Text(" a < b ")
	w.End()
	w.Start("Empty")
	w.Lang(language.Und)
	w.End()
	w.End()
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<Page xmlns="urn:test" Width="10" xml:lang="de">` +
		`<Page.Title> a &lt; b </Page.Title>` +
		`<Empty></Empty>` +
		`</Page>`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("output (-want +got):\n%s", d)
	}
}

func TestStickyError(t *testing.T) {
	cases := []func(w *Writer){
		func(w *Writer) { w.End() },
		func(w *Writer) { w.Text("x") },
		func(w *Writer) { w.Start("a"); w.Text("x"); w.Attr("b", "c") },
		func(w *Writer) { w.Start("a"); w.Start("b"); w.End(); w.Lang(language.French) },
		func(w *Writer) { w.Start("a"); w.End(); w.Start("b") },
		func(w *Writer) { w.Start("a"); w.End(); w.Header() },
		func(w *Writer) { w.Start("") },
		func(w *Writer) { w.Start("a") },
		func(w *Writer) { w.Start("a"); w.Attr("b", "1"); w.Attr("b", "2"); w.End() },
		func(w *Writer) { w.Start("a"); w.Lang(language.French); w.Lang(language.German); w.End() },
	}
	for i, f := range cases {
		buf := &bytes.Buffer{}
		w := NewWriter(buf, "")
		f(w)
		err := w.Flush()
		if err == nil {
			t.Errorf("%d: no error", i)
			continue
		}

		// all later calls are ignored
		w.Start("z")
		w.End()
		if w.Flush() != err {
			t.Errorf("%d: error changed", i)
		}
	}
}

func TestCurrent(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, "")
	if w.Current() != "" || w.Depth() != 0 {
		t.Error("new writer has open elements")
	}
	w.Start("a")
	w.Start("b")
	if w.Current() != "b" || w.Depth() != 2 {
		t.Errorf("current %q, depth %d", w.Current(), w.Depth())
	}
	w.End()
	if w.Current() != "a" {
		t.Errorf("current %q", w.Current())
	}
}
