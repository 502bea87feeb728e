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

package ticket

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func TestMerge(t *testing.T) {
	parent := &Ticket{
		PageWidth:   816,
		PageHeight:  1056,
		Orientation: Portrait,
		Copies:      2,
		Language:    language.English,
		Options:     map[string]string{"Tray": "1", "Color": "yes"},
	}
	child := &Ticket{
		Orientation: Landscape,
		Duplex:      LongEdge,
		Options:     map[string]string{"Tray": "2"},
	}

	got := Merge(parent, child)
	want := &Ticket{
		PageWidth:   816,
		PageHeight:  1056,
		Orientation: Landscape,
		Copies:      2,
		Duplex:      LongEdge,
		Language:    language.English,
		Options:     map[string]string{"Tray": "2", "Color": "yes"},
	}
	if !got.Equal(want) {
		t.Errorf("wrong merge result:\n%s\nwant:\n%s", got, want)
	}

	// the arguments must not be modified
	if parent.Options["Tray"] != "1" || parent.Orientation != Portrait {
		t.Error("parent was modified")
	}
	if child.Copies != 0 || len(child.Options) != 1 {
		t.Error("child was modified")
	}
}

func TestMergeNil(t *testing.T) {
	a := &Ticket{Copies: 3}
	if got := Merge(nil, a); got == a || !got.Equal(a) {
		t.Errorf("Merge(nil, a) = %v", got)
	}
	if got := Merge(a, nil); got == a || !got.Equal(a) {
		t.Errorf("Merge(a, nil) = %v", got)
	}
	if got := Merge(nil, nil); got != nil {
		t.Errorf("Merge(nil, nil) = %v", got)
	}
}

func TestIsEmpty(t *testing.T) {
	var nilTicket *Ticket
	if !nilTicket.IsEmpty() || !(&Ticket{}).IsEmpty() {
		t.Error("empty ticket not recognised")
	}
	if (&Ticket{Options: map[string]string{"a": "b"}}).IsEmpty() {
		t.Error("ticket with options is empty")
	}
	if (&Ticket{}).String() != "" {
		t.Error("empty ticket has non-empty text form")
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []*Ticket{
		{},
		{PageWidth: 793.7, PageHeight: 1122.5},
		{Orientation: Landscape, Copies: 10, Duplex: ShortEdge, Collation: Uncollated},
		{Language: language.MustParse("de-CH")},
		{Options: map[string]string{
			"Staple":  "TopLeft",
			"Comment": "two\nlines with a \\ backslash",
			"Spaces":  "  padded  ",
			"Empty":   "",
		}},
	}
	for i, tc := range cases {
		text := tc.String()
		got, err := Parse(text)
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if d := cmp.Diff(text, got.String()); d != "" {
			t.Errorf("%d: round trip failed (-want +got):\n%s", i, d)
		}
		if tc.Options != nil {
			if d := cmp.Diff(tc.Options, got.Options); d != "" {
				t.Errorf("%d: options differ (-want +got):\n%s", i, d)
			}
		}
	}
}

func TestCanonicalOrder(t *testing.T) {
	a := &Ticket{Copies: 1, Options: map[string]string{"b": "2", "a": "1"}}
	want := "Copies=1\nOption.a=1\nOption.b=2\n"
	if got := a.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"Copies",
		"Copies=-1",
		"Orientation=Sideways",
		"PageWidth=NaN",
		"Colour=red",
		"\n\nDuplex=Sometimes",
	}
	for _, text := range cases {
		_, err := Parse(text)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("%q: got %v, want ParseError", text, err)
		}
	}

	_, err := Parse("\n\nDuplex=Sometimes")
	var parseErr *ParseError
	if errors.As(err, &parseErr) && parseErr.Line != 3 {
		t.Errorf("error reported on line %d, want 3", parseErr.Line)
	}
}

func TestSetOption(t *testing.T) {
	tk := &Ticket{}
	// U+2006 SIX-PER-EM SPACE is mapped to an ASCII space, U+00AD SOFT
	// HYPHEN is removed
	if err := tk.SetOption("Paper\u2006Tray", "1"); err != nil {
		t.Fatal(err)
	}
	if err := tk.SetOption("Sta\u00adple", "yes"); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"Paper Tray": "1", "Staple": "yes"}
	if d := cmp.Diff(want, tk.Options); d != "" {
		t.Errorf("options (-want +got):\n%s", d)
	}

	for _, key := range []string{"", "a=b", "bell\u0007"} {
		if err := tk.SetOption(key, "x"); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}

	_, err := Parse("Option.a\u0007b=1\n")
	if err == nil {
		t.Error("invalid option key accepted by Parse")
	}
}
