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

package layout

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/fixdoc/ticket"
)

func TestMeasure(t *testing.T) {
	landscape := &ticket.Ticket{Orientation: ticket.Landscape}
	a5 := &ticket.Ticket{PageWidth: A5.Dx(), PageHeight: A5.Dy()}
	a5Landscape := &ticket.Ticket{PageWidth: A5.Dx(), PageHeight: A5.Dy(), Orientation: ticket.Landscape}

	cases := []struct {
		w, h    float64
		setting *ticket.Ticket
		want    rect.Rect
	}{
		{0, 0, nil, rect.Rect{URx: 816, URy: 1056}},
		{100, 200, nil, rect.Rect{URx: 100, URy: 200}},
		{100, 200, landscape, rect.Rect{URx: 100, URy: 200}},
		{0, 0, landscape, rect.Rect{URx: 1056, URy: 816}},
		{-5, 300, nil, rect.Rect{URx: 816, URy: 1056}},
		{math.NaN(), 300, nil, rect.Rect{URx: 816, URy: 1056}},
		{math.Inf(1), 300, nil, rect.Rect{URx: 816, URy: 1056}},
		{0, 0, a5, rect.Rect{URx: A5.Dx(), URy: A5.Dy()}},
		{0, 0, a5Landscape, rect.Rect{URx: A5.Dy(), URy: A5.Dx()}},
	}
	for i, tc := range cases {
		got, err := Default{}.Measure(tc.w, tc.h, tc.setting)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("%d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestFallback(t *testing.T) {
	got, _ := Default{Fallback: A4}.Measure(0, 0, nil)
	if got.Dx() != A4.Dx() || got.Dy() != A4.Dy() {
		t.Errorf("got %v, want A4", got)
	}
}
