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

package serialize

import (
	"reflect"
	"strconv"
	"testing"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/container"
	"seehuhn.de/go/fixdoc/container/memory"
	"seehuhn.de/go/fixdoc/visual"
)

type stamp struct {
	Serial int
}

type testPaginator []*fixdoc.Page

func (p testPaginator) PageCountKnown() bool { return true }
func (p testPaginator) PageCount() int       { return len(p) }
func (p testPaginator) Page(i int) (*fixdoc.Page, error) {
	return p[i], nil
}

func TestLookup(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		val  any
		want string
	}{
		{&fixdoc.Sequence{}, SequenceSerializer},
		{&fixdoc.Document{}, DocumentSerializer},
		{&fixdoc.Page{}, PageSerializer},
		{pageContent{}, PageContentSerializer},
		{&visual.Group{}, VisualSerializer},
		{testPaginator{}, PaginatorSerializer},
		{fixdoc.PageList{}, PaginatorSerializer},
		{rect.Rect{}, TextSerializer},
		{"text", TextSerializer},
		{3.5, TextSerializer},
		{[]int{1}, CollectionSerializer},
		{[2]string{}, CollectionSerializer},
		{stamp{}, ObjectSerializer},
		{&stamp{}, ObjectSerializer},
		{make(chan int), ""},
		{func() {}, ""},
	}
	for _, tc := range cases {
		tp := reflect.TypeOf(tc.val)
		got := r.Lookup(tp)
		want := r.Named(tc.want)
		if got != want {
			t.Errorf("%s: got %T, want %T", tp, got, want)
		}
	}

	// types written as text have no dedicated serializer
	if name := r.SerializerType(reflect.TypeFor[rect.Rect]()); name != "" {
		t.Errorf("rect.Rect has serializer %q", name)
	}
}

// stampSerializer writes a stamp as an empty element.
type stampSerializer struct{}

func (stampSerializer) Begin(c *Context, oc *ObjectContext) error {
	s, ok := oc.Object.(*stamp)
	if !ok {
		return mismatch("*stamp", oc.Object)
	}
	w, err := c.Markup()
	if err != nil {
		return err
	}
	w.Start("Stamp")
	w.Attr("No", strconv.Itoa(s.Serial))
	return w.Err()
}

func (stampSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	return Step{}, nil
}

func (stampSerializer) End(c *Context, oc *ObjectContext) error {
	w, err := c.Markup()
	if err != nil {
		return err
	}
	w.End()
	return w.Err()
}

func TestRegisterType(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("stamp", stampSerializer{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("stamp", stampSerializer{}); err == nil {
		t.Error("duplicate registration succeeded")
	}
	tp := reflect.TypeFor[*stamp]()
	if err := r.RegisterType(tp, "stamp"); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterType(reflect.TypeFor[int](), "missing"); err == nil {
		t.Error("unknown serializer accepted")
	}

	store := memory.New()
	m := NewManager(container.New(store), &Options{Registry: r})
	page := &fixdoc.Page{Width: 10, Height: 10, Children: []any{&stamp{Serial: 7}}}
	if err := m.Save(page); err != nil {
		t.Fatal(err)
	}
	want := `<FixedPage xmlns="http://schemas.microsoft.com/xps/2005/06" Width="10" Height="10">` +
		`<Stamp No="7"></Stamp></FixedPage>`
	got := string(store.Part("/Documents/1/Pages/1.fpage").Data)
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}

	if err := r.RegisterType(tp, ObjectSerializer); err == nil {
		t.Error("type registered after lookup")
	}
}

func TestObjectContextRecycling(t *testing.T) {
	store := memory.New()
	m := NewManager(container.New(store), nil)
	page := &fixdoc.Page{Children: []any{&stamp{1}, &stamp{2}, &stamp{3}}}
	if err := m.Save(page); err != nil {
		t.Fatal(err)
	}

	c := m.Context()
	if len(c.free) == 0 {
		t.Fatal("no contexts were recycled")
	}
	// sequence, document, page, page content and one stamp are open at
	// the same time
	if len(c.free) > 5 {
		t.Errorf("%d contexts allocated, want at most 5", len(c.free))
	}
	for _, oc := range c.free {
		if oc.Object != nil || oc.Parent != nil || oc.ser != nil || oc.props != nil {
			t.Error("recycled context keeps references")
		}
	}
	if len(c.active) != 0 {
		t.Errorf("%d objects still marked as active", len(c.active))
	}
}

func TestPanicInFrame(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("panic", panicSerializer{}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterType(reflect.TypeFor[*stamp](), "panic"); err != nil {
		t.Fatal(err)
	}

	store := memory.New()
	m := NewManager(container.New(store), &Options{Registry: r})
	err := m.SaveAsync(&fixdoc.Page{Children: []any{&stamp{}}})
	if err != nil {
		t.Fatal(err)
	}
	for m.PopAndRun() {
	}
	res, done := m.Result()
	if !done || res.Err == nil {
		t.Fatal("panic not reported")
	}
	if !store.IsAborted() {
		t.Error("output not aborted")
	}
}

type panicSerializer struct{ stampSerializer }

func (panicSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	panic("broken serializer")
}
