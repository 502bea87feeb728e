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
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/markup"
	"seehuhn.de/go/fixdoc/resource"
)

type named struct {
	name     string
	children []Visual
}

func (n *named) VisualChildren() []Visual {
	return n.children
}

func TestWalkOrder(t *testing.T) {
	var nilNode *named
	tree := &named{name: "a", children: []Visual{
		&named{name: "b", children: []Visual{&named{name: "c"}}},
		nil,
		nilNode,
		&named{name: "d", children: []Visual{&named{name: "skipped"}}},
		&named{name: "e"},
	}}

	var trace []string
	err := Walk(tree,
		func(v Visual) (bool, error) {
			n := v.(*named)
			trace = append(trace, "+"+n.name)
			return n.name != "d", nil
		},
		func(v Visual) error {
			trace = append(trace, "-"+v.(*named).name)
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"+a", "+b", "+c", "-c", "-b", "+d", "-d", "+e", "-e", "-a"}
	if d := cmp.Diff(want, trace); d != "" {
		t.Errorf("wrong order (-want +got):\n%s", d)
	}
}

func TestWalkDeep(t *testing.T) {
	const depth = 200000
	var root Visual = &named{}
	for range depth {
		root = &named{children: []Visual{root}}
	}

	entered, left := 0, 0
	w := NewWalker(root,
		func(Visual) (bool, error) { entered++; return true, nil },
		func(Visual) error { left++; return nil })
	maxDepth := 0
	for {
		more, err := w.Step()
		if err != nil {
			t.Fatal(err)
		}
		maxDepth = max(maxDepth, w.Depth())
		if !more {
			break
		}
	}
	if entered != depth+1 || left != depth+1 || maxDepth != depth+1 {
		t.Errorf("entered %d, left %d, max depth %d", entered, left, maxDepth)
	}
}

func TestWalkError(t *testing.T) {
	errStop := errors.New("stop")
	tree := &named{name: "a", children: []Visual{&named{name: "b"}, &named{name: "c"}}}
	var trace []string
	err := Walk(tree,
		func(v Visual) (bool, error) {
			n := v.(*named)
			if n.name == "c" {
				return false, errStop
			}
			trace = append(trace, n.name)
			return true, nil
		}, nil)
	if !errors.Is(err, errStop) {
		t.Errorf("got %v, want errStop", err)
	}
	if d := cmp.Diff([]string{"a", "b"}, trace); d != "" {
		t.Errorf("trace (-want +got):\n%s", d)
	}
}

func TestWalkNilRoot(t *testing.T) {
	called := false
	err := Walk(nil, func(Visual) (bool, error) { called = true; return true, nil }, nil)
	if err != nil || called {
		t.Error("nil root was visited")
	}
}

type testEnv struct {
	w        *markup.Writer
	acquired map[string]int
	shared   map[string]bool
}

func newTestEnv() (*testEnv, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &testEnv{
		w:        markup.NewWriter(buf, ""),
		acquired: make(map[string]int),
		shared:   make(map[string]bool),
	}, buf
}

func (e *testEnv) Markup() *markup.Writer {
	return e.w
}

type bufStream struct {
	bytes.Buffer
	uri string
}

func (s *bufStream) URI() string  { return s.uri }
func (s *bufStream) Close() error { return nil }
func (s *bufStream) Abort()       {}

func (e *testEnv) Acquire(kind resource.Kind, id string) (*resource.Handle, error) {
	key := fmt.Sprintf("/%s/%s", kind, id)
	e.acquired[key]++
	h := &resource.Handle{Kind: kind, ID: id, URI: key}
	if !e.shared[key] {
		e.shared[key] = true
		h.Stream = &bufStream{uri: key}
	}
	return h, nil
}

func (e *testEnv) Release(kind resource.Kind, id string) error {
	key := fmt.Sprintf("/%s/%s", kind, id)
	if e.acquired[key] == 0 {
		return errors.New("not acquired")
	}
	e.acquired[key]--
	return nil
}

func flatten(env Env, f Flattener, root Visual) error {
	return Walk(root,
		func(v Visual) (bool, error) { return f.Enter(env, v) },
		func(v Visual) error { return f.Leave(env, v) })
}

func TestMarkupFlattener(t *testing.T) {
	font := &resource.FontData{ID: "body", Data: goregular.TTF}
	tree := &Group{
		Transform:    matrix.Translate(10, 20),
		Transparency: 0.25,
		Clip:         &rect.Rect{URx: 100, URy: 50},
		Items: []Visual{
			&Shape{
				Outline:     []vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
				Fill:        "#FF0000",
				Stroke:      "#000000",
				StrokeWidth: 0.5,
			},
			&Text{Font: font, Size: 12, Origin: vec.Vec2{X: 1, Y: 2}, Text: "Hi", Language: language.English},
			&Text{Font: font, Size: 12, Text: "again"},
			&named{},
		},
	}

	env, buf := newTestEnv()
	env.w.Start("FixedPage")
	err := flatten(env, MarkupFlattener{}, tree)
	if err != nil {
		t.Fatal(err)
	}
	env.w.End()
	if err := env.w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := `<FixedPage>` +
		`<Canvas RenderTransform="1,0,0,1,10,20" Opacity="0.75" Clip="M 0,0 L 100,0 L 100,50 L 0,50 Z">` +
		`<Path Data="M 0,0 L 10,0 L 10,10 Z" Fill="#FF0000" Stroke="#000000" StrokeThickness="0.5"></Path>` +
		`<Glyphs FontUri="/Font/body" FontRenderingEmSize="12" OriginX="1" OriginY="2" UnicodeString="Hi" xml:lang="en"></Glyphs>` +
		`<Glyphs FontUri="/Font/body" FontRenderingEmSize="12" OriginX="0" OriginY="0" UnicodeString="again"></Glyphs>` +
		`<Canvas></Canvas>` +
		`</Canvas></FixedPage>`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("markup (-want +got):\n%s", d)
	}
	if env.acquired["/Font/body"] != 2 {
		t.Errorf("font acquired %d times, want 2", env.acquired["/Font/body"])
	}
}

func TestSingleUsePicture(t *testing.T) {
	pic := &Picture{
		Image:  &resource.ImageData{ID: "photo", Data: []byte("image"), SingleUse: true},
		Bounds: rect.Rect{LLx: 10, LLy: 10, URx: 110, URy: 60},
	}
	env, buf := newTestEnv()
	if err := flatten(env, MarkupFlattener{}, pic); err != nil {
		t.Fatal(err)
	}
	if err := env.w.Flush(); err != nil {
		t.Fatal(err)
	}
	if env.acquired["/Image/"] != 0 {
		t.Error("single use image not released")
	}
	want := `<Path Data="M 10,10 L 110,10 L 110,60 L 10,60 Z">` +
		`<Path.Fill><ImageBrush ImageSource="/Image/" Viewport="10,10,100,50"></ImageBrush></Path.Fill>` +
		`</Path>`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("markup (-want +got):\n%s", d)
	}
}

func TestMissingFont(t *testing.T) {
	env, _ := newTestEnv()
	err := flatten(env, MarkupFlattener{}, &Text{Text: "x"})
	if err == nil {
		t.Error("text without font accepted")
	}
}

func TestInvalidProfile(t *testing.T) {
	pic := &Picture{
		Image:   &resource.ImageData{ID: "photo", Data: []byte("image")},
		Profile: &resource.ProfileData{ID: "bad.icc", Data: []byte("not an icc profile")},
		Bounds:  rect.Rect{URx: 10, URy: 10},
	}
	env, _ := newTestEnv()
	err := flatten(env, MarkupFlattener{}, pic)
	var argErr *fixdoc.InvalidArgumentError
	if !errors.As(err, &argErr) || argErr.Arg != "Picture.Profile" {
		t.Fatalf("got %v, want invalid profile error", err)
	}
	if argErr.Err == nil {
		t.Error("decoding error not wrapped")
	}
	if env.acquired["/ColorProfile/bad.icc"] != 0 {
		t.Error("invalid profile was acquired")
	}
}
