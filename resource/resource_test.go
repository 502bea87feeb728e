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

package resource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/icc"
)

type testStore struct {
	created   []string
	committed []string
	aborted   []string
	next      int
}

func (s *testStore) CreateResource(kind Kind, id string) (Stream, error) {
	s.next++
	uri := fmt.Sprintf("/%s/%d-%s", kind, s.next, id)
	s.created = append(s.created, uri)
	return &testStream{store: s, uri: uri}, nil
}

type testStream struct {
	bytes.Buffer
	store *testStore
	uri   string
}

func (s *testStream) URI() string { return s.uri }

func (s *testStream) Close() error {
	s.store.committed = append(s.store.committed, s.uri)
	return nil
}

func (s *testStream) Abort() {
	s.store.aborted = append(s.store.aborted, s.uri)
}

func newTestManager(t *testing.T) (*Manager, *testStore) {
	t.Helper()
	store := &testStore{}
	m := NewManager(store)
	if err := m.BeginDocument(); err != nil {
		t.Fatal(err)
	}
	if err := m.BeginPage(); err != nil {
		t.Fatal(err)
	}
	return m, store
}

func TestRefCount(t *testing.T) {
	m, store := newTestManager(t)

	h1, err := m.Acquire(Font, "font-1")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := m.Acquire(Font, "font-1")
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Error("second acquisition returned a different handle")
	}
	if h1.RefCount() != 2 {
		t.Errorf("ref count %d, want 2", h1.RefCount())
	}

	if err := m.Release(Font, "font-1"); err != nil {
		t.Fatal(err)
	}
	if m.RefCount(Font, "font-1") != 1 {
		t.Errorf("ref count %d after one release, want 1", m.RefCount(Font, "font-1"))
	}
	if len(store.committed) != 0 {
		t.Error("stream returned to store too early")
	}

	if err := m.Release(Font, "font-1"); err != nil {
		t.Fatal(err)
	}
	if m.RefCount(Font, "font-1") != 0 {
		t.Error("handle still live after second release")
	}
	if d := cmp.Diff([]string{h1.URI}, store.committed); d != "" {
		t.Errorf("committed streams (-want +got):\n%s", d)
	}

	if err := m.EndPage(); err != nil {
		t.Error(err)
	}
}

func TestWriteDataOnce(t *testing.T) {
	m, _ := newTestManager(t)

	data := []byte("font data")
	for range 2 {
		h, err := m.Acquire(Font, "font-1")
		if err != nil {
			t.Fatal(err)
		}
		if err := h.WriteData(data); err != nil {
			t.Fatal(err)
		}
	}
	h, _ := m.Acquire(Font, "font-1")
	stm := h.Stream.(*testStream)
	if stm.Len() != len(data) {
		t.Errorf("stream holds %d bytes, want %d", stm.Len(), len(data))
	}

	for range 3 {
		if err := m.Release(Font, "font-1"); err != nil {
			t.Fatal(err)
		}
	}
	if d := cmp.Diff([]string{h.URI}, m.Committed()); d != "" {
		t.Errorf("committed resources (-want +got):\n%s", d)
	}

	// later pages of the document share the resource and write nothing
	_ = m.EndPage()
	_ = m.BeginPage()
	h2, _ := m.Acquire(Font, "font-1")
	if !h2.IsShared() {
		t.Fatal("resource not shared")
	}
	if err := h2.WriteData(data); err != nil {
		t.Error(err)
	}
	_ = m.Release(Font, "font-1")
}

func TestReleaseNotAcquired(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.Release(Image, "img")
	if !fixdoc.IsStructural(err, fixdoc.ErrNotAcquired) {
		t.Errorf("got %v, want not acquired error", err)
	}
}

func TestModeMixing(t *testing.T) {
	m, _ := newTestManager(t)

	if _, err := m.Acquire(Image, ""); err != nil {
		t.Fatal(err)
	}
	_, err := m.Acquire(Image, "photo")
	if !fixdoc.IsStructural(err, fixdoc.ErrAcquireMode) {
		t.Errorf("got %v, want acquire mode error", err)
	}

	// different kinds are independent
	if _, err := m.Acquire(Font, "f"); err != nil {
		t.Error(err)
	}
	if m.Mode(Image) != Single || m.Mode(Font) != Multiple {
		t.Errorf("modes are %s and %s", m.Mode(Image), m.Mode(Font))
	}

	// the mode is reset for the next page
	if err := m.Release(Image, ""); err != nil {
		t.Fatal(err)
	}
	if err := m.Release(Font, "f"); err != nil {
		t.Fatal(err)
	}
	if err := m.EndPage(); err != nil {
		t.Fatal(err)
	}
	if err := m.BeginPage(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Acquire(Image, "photo"); err != nil {
		t.Error(err)
	}
}

func TestSingleMode(t *testing.T) {
	m, store := newTestManager(t)

	h1, _ := m.Acquire(ColorProfile, "")
	h2, _ := m.Acquire(ColorProfile, "")
	if h1 != h2 || h1.RefCount() != 2 || h1.ID != "" {
		t.Fatalf("unexpected handle %+v", h1)
	}
	_ = m.Release(ColorProfile, "")
	_ = m.Release(ColorProfile, "")

	// a new single resource gets a new stream
	h3, _ := m.Acquire(ColorProfile, "")
	if h3.IsShared() || h3.URI == h1.URI {
		t.Error("single mode resource was shared")
	}
	_ = m.Release(ColorProfile, "")

	if len(store.committed) != 2 {
		t.Errorf("%d streams committed, want 2", len(store.committed))
	}
}

func TestUnreleased(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Acquire(Font, "f"); err != nil {
		t.Fatal(err)
	}
	err := m.EndPage()
	if !fixdoc.IsStructural(err, fixdoc.ErrUnreleased) {
		t.Errorf("got %v, want unreleased error", err)
	}
}

func TestSharing(t *testing.T) {
	m, store := newTestManager(t)

	h, _ := m.Acquire(Font, "Café")
	if h.IsShared() {
		t.Fatal("first use is shared")
	}
	_ = m.Release(Font, "Café")
	_ = m.EndPage()

	// second page of the same document
	_ = m.BeginPage()
	h2, err := m.Acquire(Font, "Café")
	if err != nil {
		t.Fatal(err)
	}
	if !h2.IsShared() || h2.URI != h.URI {
		t.Errorf("resource not shared: %+v", h2)
	}
	_ = m.Release(Font, "Café")
	_ = m.EndPage()
	if len(store.created) != 1 {
		t.Errorf("%d streams created, want 1", len(store.created))
	}

	// a new document starts afresh
	_ = m.EndDocument()
	_ = m.BeginDocument()
	_ = m.BeginPage()
	h3, _ := m.Acquire(Font, "Café")
	if h3.IsShared() {
		t.Error("resource shared across documents")
	}
}

func TestAbort(t *testing.T) {
	m, store := newTestManager(t)
	h, _ := m.Acquire(Image, "a")
	m.Abort()
	if d := cmp.Diff([]string{h.URI}, store.aborted); d != "" {
		t.Errorf("aborted streams (-want +got):\n%s", d)
	}
	if _, err := m.Acquire(Image, "b"); err == nil {
		t.Error("closed manager accepted a new acquisition")
	}
}

func TestAcquireOutsidePage(t *testing.T) {
	m := NewManager(&testStore{})
	_, err := m.Acquire(Font, "x")
	if !fixdoc.IsStructural(err, fixdoc.ErrNesting) {
		t.Errorf("got %v, want nesting error", err)
	}

	_, err = m.Acquire(Kind(0), "x")
	var argErr *fixdoc.InvalidArgumentError
	if !errors.As(err, &argErr) {
		t.Errorf("got %v, want invalid argument", err)
	}
}

func TestFontInfo(t *testing.T) {
	f := &FontData{Data: goregular.TTF}
	info, err := f.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Name == "" || info.Family != "Go" || info.Ext != ".ttf" {
		t.Errorf("unexpected font info %+v", info)
	}
	if f.Key() != info.Name+".ttf" {
		t.Errorf("key %q", f.Key())
	}

	bad := &FontData{Data: []byte("not a font")}
	if _, err := bad.Info(); err == nil {
		t.Error("invalid font accepted")
	}
	if k := bad.Key(); len(k) != 16 {
		t.Errorf("content key %q", k)
	}
}

func TestImageInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	err := png.Encode(buf, image.NewGray(image.Rect(0, 0, 3, 2)))
	if err != nil {
		t.Fatal(err)
	}
	img := &ImageData{Data: buf.Bytes()}
	info, err := img.Info()
	if err != nil {
		t.Fatal(err)
	}
	want := &ImageInfo{Format: "png", Width: 3, Height: 2}
	if d := cmp.Diff(want, info); d != "" {
		t.Errorf("image info (-want +got):\n%s", d)
	}

	k1 := img.Key()
	k2 := (&ImageData{Data: bytes.Clone(buf.Bytes())}).Key()
	if k1 != k2 || len(k1) != 20 {
		t.Errorf("keys %q and %q", k1, k2)
	}
}

func TestProfileInfo(t *testing.T) {
	for _, data := range [][]byte{icc.SRGBv2Profile, icc.SRGBv4Profile} {
		p := &ProfileData{Data: data}
		info, err := p.Info()
		if err != nil {
			t.Fatal(err)
		}
		if info.Space != "RGB" || info.Components != 3 {
			t.Errorf("unexpected profile info %+v", info)
		}
	}

	p := &ProfileData{ID: "sRGB", Data: icc.SRGBv4Profile}
	if p.Key() != "sRGB" {
		t.Errorf("key %q", p.Key())
	}
	if _, err := (&ProfileData{Data: []byte{1, 2, 3}}).Info(); err == nil {
		t.Error("invalid profile accepted")
	}
}
