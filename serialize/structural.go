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

	"golang.org/x/text/language"

	"seehuhn.de/go/xmp"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/structure"
)

// pageContent is the list of content elements of a page.
type pageContent []any

type sequenceSerializer struct{}

func (sequenceSerializer) Begin(c *Context, oc *ObjectContext) error {
	seq, ok := oc.Object.(*fixdoc.Sequence)
	if !ok {
		return mismatch("*fixdoc.Sequence", oc.Object)
	}
	return c.Structure.OpenSequence(seq.PrintSetting, c.Structure.IsSynthesized(seq))
}

func (sequenceSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	seq := oc.Object.(*fixdoc.Sequence)
	for oc.index < len(seq.Documents) {
		doc := seq.Documents[oc.index]
		oc.index++
		if doc != nil {
			return Step{Child: doc, More: true}, nil
		}
	}
	return Step{}, nil
}

func (sequenceSerializer) End(c *Context, oc *ObjectContext) error {
	return c.Structure.CloseSequence()
}

type documentSerializer struct{}

func (documentSerializer) Begin(c *Context, oc *ObjectContext) error {
	doc, ok := oc.Object.(*fixdoc.Document)
	if !ok {
		return mismatch("*fixdoc.Document", oc.Object)
	}
	err := c.Structure.OpenDocument(doc.PrintSetting, c.Structure.IsSynthesized(doc))
	if err != nil {
		return err
	}
	c.docLang = doc.Language

	if doc.Title != "" || len(doc.Creators) > 0 || !doc.Created.IsZero() {
		packet, err := documentMetadata(doc)
		if err != nil {
			return err
		}
		err = c.Structure.DocumentWriter().SetMetadata(packet)
		if err != nil {
			return err
		}
	}

	w, err := c.Markup()
	if err != nil {
		return err
	}
	w.Lang(doc.Language)
	return w.Err()
}

func (documentSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	doc := oc.Object.(*fixdoc.Document)
	if doc.Paginator != nil {
		if oc.index > 0 {
			return Step{}, nil
		}
		oc.index++
		return Step{Child: doc.Paginator, More: true}, nil
	}
	for oc.index < len(doc.Pages) {
		page := doc.Pages[oc.index]
		oc.index++
		if page != nil {
			return Step{Child: page, More: true}, nil
		}
	}
	return Step{}, nil
}

func (documentSerializer) End(c *Context, oc *ObjectContext) error {
	c.docLang = language.Und
	return c.Structure.CloseDocument()
}

// documentMetadata converts the document information into an XMP packet.
func documentMetadata(doc *fixdoc.Document) (*xmp.Packet, error) {
	packet := xmp.NewPacket()

	dc := &xmp.DublinCore{}
	if doc.Title != "" {
		dc.Title.Set(doc.Language, doc.Title)
	}
	for _, name := range doc.Creators {
		dc.Creator.Append(xmp.NewProperName(name))
	}
	if err := packet.Set(dc); err != nil {
		return nil, err
	}

	if !doc.Created.IsZero() {
		basic := &xmp.Basic{CreateDate: xmp.NewDate(doc.Created)}
		if err := packet.Set(basic); err != nil {
			return nil, err
		}
	}
	return packet, nil
}

type pageSerializer struct{}

func (pageSerializer) Begin(c *Context, oc *ObjectContext) error {
	page, ok := oc.Object.(*fixdoc.Page)
	if !ok {
		return mismatch("*fixdoc.Page", oc.Object)
	}
	err := c.Structure.OpenPage(page.PrintSetting, c.Structure.IsSynthesized(page))
	if err != nil {
		return err
	}

	setting := c.Structure.Setting()
	box, err := c.Layout.Measure(page.Width, page.Height, setting)
	if err != nil {
		return err
	}

	lang := page.Language
	if lang == language.Und {
		lang = c.docLang
	}
	if lang == language.Und && setting != nil {
		lang = setting.Language
	}

	w, err := c.Markup()
	if err != nil {
		return err
	}
	w.Attr("Width", formatNumber(box.Dx()))
	w.Attr("Height", formatNumber(box.Dy()))
	w.Lang(lang)

	c.env = &pageEnv{c: c}
	return w.Err()
}

func (pageSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	page := oc.Object.(*fixdoc.Page)
	if oc.index > 0 || len(page.Children) == 0 {
		return Step{}, nil
	}
	oc.index++
	return Step{Child: pageContent(page.Children), More: true}, nil
}

func (pageSerializer) End(c *Context, oc *ObjectContext) error {
	env := c.env
	c.env = nil
	if env != nil {
		if err := env.releaseAll(); err != nil {
			return err
		}
	}
	return c.Structure.ClosePage()
}

// pageContentSerializer writes the content elements of a page.  Every
// element must have a serializer.
type pageContentSerializer struct{}

func (pageContentSerializer) Begin(c *Context, oc *ObjectContext) error {
	if _, ok := oc.Object.(pageContent); !ok {
		return mismatch("page content", oc.Object)
	}
	if c.Structure.Level() != structure.Page {
		return &fixdoc.StructuralError{Op: "write page content", Err: fixdoc.ErrNesting}
	}
	return nil
}

func (pageContentSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	content := oc.Object.(pageContent)
	for oc.index < len(content) {
		obj := content[oc.index]
		oc.index++
		if isNil(obj) {
			continue
		}
		if c.Registry.Lookup(reflect.TypeOf(obj)) == nil {
			return Step{}, &fixdoc.NoSerializerError{Type: reflect.TypeOf(obj)}
		}
		return Step{Child: obj, More: true}, nil
	}
	return Step{}, nil
}

func (pageContentSerializer) End(c *Context, oc *ObjectContext) error {
	return nil
}

type paginatorSerializer struct{}

func (paginatorSerializer) Begin(c *Context, oc *ObjectContext) error {
	if _, ok := oc.Object.(fixdoc.Paginator); !ok {
		return mismatch("fixdoc.Paginator", oc.Object)
	}
	if c.Structure.Level() != structure.Document {
		return &fixdoc.StructuralError{Op: "paginate", Err: fixdoc.ErrNesting}
	}
	return nil
}

// Next requests one page from the paginator.  Missing pages are skipped.
func (paginatorSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	pag := oc.Object.(fixdoc.Paginator)
	if pag.PageCountKnown() && oc.index >= pag.PageCount() {
		return Step{}, nil
	}
	page, err := pag.Page(oc.index)
	if err != nil {
		return Step{}, err
	}
	oc.index++
	if page == nil {
		return Step{More: true}, nil
	}
	return Step{Child: page, More: true}, nil
}

func (paginatorSerializer) End(c *Context, oc *ObjectContext) error {
	return nil
}

func mismatch(want string, obj any) error {
	return &fixdoc.TypeMismatchError{Want: want, Got: reflect.TypeOf(obj)}
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
