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

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/typeinfo"
	"seehuhn.de/go/fixdoc/visual"
)

// objectSerializer writes a struct as an element named after its type.
// Simple properties become attributes, complex properties become property
// elements of the form "Owner.Property".
type objectSerializer struct{}

func (objectSerializer) Begin(c *Context, oc *ObjectContext) error {
	if !isStruct(reflect.TypeOf(oc.Object)) {
		return mismatch("struct", oc.Object)
	}
	simple, complex, err := typeinfo.Classify(c.Types, oc.Object)
	if err != nil {
		return err
	}
	w, err := c.Markup()
	if err != nil {
		return err
	}

	oc.name = c.elementName(reflect.TypeOf(oc.Object))
	oc.props = complex
	w.Start(oc.name)
	for _, p := range simple {
		w.Attr(p.Name, p.Text)
	}
	return w.Err()
}

func (objectSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	w, err := c.Markup()
	if err != nil {
		return Step{}, err
	}
	if oc.propOpen {
		w.End()
		oc.propOpen = false
	}
	if oc.index >= len(oc.props) {
		return Step{}, w.Err()
	}

	p := oc.props[oc.index]
	oc.index++

	// non-empty strings are written as element content
	if p.Serializer == "" && p.Value.Kind() == reflect.String {
		if p.IsInline() {
			w.Text(p.Value.String())
		} else {
			w.Start(oc.name + "." + p.Name)
			w.Text(p.Value.String())
			w.End()
		}
		return Step{More: true}, w.Err()
	}

	if !p.IsInline() {
		w.Start(oc.name + "." + p.Name)
		oc.propOpen = true
	}
	return Step{Child: p.Value.Interface(), Property: p, More: true}, w.Err()
}

func (objectSerializer) End(c *Context, oc *ObjectContext) error {
	w, err := c.Markup()
	if err != nil {
		return err
	}
	if oc.propOpen {
		w.End()
		oc.propOpen = false
	}
	w.End()
	return w.Err()
}

// collectionSerializer writes the elements of a slice or array, without an
// element of its own.  Elements which cannot be written are skipped.
type collectionSerializer struct{}

func (collectionSerializer) Begin(c *Context, oc *ObjectContext) error {
	v := reflect.ValueOf(oc.Object)
	if !isCollection(v.Type()) {
		return mismatch("slice or array", oc.Object)
	}
	oc.items = v
	return nil
}

func (collectionSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	for oc.index < oc.items.Len() {
		item := oc.items.Index(oc.index)
		oc.index++
		if item.Kind() == reflect.Interface {
			item = item.Elem()
		}
		if !item.IsValid() || isNil(item.Interface()) {
			continue
		}
		if c.Registry.Lookup(item.Type()) == nil {
			continue
		}
		return Step{Child: item.Interface(), More: true}, nil
	}
	return Step{}, nil
}

func (collectionSerializer) End(c *Context, oc *ObjectContext) error {
	return nil
}

// textSerializer writes values which can be converted to text.  Values
// reached through a property are written as the content of the property
// element, all other values are wrapped in an element named after their
// type.
type textSerializer struct{}

func (textSerializer) Begin(c *Context, oc *ObjectContext) error {
	v := reflect.ValueOf(oc.Object)
	conv := c.Registry.Converter(v.Type())
	if conv == nil {
		return &fixdoc.NoSerializerError{Type: v.Type()}
	}
	text, err := conv.Format(v)
	if err != nil {
		return err
	}

	w, err := c.Markup()
	if err != nil {
		return err
	}
	if oc.Property != nil {
		w.Text(text)
	} else {
		w.Start(c.elementName(v.Type()))
		w.Text(text)
		w.End()
	}
	return w.Err()
}

func (textSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	return Step{}, nil
}

func (textSerializer) End(c *Context, oc *ObjectContext) error {
	return nil
}

// visualSerializer walks a visual tree and passes every node to the
// flattener.  Every call to Next visits or leaves one node.
type visualSerializer struct{}

func (visualSerializer) Begin(c *Context, oc *ObjectContext) error {
	root, ok := oc.Object.(visual.Visual)
	if !ok {
		return mismatch("visual.Visual", oc.Object)
	}
	env := c.env
	if env == nil {
		return &fixdoc.StructuralError{Op: "write visual", Err: fixdoc.ErrNesting}
	}

	fl := c.Flattener
	enter := func(v visual.Visual) (bool, error) {
		return fl.Enter(env, v)
	}
	leave := func(v visual.Visual) error {
		return fl.Leave(env, v)
	}
	oc.walker = visual.NewWalker(root, enter, leave)
	return nil
}

func (visualSerializer) Next(c *Context, oc *ObjectContext) (Step, error) {
	more, err := oc.walker.Step()
	if err != nil {
		return Step{}, err
	}
	return Step{More: more}, nil
}

func (visualSerializer) End(c *Context, oc *ObjectContext) error {
	return nil
}
