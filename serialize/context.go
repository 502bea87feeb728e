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

// Package serialize writes object graphs as paginated documents.
//
// The input is a tree of [fixdoc.Sequence], [fixdoc.Document] and
// [fixdoc.Page] objects, whose pages contain visuals (see the visual
// package) and arbitrary Go values.  Missing outer levels are synthesized,
// so that a single page or a single visual can be written directly.
//
// Every kind of node is handled by a [Serializer].  Serializers work in
// small steps: [Serializer.Begin] starts a node, every call to
// [Serializer.Next] does a bounded amount of work and possibly names a child
// node, and [Serializer.End] finishes the node.  The same steps are used in
// two ways: [Manager.Save] runs them recursively until the output is
// complete, while [Manager.SaveAsync] keeps the pending steps on an explicit
// stack and runs one of them per scheduler turn.  Both ways produce
// identical output.
package serialize

import (
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/layout"
	"seehuhn.de/go/fixdoc/markup"
	"seehuhn.de/go/fixdoc/structure"
	"seehuhn.de/go/fixdoc/typeinfo"
	"seehuhn.de/go/fixdoc/visual"
)

// Context holds the state of one serialization run.  All serializers of
// the run share the context.
type Context struct {
	Types     *typeinfo.Cache
	Registry  *Registry
	Structure *structure.Controller
	Layout    layout.Service
	Flattener visual.Flattener

	// free holds recycled object contexts
	free []*ObjectContext

	// active holds the pointer objects which are currently being written
	active map[any]bool

	docLang language.Tag
	env     *pageEnv
	title   cases.Caser
}

func newContext(reg *Registry, ctrl *structure.Controller, lay layout.Service, fl visual.Flattener) *Context {
	return &Context{
		Types:     typeinfo.NewCache(reg),
		Registry:  reg,
		Structure: ctrl,
		Layout:    lay,
		Flattener: fl,
		active:    make(map[any]bool),
		title:     cases.Title(language.Und, cases.NoLower),
	}
}

// ObjectContext tracks one object while it is being written.
//
// Object contexts are recycled once the object is finished.  Serializers
// must not keep references to an object context after End has been called.
type ObjectContext struct {
	// Object is the object being written.
	Object any

	// Parent is the context of the enclosing object, or nil for the root.
	Parent *ObjectContext

	// Property is the property through which the object was reached, or nil
	// if the object is an element of a collection or the root.
	Property *typeinfo.PropertyContext

	IsRoot bool

	// State is available to serializers outside this package.
	State any

	ser      Serializer
	name     string
	index    int
	props    []*typeinfo.PropertyContext
	items    reflect.Value
	walker   *visual.Walker
	propOpen bool
	tracked  bool
}

// Markup returns the markup writer of the innermost open structural level.
func (c *Context) Markup() (*markup.Writer, error) {
	w := c.Structure.Markup()
	if w == nil {
		return nil, &fixdoc.StructuralError{Op: "write markup", Err: fixdoc.ErrNesting}
	}
	return w, nil
}

// Serialize writes obj and everything below it, recursively.
func (c *Context) Serialize(obj any) error {
	return c.serialize(obj, nil, nil)
}

// SerializeProperty writes the value of the complex property p of the
// object described by owner, recursively.
func (c *Context) SerializeProperty(owner *ObjectContext, p *typeinfo.PropertyContext) error {
	if p == nil || !p.Value.IsValid() {
		return &fixdoc.InvalidArgumentError{Arg: "property"}
	}
	return c.serialize(p.Value.Interface(), owner, p)
}

func (c *Context) serialize(obj any, parent *ObjectContext, prop *typeinfo.PropertyContext) error {
	oc, err := c.begin(obj, parent, prop)
	if err != nil {
		return err
	}
	for {
		step, err := c.next(oc)
		if err != nil {
			return err
		}
		if step.Child != nil {
			err = c.serialize(step.Child, oc, step.Property)
			if err != nil {
				return err
			}
		}
		if !step.More {
			break
		}
	}
	return c.end(oc)
}

// begin finds the serializer for obj and starts writing the object.
func (c *Context) begin(obj any, parent *ObjectContext, prop *typeinfo.PropertyContext) (*ObjectContext, error) {
	if isNil(obj) {
		return nil, &fixdoc.InvalidArgumentError{Arg: "object"}
	}

	var ser Serializer
	if prop != nil && prop.Serializer != "" {
		ser = c.Registry.Named(prop.Serializer)
	} else {
		ser = c.Registry.Lookup(reflect.TypeOf(obj))
	}
	if ser == nil {
		return nil, &fixdoc.NoSerializerError{Type: reflect.TypeOf(obj)}
	}

	oc := c.newObjectContext()
	oc.Object = obj
	oc.Parent = parent
	oc.Property = prop
	oc.IsRoot = parent == nil
	oc.ser = ser

	if reflect.TypeOf(obj).Kind() == reflect.Pointer {
		if c.active[obj] {
			c.recycle(oc)
			return nil, &fixdoc.StructuralError{
				Op:  "write " + reflect.TypeOf(obj).String(),
				Err: fixdoc.ErrCycle,
			}
		}
		c.active[obj] = true
		oc.tracked = true
	}

	err := ser.Begin(c, oc)
	if err != nil {
		if oc.tracked {
			delete(c.active, obj)
		}
		c.recycle(oc)
		return nil, err
	}
	return oc, nil
}

func (c *Context) next(oc *ObjectContext) (Step, error) {
	return oc.ser.Next(c, oc)
}

// end finishes writing the object and recycles its context.
func (c *Context) end(oc *ObjectContext) error {
	err := oc.ser.End(c, oc)
	if oc.tracked {
		delete(c.active, oc.Object)
	}
	c.recycle(oc)
	return err
}

func (c *Context) newObjectContext() *ObjectContext {
	n := len(c.free)
	if n == 0 {
		return &ObjectContext{}
	}
	oc := c.free[n-1]
	c.free = c.free[:n-1]
	return oc
}

func (c *Context) recycle(oc *ObjectContext) {
	*oc = ObjectContext{}
	c.free = append(c.free, oc)
}

// reset discards all per-run state after an abort.
func (c *Context) reset() {
	c.free = nil
	clear(c.active)
	c.env = nil
	c.docLang = language.Und
}

// elementName returns the markup element name for values of type t.
func (c *Context) elementName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		name = t.Kind().String()
	}
	return c.title.String(name)
}

// isNil reports whether obj is nil or a nil pointer, map, slice or function.
func isNil(obj any) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
