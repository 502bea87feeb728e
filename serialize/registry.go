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
	"fmt"
	"reflect"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/typeinfo"
	"seehuhn.de/go/fixdoc/visual"
)

// Step is the result of one call to [Serializer.Next].
type Step struct {
	// Child, if non-nil, is written completely before the next call to
	// Next.
	Child any

	// Property is the property through which Child was reached, or nil.
	Property *typeinfo.PropertyContext

	// More is true if Next must be called again.
	More bool
}

// Serializer writes one kind of node.
//
// There is only one instance of every serializer per run, so serializers
// must keep all per-object state in the [ObjectContext].
type Serializer interface {
	// Begin starts writing oc.Object.
	Begin(c *Context, oc *ObjectContext) error

	// Next performs the next bounded unit of work for oc.Object.
	Next(c *Context, oc *ObjectContext) (Step, error)

	// End finishes writing oc.Object.  End is only called if Begin
	// succeeded.
	End(c *Context, oc *ObjectContext) error
}

// Names of the built-in serializers.
const (
	SequenceSerializer    = "sequence"
	DocumentSerializer    = "document"
	PageSerializer        = "page"
	PageContentSerializer = "page-content"
	VisualSerializer      = "visual"
	PaginatorSerializer   = "paginator"
	CollectionSerializer  = "collection"
	ObjectSerializer      = "object"
	TextSerializer        = "text"
)

// A rule selects a serializer for all types which match a predicate.
type rule struct {
	name  string
	match func(t reflect.Type) bool
}

// Registry maps types to serializers.
//
// A type is looked up in the following order: first the table of exact
// types, then visuals, paginators, types which can be converted to text,
// slices and arrays, and finally structs.  The first match wins.  Results
// are memoized, so that every type is resolved only once per run.
//
// Registry implements [typeinfo.Policy].
type Registry struct {
	exact map[reflect.Type]string
	named map[string]Serializer
	rules []rule
	memo  map[reflect.Type]string

	// Convert returns the converter for values of a type.  If this is nil,
	// [typeinfo.DefaultConverter] is used.
	Convert func(t reflect.Type) typeinfo.Converter
}

var _ typeinfo.Policy = (*Registry)(nil)

// NewRegistry returns a registry with the built-in serializers.
func NewRegistry() *Registry {
	r := &Registry{
		exact: map[reflect.Type]string{
			reflect.TypeFor[*fixdoc.Sequence](): SequenceSerializer,
			reflect.TypeFor[*fixdoc.Document](): DocumentSerializer,
			reflect.TypeFor[*fixdoc.Page]():     PageSerializer,
			reflect.TypeFor[pageContent]():      PageContentSerializer,
		},
		named: map[string]Serializer{
			SequenceSerializer:    sequenceSerializer{},
			DocumentSerializer:    documentSerializer{},
			PageSerializer:        pageSerializer{},
			PageContentSerializer: pageContentSerializer{},
			VisualSerializer:      visualSerializer{},
			PaginatorSerializer:   paginatorSerializer{},
			CollectionSerializer:  collectionSerializer{},
			ObjectSerializer:      objectSerializer{},
			TextSerializer:        textSerializer{},
		},
		memo: make(map[reflect.Type]string),
	}
	r.rules = []rule{
		{VisualSerializer, func(t reflect.Type) bool { return t.Implements(visualType) }},
		{PaginatorSerializer, func(t reflect.Type) bool { return t.Implements(paginatorType) }},
		{"", func(t reflect.Type) bool { return r.Converter(t) != nil }},
		{CollectionSerializer, isCollection},
		{ObjectSerializer, isStruct},
	}
	return r
}

// Register adds a serializer under the given name.  Struct fields can
// select the serializer using the tag option "serializer=name".
func (r *Registry) Register(name string, s Serializer) error {
	if name == "" || s == nil {
		return &fixdoc.InvalidArgumentError{Arg: "serializer"}
	}
	if _, exists := r.named[name]; exists {
		return fmt.Errorf("serializer %q already registered", name)
	}
	r.named[name] = s
	return nil
}

// RegisterType makes the named serializer handle values of exactly type t.
// This must be called before the first lookup of t.
func (r *Registry) RegisterType(t reflect.Type, name string) error {
	if t == nil {
		return &fixdoc.InvalidArgumentError{Arg: "type"}
	}
	if _, ok := r.named[name]; !ok {
		return fmt.Errorf("unknown serializer %q", name)
	}
	if _, seen := r.memo[t]; seen {
		return fmt.Errorf("type %s already resolved", t)
	}
	r.exact[t] = name
	return nil
}

// SerializerType implements the [typeinfo.Policy] interface.  The result is
// empty for types which are written as text.
func (r *Registry) SerializerType(t reflect.Type) string {
	if name, ok := r.memo[t]; ok {
		return name
	}
	name, ok := r.exact[t]
	if !ok {
		for _, rule := range r.rules {
			if rule.match(t) {
				name = rule.name
				break
			}
		}
	}
	r.memo[t] = name
	return name
}

// Converter implements the [typeinfo.Policy] interface.
func (r *Registry) Converter(t reflect.Type) typeinfo.Converter {
	if r.Convert != nil {
		return r.Convert(t)
	}
	return typeinfo.DefaultConverter(t)
}

// Lookup returns the serializer for values of type t, or nil if values of
// this type cannot be written.
func (r *Registry) Lookup(t reflect.Type) Serializer {
	if t == nil {
		return nil
	}
	name := r.SerializerType(t)
	if name == "" {
		if t.Kind() == reflect.Interface || r.Converter(t) == nil {
			return nil
		}
		name = TextSerializer
	}
	return r.named[name]
}

// Named returns the serializer registered under the given name, or nil.
func (r *Registry) Named(name string) Serializer {
	return r.named[name]
}

func isCollection(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

var (
	visualType    = reflect.TypeFor[visual.Visual]()
	paginatorType = reflect.TypeFor[fixdoc.Paginator]()
)
