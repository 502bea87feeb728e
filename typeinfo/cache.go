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

// Package typeinfo caches per-type serialization metadata.
//
// For every Go type encountered while writing a document, the [Cache] records
// which serializer handles the type, which [Converter] can turn values of
// the type into text, and which properties (exported struct fields) are
// written.  The information is computed once per type and reused for the
// rest of the run.
//
// Struct fields are configured using the "fixdoc" struct tag.  The tag value
// is a comma separated list of options:
//
//   - "-": the field is never written.
//   - "name=X": use X as the property name instead of the field name.
//   - "readonly": the property is read-only.  Read-only properties are only
//     written if they are also marked "content".
//   - "content": write the content of the property even if it is read-only.
//   - "complex": always write the property as a nested element.
//   - "inline": write the items (or the text) of the property directly
//     inside the owner element, without a property element.
//   - "attached": the field is a map[string]string of attached properties,
//     which are written as additional attributes.
//   - "serializer=S": use the serializer S for the property value.
//   - "default=V": the property is omitted if its value equals V.  The
//     value is parsed with the converter of the field type.  Since V may
//     contain commas, this must be the last option.
package typeinfo

import (
	"reflect"

	"seehuhn.de/go/fixdoc"
)

// Policy decides how values of a given type are written.
type Policy interface {
	// SerializerType returns the name of the serializer dedicated to
	// values of type t, or the empty string if there is none.
	SerializerType(t reflect.Type) string

	// Converter returns a converter for values of type t, or nil if values
	// of type t cannot be represented as text.
	Converter(t reflect.Type) Converter
}

// DefaultPolicy uses the built-in converters and knows no serializers.
type DefaultPolicy struct{}

// SerializerType implements the [Policy] interface.
func (DefaultPolicy) SerializerType(reflect.Type) string {
	return ""
}

// Converter implements the [Policy] interface.
func (DefaultPolicy) Converter(t reflect.Type) Converter {
	return DefaultConverter(t)
}

// Cache holds the metadata for all types seen during a serialization run.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	policy       Policy
	entries      map[reflect.Type]*Entry
	computations int
}

// NewCache creates an empty cache.  If p is nil, [DefaultPolicy] is used.
func NewCache(p Policy) *Cache {
	if p == nil {
		p = DefaultPolicy{}
	}
	return &Cache{
		policy:  p,
		entries: make(map[reflect.Type]*Entry),
	}
}

// Resolve returns the cache entry for type t.
// The entry is computed on the first call for a given type.
func (c *Cache) Resolve(t reflect.Type) (*Entry, error) {
	if t == nil {
		return nil, &fixdoc.InvalidArgumentError{Arg: "type"}
	}
	if e, ok := c.entries[t]; ok {
		return e, nil
	}

	c.computations++
	e := &Entry{
		Type:  t,
		cache: c,
	}
	e.Serializer = c.policy.SerializerType(t)
	if e.Serializer == "" {
		e.Converter = c.policy.Converter(t)
	}
	c.entries[t] = e
	return e, nil
}

// ResolveValue returns the cache entry for the dynamic type of obj.
func (c *Cache) ResolveValue(obj any) (*Entry, error) {
	if obj == nil {
		return nil, &fixdoc.InvalidArgumentError{Arg: "object"}
	}
	return c.Resolve(reflect.TypeOf(obj))
}

// Computations returns the number of times metadata was computed, either for
// a new cache entry or for the property lists of an entry.
func (c *Cache) Computations() int {
	return c.computations
}

// Len returns the number of types in the cache.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Entry holds the cached metadata for one type.
// Entries are immutable once their property lists have been computed.
type Entry struct {
	Type reflect.Type

	// Serializer is the name of the dedicated serializer for the type,
	// or the empty string.
	Serializer string

	// Converter is non-nil if values of the type can be written as text.
	// This is only set if there is no dedicated serializer.
	Converter Converter

	cache *Cache
	props *propertyLists
	err   error
}

type propertyLists struct {
	all      []*Descriptor
	simple   []*Descriptor
	complex  []*Descriptor
	attached []*Descriptor
}

// HasSerializer reports whether values of the type can be written, either
// by a dedicated serializer or as text.
func (e *Entry) HasSerializer() bool {
	return e.Serializer != "" || e.Converter != nil
}

// Properties returns the descriptors of all properties of the type, in the
// order of declaration.  Attached property maps are not included.
func (e *Entry) Properties() ([]*Descriptor, error) {
	if err := e.compute(); err != nil {
		return nil, err
	}
	return e.props.all, nil
}

// Simple returns the properties which can be written as text.  Whether a
// property is actually written as text also depends on its value, see
// [Classify].
func (e *Entry) Simple() ([]*Descriptor, error) {
	if err := e.compute(); err != nil {
		return nil, err
	}
	return e.props.simple, nil
}

// Complex returns the properties which are always written as nested
// elements.
func (e *Entry) Complex() ([]*Descriptor, error) {
	if err := e.compute(); err != nil {
		return nil, err
	}
	return e.props.complex, nil
}

// Attached returns the descriptors of the attached property maps.
func (e *Entry) Attached() ([]*Descriptor, error) {
	if err := e.compute(); err != nil {
		return nil, err
	}
	return e.props.attached, nil
}

func (e *Entry) compute() error {
	if e.props != nil || e.err != nil {
		return e.err
	}
	e.cache.computations++

	lists := &propertyLists{}
	t := e.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		pos := 0
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() {
				continue
			}
			if f.Anonymous && isStructLike(f.Type) {
				// promoted fields are listed separately
				continue
			}
			d, err := newDescriptor(e.cache.policy, f, pos)
			if err != nil {
				e.err = err
				return err
			}
			if d == nil {
				continue
			}
			pos++

			switch {
			case d.Flags&Attached != 0:
				lists.attached = append(lists.attached, d)
				continue
			case d.Serializer == "" && d.Converter != nil && d.Flags&ForceComplex == 0:
				lists.simple = append(lists.simple, d)
			default:
				lists.complex = append(lists.complex, d)
			}
			lists.all = append(lists.all, d)
		}
	}
	e.props = lists
	return nil
}

func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
