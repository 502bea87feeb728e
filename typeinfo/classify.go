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

package typeinfo

import (
	"fmt"
	"reflect"
	"sort"

	"seehuhn.de/go/fixdoc"
)

// PropertyContext holds the value of one property of one object, during
// a single serialization pass.
type PropertyContext struct {
	// Desc is the cached descriptor of the property.
	Desc *Descriptor

	// Name is the property name.  For attached properties this is the map
	// key.
	Name string

	// Value is the current value.  Interface values are unwrapped.
	Value reflect.Value

	// Simple is true if the property is written as text.  In this case the
	// text is in Text.
	Simple bool
	Text   string

	// Serializer is the dedicated serializer for the value of a complex
	// property, if any.
	Serializer string
}

// IsInline reports whether the value of a complex property is written
// directly into the owner element.
func (p *PropertyContext) IsInline() bool {
	return p.Desc != nil && p.Desc.Flags&Inline != 0
}

// Classify reads the properties of obj and splits them into simple and
// complex properties.
//
// A property is simple if its value can be converted to text, no dedicated
// serializer is set, it is not marked as complex, and its value is not a
// non-empty string (non-empty strings are written as element content, to
// preserve white space).  All other properties are complex.
//
// Properties are omitted if they are read-only without being marked as
// content, if the value is nil, or if the value equals the declared default.
// Within both lists, properties appear in declaration order.  Attached
// properties are appended to the simple list, sorted by name.  An attached
// property which has the name of a declared property, or of an attached
// property from another map, is an error.
//
// Every call returns new PropertyContext values; the cached descriptors are
// not modified.
func Classify(c *Cache, obj any) (simple, complex []*PropertyContext, err error) {
	if obj == nil {
		return nil, nil, &fixdoc.InvalidArgumentError{Arg: "object"}
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, &fixdoc.InvalidArgumentError{Arg: "object", Reason: "nil pointer"}
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, nil
	}

	e, err := c.Resolve(v.Type())
	if err != nil {
		return nil, nil, err
	}
	props, err := e.Properties()
	if err != nil {
		return nil, nil, err
	}

	for _, d := range props {
		if d.ReadOnly && d.Visibility != Content {
			continue
		}

		val, ok := d.Get(v)
		if !ok || isAbsent(val) {
			continue
		}
		if d.HasDefault() && reflect.DeepEqual(val.Interface(), d.Default.Interface()) {
			continue
		}
		if val.Kind() == reflect.Interface {
			val = val.Elem()
		}

		p := &PropertyContext{
			Desc:  d,
			Name:  d.Name,
			Value: val,
		}

		conv := d.Converter
		p.Serializer = d.Serializer
		if d.Type.Kind() == reflect.Interface && p.Serializer == "" {
			dyn, err := c.Resolve(val.Type())
			if err != nil {
				return nil, nil, err
			}
			p.Serializer = dyn.Serializer
			conv = dyn.Converter
		}

		isText := val.Kind() == reflect.String && val.Len() > 0
		if conv != nil && p.Serializer == "" && !isText && d.Flags&ForceComplex == 0 {
			text, err := conv.Format(val)
			if err != nil {
				return nil, nil, fmt.Errorf("property %s: %w", d.Name, err)
			}
			p.Simple = true
			p.Text = text
			simple = append(simple, p)
		} else {
			complex = append(complex, p)
		}
	}

	attached, err := e.Attached()
	if err != nil {
		return nil, nil, err
	}
	var names map[string]bool
	if len(attached) > 0 {
		names = make(map[string]bool, len(props))
		for _, d := range props {
			names[d.Name] = true
		}
	}
	for _, d := range attached {
		val, ok := d.Get(v)
		if !ok || val.IsNil() {
			continue
		}
		keys := make([]string, 0, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
		sort.Strings(keys)
		for _, key := range keys {
			if names[key] {
				return nil, nil, &fixdoc.InvalidArgumentError{
					Arg:    "attached property " + key,
					Reason: "name already in use",
				}
			}
			names[key] = true
			text := val.MapIndex(reflect.ValueOf(key).Convert(val.Type().Key())).String()
			simple = append(simple, &PropertyContext{
				Desc:   d,
				Name:   key,
				Value:  reflect.ValueOf(text),
				Simple: true,
				Text:   text,
			})
		}
	}

	return simple, complex, nil
}

// isAbsent reports whether v holds no value which could be written.
func isAbsent(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	case reflect.Invalid:
		return true
	}
	return false
}
