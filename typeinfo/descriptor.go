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
	"strings"
)

// Visibility controls whether and how a property is written.
type Visibility int

// These are the supported visibility classes.
const (
	// Visible properties are written if they are not read-only.
	Visible Visibility = iota

	// Hidden properties are never written.
	Hidden

	// Content properties are written even if they are read-only.
	Content
)

// Flags are serialization options for a property.
type Flags uint8

// These are the supported flags.
const (
	// ForceComplex makes the property a complex property, even if its
	// value could be written as text.
	ForceComplex Flags = 1 << iota

	// Inline causes the value of a complex property to be written directly
	// into the owner element, without a property element.
	Inline

	// Attached marks a map of attached properties.
	Attached
)

// Descriptor describes one property of a struct type.
//
// Descriptors are part of the type cache and are shared between all objects
// of the type.  They are never modified after creation; the current value
// of a property is kept in a separate [PropertyContext].
type Descriptor struct {
	// Name is the property name used in the output.
	Name string

	// Pos is the position of the property in declaration order.
	Pos int

	// Index is the field index sequence, for use with
	// reflect.Value.FieldByIndex.
	Index []int

	// Type is the static type of the field.
	Type reflect.Type

	Visibility Visibility
	ReadOnly   bool

	// Serializer is the name of a dedicated serializer for the property
	// value, or the empty string.
	Serializer string

	// Converter can turn the field value into text.  This is nil if the
	// property has a dedicated serializer or if the field type cannot be
	// represented as text.
	Converter Converter

	// Default, if valid, is the default value of the property.
	Default reflect.Value

	Flags Flags
}

// HasDefault reports whether the property has a default value annotation.
func (d *Descriptor) HasDefault() bool {
	return d.Default.IsValid()
}

// Get reads the property from the struct value v.
// The second return value is false if the field cannot be reached because
// of a nil embedded pointer.
func (d *Descriptor) Get(v reflect.Value) (reflect.Value, bool) {
	f, err := v.FieldByIndexErr(d.Index)
	if err != nil {
		return reflect.Value{}, false
	}
	return f, true
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Type)
}

// newDescriptor creates the descriptor for a struct field.
// The function returns nil if the field is hidden.
func newDescriptor(p Policy, f reflect.StructField, pos int) (*Descriptor, error) {
	d := &Descriptor{
		Name:  f.Name,
		Pos:   pos,
		Index: f.Index,
		Type:  f.Type,
	}

	tag := f.Tag.Get("fixdoc")
	if tag == "-" {
		return nil, nil
	}
	var defaultText string
	hasDefault := false
	for tag != "" {
		var opt string
		if strings.HasPrefix(tag, "default=") {
			opt, tag = tag, ""
		} else {
			opt, tag, _ = strings.Cut(tag, ",")
		}

		key, val, _ := strings.Cut(opt, "=")
		switch key {
		case "":
			// pass
		case "name":
			d.Name = val
		case "readonly":
			d.ReadOnly = true
		case "content":
			d.Visibility = Content
		case "complex":
			d.Flags |= ForceComplex
		case "inline":
			d.Flags |= Inline
		case "attached":
			d.Flags |= Attached
		case "serializer":
			d.Serializer = val
		case "default":
			defaultText = val
			hasDefault = true
		default:
			return nil, fmt.Errorf("field %s: unknown fixdoc tag option %q", f.Name, key)
		}
	}

	if d.Flags&Attached != 0 {
		if f.Type.Kind() != reflect.Map ||
			f.Type.Key().Kind() != reflect.String ||
			f.Type.Elem().Kind() != reflect.String {
			return nil, fmt.Errorf("field %s: attached properties must be map[string]string", f.Name)
		}
		return d, nil
	}

	if d.Serializer == "" {
		d.Serializer = p.SerializerType(f.Type)
	}
	if d.Serializer == "" {
		d.Converter = p.Converter(f.Type)
	}

	if hasDefault {
		conv := d.Converter
		if conv == nil {
			conv = p.Converter(f.Type)
		}
		if conv == nil {
			return nil, fmt.Errorf("field %s: default value for type %s without converter",
				f.Name, f.Type)
		}
		def, err := conv.Parse(defaultText, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid default %q: %w", f.Name, defaultText, err)
		}
		d.Default = def
	}

	return d, nil
}
