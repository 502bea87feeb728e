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
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Converter turns values of a type into text and back.
//
// A converter must be lossless: parsing the result of Format must give a
// value equal to the original one.
type Converter interface {
	// Format converts v to text.
	Format(v reflect.Value) (string, error)

	// Parse converts text to a value of type t.
	Parse(s string, t reflect.Type) (reflect.Value, error)
}

// DefaultConverter returns the built-in converter for type t, or nil if
// values of type t cannot be represented as text.
//
// Built-in converters exist for booleans, integers, floating point numbers,
// strings, for [matrix.Matrix], [rect.Rect] and [vec.Vec2], and for all
// types which implement both [encoding.TextMarshaler] and (via a pointer)
// [encoding.TextUnmarshaler].
func DefaultConverter(t reflect.Type) Converter {
	switch t {
	case matrixType:
		return floatsConverter{n: 6, get: matrixGet, set: matrixSet}
	case rectType:
		return floatsConverter{n: 4, get: rectGet, set: rectSet}
	case vecType:
		return floatsConverter{n: 2, get: vecGet, set: vecSet}
	}

	if t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return textConverter{}
	}

	switch t.Kind() {
	case reflect.Bool:
		return boolConverter{}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intConverter{}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uintConverter{}
	case reflect.Float32, reflect.Float64:
		return floatConverter{}
	case reflect.String:
		return stringConverter{}
	}
	return nil
}

type boolConverter struct{}

func (boolConverter) Format(v reflect.Value) (string, error) {
	return strconv.FormatBool(v.Bool()), nil
}

func (boolConverter) Parse(s string, t reflect.Type) (reflect.Value, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return reflect.Value{}, err
	}
	res := reflect.New(t).Elem()
	res.SetBool(b)
	return res, nil
}

type intConverter struct{}

func (intConverter) Format(v reflect.Value) (string, error) {
	return strconv.FormatInt(v.Int(), 10), nil
}

func (intConverter) Parse(s string, t reflect.Type) (reflect.Value, error) {
	x, err := strconv.ParseInt(s, 10, t.Bits())
	if err != nil {
		return reflect.Value{}, err
	}
	res := reflect.New(t).Elem()
	res.SetInt(x)
	return res, nil
}

type uintConverter struct{}

func (uintConverter) Format(v reflect.Value) (string, error) {
	return strconv.FormatUint(v.Uint(), 10), nil
}

func (uintConverter) Parse(s string, t reflect.Type) (reflect.Value, error) {
	x, err := strconv.ParseUint(s, 10, t.Bits())
	if err != nil {
		return reflect.Value{}, err
	}
	res := reflect.New(t).Elem()
	res.SetUint(x)
	return res, nil
}

type floatConverter struct{}

func (floatConverter) Format(v reflect.Value) (string, error) {
	return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), nil
}

func (floatConverter) Parse(s string, t reflect.Type) (reflect.Value, error) {
	x, err := strconv.ParseFloat(s, t.Bits())
	if err != nil {
		return reflect.Value{}, err
	}
	res := reflect.New(t).Elem()
	res.SetFloat(x)
	return res, nil
}

type stringConverter struct{}

func (stringConverter) Format(v reflect.Value) (string, error) {
	return v.String(), nil
}

func (stringConverter) Parse(s string, t reflect.Type) (reflect.Value, error) {
	res := reflect.New(t).Elem()
	res.SetString(s)
	return res, nil
}

type textConverter struct{}

func (textConverter) Format(v reflect.Value) (string, error) {
	m, ok := v.Interface().(encoding.TextMarshaler)
	if !ok {
		return "", fmt.Errorf("%s does not implement encoding.TextMarshaler", v.Type())
	}
	text, err := m.MarshalText()
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func (textConverter) Parse(s string, t reflect.Type) (reflect.Value, error) {
	ptr := reflect.New(t)
	u, ok := ptr.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%s does not implement encoding.TextUnmarshaler", t)
	}
	err := u.UnmarshalText([]byte(s))
	if err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

// floatsConverter writes fixed-length lists of numbers, separated by commas.
type floatsConverter struct {
	n   int
	get func(v reflect.Value) []float64
	set func(xx []float64) reflect.Value
}

func (c floatsConverter) Format(v reflect.Value) (string, error) {
	xx := c.get(v)
	parts := make([]string, len(xx))
	for i, x := range xx {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ","), nil
}

func (c floatsConverter) Parse(s string, t reflect.Type) (reflect.Value, error) {
	parts := strings.Split(s, ",")
	if len(parts) != c.n {
		return reflect.Value{}, fmt.Errorf("expected %d numbers, got %d", c.n, len(parts))
	}
	xx := make([]float64, c.n)
	for i, part := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return reflect.Value{}, err
		}
		xx[i] = x
	}
	res := c.set(xx)
	if res.Type() != t {
		return reflect.Value{}, errors.New("cannot parse " + t.String())
	}
	return res, nil
}

func matrixGet(v reflect.Value) []float64 {
	m := v.Interface().(matrix.Matrix)
	return m[:]
}

func matrixSet(xx []float64) reflect.Value {
	var m matrix.Matrix
	copy(m[:], xx)
	return reflect.ValueOf(m)
}

func rectGet(v reflect.Value) []float64 {
	r := v.Interface().(rect.Rect)
	return []float64{r.LLx, r.LLy, r.URx, r.URy}
}

func rectSet(xx []float64) reflect.Value {
	return reflect.ValueOf(rect.Rect{LLx: xx[0], LLy: xx[1], URx: xx[2], URy: xx[3]})
}

func vecGet(v reflect.Value) []float64 {
	p := v.Interface().(vec.Vec2)
	return []float64{p.X, p.Y}
}

func vecSet(xx []float64) reflect.Value {
	return reflect.ValueOf(vec.Vec2{X: xx[0], Y: xx[1]})
}

var (
	matrixType = reflect.TypeFor[matrix.Matrix]()
	rectType   = reflect.TypeFor[rect.Rect]()
	vecType    = reflect.TypeFor[vec.Vec2]()

	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)
