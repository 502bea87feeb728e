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

package fixdoc

import (
	"errors"
	"reflect"
)

// ErrCancelled is reported when a serialization run is cancelled before it
// completes.
var ErrCancelled = errors.New("serialization cancelled")

// Causes of a [StructuralError].
var (
	ErrNesting       = errors.New("invalid nesting of structural levels")
	ErrEmptyDocument = errors.New("document has no pages")
	ErrEmptySequence = errors.New("sequence has no documents")
	ErrUnreleased    = errors.New("resource still acquired")
	ErrNotAcquired   = errors.New("resource not acquired")
	ErrAcquireMode   = errors.New("cannot mix single and multiple resource acquisition")
	ErrCycle         = errors.New("object is already being written")
)

// InvalidArgumentError indicates that a required input was nil or missing.
type InvalidArgumentError struct {
	Arg    string
	Reason string

	// Err, if set, is the underlying cause.
	Err error
}

func (err *InvalidArgumentError) Error() string {
	reason := err.Reason
	if reason == "" && err.Err != nil {
		reason = err.Err.Error()
	}
	if reason == "" {
		reason = "missing"
	}
	return "invalid argument " + err.Arg + ": " + reason
}

func (err *InvalidArgumentError) Unwrap() error {
	return err.Err
}

// TypeMismatchError indicates that an object was handed to a serializer
// which cannot write objects of this kind.
type TypeMismatchError struct {
	Want string
	Got  reflect.Type
}

func (err *TypeMismatchError) Error() string {
	got := "nil"
	if err.Got != nil {
		got = err.Got.String()
	}
	return "expected " + err.Want + " but got " + got
}

// NoSerializerError indicates that neither a serializer nor a type converter
// is known for a type which needs to be written.
type NoSerializerError struct {
	Type reflect.Type
}

func (err *NoSerializerError) Error() string {
	if err.Type == nil {
		return "no serializer for nil value"
	}
	return "no serializer for type " + err.Type.String()
}

// StructuralError indicates an illegal transition between the structural
// levels of a document, or a resource which was not released in time.
type StructuralError struct {
	Op  string
	Err error
}

func (err *StructuralError) Error() string {
	msg := "structural error"
	if err.Op != "" {
		msg += " in " + err.Op
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *StructuralError) Unwrap() error {
	return err.Err
}

// IsStructural reports whether err is (or wraps) a [StructuralError] with
// the given cause.  If cause is nil, any StructuralError matches.
func IsStructural(err error, cause error) bool {
	var sErr *StructuralError
	if !errors.As(err, &sErr) {
		return false
	}
	return cause == nil || errors.Is(sErr.Err, cause)
}
