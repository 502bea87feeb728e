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

// Package continuation provides the building blocks for splitting long
// running work into small steps.
//
// A [Stack] holds pending steps in last-in first-out order and replaces the
// native call stack of a recursive algorithm.  A [Queue] holds whole work
// items in first-in first-out order.  A [Loop] is a minimal cooperative
// scheduler: callers post functions, and a driver runs them one at a time.
package continuation

// Stack is a vector backed last-in first-out stack.
// The zero value is an empty stack, ready to use.
type Stack[T any] struct {
	items []T
}

// Push adds x to the top of the stack.
func (s *Stack[T]) Push(x T) {
	s.items = append(s.items, x)
}

// Pop removes and returns the top element.
// The second return value is false if the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	n := len(s.items)
	if n == 0 {
		return zero, false
	}
	x := s.items[n-1]
	s.items[n-1] = zero // allow garbage collection
	s.items = s.items[:n-1]
	return x, true
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	n := len(s.items)
	if n == 0 {
		var zero T
		return zero, false
	}
	return s.items[n-1], true
}

// Len returns the number of elements on the stack.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Clear removes all elements.
func (s *Stack[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}
