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

package continuation

// Queue is a first-in first-out queue, backed by a ring buffer.
// The zero value is an empty queue, ready to use.
type Queue[T any] struct {
	buf   []T
	start int
	n     int
}

// Push appends x at the end of the queue.
func (q *Queue[T]) Push(x T) {
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.start+q.n)%len(q.buf)] = x
	q.n++
}

// Pop removes and returns the element at the front of the queue.
// The second return value is false if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.n == 0 {
		return zero, false
	}
	x := q.buf[q.start]
	q.buf[q.start] = zero
	q.start = (q.start + 1) % len(q.buf)
	q.n--
	return x, true
}

// Len returns the number of elements in the queue.
func (q *Queue[T]) Len() int {
	return q.n
}

// Clear removes all elements.
func (q *Queue[T]) Clear() {
	clear(q.buf)
	q.start = 0
	q.n = 0
}

func (q *Queue[T]) grow() {
	size := 2 * len(q.buf)
	if size < 8 {
		size = 8
	}
	buf := make([]T, size)
	for i := 0; i < q.n; i++ {
		buf[i] = q.buf[(q.start+i)%len(q.buf)]
	}
	q.buf = buf
	q.start = 0
}
