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

package visual

import "reflect"

// Walker traverses a visual tree in depth-first order, one step at a time.
// The traversal uses an explicit stack, so that arbitrarily deep trees can
// be walked without growing the call stack.
type Walker struct {
	root  Visual
	enter func(Visual) (bool, error)
	leave func(Visual) error

	stack   []walkFrame
	started bool
	done    bool
}

type walkFrame struct {
	v        Visual
	children []Visual
	next     int
}

// NewWalker creates a walker for the tree below root.
//
// The function enter is called when a node is first reached (pre-order).
// If enter returns false, the children of the node are skipped.  The
// function leave is called after all children of a node have been visited
// (post-order).  Leave is called for every node for which enter was called
// and succeeded.  Either function may be nil.
func NewWalker(root Visual, enter func(Visual) (bool, error), leave func(Visual) error) *Walker {
	return &Walker{
		root:  root,
		enter: enter,
		leave: leave,
	}
}

// Step performs the next unit of work.  The return value more is false once
// the traversal is complete.
func (w *Walker) Step() (more bool, err error) {
	if w.done {
		return false, nil
	}
	if !w.started {
		w.started = true
		if isNil(w.root) {
			w.done = true
			return false, nil
		}
		err = w.visit(w.root)
		if err != nil {
			w.done = true
			return false, err
		}
		return w.more(), nil
	}

	top := &w.stack[len(w.stack)-1]
	for top.next < len(top.children) {
		child := top.children[top.next]
		top.next++
		if isNil(child) {
			continue
		}
		err = w.visit(child)
		if err != nil {
			w.done = true
			return false, err
		}
		return w.more(), nil
	}

	w.stack = w.stack[:len(w.stack)-1]
	if w.leave != nil {
		err = w.leave(top.v)
		if err != nil {
			w.done = true
			return false, err
		}
	}
	return w.more(), nil
}

// Depth returns the number of nodes which have been entered but not yet
// left.
func (w *Walker) Depth() int {
	return len(w.stack)
}

// visit enters v and either pushes it on the stack, or leaves it again
// immediately.
func (w *Walker) visit(v Visual) error {
	descend := true
	if w.enter != nil {
		var err error
		descend, err = w.enter(v)
		if err != nil {
			return err
		}
	}
	if descend {
		w.stack = append(w.stack, walkFrame{v: v, children: v.VisualChildren()})
		return nil
	}
	if w.leave != nil {
		return w.leave(v)
	}
	return nil
}

func (w *Walker) more() bool {
	if len(w.stack) == 0 {
		w.done = true
	}
	return !w.done
}

// Walk traverses the tree below root, see [NewWalker].
func Walk(root Visual, enter func(Visual) (bool, error), leave func(Visual) error) error {
	w := NewWalker(root, enter, leave)
	for {
		more, err := w.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// isNil reports whether v is nil or a nil pointer.
func isNil(v Visual) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
