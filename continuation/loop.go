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

import (
	"context"
	"sync"
)

// Dispatcher schedules units of work.
//
// Post must not run f before returning.  Every posted function must
// eventually be run exactly once, unless the dispatcher is discarded.
type Dispatcher interface {
	Post(f func())
}

// Loop is a simple cooperative scheduler.  Functions are run in the order
// in which they were posted, one per call to [Loop.RunOne].
//
// Post may be called concurrently from different goroutines, but the
// functions are only ever run on the goroutine which drives the loop.
type Loop struct {
	mu    sync.Mutex
	tasks Queue[func()]
	ran   int
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Post implements the [Dispatcher] interface.
func (l *Loop) Post(f func()) {
	if f == nil {
		return
	}
	l.mu.Lock()
	l.tasks.Push(f)
	l.mu.Unlock()
}

// RunOne runs the oldest pending function.
// The return value is false if there was nothing to run.
func (l *Loop) RunOne() bool {
	l.mu.Lock()
	f, ok := l.tasks.Pop()
	if ok {
		l.ran++
	}
	l.mu.Unlock()

	if !ok {
		return false
	}
	f()
	return true
}

// Run runs pending functions until the loop is idle or until ctx is
// cancelled.  Functions posted while Run is active are run as well.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !l.RunOne() {
			return nil
		}
	}
}

// Pending returns the number of functions waiting to be run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tasks.Len()
}

// Turns returns the number of functions run so far.
func (l *Loop) Turns() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ran
}
