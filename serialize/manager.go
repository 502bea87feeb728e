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
	"errors"
	"fmt"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/container"
	"seehuhn.de/go/fixdoc/continuation"
	"seehuhn.de/go/fixdoc/layout"
	"seehuhn.de/go/fixdoc/structure"
	"seehuhn.de/go/fixdoc/typeinfo"
	"seehuhn.de/go/fixdoc/visual"
)

// Options control a serialization run.  The zero value selects the
// defaults.
type Options struct {
	// Layout determines the page sizes.  The default is [layout.Default].
	Layout layout.Service

	// Flattener writes visuals.  The default is [visual.MarkupFlattener].
	Flattener visual.Flattener

	// Registry selects the serializers.  If this is nil, a registry with
	// the built-in serializers is used.
	Registry *Registry

	// Dispatcher schedules the turns of asynchronous runs.  If this is
	// nil, asynchronous runs must be driven by calling
	// [Manager.PopAndRun].
	Dispatcher continuation.Dispatcher

	// PrintSetting, if non-nil, is called whenever a structural level is
	// opened.  The function may supply or modify the print setting.
	PrintSetting func(*structure.Request)

	// StructureChanged, if non-nil, is called whenever a structural level
	// is opened or closed.
	StructureChanged func(structure.Event)

	// Completed, if non-nil, is called once when the run ends.
	Completed func(Completion)

	// MergeCacheSize is the number of merged print settings which are
	// cached.  See [structure.Options].
	MergeCacheSize int
}

// Completion describes the outcome of a run.
type Completion struct {
	// Err is nil if the output was written successfully.
	Err error

	// Cancelled is true if the run was stopped by [Manager.Cancel].  In this
	// case Err is [fixdoc.ErrCancelled].
	Cancelled bool
}

// Manager runs the serialization of one object graph.
//
// A Manager can be used for a single run, started by one of [Manager.Save],
// [Manager.SaveAsync] or [Manager.BeginBatch].  A Manager is not safe for
// concurrent use; asynchronous runs execute on the goroutine which runs the
// dispatcher.
type Manager struct {
	c   *Context
	opt Options

	stack continuation.Stack[frame]
	batch continuation.Queue[any]

	started   bool
	batching  bool
	committed bool
	waiting   bool
	cancelled bool
	done      bool

	result Completion
}

// NewManager creates a manager which writes to out.
// If opt is nil, default options are used.
func NewManager(out container.Writer, opt *Options) *Manager {
	if opt == nil {
		opt = &Options{}
	}
	m := &Manager{opt: *opt}

	reg := opt.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	lay := opt.Layout
	if lay == nil {
		lay = layout.Default{}
	}
	fl := opt.Flattener
	if fl == nil {
		fl = visual.MarkupFlattener{}
	}
	ctrl := structure.NewController(out, &structure.Options{
		PrintSetting:     opt.PrintSetting,
		StructureChanged: opt.StructureChanged,
		MergeCacheSize:   opt.MergeCacheSize,
	})
	m.c = newContext(reg, ctrl, lay, fl)
	return m
}

// Context returns the context of the run.
func (m *Manager) Context() *Context {
	return m.c
}

// Save writes root synchronously.  The root can be a sequence, a document,
// a page, a paginator or a visual; missing outer levels are synthesized.
//
// If an error occurs, the output is aborted.
func (m *Manager) Save(root any) error {
	if err := m.start(); err != nil {
		return err
	}
	seq, err := m.c.Structure.Synthesize(root)
	if err == nil {
		err = m.c.Serialize(seq)
	}
	if err != nil {
		m.abort()
		m.finish(Completion{Err: err})
		return err
	}
	m.finish(Completion{})
	return nil
}

// SaveAsync starts writing root asynchronously.  The work is split into
// turns, which are posted to the dispatcher one at a time.  The outcome is
// reported via [Options.Completed].
//
// Errors in the root object are returned immediately.  All later errors
// are reported through the completion callback.
func (m *Manager) SaveAsync(root any) error {
	if err := m.start(); err != nil {
		return err
	}
	seq, err := m.c.Structure.Synthesize(root)
	if err != nil {
		m.abort()
		m.finish(Completion{Err: err})
		return err
	}
	m.stack.Push(frame{kind: endOfWork})
	m.stack.Push(frame{kind: beginObject, obj: seq})
	m.post()
	return nil
}

// BeginBatch starts an asynchronous run which writes pages one by one.
// A sequence containing a single document is opened immediately.  Pages
// are added using [Manager.Enqueue], and [Manager.Commit] closes the
// document once all pages are written.
func (m *Manager) BeginBatch() error {
	if err := m.start(); err != nil {
		return err
	}
	m.batching = true

	ctrl := m.c.Structure
	err := ctrl.OpenSequence(nil, true)
	if err == nil {
		err = ctrl.OpenDocument(nil, true)
	}
	if err != nil {
		m.abort()
		m.finish(Completion{Err: err})
		return err
	}
	m.stack.Push(frame{kind: endOfWork})
	m.waiting = true
	return nil
}

// Enqueue adds a page or a visual to a batch run.  A visual is placed on a
// page of its own.
func (m *Manager) Enqueue(item any) error {
	if !m.batching {
		return errNoBatch
	}
	if m.committed || m.done {
		return errCommitted
	}
	page, err := m.c.Structure.SynthesizePage(item)
	if err != nil {
		return err
	}
	m.batch.Push(page)
	m.wake()
	return nil
}

// Commit ends a batch run.  The document and the sequence are closed once
// all queued pages have been written.
func (m *Manager) Commit() error {
	if !m.batching {
		return errNoBatch
	}
	if m.committed || m.done {
		return errCommitted
	}
	m.committed = true
	m.batch.Push(commitMarker{})
	m.wake()
	return nil
}

// Cancel stops an asynchronous run.  The cancellation takes effect on the
// next turn, which aborts the output and reports a completion with
// [fixdoc.ErrCancelled].
func (m *Manager) Cancel() {
	if m.done || m.cancelled {
		return
	}
	m.cancelled = true
	m.wake()
}

// PopAndRun executes one unit of work of an asynchronous run.  The return
// value is true if more work is immediately available.
func (m *Manager) PopAndRun() bool {
	if !m.started || m.done {
		return false
	}
	m.waiting = false

	if m.cancelled {
		m.abort()
		m.finish(Completion{Err: fixdoc.ErrCancelled, Cancelled: true})
		return false
	}

	f, ok := m.stack.Pop()
	if !ok {
		return false
	}
	err := m.runFrame(f)
	if err != nil {
		m.abort()
		m.finish(Completion{Err: err})
		return false
	}
	return !m.done && !m.waiting
}

// Done reports whether the run has ended.
func (m *Manager) Done() bool {
	return m.done
}

// Result returns the outcome of the run.  The second return value is false
// while the run is still in progress.
func (m *Manager) Result() (Completion, bool) {
	return m.result, m.done
}

// Pending returns the number of frames on the continuation stack.
func (m *Manager) Pending() int {
	return m.stack.Len()
}

func (m *Manager) start() error {
	if m.started {
		return errReused
	}
	m.started = true
	return nil
}

func (m *Manager) turn() {
	if m.PopAndRun() {
		m.post()
	}
}

func (m *Manager) post() {
	if m.opt.Dispatcher != nil {
		m.opt.Dispatcher.Post(m.turn)
	}
}

// wake schedules a turn if the run is waiting for batch items.
func (m *Manager) wake() {
	if m.waiting {
		m.waiting = false
		m.post()
	}
}

// runFrame executes a single frame.  Panics are converted into errors, so
// that they do not cross the scheduler boundary.
func (m *Manager) runFrame(f frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serialize: panic in %s: %v", f.kind, r)
		}
	}()

	switch f.kind {
	case beginObject:
		oc, err := m.c.begin(f.obj, f.parent, f.prop)
		if err != nil {
			return err
		}
		m.stack.Push(frame{kind: endObject, oc: oc})
		m.stack.Push(frame{kind: resumeKind(oc), oc: oc})

	case serializeNextProperty, beginNextPage:
		step, err := m.c.next(f.oc)
		if err != nil {
			return err
		}
		if step.More {
			m.stack.Push(f)
		}
		if step.Child != nil {
			m.stack.Push(frame{
				kind:   beginObject,
				obj:    step.Child,
				parent: f.oc,
				prop:   step.Property,
			})
		}

	case endObject:
		return m.c.end(f.oc)

	case endOfWork:
		return m.endOfWork()
	}
	return nil
}

// endOfWork is run once the continuation stack is drained.
func (m *Manager) endOfWork() error {
	if !m.batching {
		m.finish(Completion{})
		return nil
	}

	item, ok := m.batch.Pop()
	if !ok {
		m.stack.Push(frame{kind: endOfWork})
		m.waiting = true
		return nil
	}
	if _, isCommit := item.(commitMarker); isCommit {
		ctrl := m.c.Structure
		if err := ctrl.CloseDocument(); err != nil {
			return err
		}
		if err := ctrl.CloseSequence(); err != nil {
			return err
		}
		m.finish(Completion{})
		return nil
	}
	m.stack.Push(frame{kind: endOfWork})
	m.stack.Push(frame{kind: beginObject, obj: item})
	return nil
}

// abort discards all pending work and the output.
func (m *Manager) abort() {
	m.stack.Clear()
	m.batch.Clear()
	m.c.Structure.Abort()
	m.c.reset()
}

func (m *Manager) finish(res Completion) {
	if m.done {
		return
	}
	m.done = true
	m.waiting = false
	m.result = res
	if m.opt.Completed != nil {
		m.opt.Completed(res)
	}
}

// commitMarker is the last item of a batch run.
type commitMarker struct{}

// frameKind identifies the variants of a continuation frame.
type frameKind uint8

const (
	beginObject frameKind = iota
	endObject
	serializeNextProperty
	beginNextPage
	endOfWork
)

func (k frameKind) String() string {
	switch k {
	case beginObject:
		return "BeginObject"
	case endObject:
		return "EndObject"
	case serializeNextProperty:
		return "SerializeNextProperty"
	case beginNextPage:
		return "BeginNextPage"
	case endOfWork:
		return "EndOfWork"
	default:
		return fmt.Sprintf("frameKind(%d)", uint8(k))
	}
}

// frame is a deferred unit of work.
type frame struct {
	kind frameKind

	// obj, parent and prop are used by beginObject frames
	obj    any
	parent *ObjectContext
	prop   *typeinfo.PropertyContext

	// oc is the object context for all other frames
	oc *ObjectContext
}

// resumeKind returns the kind of frame which continues writing the object.
func resumeKind(oc *ObjectContext) frameKind {
	if _, ok := oc.ser.(paginatorSerializer); ok {
		return beginNextPage
	}
	return serializeNextProperty
}

var (
	errReused    = errors.New("serialize: manager was already used")
	errNoBatch   = errors.New("serialize: not in batch mode")
	errCommitted = errors.New("serialize: batch already committed")
)
