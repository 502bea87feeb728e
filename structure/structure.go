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

// Package structure enforces the nesting of the structural levels of a
// document.
//
// Output is organised in three levels: a sequence contains documents, and a
// document contains pages.  The [Controller] tracks the currently open
// level, opens and closes the corresponding container writers, checks that
// no level is closed while empty, and resolves the print setting of every
// level by merging it with the settings of the enclosing levels.
package structure

import (
	"errors"
	"fmt"

	"seehuhn.de/go/fixdoc"
	"seehuhn.de/go/fixdoc/container"
	"seehuhn.de/go/fixdoc/markup"
	"seehuhn.de/go/fixdoc/resource"
	"seehuhn.de/go/fixdoc/ticket"
)

// Level is one of the structural levels.
type Level int

// These are the structural levels, from the outside in.
const (
	None Level = iota
	Sequence
	Document
	Page
)

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Sequence:
		return "sequence"
	case Document:
		return "document"
	case Page:
		return "page"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Request asks the host for the print setting of a level.
// The host may replace or modify Setting.
type Request struct {
	Level Level

	// Index is the 1-based number of the document within the sequence, or
	// of the page within the document.  It is 1 for the sequence.
	Index int

	// Setting is initially a copy of the setting declared by the object
	// being written, or nil.
	Setting *ticket.Ticket
}

// Event reports a change of the structural level.
type Event struct {
	Level       Level
	Opened      bool
	Synthesized bool
	URI         string
}

// Options control the behaviour of a [Controller].
type Options struct {
	// PrintSetting, if non-nil, is called whenever a level is opened.
	PrintSetting func(*Request)

	// StructureChanged, if non-nil, is called after every change of the
	// structural level.
	StructureChanged func(Event)

	// MergeCacheSize is the number of merged print settings kept in the
	// cache.  If this is zero, a default of 8 is used.  A negative value
	// disables the cache.
	MergeCacheSize int
}

const defaultMergeCacheSize = 8

type mergeKey struct {
	parent, child string
}

// Controller tracks the structural level of the output.
//
// A Controller is used for a single serialization run and is not safe for
// concurrent use.
type Controller struct {
	out container.Writer
	opt Options

	level Level
	seq   container.SequenceWriter
	doc   container.DocumentWriter
	page  container.PageWriter

	// settings holds the resolved print setting of each open level.
	// These values are never modified.
	settings [Page + 1]*ticket.Ticket
	synth    [Page + 1]bool

	nDocs  int
	nPages int

	res    *resource.Manager
	merged *lruCache[mergeKey, *ticket.Ticket]

	synthetic map[any]bool

	sequenceDone bool
	isAborted    bool
}

// NewController creates a controller which writes to out.
// If opt is nil, default options are used.
func NewController(out container.Writer, opt *Options) *Controller {
	if opt == nil {
		opt = &Options{}
	}
	size := opt.MergeCacheSize
	if size == 0 {
		size = defaultMergeCacheSize
	}
	c := &Controller{
		out:       out,
		opt:       *opt,
		merged:    newCache[mergeKey, *ticket.Ticket](size),
		synthetic: make(map[any]bool),
	}
	c.res = resource.NewManager(c)
	return c
}

// Level returns the innermost open level.
func (c *Controller) Level() Level {
	return c.level
}

// Counts returns the number of documents opened in the sequence so far and
// the number of pages opened in the current document.
func (c *Controller) Counts() (documents, pages int) {
	return c.nDocs, c.nPages
}

// OpenSequence opens the sequence level.  The setting is the print setting
// declared by the sequence object, or nil.
func (c *Controller) OpenSequence(setting *ticket.Ticket, synthesized bool) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.level != None || c.sequenceDone {
		return c.nestingError("open sequence")
	}
	seq, err := c.out.OpenSequence()
	if err != nil {
		return err
	}
	c.seq = seq
	c.level = Sequence
	c.nDocs = 0
	return c.opened(Sequence, 1, setting, synthesized, seq)
}

// CloseSequence closes the sequence level and finalises the output.
// The sequence must contain at least one document.
func (c *Controller) CloseSequence() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.level != Sequence {
		return c.nestingError("close sequence")
	}
	if c.nDocs == 0 {
		return &fixdoc.StructuralError{Op: "close sequence", Err: fixdoc.ErrEmptySequence}
	}
	uri := c.seq.URI()
	if err := c.seq.Close(); err != nil {
		return err
	}
	if err := c.out.Close(); err != nil {
		return err
	}
	c.seq = nil
	c.closed(Sequence, uri)
	c.sequenceDone = true
	return nil
}

// OpenDocument opens a new document.  The setting is the print setting
// declared by the document object, or nil.
func (c *Controller) OpenDocument(setting *ticket.Ticket, synthesized bool) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.level != Sequence {
		return c.nestingError("open document")
	}
	doc, err := c.seq.OpenDocument()
	if err != nil {
		return err
	}
	if err := c.res.BeginDocument(); err != nil {
		return err
	}
	c.doc = doc
	c.level = Document
	c.nDocs++
	c.nPages = 0
	return c.opened(Document, c.nDocs, setting, synthesized, doc)
}

// CloseDocument closes the current document.  The document must contain
// at least one page.
func (c *Controller) CloseDocument() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.level != Document {
		return c.nestingError("close document")
	}
	if c.nPages == 0 {
		return &fixdoc.StructuralError{Op: "close document", Err: fixdoc.ErrEmptyDocument}
	}
	if err := c.res.EndDocument(); err != nil {
		return err
	}
	uri := c.doc.URI()
	if err := c.doc.Close(); err != nil {
		return err
	}
	c.doc = nil
	c.closed(Document, uri)
	return nil
}

// OpenPage opens a new page.  The setting is the print setting declared by
// the page object, or nil.
func (c *Controller) OpenPage(setting *ticket.Ticket, synthesized bool) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.level != Document {
		return c.nestingError("open page")
	}
	page, err := c.doc.OpenPage()
	if err != nil {
		return err
	}
	if err := c.res.BeginPage(); err != nil {
		return err
	}
	c.page = page
	c.level = Page
	c.nPages++
	return c.opened(Page, c.nPages, setting, synthesized, page)
}

// ClosePage closes the current page.  All resources acquired for the page
// must have been released.
func (c *Controller) ClosePage() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.level != Page {
		return c.nestingError("close page")
	}
	if err := c.res.EndPage(); err != nil {
		return err
	}
	uri := c.page.URI()
	if err := c.page.Close(); err != nil {
		return err
	}
	c.page = nil
	c.closed(Page, uri)
	return nil
}

// Abort discards the output.  No checks are performed, and all open levels
// and resources are discarded.
func (c *Controller) Abort() {
	if c.isAborted {
		return
	}
	c.isAborted = true
	c.res.Abort()
	c.out.Abort()
	c.seq, c.doc, c.page = nil, nil, nil
	c.level = None
	c.settings = [Page + 1]*ticket.Ticket{}
}

// IsAborted reports whether the controller was aborted.
func (c *Controller) IsAborted() bool {
	return c.isAborted
}

// Markup returns the markup writer of the innermost open level.
func (c *Controller) Markup() *markup.Writer {
	switch c.level {
	case Sequence:
		return c.seq.Markup()
	case Document:
		return c.doc.Markup()
	case Page:
		return c.page.Markup()
	default:
		return nil
	}
}

// Setting returns a copy of the resolved print setting of the innermost
// open level, or nil if no setting applies.
func (c *Controller) Setting() *ticket.Ticket {
	return c.settings[c.level].Clone()
}

// Resources returns the resource manager for the current page.
func (c *Controller) Resources() *resource.Manager {
	return c.res
}

// DocumentWriter returns the writer of the current document, or nil.
func (c *Controller) DocumentWriter() container.DocumentWriter {
	return c.doc
}

// PageWriter returns the writer of the current page, or nil.
func (c *Controller) PageWriter() container.PageWriter {
	return c.page
}

// CreateResource implements the [resource.Store] interface.  Resources are
// stored in the current document.
func (c *Controller) CreateResource(kind resource.Kind, id string) (resource.Stream, error) {
	if c.doc == nil {
		return nil, &fixdoc.StructuralError{Op: "create resource", Err: fixdoc.ErrNesting}
	}
	return c.doc.CreateResource(kind, id)
}

// MergeCacheLen returns the number of merged print settings in the cache.
func (c *Controller) MergeCacheLen() int {
	return c.merged.Len()
}

func (c *Controller) check() error {
	if c.isAborted {
		return errAborted
	}
	return nil
}

func (c *Controller) nestingError(op string) error {
	var err error = fixdoc.ErrNesting
	switch {
	case c.level == None && c.sequenceDone:
		err = fmt.Errorf("%w: sequence already written", fixdoc.ErrNesting)
	case c.level != None:
		err = fmt.Errorf("%w: %s is open", fixdoc.ErrNesting, c.level)
	}
	return &fixdoc.StructuralError{Op: op, Err: err}
}

// opened resolves the print setting of a newly opened level and sends the
// notification.
func (c *Controller) opened(l Level, index int, declared *ticket.Ticket, synthesized bool, w container.Level) error {
	req := &Request{
		Level:   l,
		Index:   index,
		Setting: declared.Clone(),
	}
	if c.opt.PrintSetting != nil {
		c.opt.PrintSetting(req)
	}

	c.settings[l] = c.resolve(c.settings[l-1], req.Setting)
	c.synth[l] = synthesized
	if err := w.SetPrintTicket(req.Setting); err != nil {
		return err
	}

	if c.opt.StructureChanged != nil {
		c.opt.StructureChanged(Event{
			Level:       l,
			Opened:      true,
			Synthesized: synthesized,
			URI:         w.URI(),
		})
	}
	return nil
}

func (c *Controller) closed(l Level, uri string) {
	c.level = l - 1
	c.settings[l] = nil
	synthesized := c.synth[l]
	c.synth[l] = false
	if c.opt.StructureChanged != nil {
		c.opt.StructureChanged(Event{
			Level:       l,
			Synthesized: synthesized,
			URI:         uri,
		})
	}
}

// resolve computes the effective print setting of a level.  A level
// without its own setting inherits the setting of its parent.
func (c *Controller) resolve(parent, own *ticket.Ticket) *ticket.Ticket {
	switch {
	case own.IsEmpty():
		return parent
	case parent.IsEmpty():
		return own.Clone()
	}

	key := mergeKey{parent: parent.String(), child: own.String()}
	if merged, ok := c.merged.Get(key); ok {
		return merged
	}
	merged := ticket.Merge(parent, own)
	c.merged.Put(key, merged)
	return merged
}

var errAborted = errors.New("structure: output was aborted")
