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

// Package ticket implements print settings ("print tickets").
//
// A print setting can be attached to a sequence, a document or a page.
// Settings are hierarchical: a field which is not set on a lower level is
// inherited from the level above, see [Merge].
package ticket

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xdg-go/stringprep"
	"golang.org/x/exp/maps"
	"golang.org/x/text/language"
)

// Ticket describes the print setting for one structural level.
// The zero value of every field means "not set".
type Ticket struct {
	// PageWidth and PageHeight give the media size in units of 1/96 inch.
	PageWidth, PageHeight float64

	Orientation Orientation
	Copies      int
	Duplex      Duplex
	Collation   Collation

	// Language is the language used for device messages and page content
	// without an explicit language.
	Language language.Tag

	// Options holds device specific settings.
	Options map[string]string
}

// Orientation is the page orientation.
type Orientation int

// Supported page orientations.
const (
	OrientationUnset Orientation = iota
	Portrait
	Landscape
)

func (o Orientation) String() string {
	switch o {
	case OrientationUnset:
		return "unset"
	case Portrait:
		return "Portrait"
	case Landscape:
		return "Landscape"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Duplex selects one- or two-sided printing.
type Duplex int

// Supported duplex modes.
const (
	DuplexUnset Duplex = iota
	OneSided
	LongEdge
	ShortEdge
)

func (d Duplex) String() string {
	switch d {
	case DuplexUnset:
		return "unset"
	case OneSided:
		return "OneSided"
	case LongEdge:
		return "TwoSidedLongEdge"
	case ShortEdge:
		return "TwoSidedShortEdge"
	default:
		return fmt.Sprintf("Duplex(%d)", int(d))
	}
}

// Collation determines whether multiple copies are collated.
type Collation int

// Supported collation modes.
const (
	CollationUnset Collation = iota
	Collated
	Uncollated
)

func (c Collation) String() string {
	switch c {
	case CollationUnset:
		return "unset"
	case Collated:
		return "Collated"
	case Uncollated:
		return "Uncollated"
	default:
		return fmt.Sprintf("Collation(%d)", int(c))
	}
}

// IsEmpty reports whether no field of t is set.
// A nil ticket is empty.
func (t *Ticket) IsEmpty() bool {
	if t == nil {
		return true
	}
	return t.PageWidth == 0 && t.PageHeight == 0 &&
		t.Orientation == OrientationUnset && t.Copies == 0 &&
		t.Duplex == DuplexUnset && t.Collation == CollationUnset &&
		t.Language == language.Und && len(t.Options) == 0
}

// Clone returns a deep copy of t.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	res := *t
	if t.Options != nil {
		res.Options = maps.Clone(t.Options)
	}
	return &res
}

// Equal reports whether t and other describe the same setting.
func (t *Ticket) Equal(other *Ticket) bool {
	return t.String() == other.String()
}

// Merge combines the settings of a parent level with those of a child
// level.  Fields set in child override the corresponding fields in parent.
// Device options are merged key by key.
//
// The result is a new ticket; neither argument is modified.  If one of the
// arguments is nil, a copy of the other one is returned.
func Merge(parent, child *Ticket) *Ticket {
	if parent == nil {
		return child.Clone()
	}
	if child == nil {
		return parent.Clone()
	}

	res := parent.Clone()
	if child.PageWidth != 0 || child.PageHeight != 0 {
		res.PageWidth = child.PageWidth
		res.PageHeight = child.PageHeight
	}
	if child.Orientation != OrientationUnset {
		res.Orientation = child.Orientation
	}
	if child.Copies != 0 {
		res.Copies = child.Copies
	}
	if child.Duplex != DuplexUnset {
		res.Duplex = child.Duplex
	}
	if child.Collation != CollationUnset {
		res.Collation = child.Collation
	}
	if child.Language != language.Und {
		res.Language = child.Language
	}
	if len(child.Options) > 0 {
		if res.Options == nil {
			res.Options = make(map[string]string, len(child.Options))
		}
		for key, val := range child.Options {
			res.Options[key] = val
		}
	}
	return res
}

// String returns the canonical text form of the ticket.
// Only fields which are set are included.  Two tickets describe the same
// setting if and only if their text forms are equal.
func (t *Ticket) String() string {
	if t == nil {
		return ""
	}

	var lines []string
	add := func(key, val string) {
		lines = append(lines, key+"="+val)
	}
	if t.PageWidth != 0 || t.PageHeight != 0 {
		add("PageWidth", formatFloat(t.PageWidth))
		add("PageHeight", formatFloat(t.PageHeight))
	}
	if t.Orientation != OrientationUnset {
		add("Orientation", t.Orientation.String())
	}
	if t.Copies != 0 {
		add("Copies", strconv.Itoa(t.Copies))
	}
	if t.Duplex != DuplexUnset {
		add("Duplex", t.Duplex.String())
	}
	if t.Collation != CollationUnset {
		add("Collation", t.Collation.String())
	}
	if t.Language != language.Und {
		add("Language", t.Language.String())
	}
	keys := make([]string, 0, len(t.Options))
	for key := range t.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		add(optionPrefix+key, escape(t.Options[key]))
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Parse reads a ticket from its text form, as produced by [Ticket.String].
func Parse(text string) (*Ticket, error) {
	t := &Ticket{}
	for lineNo, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ParseError{Line: lineNo + 1, Err: errors.New("missing '='")}
		}

		var err error
		switch {
		case key == "PageWidth":
			t.PageWidth, err = parseFloat(val)
		case key == "PageHeight":
			t.PageHeight, err = parseFloat(val)
		case key == "Orientation":
			t.Orientation, err = parseEnum(val, Portrait, Landscape)
		case key == "Copies":
			t.Copies, err = strconv.Atoi(val)
			if err == nil && t.Copies < 0 {
				err = errors.New("negative number of copies")
			}
		case key == "Duplex":
			t.Duplex, err = parseEnum(val, OneSided, LongEdge, ShortEdge)
		case key == "Collation":
			t.Collation, err = parseEnum(val, Collated, Uncollated)
		case key == "Language":
			t.Language, err = language.Parse(val)
		case strings.HasPrefix(key, optionPrefix):
			err = t.SetOption(key[len(optionPrefix):], unescape(val))
		default:
			err = fmt.Errorf("unknown key %q", key)
		}
		if err != nil {
			return nil, &ParseError{Line: lineNo + 1, Err: err}
		}
	}
	return t, nil
}

// SetOption sets a device specific option.  The key is prepared using the
// SASLprep profile of stringprep (RFC 4013), so that equivalent spellings
// of a key refer to the same option.  Keys must not be empty and must not
// contain '='.
func (t *Ticket) SetOption(key, value string) error {
	key, err := PrepareKey(key)
	if err != nil {
		return err
	}
	if t.Options == nil {
		t.Options = make(map[string]string)
	}
	t.Options[key] = value
	return nil
}

// PrepareKey brings an option key into canonical form.
func PrepareKey(key string) (string, error) {
	prepped, err := stringprep.SASLprep.Prepare(key)
	if err != nil {
		return "", fmt.Errorf("option key %q: %w", key, err)
	}
	if prepped == "" || strings.ContainsAny(prepped, "=\n") {
		return "", fmt.Errorf("invalid option key %q", key)
	}
	return prepped, nil
}

// ParseError is returned by [Parse] for malformed input.
type ParseError struct {
	Line int
	Err  error
}

func (err *ParseError) Error() string {
	return "ticket: line " + strconv.Itoa(err.Line) + ": " + err.Err.Error()
}

func (err *ParseError) Unwrap() error {
	return err.Err
}

func parseEnum[T fmt.Stringer](s string, candidates ...T) (T, error) {
	for _, c := range candidates {
		if c.String() == s {
			return c, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q", s)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return x, nil
}

var optionEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

func escape(s string) string {
	return optionEscaper.Replace(s)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == 'n' {
				b.WriteByte('\n')
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

const optionPrefix = "Option."
