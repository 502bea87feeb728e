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

// Package container writes the physical output of a serialization run.
//
// The output is a package of parts: one part for the document sequence, one
// part per document, one part per page, plus resource, metadata and print
// ticket parts.  The structural parts contain XML markup written through a
// [markup.Writer].  A [Package] assembles the parts and hands every
// completed part to a [Storage] backend, see the packages
// [seehuhn.de/go/fixdoc/container/memory] and
// [seehuhn.de/go/fixdoc/container/zipfile].
package container

import (
	"seehuhn.de/go/xmp"

	"seehuhn.de/go/fixdoc/markup"
	"seehuhn.de/go/fixdoc/resource"
	"seehuhn.de/go/fixdoc/ticket"
)

// Writer is the top level of an output.
type Writer interface {
	// OpenSequence starts the document sequence.  Only one sequence can be
	// written per output.
	OpenSequence() (SequenceWriter, error)

	// Close finalises the output.  The sequence must be closed first.
	Close() error

	// Abort discards the output.  Open levels are aborted.
	Abort()
}

// Level is the common part of the writers for the three structural levels.
type Level interface {
	// URI is the part name of the level.
	URI() string

	// Markup returns the writer for the markup of the level.  The root
	// element of the level is already open; attributes can be added until
	// the first child element is written.
	Markup() *markup.Writer

	// SetPrintTicket stores the print setting of the level.
	SetPrintTicket(t *ticket.Ticket) error

	// Close completes the level.
	Close() error

	// Abort discards the level.
	Abort()
}

// SequenceWriter writes a document sequence.
type SequenceWriter interface {
	Level

	// OpenDocument starts the next document.  The previous document must
	// be closed first.
	OpenDocument() (DocumentWriter, error)
}

// DocumentWriter writes one document.
type DocumentWriter interface {
	Level
	resource.Store

	// OpenPage starts the next page.  The previous page must be closed
	// first.
	OpenPage() (PageWriter, error)

	// SetMetadata stores the document metadata.
	SetMetadata(p *xmp.Packet) error
}

// PageWriter writes one page.
type PageWriter interface {
	Level

	// RelateResource records that the page uses the resource with the
	// given URI.
	RelateResource(uri string)
}

// Part is one completed part of a package.
type Part struct {
	Name        string
	ContentType string
	Data        []byte
	Relations   []Relation
}

// Relation links a part to another part.
type Relation struct {
	Type   string
	Target string
}

// Storage receives the parts of a package.
type Storage interface {
	// Put stores a completed part.
	Put(p *Part) error

	// Finish is called after the last part has been stored.  The argument
	// is the name of the start part of the package.
	Finish(startPart string) error

	// Abort is called if the package is discarded.
	Abort()
}

// Content types of the parts.
const (
	SequenceType   = "application/vnd.ms-package.xps-fixeddocumentsequence+xml"
	DocumentType   = "application/vnd.ms-package.xps-fixeddocument+xml"
	PageType       = "application/vnd.ms-package.xps-fixedpage+xml"
	FontType       = "application/vnd.ms-opentype"
	ProfileType    = "application/vnd.ms-color.iccprofile"
	DictionaryType = "application/vnd.ms-package.xps-resourcedictionary+xml"
	MetadataType   = "application/rdf+xml"
	TicketType     = "text/plain; charset=utf-8"
	BinaryType     = "application/octet-stream"
)

// Relation types.
const (
	StartPartRelation   = "http://schemas.microsoft.com/xps/2005/06/fixedrepresentation"
	ResourceRelation    = "http://schemas.microsoft.com/xps/2005/06/required-resource"
	MetadataRelation    = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	PrintTicketRelation = "http://schemas.microsoft.com/xps/2005/06/printticket"
)

// Namespace is the XML namespace of the structural markup.
const Namespace = "http://schemas.microsoft.com/xps/2005/06"

// imageTypes maps image file name extensions to content types.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".webp": "image/webp",
}
