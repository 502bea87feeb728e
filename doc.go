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

// Package fixdoc provides the object model for serializing paginated,
// fixed-layout documents.
//
// A document graph consists of a [Sequence] of [Document]s, each of which
// contains [Page]s.  The content of a page is a list of elements: either
// visuals (see the visual package) or arbitrary Go structs, which are written
// by reflecting over their exported fields.
//
// The graph is written by the serialize package, either synchronously:
//
//	out := container.New(memory.New())
//	m := serialize.NewManager(out, nil)
//	err := m.Save(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// or asynchronously, one small unit of work per scheduler turn:
//
//	loop := continuation.NewLoop()
//	m := serialize.NewManager(out, &serialize.Options{
//	    Dispatcher: loop,
//	    Completed:  func(c serialize.Completion) { ... },
//	})
//	err := m.SaveAsync(doc)
//	...
//	err = loop.Run(ctx)
//
// The output is handed to a container writer (see the container package),
// which decides how the parts of the document end up in a file.
//
// Missing levels of the hierarchy are added automatically: a bare [Page]
// is written as a sequence containing one document with one page.
package fixdoc
