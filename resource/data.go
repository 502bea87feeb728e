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

package resource

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register the image decoders
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"seehuhn.de/go/icc"
	"seehuhn.de/go/postscript/type1"
	"seehuhn.de/go/sfnt"
)

// FontData is an embedded font file.  Both TrueType/OpenType fonts and
// Type 1 fonts are supported.
type FontData struct {
	// ID, if set, is used as the resource identifier.
	ID string

	Data []byte
}

// FontInfo describes a font file.
type FontInfo struct {
	// Name is the PostScript name of the font.
	Name string

	// Family is the font family name, if known.
	Family string

	// Ext is the file name extension used for the font file.
	Ext string
}

// Info parses the font file.
func (f *FontData) Info() (*FontInfo, error) {
	if f == nil || len(f.Data) == 0 {
		return nil, errMissingData
	}

	info, err := sfnt.Read(bytes.NewReader(f.Data))
	if err == nil {
		ext := ".ttf"
		if info.IsCFF() {
			ext = ".otf"
		}
		return &FontInfo{
			Name:   info.PostScriptName(),
			Family: info.FamilyName,
			Ext:    ext,
		}, nil
	}

	psFont, err1 := type1.Read(bytes.NewReader(f.Data))
	if err1 == nil {
		ext := ".pfa"
		if f.Data[0] == 0x80 {
			ext = ".pfb"
		}
		return &FontInfo{
			Name:   psFont.FontInfo.FontName,
			Family: psFont.FontInfo.FamilyName,
			Ext:    ext,
		}, nil
	}

	return nil, fmt.Errorf("unsupported font data: %w", err)
}

// Key returns the resource identifier for the font.  If no explicit ID is
// set, the identifier is derived from the font name.
func (f *FontData) Key() string {
	if f.ID != "" {
		return NormalizeID(f.ID)
	}
	info, err := f.Info()
	if err != nil || info.Name == "" {
		return contentKey(f.Data, "")
	}
	return info.Name + info.Ext
}

// ImageData is an encoded raster image.  The supported formats are PNG,
// JPEG, GIF, BMP, TIFF and WebP.
type ImageData struct {
	// ID, if set, is used as the resource identifier.
	ID string

	Data []byte

	// SingleUse indicates that the image is used only once.  Such images
	// are not shared between pages and are acquired in single mode.
	//
	// The acquisition mode is fixed per page and kind: a page must not
	// show both single use and shared images, otherwise writing the page
	// fails with a structural error (fixdoc.ErrAcquireMode).
	SingleUse bool
}

// ImageInfo describes an image file.
type ImageInfo struct {
	Format        string
	Width, Height int
}

// Info decodes the image header.
func (img *ImageData) Info() (*ImageInfo, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, errMissingData
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("unsupported image data: %w", err)
	}
	return &ImageInfo{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Key returns the resource identifier for the image.  If no explicit ID is
// set, the identifier is derived from the image data.
func (img *ImageData) Key() string {
	if img.ID != "" {
		return NormalizeID(img.ID)
	}
	ext := ""
	if info, err := img.Info(); err == nil {
		ext = "." + info.Format
	}
	return contentKey(img.Data, ext)
}

// ProfileData is an ICC colour profile.
type ProfileData struct {
	// ID, if set, is used as the resource identifier.
	ID string

	Data []byte
}

// ProfileInfo describes a colour profile.
type ProfileInfo struct {
	// Space is the name of the profile's data colour space.
	Space string

	// Components is the number of colour components.
	Components int
}

// Info decodes and validates the profile.
func (p *ProfileData) Info() (*ProfileInfo, error) {
	if p == nil || len(p.Data) == 0 {
		return nil, errMissingData
	}
	profile, err := icc.Decode(p.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid colour profile: %w", err)
	}

	var space string
	switch profile.ColorSpace {
	case icc.GraySpace:
		space = "Gray"
	case icc.RGBSpace:
		space = "RGB"
	case icc.CMYKSpace:
		space = "CMYK"
	case icc.CIELabSpace:
		space = "Lab"
	default:
		return nil, fmt.Errorf("unsupported colour space %v", profile.ColorSpace)
	}
	return &ProfileInfo{
		Space:      space,
		Components: profile.ColorSpace.NumComponents(),
	}, nil
}

// Key returns the resource identifier for the profile.  If no explicit ID
// is set, the identifier is derived from the profile data.
func (p *ProfileData) Key() string {
	if p.ID != "" {
		return NormalizeID(p.ID)
	}
	return contentKey(p.Data, ".icc")
}

// contentKey derives an identifier from the data.
func contentKey(data []byte, ext string) string {
	sum := sha256.Sum256(data)
	return strings.ToUpper(hex.EncodeToString(sum[:8])) + ext
}

var errMissingData = errors.New("missing resource data")
