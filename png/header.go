// IHDR decoding, informational only: parsing a container never requires a
// valid header.
//
// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//

package png

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

const ihdrLength = 13

// ErrNoHeader is returned by Header when the first chunk is not IHDR.
var ErrNoHeader = errors.New("first chunk is not IHDR")

// From https://www.w3.org/TR/png/#11IHDR:
// ```
// Table 13 Allowed combinations of colour type and bit depth (abridged)
//
// PNG image type     Colour Allowed
// type               type   bit depths
// Greyscale	      0	     1,2,4,8,16
// Truecolour	      2	     8,16
// Indexed            3	     1,2,4,8
// Greyscale w/alpha  4      8,16
// Truecolour w/alpha 6      8,16
// ```
var colorTypeDepths = map[uint8][]uint8{
	0: {1, 2, 4, 8, 16},
	2: {8, 16},
	3: {1, 2, 4, 8},
	4: {8, 16},
	6: {8, 16},
}

// Header holds the image metadata stored in the IHDR chunk.
type Header struct {
	Width       uint32
	Height      uint32
	Depth       uint8
	ColorType   uint8
	Compression uint8
	Filter      uint8
	Interlace   uint8
}

func (h Header) String() string {
	return fmt.Sprintf("%dx%d, depth %d, color type %d, interlace %d",
		h.Width, h.Height, h.Depth, h.ColorType, h.Interlace)
}

// Header decodes the IHDR chunk, which the PNG format requires to come first.
func (png *PNG) Header() (Header, error) {
	if len(png.chunks) == 0 || png.chunks[0].typ.String() != "IHDR" {
		return Header{}, ErrNoHeader
	}
	return parseIHDR(png.chunks[0].data)
}

// Inspired by/lifted from https://golang.org/src/image/png/reader.go
func parseIHDR(b []byte) (Header, error) {
	var h Header
	if len(b) != ihdrLength {
		return h, fmt.Errorf("invalid IHDR length: got %d - expected %d",
			len(b), ihdrLength)
	}

	// Width:              4 bytes (big endian)
	// Height:             4 bytes (big endian)
	// Bit depth:          1 byte
	// Color type:         1 byte
	// Compression method: 1 byte
	// Filter method:      1 byte
	// Interlace method:   1 byte

	// Width and height are PNG four-byte unsigned integers, limited to
	// 0 < n < 2^31.
	h.Width = binary.BigEndian.Uint32(b[0:4])
	if h.Width == 0 || h.Width > 1<<31-1 {
		return h, fmt.Errorf("invalid width in IHDR expected 0 < w < 2^31, got: %d", h.Width)
	}
	h.Height = binary.BigEndian.Uint32(b[4:8])
	if h.Height == 0 || h.Height > 1<<31-1 {
		return h, fmt.Errorf("invalid height in IHDR expected 0 < h < 2^31, got: %d", h.Height)
	}

	h.Depth = b[8]
	h.ColorType = b[9]
	allowed, ok := colorTypeDepths[h.ColorType]
	if !ok {
		return h, fmt.Errorf("image with invalid color type - expected one of [0,2,3,4,6], got %d", h.ColorType)
	}
	if !slices.Contains(allowed, h.Depth) {
		return h, fmt.Errorf("image with color type %d and wrong depth - expected one of %v, got %d",
			h.ColorType, allowed, h.Depth)
	}

	// Only compression method 0 (deflate) and filter method 0 (adaptive)
	// are defined.
	h.Compression = b[10]
	if h.Compression != 0 {
		return h, fmt.Errorf("invalid compression method - expected 0 - got %x", h.Compression)
	}
	h.Filter = b[11]
	if h.Filter != 0 {
		return h, fmt.Errorf("invalid filter method - expected 0 - got %x", h.Filter)
	}

	// 0 (no interlace) or 1 (Adam7 interlace).
	h.Interlace = b[12]
	if h.Interlace != 0 && h.Interlace != 1 {
		return h, fmt.Errorf("invalid interlace method - expected 0 or 1 - got %x", h.Interlace)
	}
	return h, nil
}
