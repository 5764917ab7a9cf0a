// PNG chunk type tags and their property bits.
//
// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//

package png

import (
	"fmt"
)

// From https://www.w3.org/TR/png/#5Chunk-naming-conventions:
// ```
// Four bits of the chunk type, the property bits, namely bit 5 (value 32) of
// each byte, are used to convey chunk properties.
// ```
const propertyBit = 0x20

// ChunkType is the 4-byte type tag of a chunk. Every byte is an ASCII letter,
// and the case of each byte carries one property flag.
type ChunkType struct {
	b [4]byte
}

// NewChunkType returns the chunk type made of the given bytes.
func NewChunkType(b [4]byte) (ChunkType, error) {
	for i, c := range b {
		if !isLetter(c) {
			return ChunkType{}, fmt.Errorf("%w: 0x%02x at position %d", ErrInvalidByte, c, i)
		}
	}
	return ChunkType{b: b}, nil
}

// ParseChunkType parses the textual form of a chunk type, e.g. "tEXt".
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != 4 {
		return ChunkType{}, fmt.Errorf("%w: chunk type %q has %d bytes, expected 4",
			ErrInvalidLength, s, len(s))
	}
	var b [4]byte
	copy(b[:], s)
	return NewChunkType(b)
}

// Bytes returns the raw tag.
func (t ChunkType) Bytes() [4]byte {
	return t.b
}

// IsCritical reports whether a decoder must understand the chunk (ancillary
// chunks have a lowercase first byte).
func (t ChunkType) IsCritical() bool {
	return t.b[0]&propertyBit == 0
}

// IsPublic reports whether the type is part of the public PNG registry.
func (t ChunkType) IsPublic() bool {
	return t.b[1]&propertyBit == 0
}

// IsReservedBitValid reports whether the reserved (third) byte is uppercase,
// as all chunk types conforming to the current PNG version must be.
func (t ChunkType) IsReservedBitValid() bool {
	return t.b[2]&propertyBit == 0
}

// IsSafeToCopy reports whether editors that do not recognize the chunk may
// copy it into a modified image.
func (t ChunkType) IsSafeToCopy() bool {
	return t.b[3]&propertyBit != 0
}

// IsValid reports whether the type is usable. Byte legality is checked on
// construction, so this only depends on the reserved bit.
func (t ChunkType) IsValid() bool {
	return t.IsReservedBitValid()
}

func (t ChunkType) String() string {
	return string(t.b[:])
}

func isLetter(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}
