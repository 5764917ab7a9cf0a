// PNG chunk records.
//
// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//

package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode/utf8"
)

// A chunk on the wire is length (4), type (4), data (length), CRC32 (4).
const chunkOverhead = 12

// Chunk is a PNG file chunk. Its length and CRC32 checksum are derived from
// the type and data whenever they are asked for.
type Chunk struct {
	typ  ChunkType
	data []byte
}

// NewChunk returns a chunk holding a copy of data. The type does not have to
// satisfy IsValid; real-world files carry odd but well-formed types.
func NewChunk(typ ChunkType, data []byte) Chunk {
	return Chunk{typ: typ, data: bytes.Clone(data)}
}

// ParseChunk decodes exactly one chunk from b, which must contain nothing
// but that chunk.
func ParseChunk(b []byte) (Chunk, error) {
	if len(b) < chunkOverhead {
		return Chunk{}, fmt.Errorf("%w: got %d bytes, need at least %d",
			ErrLengthMismatch, len(b), chunkOverhead)
	}

	length := binary.BigEndian.Uint32(b[0:4])
	if uint64(length)+chunkOverhead != uint64(len(b)) {
		return Chunk{}, fmt.Errorf("%w: declared length %d, got %d data bytes",
			ErrLengthMismatch, length, len(b)-chunkOverhead)
	}

	typ, err := NewChunkType([4]byte(b[4:8]))
	if err != nil {
		return Chunk{}, fmt.Errorf("%w: %w", ErrInvalidChunkType, err)
	}

	c := NewChunk(typ, b[8:len(b)-4])
	want := binary.BigEndian.Uint32(b[len(b)-4:])
	if got := c.CRC(); got != want {
		return Chunk{}, fmt.Errorf("%w: %s chunk has %08x, computed %08x",
			ErrInvalidCrc, typ, want, got)
	}
	return c, nil
}

// Length returns the number of data bytes.
func (c Chunk) Length() uint32 {
	return uint32(len(c.data))
}

// Type returns the chunk type.
func (c Chunk) Type() ChunkType {
	return c.typ
}

// Data returns a copy of the chunk data.
func (c Chunk) Data() []byte {
	return bytes.Clone(c.data)
}

// CRC returns the CRC32 (IEEE) of the type bytes followed by the data.
func (c Chunk) CRC() uint32 {
	crc := crc32.NewIEEE()
	crc.Write(c.typ.b[:])
	crc.Write(c.data)
	return crc.Sum32()
}

// Text returns the chunk data as a string.
func (c Chunk) Text() (string, error) {
	if !utf8.Valid(c.data) {
		return "", fmt.Errorf("%w: %s chunk", ErrInvalidEncoding, c.typ)
	}
	return string(c.data), nil
}

// Bytes returns the wire encoding of the chunk.
func (c Chunk) Bytes() []byte {
	return c.appendTo(make([]byte, 0, c.wireSize()))
}

func (c Chunk) appendTo(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, c.Length())
	buf = append(buf, c.typ.b[:]...)
	buf = append(buf, c.data...)
	return binary.BigEndian.AppendUint32(buf, c.CRC())
}

func (c Chunk) wireSize() int {
	return chunkOverhead + len(c.data)
}

func (c Chunk) String() string {
	var sb strings.Builder
	fmt.Fprintln(&sb, "Chunk {")
	fmt.Fprintf(&sb, "  Length: %d\n", c.Length())
	fmt.Fprintf(&sb, "  Type: %s\n", c.typ)
	fmt.Fprintf(&sb, "  Data: %d bytes\n", len(c.data))
	fmt.Fprintf(&sb, "  Crc: %d\n", c.CRC())
	fmt.Fprintln(&sb, "}")
	return sb.String()
}
