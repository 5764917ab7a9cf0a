// PNG chunk container. Parses a PNG datastream into its signature and an
// ordered list of chunks, allows adding and removing chunks, and writes the
// datastream back out. Chunk data is treated as opaque; pixel data is never
// decoded.
//
// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//

// Package png reads, edits and writes the chunk structure of PNG files.
package png

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"strings"
)

// From https://www.w3.org/TR/png/#5PNG-file-signature:
// ```
// The first eight bytes of a PNG datastream always contain the following
// (decimal) values:
//
// 137 80 78 71 13 10 26 10
//
// which are (in hexadecimal):
//
// 89 50 4E 47 0D 0A 1A 0A
// ```
const Signature = "\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"

// PNG is a parsed PNG datastream: the signature followed by its chunks in
// file order.
type PNG struct {
	chunks []Chunk
}

// New returns a PNG holding the given chunks in order.
func New(chunks ...Chunk) *PNG {
	return &PNG{chunks: slices.Clone(chunks)}
}

// Load reads all of r and parses it.
func Load(r io.Reader) (*PNG, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a complete PNG datastream. Any malformed chunk fails the
// whole parse.
func Parse(b []byte) (*PNG, error) {
	if len(b) < len(Signature) || string(b[:len(Signature)]) != Signature {
		n := min(len(b), len(Signature))
		return nil, fmt.Errorf("%w: got %x - expected %x",
			ErrInvalidSignature, b[:n], Signature)
	}

	var chunks []Chunk
	off := len(Signature)
	for off < len(b) {
		end, err := chunkEnd(b, off)
		if err != nil {
			return nil, fmt.Errorf("chunk %d at offset %d: %w", len(chunks), off, err)
		}
		c, err := ParseChunk(b[off:end])
		if err != nil {
			return nil, fmt.Errorf("chunk %d at offset %d: %w", len(chunks), off, err)
		}
		chunks = append(chunks, c)
		off = end
	}
	return &PNG{chunks: chunks}, nil
}

// chunkEnd returns the offset just past the chunk starting at off, based on
// its declared length.
func chunkEnd(b []byte, off int) (int, error) {
	rest := len(b) - off
	if rest < chunkOverhead {
		return 0, fmt.Errorf("%w: %d trailing bytes, need at least %d",
			ErrLengthMismatch, rest, chunkOverhead)
	}
	length := binary.BigEndian.Uint32(b[off : off+4])
	if uint64(length) > uint64(rest-chunkOverhead) {
		return 0, fmt.Errorf("%w: declared length %d, only %d bytes left",
			ErrLengthMismatch, length, rest-chunkOverhead)
	}
	return off + chunkOverhead + int(length), nil
}

// AppendChunk adds c after the last chunk. No ordering rules are enforced,
// so it is up to the caller not to append after IEND if that matters.
func (png *PNG) AppendChunk(c Chunk) {
	png.chunks = append(png.chunks, c)
}

// ChunkByType returns the first chunk whose type is typ.
func (png *PNG) ChunkByType(typ string) (Chunk, bool) {
	i := png.index(typ)
	if i < 0 {
		return Chunk{}, false
	}
	return png.chunks[i], true
}

// RemoveChunk removes the first chunk whose type is typ and returns it. If
// several chunks share the type, the others are left in place.
func (png *PNG) RemoveChunk(typ string) (Chunk, error) {
	i := png.index(typ)
	if i < 0 {
		return Chunk{}, fmt.Errorf("%w: no %q chunk", ErrChunkNotFound, typ)
	}
	c := png.chunks[i]
	png.chunks = slices.Delete(png.chunks, i, i+1)
	return c, nil
}

func (png *PNG) index(typ string) int {
	return slices.IndexFunc(png.chunks, func(c Chunk) bool {
		return c.typ.String() == typ
	})
}

// Chunks returns the chunks in file order.
func (png *PNG) Chunks() []Chunk {
	return slices.Clone(png.chunks)
}

// Bytes returns the wire encoding of the datastream.
func (png *PNG) Bytes() []byte {
	size := len(Signature)
	for _, c := range png.chunks {
		size += c.wireSize()
	}
	buf := make([]byte, 0, size)
	buf = append(buf, Signature...)
	for _, c := range png.chunks {
		buf = c.appendTo(buf)
	}
	return buf
}

// WriteTo writes the wire encoding of the datastream to w.
func (png *PNG) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(png.Bytes())
	return int64(n), err
}

// TextChunks returns the contents of all tEXt chunks.
func (png *PNG) TextChunks() []string {
	var texts []string
	for _, c := range png.chunks {
		if c.typ.String() == "tEXt" {
			texts = append(texts, string(c.data))
		}
	}
	return texts
}

func (png *PNG) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PNG signature: %x\n", Signature)
	for _, c := range png.chunks {
		sb.WriteString(c.String())
	}
	return sb.String()
}
