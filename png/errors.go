// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//

package png

import "errors"

// Errors returned by this package are wrapped with context; match them with
// errors.Is.
var (
	ErrInvalidByte      = errors.New("invalid chunk type byte")
	ErrInvalidLength    = errors.New("invalid chunk type length")
	ErrInvalidSignature = errors.New("wrong PNG header")
	ErrLengthMismatch   = errors.New("chunk length mismatch")
	ErrInvalidCrc       = errors.New("chunk CRC32 mismatch")
	ErrInvalidChunkType = errors.New("invalid chunk type")
	ErrInvalidEncoding  = errors.New("chunk data is not valid UTF-8")
	ErrChunkNotFound    = errors.New("chunk not found")
)
