// Package rdbfmt implements the RDB v6 wire codec: length and string
// encodings, the nine value-type encodings, LZF decompression, and the
// record/database/snapshot framing. Every decoded node keeps enough of
// its own structure to re-serialize byte-for-byte identical to what it
// was parsed from.
package rdbfmt

import "fmt"

// ParseError reports that input bytes do not conform to the RDB v6 grammar:
// an unexpected tag, a truncated length or payload, a missing magic, or a
// missing terminator.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rdbfmt: parse error at offset %d: %s", e.Offset, e.Reason)
}

func newParseError(offset int, format string, args ...any) error {
	return &ParseError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// DecodeError reports that LZF decompression indexed out of the bounds of
// its source or destination buffers.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rdbfmt: lzf decode error: %s", e.Reason)
}

func newDecodeError(format string, args ...any) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}
