package rdbfmt

import (
	"encoding/binary"
	"io"
)

// LengthKind distinguishes a decoded numeric length from a "special"
// encoding selector (used by string encodings to pick int8/int16/int32/LZF).
type LengthKind int

const (
	LengthInteger LengthKind = iota
	LengthSpecial
)

// LengthEncoded is a decoded RDB length prefix (spec.md §4.1). It carries
// both the interpreted value and the exact bytes it was read from, so
// Encode always reproduces its source verbatim regardless of how it was
// decoded.
type LengthEncoded struct {
	Kind    LengthKind
	Value   uint32 // valid when Kind == LengthInteger
	Variant uint8  // valid when Kind == LengthSpecial, 0..63
	Source  []byte
}

// decodeLength reads one length prefix starting at buf[pos]. It returns the
// decoded node and the position just past the bytes it consumed.
func decodeLength(buf []byte, pos int) (LengthEncoded, int, error) {
	if pos >= len(buf) {
		return LengthEncoded{}, pos, newParseError(pos, "truncated length prefix")
	}
	first := buf[pos]
	switch first >> 6 {
	case 0b00:
		// 1-byte, 6-bit length.
		return LengthEncoded{
			Kind:   LengthInteger,
			Value:  uint32(first & 0x3F),
			Source: buf[pos : pos+1],
		}, pos + 1, nil

	case 0b01:
		// 2-byte, 14-bit length, big-endian over the masked pair.
		if pos+2 > len(buf) {
			return LengthEncoded{}, pos, newParseError(pos, "truncated 14-bit length")
		}
		v := (uint32(first&0x3F) << 8) | uint32(buf[pos+1])
		return LengthEncoded{
			Kind:   LengthInteger,
			Value:  v,
			Source: buf[pos : pos+2],
		}, pos + 2, nil

	case 0b10:
		// 5-byte, 32-bit length; low 6 bits of the first byte are unused.
		if pos+5 > len(buf) {
			return LengthEncoded{}, pos, newParseError(pos, "truncated 32-bit length")
		}
		v := binary.BigEndian.Uint32(buf[pos+1 : pos+5])
		return LengthEncoded{
			Kind:   LengthInteger,
			Value:  v,
			Source: buf[pos : pos+5],
		}, pos + 5, nil

	default: // 0b11
		// Special encoding selector, no numeric length.
		return LengthEncoded{
			Kind:    LengthSpecial,
			Variant: first & 0x3F,
			Source:  buf[pos : pos+1],
		}, pos + 1, nil
	}
}

// Encode writes the node's original source bytes verbatim.
func (l LengthEncoded) Encode(w io.Writer) (int, error) {
	return w.Write(l.Source)
}
