package rdbfmt

import (
	"io"
	"strconv"
)

// StringVariant distinguishes the three kinds of RDB string encoding: raw,
// integer (1, 2 or 4 bytes), and LZF-compressed.
type StringVariant int

const (
	StringRaw StringVariant = iota
	StringInt
	StringLZF
)

// StringEncoded is a decoded RDB string (spec.md §4.2). Raw and Int variants
// carry their length prefix plus the literal payload bytes; the LZF variant
// additionally carries the compressed- and uncompressed-length sub-prefixes.
// Encode reproduces each part verbatim, in the order it was read, so the
// concatenation always equals the original source bytes.
type StringEncoded struct {
	Variant StringVariant
	Length  LengthEncoded // the leading length/selector prefix

	// Raw: Payload is Length.Value bytes.
	// Int: Payload is 1, 2, or 4 bytes depending on Length.Variant.
	Payload []byte

	// LZF only.
	CompressedLen   LengthEncoded
	UncompressedLen LengthEncoded
}

// decodeString reads one string encoding starting at buf[pos] (spec.md §4.2).
func decodeString(buf []byte, pos int) (StringEncoded, int, error) {
	length, next, err := decodeLength(buf, pos)
	if err != nil {
		return StringEncoded{}, pos, err
	}

	if length.Kind == LengthInteger {
		n := int(length.Value)
		if next+n > len(buf) {
			return StringEncoded{}, pos, newParseError(pos, "truncated raw string payload")
		}
		return StringEncoded{
			Variant: StringRaw,
			Length:  length,
			Payload: buf[next : next+n],
		}, next + n, nil
	}

	switch length.Variant {
	case StringEncInt8:
		if next+1 > len(buf) {
			return StringEncoded{}, pos, newParseError(pos, "truncated int8 payload")
		}
		return StringEncoded{Variant: StringInt, Length: length, Payload: buf[next : next+1]}, next + 1, nil

	case StringEncInt16:
		if next+2 > len(buf) {
			return StringEncoded{}, pos, newParseError(pos, "truncated int16 payload")
		}
		return StringEncoded{Variant: StringInt, Length: length, Payload: buf[next : next+2]}, next + 2, nil

	case StringEncInt32:
		if next+4 > len(buf) {
			return StringEncoded{}, pos, newParseError(pos, "truncated int32 payload")
		}
		return StringEncoded{Variant: StringInt, Length: length, Payload: buf[next : next+4]}, next + 4, nil

	case StringEncLZF:
		clen, next2, err := decodeLength(buf, next)
		if err != nil {
			return StringEncoded{}, pos, err
		}
		ulen, next3, err := decodeLength(buf, next2)
		if err != nil {
			return StringEncoded{}, pos, err
		}
		n := int(clen.Value)
		if next3+n > len(buf) {
			return StringEncoded{}, pos, newParseError(pos, "truncated lzf payload")
		}
		return StringEncoded{
			Variant:         StringLZF,
			Length:          length,
			CompressedLen:   clen,
			UncompressedLen: ulen,
			Payload:         buf[next3 : next3+n],
		}, next3 + n, nil

	default:
		return StringEncoded{}, pos, newParseError(pos, "unsupported string special encoding %d", length.Variant)
	}
}

// Encode writes the length prefix, any LZF sub-prefixes, and the payload in
// that order, which always reproduces the original source bytes.
func (s StringEncoded) Encode(w io.Writer) (int, error) {
	n, err := s.Length.Encode(w)
	if err != nil {
		return n, err
	}
	if s.Variant == StringLZF {
		m, err := s.CompressedLen.Encode(w)
		n += m
		if err != nil {
			return n, err
		}
		m, err = s.UncompressedLen.Encode(w)
		n += m
		if err != nil {
			return n, err
		}
	}
	m, err := w.Write(s.Payload)
	return n + m, err
}

// Canonical renders the string's canonical decoded form, used only for the
// duplicate-key check (spec.md §4.5, §9 "Duplicate-key canonicalization").
// Raw and LZF strings decode to their plaintext; Int strings render as
// decimal using the big-endian fold documented in §4.5 (not Redis's native
// little-endian integer encoding — see the open question there).
func (s StringEncoded) Canonical() (string, error) {
	switch s.Variant {
	case StringRaw:
		return string(s.Payload), nil
	case StringInt:
		return intStringDecimal(s.Payload), nil
	case StringLZF:
		plain, err := lzfDecompress(s.Payload, int(s.UncompressedLen.Value))
		if err != nil {
			return "", err
		}
		return string(plain), nil
	default:
		return "", newParseError(0, "unreachable string variant %d", s.Variant)
	}
}

// intStringDecimal folds payload bytes big-endian-first into an accumulator
// and renders the result as decimal (spec.md §4.5). This intentionally
// differs from Redis, which stores integer-encoded strings little-endian;
// the spec documents this as a known (but preserved) discrepancy.
func intStringDecimal(payload []byte) string {
	var acc uint32
	for _, b := range payload {
		acc = (acc << 8) | uint32(b)
	}
	return strconv.FormatUint(uint64(acc), 10)
}
