package rdbfmt

import "io"

// ValueVariant identifies which of the nine RDB value encodings a
// ValueEncoded holds (spec.md §4.4).
type ValueVariant int

const (
	ValueStringV ValueVariant = iota
	ValueList
	ValueSet
	ValueSortedSet
	ValueHashmap
	ValueZiplist
	ValueIntset
	ValueSortedSetZiplist
	ValueHashmapZiplist
)

// SortedSetMember is one (member, score) pair of an old-style sorted-set
// encoding (type 0x03). The score is carried opaquely: a one-byte length
// followed by that many score bytes, never interpreted by this codec.
type SortedSetMember struct {
	Member     StringEncoded
	ScoreLen   byte
	ScoreBytes []byte
}

// HashmapEntry is one field/value pair of a plain hashmap encoding
// (type 0x04).
type HashmapEntry struct {
	Field StringEncoded
	Value StringEncoded
}

// ValueEncoded is a decoded RDB value, tagged by which of the nine
// encodings produced it (spec.md §3, §4.4). Opaque packed encodings
// (ziplist, intset, sortedset-ziplist, hashmap-ziplist) are carried as a
// single StringEncoded payload and never dissected (spec.md §9).
type ValueEncoded struct {
	Variant ValueVariant

	StringVal StringEncoded     // ValueStringV
	Length    LengthEncoded     // element count, for List/Set/SortedSet/Hashmap
	Elements  []StringEncoded   // ValueList, ValueSet
	Members   []SortedSetMember // ValueSortedSet
	Fields    []HashmapEntry    // ValueHashmap
	Opaque    StringEncoded     // ValueZiplist, ValueIntset, ValueSortedSetZiplist, ValueHashmapZiplist
}

// decodeValue dispatches on the value-type tag byte (spec.md §4.4). The tag
// byte itself is not part of ValueEncoded; the caller (decodeRecord) reads
// it and Record.Encode writes it separately, matching the RDB wire order key-type-before-value-body.
func decodeValue(buf []byte, pos int, typeByte byte) (ValueEncoded, int, error) {
	switch typeByte {
	case TypeString:
		s, next, err := decodeString(buf, pos)
		return ValueEncoded{Variant: ValueStringV, StringVal: s}, next, err

	case TypeList, TypeSet:
		length, next, err := decodeLength(buf, pos)
		if err != nil {
			return ValueEncoded{}, pos, err
		}
		elems := make([]StringEncoded, 0, length.Value)
		for i := uint32(0); i < length.Value; i++ {
			var s StringEncoded
			s, next, err = decodeString(buf, next)
			if err != nil {
				return ValueEncoded{}, pos, err
			}
			elems = append(elems, s)
		}
		variant := ValueList
		if typeByte == TypeSet {
			variant = ValueSet
		}
		return ValueEncoded{Variant: variant, Length: length, Elements: elems}, next, nil

	case TypeSortedSet:
		length, next, err := decodeLength(buf, pos)
		if err != nil {
			return ValueEncoded{}, pos, err
		}
		members := make([]SortedSetMember, 0, length.Value)
		for i := uint32(0); i < length.Value; i++ {
			var member StringEncoded
			member, next, err = decodeString(buf, next)
			if err != nil {
				return ValueEncoded{}, pos, err
			}
			if next >= len(buf) {
				return ValueEncoded{}, pos, newParseError(next, "truncated sorted-set score length")
			}
			scoreLen := buf[next]
			next++
			if next+int(scoreLen) > len(buf) {
				return ValueEncoded{}, pos, newParseError(next, "truncated sorted-set score bytes")
			}
			scoreBytes := buf[next : next+int(scoreLen)]
			next += int(scoreLen)
			members = append(members, SortedSetMember{Member: member, ScoreLen: scoreLen, ScoreBytes: scoreBytes})
		}
		return ValueEncoded{Variant: ValueSortedSet, Length: length, Members: members}, next, nil

	case TypeHashmap:
		length, next, err := decodeLength(buf, pos)
		if err != nil {
			return ValueEncoded{}, pos, err
		}
		fields := make([]HashmapEntry, 0, length.Value)
		for i := uint32(0); i < length.Value; i++ {
			var field, value StringEncoded
			field, next, err = decodeString(buf, next)
			if err != nil {
				return ValueEncoded{}, pos, err
			}
			value, next, err = decodeString(buf, next)
			if err != nil {
				return ValueEncoded{}, pos, err
			}
			fields = append(fields, HashmapEntry{Field: field, Value: value})
		}
		return ValueEncoded{Variant: ValueHashmap, Length: length, Fields: fields}, next, nil

	case TypeZiplist, TypeIntset, TypeSortedSetZiplist, TypeHashmapZiplist:
		opaque, next, err := decodeString(buf, pos)
		if err != nil {
			return ValueEncoded{}, pos, err
		}
		variant := map[byte]ValueVariant{
			TypeZiplist:          ValueZiplist,
			TypeIntset:           ValueIntset,
			TypeSortedSetZiplist: ValueSortedSetZiplist,
			TypeHashmapZiplist:   ValueHashmapZiplist,
		}[typeByte]
		return ValueEncoded{Variant: variant, Opaque: opaque}, next, nil

	default:
		return ValueEncoded{}, pos, newParseError(pos, "unsupported value type byte 0x%02X", typeByte)
	}
}

// Encode writes the value body in the exact wire order it was decoded from.
func (v ValueEncoded) Encode(w io.Writer) (int, error) {
	switch v.Variant {
	case ValueStringV:
		return v.StringVal.Encode(w)

	case ValueList, ValueSet:
		n, err := v.Length.Encode(w)
		if err != nil {
			return n, err
		}
		for _, e := range v.Elements {
			m, err := e.Encode(w)
			n += m
			if err != nil {
				return n, err
			}
		}
		return n, nil

	case ValueSortedSet:
		n, err := v.Length.Encode(w)
		if err != nil {
			return n, err
		}
		for _, mem := range v.Members {
			m, err := mem.Member.Encode(w)
			n += m
			if err != nil {
				return n, err
			}
			m, err = w.Write([]byte{mem.ScoreLen})
			n += m
			if err != nil {
				return n, err
			}
			m, err = w.Write(mem.ScoreBytes)
			n += m
			if err != nil {
				return n, err
			}
		}
		return n, nil

	case ValueHashmap:
		n, err := v.Length.Encode(w)
		if err != nil {
			return n, err
		}
		for _, f := range v.Fields {
			m, err := f.Field.Encode(w)
			n += m
			if err != nil {
				return n, err
			}
			m, err = f.Value.Encode(w)
			n += m
			if err != nil {
				return n, err
			}
		}
		return n, nil

	default: // the four opaque packed encodings
		return v.Opaque.Encode(w)
	}
}
