package rdbfmt

import "io"

// RDBVersion is the fixed 4-byte ASCII version following the "REDIS" magic.
type RDBVersion struct {
	Bytes []byte
}

// Checksum is the 8-byte trailer after the 0xFF terminator. This tool never
// validates it (spec.md §1 Non-goals: "emitting a valid CRC64 checksum" is
// explicitly out of scope) and treats it as opaque bytes.
type Checksum struct {
	Bytes []byte
}

// RDB is a fully decoded snapshot: version, an ordered sequence of
// databases, and an optional trailing checksum (spec.md §3, §4.6).
type RDB struct {
	Version   RDBVersion
	Databases []Database
	Checksum  *Checksum
}

// Parse decodes buf as a complete RDB v6 snapshot: the "REDIS" + 4-byte
// version header, zero or more databases, the 0xFF terminator, an optional
// 8-byte checksum, then end of input.
func Parse(buf []byte) (*RDB, error) {
	pos := 0
	if len(buf) < len(magic)+4 || string(buf[:len(magic)]) != magic {
		return nil, newParseError(0, "missing %q magic", magic)
	}
	pos += len(magic)
	ver := RDBVersion{Bytes: buf[pos : pos+4]}
	pos += 4

	var dbs []Database
	for {
		if pos >= len(buf) {
			return nil, newParseError(pos, "truncated snapshot, missing 0xFF terminator")
		}
		if buf[pos] == markerEOF {
			break
		}
		db, next, err := decodeDatabase(buf, pos)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, db)
		pos = next
	}

	pos++ // consume 0xFF

	var checksum *Checksum
	if pos < len(buf) {
		if pos+checksumSize > len(buf) {
			return nil, newParseError(pos, "truncated checksum trailer")
		}
		checksum = &Checksum{Bytes: buf[pos : pos+checksumSize]}
		pos += checksumSize
	}

	if pos != len(buf) {
		return nil, newParseError(pos, "trailing data after checksum")
	}

	return &RDB{Version: ver, Databases: dbs, Checksum: checksum}, nil
}

// Encode writes the magic, version, every database, the terminator, and the
// checksum (if present) in that order.
func (r *RDB) Encode(w io.Writer) (int, error) {
	n, err := io.WriteString(w, magic)
	if err != nil {
		return n, err
	}
	m, err := w.Write(r.Version.Bytes)
	n += m
	if err != nil {
		return n, err
	}
	for i := range r.Databases {
		m, err = r.Databases[i].Encode(w)
		n += m
		if err != nil {
			return n, err
		}
	}
	m, err = w.Write([]byte{markerEOF})
	n += m
	if err != nil {
		return n, err
	}
	if r.Checksum != nil {
		m, err = w.Write(r.Checksum.Bytes)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
