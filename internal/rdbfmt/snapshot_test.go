package rdbfmt

import "testing"

// TestParseEncodeRoundTrip57Bytes is the end-to-end serde vector from
// spec.md §8: a 57-byte snapshot with a DB-0 marker, a LIST record under a
// millisecond expiry, a SET record under a second expiry, and a SORTEDSET
// record, terminator, and zeroed checksum. Parsing then re-encoding must
// reproduce the input byte-for-byte (the round-trip identity invariant,
// spec.md §8 "Round-trip identity").
func TestParseEncodeRoundTrip57Bytes(t *testing.T) {
	in := []byte{
		// magic + version
		'R', 'E', 'D', 'I', 'S', '0', '0', '0', '6',
		// DB 0
		0xFE, 0x00,
		// LIST record under ms-expiry: FC + 8 zero bytes, type 0x01 (List),
		// key "0", value [ "1", "2" ]
		0xFC, 0, 0, 0, 0, 0, 0, 0, 0,
		0x01, 0x01, '0', 0x02, 0x01, '1', 0x01, '2',
		// SET record under s-expiry: FD + 4 zero bytes, type 0x02 (Set),
		// key "0", value [ "1", "2" ]
		0xFD, 0, 0, 0, 0,
		0x02, 0x01, '0', 0x02, 0x01, '1', 0x01, '2',
		// SORTEDSET record, no expiry: type 0x03, key "0", 1 member "1" with
		// a zero-length score
		0x03, 0x01, '0', 0x01, 0x01, '1', 0x00,
		// terminator + zeroed checksum
		0xFF,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	if len(in) != 57 {
		t.Fatalf("test vector is %d bytes, want 57", len(in))
	}

	snapshot, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(snapshot.Databases) != 1 {
		t.Fatalf("len(Databases) = %d, want 1", len(snapshot.Databases))
	}
	if len(snapshot.Databases[0].Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(snapshot.Databases[0].Records))
	}
	if snapshot.Checksum == nil || len(snapshot.Checksum.Bytes) != 8 {
		t.Fatalf("expected an 8-byte checksum, got %+v", snapshot.Checksum)
	}

	var buf writerBuf
	if _, err := snapshot.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(buf) != string(in) {
		t.Fatalf("round-trip mismatch:\n got  %x\n want %x", []byte(buf), in)
	}
}

func TestParseRejectsMissingMagic(t *testing.T) {
	if _, err := Parse([]byte("NOTREDIS0006\xFF")); err == nil {
		t.Fatalf("expected error for missing magic")
	}
}

func TestParseRejectsTruncatedSnapshot(t *testing.T) {
	in := []byte("REDIS0006\xFE\x00")
	if _, err := Parse(in); err == nil {
		t.Fatalf("expected error for a snapshot with no terminator")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	in := append([]byte("REDIS0006\xFF"), 0x00)
	if _, err := Parse(in); err == nil {
		t.Fatalf("expected error for trailing data after a truncated checksum")
	}
}

func TestParseEmptySnapshot(t *testing.T) {
	in := []byte("REDIS0006\xFF")
	snapshot, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(snapshot.Databases) != 0 {
		t.Fatalf("len(Databases) = %d, want 0", len(snapshot.Databases))
	}
	if snapshot.Checksum != nil {
		t.Fatalf("expected no checksum, got %+v", snapshot.Checksum)
	}

	var buf writerBuf
	if _, err := snapshot.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(buf) != string(in) {
		t.Fatalf("round-trip %x => %x", in, []byte(buf))
	}
}
