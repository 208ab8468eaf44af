package rdbfmt

// Value-type tags. The top bit of the type byte must be zero; anything
// else, including 0x09 (the deprecated zipmap), is a parse failure.
const (
	TypeString           = 0x00
	TypeList             = 0x01
	TypeSet              = 0x02
	TypeSortedSet        = 0x03
	TypeHashmap          = 0x04
	TypeZiplist          = 0x0A
	TypeIntset           = 0x0B
	TypeSortedSetZiplist = 0x0C
	TypeHashmapZiplist   = 0x0D
)

// String special-encoding variants (top two bits == 11 of the length byte).
const (
	StringEncInt8  = 0
	StringEncInt16 = 1
	StringEncInt32 = 2
	StringEncLZF   = 3
)

// Framing markers.
const (
	markerExpireMS  = 0xFC
	markerExpireSec = 0xFD // spec.md §9 open question 2: the source's own
	// parser tags this 0xFC, a bug; this implementation uses 0xFD per Redis.
	markerSelectDB = 0xFE
	markerEOF      = 0xFF
)

// magic is the fixed "REDIS" literal that opens every snapshot.
const magic = "REDIS"

// version is the 4-byte ASCII version this tool always writes.
const version = "0006"

// checksumSize is the number of trailing zero bytes this tool writes in
// place of a real CRC64 (spec.md §4.6, §9: "deliberately writes a zero
// checksum").
const checksumSize = 8
