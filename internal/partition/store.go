// Package partition implements the per-database intermediate-file
// controller described in spec.md §4.7: it fans input records out into one
// file per database number, drops duplicate keys, and stitches the
// fragments into a single merged snapshot.
package partition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rdbmerge/internal/logger"
	"rdbmerge/internal/rdbfmt"
)

// ErrDirectoryMissing is returned by Open when the output directory does
// not already exist (spec.md §4.7, §7).
var ErrDirectoryMissing = errors.New("partition: output directory does not exist")

const (
	partPrefix = "PART_"
	partSuffix = ".rdb"
	mergeFile  = "MERGE.rdb"
	rdbVersion = "0006"
	rdbMagic   = "REDIS"
	terminator = 0xFF
)

// entry tracks the open intermediate file and, when duplicate-checking is
// enabled, the set of decoded keys already written for one database number.
type entry struct {
	file *os.File
	seen map[string]struct{} // nil when duplicate-checking is disabled
}

// Store owns the per-database intermediate files for one merge run.
type Store struct {
	outputDir       string
	checkDuplicates bool
	entries         map[uint32]*entry
}

// Open validates that outputDir exists and returns a fresh Store with no
// open intermediates and no recorded keys (spec.md §4.7).
func Open(outputDir string, checkDuplicates bool) (*Store, error) {
	info, err := os.Stat(outputDir)
	if err != nil || !info.IsDir() {
		return nil, ErrDirectoryMissing
	}
	return &Store{
		outputDir:       outputDir,
		checkDuplicates: checkDuplicates,
		entries:         make(map[uint32]*entry),
	}, nil
}

func partPath(outputDir string, dbNum uint32) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s%08x%s", partPrefix, dbNum, partSuffix))
}

func mergePath(outputDir string) string {
	return filepath.Join(outputDir, mergeFile)
}

// Write routes one record to its database's intermediate file, creating the
// file and writing its header on first use, and discarding the record if
// duplicate-checking is enabled and its key was already seen in this
// database (spec.md §4.7 step 2-3). It reports whether the record was
// actually written (false means it was discarded as a duplicate).
func (s *Store) Write(dbNum rdbfmt.DatabaseNumber, record *rdbfmt.Record) (bool, error) {
	e, ok := s.entries[dbNum.Num]
	if !ok {
		file, err := os.Create(partPath(s.outputDir, dbNum.Num))
		if err != nil {
			return false, fmt.Errorf("partition: create intermediate for db %d: %w", dbNum.Num, err)
		}
		if _, err := dbNum.Encode(file); err != nil {
			file.Close()
			return false, fmt.Errorf("partition: write database header for db %d: %w", dbNum.Num, err)
		}
		e = &entry{file: file}
		if s.checkDuplicates {
			e.seen = make(map[string]struct{})
		}
		s.entries[dbNum.Num] = e
	}

	if s.checkDuplicates {
		key, err := record.Key.Canonical()
		if err != nil {
			return false, fmt.Errorf("partition: decode key for dedup check: %w", err)
		}
		if _, dup := e.seen[key]; dup {
			logger.Warnf("db %d: duplicate key %q discarded", dbNum.Num, key)
			return false, nil
		}
		if _, err := record.Encode(e.file); err != nil {
			return false, fmt.Errorf("partition: write record for db %d: %w", dbNum.Num, err)
		}
		e.seen[key] = struct{}{}
		return true, nil
	}

	if _, err := record.Encode(e.file); err != nil {
		return false, fmt.Errorf("partition: write record for db %d: %w", dbNum.Num, err)
	}
	return true, nil
}

// ClosePartFiles releases all open intermediate file handles. The seen-sets
// and known database numbers are retained; Merge iterates over them
// (spec.md §4.7).
func (s *Store) ClosePartFiles() error {
	var firstErr error
	for _, e := range s.entries {
		if err := e.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("partition: close intermediate: %w", err)
		}
		e.file = nil
	}
	return firstErr
}

// Merge creates MERGE.rdb, writes the RDB header, concatenates every known
// database's intermediate contents (in unspecified order), then writes the
// terminator and a zeroed checksum. It returns the total bytes written
// (spec.md §4.7, §6).
func (s *Store) Merge() (int64, error) {
	out, err := os.Create(mergePath(s.outputDir))
	if err != nil {
		return 0, fmt.Errorf("partition: create %s: %w", mergeFile, err)
	}
	defer out.Close()

	var total int64
	n, err := out.WriteString(rdbMagic + rdbVersion)
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("partition: write header: %w", err)
	}

	for dbNum := range s.entries {
		written, err := s.appendPart(out, dbNum)
		total += written
		if err != nil {
			return total, err
		}
	}

	m, err := out.Write([]byte{terminator})
	total += int64(m)
	if err != nil {
		return total, fmt.Errorf("partition: write terminator: %w", err)
	}

	m, err = out.Write(make([]byte, 8))
	total += int64(m)
	if err != nil {
		return total, fmt.Errorf("partition: write checksum placeholder: %w", err)
	}

	return total, nil
}

func (s *Store) appendPart(out *os.File, dbNum uint32) (int64, error) {
	data, err := os.ReadFile(partPath(s.outputDir, dbNum))
	if err != nil {
		return 0, fmt.Errorf("partition: read intermediate for db %d: %w", dbNum, err)
	}
	n, err := out.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("partition: append intermediate for db %d: %w", dbNum, err)
	}
	return int64(n), nil
}
