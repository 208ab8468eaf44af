package merge

import (
	"os"
	"path/filepath"
	"testing"

	"rdbmerge/internal/rdbfmt"
)

// snapshotBytes builds a minimal valid RDB v6 snapshot with one database
// containing String records for each of the given keys (value is the key
// itself), so tests can exercise Run against real files on disk.
func snapshotBytes(t *testing.T, dbNum byte, keys ...string) []byte {
	t.Helper()
	buf := []byte("REDIS0006")
	buf = append(buf, 0xFE, dbNum)
	for _, k := range keys {
		buf = append(buf, 0x00)            // type: String
		buf = append(buf, byte(len(k)))
		buf = append(buf, k...)
		buf = append(buf, byte(len(k)))
		buf = append(buf, k...)
	}
	buf = append(buf, 0xFF)
	buf = append(buf, make([]byte, 8)...)
	return buf
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunDeduplicatesAcrossInputFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.rdb", snapshotBytes(t, 0, "K"))
	b := writeFile(t, dir, "b.rdb", snapshotBytes(t, 0, "K"))
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	stats, err := Run(Options{
		Inputs:          []string{a, b},
		OutputDir:       outDir,
		CheckDuplicates: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.WrittenPerDB[0] != 1 {
		t.Fatalf("WrittenPerDB[0] = %d, want 1", stats.WrittenPerDB[0])
	}
	if stats.DiscardedPerDB[0] != 1 {
		t.Fatalf("DiscardedPerDB[0] = %d, want 1", stats.DiscardedPerDB[0])
	}

	merged, err := os.ReadFile(filepath.Join(outDir, "MERGE.rdb"))
	if err != nil {
		t.Fatalf("reading MERGE.rdb: %v", err)
	}
	snapshot, err := rdbfmt.Parse(merged)
	if err != nil {
		t.Fatalf("parsing MERGE.rdb: %v", err)
	}
	if len(snapshot.Databases) != 1 || len(snapshot.Databases[0].Records) != 1 {
		t.Fatalf("expected exactly 1 merged record, got snapshot %+v", snapshot)
	}
}

func TestRunNoCheckKeepsDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.rdb", snapshotBytes(t, 0, "K"))
	b := writeFile(t, dir, "b.rdb", snapshotBytes(t, 0, "K"))
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	stats, err := Run(Options{
		Inputs:          []string{a, b},
		OutputDir:       outDir,
		CheckDuplicates: false,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.WrittenPerDB[0] != 2 {
		t.Fatalf("WrittenPerDB[0] = %d, want 2", stats.WrittenPerDB[0])
	}
	if stats.DiscardedPerDB[0] != 0 {
		t.Fatalf("DiscardedPerDB[0] = %d, want 0", stats.DiscardedPerDB[0])
	}
}

func TestRunTargetDatabaseFilter(t *testing.T) {
	dir := t.TempDir()
	buf := []byte("REDIS0006")
	buf = append(buf, 0xFE, 0x00, 0x00, 0x01, 'A', 0x01, 'A') // db 0, key A
	buf = append(buf, 0xFE, 0x01, 0x00, 0x01, 'B', 0x01, 'B') // db 1, key B
	buf = append(buf, 0xFE, 0x02, 0x00, 0x01, 'C', 0x01, 'C') // db 2, key C
	buf = append(buf, 0xFF)
	buf = append(buf, make([]byte, 8)...)
	a := writeFile(t, dir, "a.rdb", buf)
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	stats, err := Run(Options{
		Inputs:          []string{a},
		OutputDir:       outDir,
		CheckDuplicates: true,
		TargetDatabases: map[uint32]bool{1: true, 2: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := stats.WrittenPerDB[0]; ok {
		t.Fatalf("database 0 should have been filtered out entirely")
	}
	if stats.WrittenPerDB[1] != 1 || stats.WrittenPerDB[2] != 1 {
		t.Fatalf("unexpected per-db counts: %+v", stats.WrittenPerDB)
	}

	merged, err := os.ReadFile(filepath.Join(outDir, "MERGE.rdb"))
	if err != nil {
		t.Fatalf("reading MERGE.rdb: %v", err)
	}
	snapshot, err := rdbfmt.Parse(merged)
	if err != nil {
		t.Fatalf("parsing MERGE.rdb: %v", err)
	}
	if len(snapshot.Databases) != 2 {
		t.Fatalf("expected 2 databases in output, got %d", len(snapshot.Databases))
	}
	for _, db := range snapshot.Databases {
		if db.Number.Num == 0 {
			t.Fatalf("database 0 should not appear in merged output")
		}
	}
}
