// Package merge drives the end-to-end pipeline: memory-map each input file,
// parse it as an RDB v6 snapshot, filter by target database, and fan
// records out through a partition.Store before stitching the final
// snapshot together (spec.md §2 "Data flow").
package merge

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"rdbmerge/internal/logger"
	"rdbmerge/internal/mmapfile"
	"rdbmerge/internal/partition"
	"rdbmerge/internal/rdbfmt"
)

// Options configures one merge run.
type Options struct {
	Inputs          []string
	OutputDir       string
	TargetDatabases map[uint32]bool // empty/nil means "export all databases"
	CheckDuplicates bool
}

// Stats summarizes one merge run for the CLI's closing report.
type Stats struct {
	BytesWritten   int64
	WrittenPerDB   map[uint32]int
	DiscardedPerDB map[uint32]int
}

// Run executes one full merge: every input file is processed in order, its
// records are streamed into per-database intermediates, and the
// intermediates are then concatenated into outputDir/MERGE.rdb.
//
// The pipeline is single-threaded and synchronous end to end (spec.md §5):
// inputs are processed one at a time, in the order given, and
// ClosePartFiles/Merge only run after every input has been consumed.
func Run(opts Options) (Stats, error) {
	store, err := partition.Open(opts.OutputDir, opts.CheckDuplicates)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		WrittenPerDB:   make(map[uint32]int),
		DiscardedPerDB: make(map[uint32]int),
	}

	// One progress line at most every 200ms across all input files (the
	// limiter is shared by the whole run), so a snapshot with
	// millions of keys doesn't flood the console (spec.md §2 component 5;
	// repurposed from the teacher's outbound-write throttle, since this
	// tool has no network writes to throttle).
	progress := rate.NewLimiter(rate.Every(200*time.Millisecond), 1)

	for _, path := range opts.Inputs {
		logger.Infof("start: %s", path)
		written, discarded, err := processFile(path, store, opts.TargetDatabases, progress)
		for db, n := range written {
			stats.WrittenPerDB[db] += n
		}
		for db, n := range discarded {
			stats.DiscardedPerDB[db] += n
		}
		if err != nil {
			return stats, fmt.Errorf("merge: processing %s: %w", path, err)
		}
		logger.Infof("finish: %s", path)
	}

	logger.Infof("start: merge")
	if err := store.ClosePartFiles(); err != nil {
		return stats, err
	}
	total, err := store.Merge()
	stats.BytesWritten = total
	if err != nil {
		return stats, err
	}
	logger.Infof("finish: merge (%d bytes)", total)

	return stats, nil
}

// fileCounts accumulates per-database written/discarded counts for one
// input file; mmapfile.WithMapped requires a single return value.
type fileCounts struct {
	written   map[uint32]int
	discarded map[uint32]int
}

// processFile memory-maps one input file, parses it, and writes every
// record whose database passes the target filter through store.
func processFile(path string, store *partition.Store, target map[uint32]bool, progress *rate.Limiter) (map[uint32]int, map[uint32]int, error) {
	counts, err := mmapfile.WithMapped(path, func(buf []byte) (fileCounts, error) {
		result := fileCounts{written: make(map[uint32]int), discarded: make(map[uint32]int)}

		snapshot, err := rdbfmt.Parse(buf)
		if err != nil {
			return result, err
		}

		for _, db := range snapshot.Databases {
			if !wantDatabase(target, db.Number.Num) {
				continue
			}
			for i := range db.Records {
				ok, err := store.Write(db.Number, &db.Records[i])
				if err != nil {
					return result, err
				}
				if ok {
					result.written[db.Number.Num]++
				} else {
					result.discarded[db.Number.Num]++
				}
				if progress.Allow() {
					logger.Infof("db %d: %d records processed so far", db.Number.Num, result.written[db.Number.Num]+result.discarded[db.Number.Num])
				}
			}
		}
		return result, nil
	})
	return counts.written, counts.discarded, err
}

func wantDatabase(target map[uint32]bool, num uint32) bool {
	if len(target) == 0 {
		return true
	}
	return target[num]
}
