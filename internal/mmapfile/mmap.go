// Package mmapfile provides a read-only, whole-file memory map for feeding
// the rdbfmt parser without copying input files into a []byte.
package mmapfile

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// WithMapped opens path read-only, memory-maps its entire contents, and
// invokes f with the mapped byte view. The mapping is released when f
// returns, whether normally or with an error (spec.md §4.8). The view is
// only valid for the duration of the call; f must not retain it.
func WithMapped[A any](path string, f func([]byte) (A, error)) (A, error) {
	var zero A

	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("mmapfile: open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return zero, fmt.Errorf("mmapfile: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		// mmap.Map rejects zero-length files; treat an empty input as an
		// empty view rather than a failure.
		return f(nil)
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return zero, fmt.Errorf("mmapfile: mmap %s: %w", path, err)
	}
	defer m.Unmap()

	return f([]byte(m))
}
