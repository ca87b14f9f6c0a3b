package walkfs

import (
	"io"
	"os"

	"github.com/mkessler/dupscan/internal/pathutil"
)

// dirIter wraps one open directory and streams its children in batches via
// more()/name()/fullName()/isDirectory().
type dirIter struct {
	dir     string
	f       *os.File
	entries []os.DirEntry
	idx     int
	cur     os.DirEntry
	err     error
}

const batchSize = 1000

func newDirIter(dir string) (*dirIter, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	return &dirIter{dir: dir, f: f}, nil
}

func (it *dirIter) close() { _ = it.f.Close() }

// more advances to the next entry, refilling the batch as needed, and
// reports whether one is available.
func (it *dirIter) more() bool {
	for it.idx >= len(it.entries) {
		entries, err := it.f.ReadDir(batchSize)
		if len(entries) == 0 {
			if err != nil && err != io.EOF {
				it.err = err
			}
			return false
		}
		it.entries = entries
		it.idx = 0
	}
	it.cur = it.entries[it.idx]
	it.idx++
	return true
}

func (it *dirIter) name() string { return it.cur.Name() }

// fullName composes the wrapped directory's path with the current child's
// name using the platform separator.
func (it *dirIter) fullName() string { return pathutil.Join(it.dir, it.cur.Name()) }

// isDirectory follows symlinks by default, matching host convention
// (see SPEC_FULL.md).
func (it *dirIter) isDirectory() bool {
	if it.cur.IsDir() {
		return true
	}
	if it.cur.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(it.fullName())
	return err == nil && info.IsDir()
}

// isRegular reports whether the current entry is a regular file (following
// symlinks), skipping devices/sockets/etc.
func (it *dirIter) isRegular() bool {
	if it.cur.Type().IsRegular() {
		return true
	}
	if it.cur.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(it.fullName())
	return err == nil && info.Mode().IsRegular()
}
