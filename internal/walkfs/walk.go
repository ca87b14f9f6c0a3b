// Package walkfs implements dupscan's recursive directory walker and
// directory iterator: depth-first traversal for the N-way grouper, and a
// level-ordered traversal across a root set for the pairwise comparator.
package walkfs

import (
	"os"

	"github.com/mkessler/dupscan/internal/filter"
	"github.com/mkessler/dupscan/internal/pathutil"
	"github.com/mkessler/dupscan/internal/types"
)

// VisitFunc is invoked for each admitted regular file, receiving its base
// name and full path. It returns false to request early termination.
type VisitFunc func(name, fullPath string) bool

// Walk performs a depth-first traversal of root, invoking visit for every
// regular file that passes filt. If root itself is a regular file, it is
// offered directly. A nil filt admits everything. aborted, if non-nil, is
// polled after each directory entry;
// when set, Walk returns without further descent. Unreadable directories
// yield no entries and do not abort the walk; per-entry stat failures are
// skipped silently.
func Walk(root string, filt *filter.PatternSet, counters *types.Counters, aborted *types.AbortFlag, visit VisitFunc) {
	info, err := os.Stat(root)
	if err != nil {
		return
	}

	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return
		}
		offer(root, filt, counters, visit)
		return
	}

	walkDir(root, filt, counters, aborted, visit)
}

func walkDir(dir string, filt *filter.PatternSet, counters *types.Counters, aborted *types.AbortFlag, visit VisitFunc) bool {
	it, err := newDirIter(dir)
	if err != nil {
		return true
	}
	defer it.close()

	var subdirs []string
	for it.more() {
		if aborted != nil && aborted.Load() {
			return false
		}

		if it.isDirectory() {
			subdirs = append(subdirs, it.fullName())
			continue
		}
		if !it.isRegular() {
			continue
		}
		if !offer(it.fullName(), filt, counters, visit) {
			return false
		}
	}

	for _, sub := range subdirs {
		if aborted != nil && aborted.Load() {
			return false
		}
		if !walkDir(sub, filt, counters, aborted, visit) {
			return false
		}
	}
	return true
}

func offer(fullPath string, filt *filter.PatternSet, counters *types.Counters, visit VisitFunc) bool {
	_, name := pathutil.Split(fullPath)
	if filt != nil && !filt.Valid(name, fullPath, counters) {
		return true
	}
	return visit(name, fullPath)
}
