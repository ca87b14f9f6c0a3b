package walkfs

import (
	"os"
	"sort"

	"github.com/mkessler/dupscan/internal/filter"
	"github.com/mkessler/dupscan/internal/pathutil"
	"github.com/mkessler/dupscan/internal/types"
)

// RelativeVisitFunc is invoked once per admitted RelativeFile, in
// deterministic (sorted) order within each level. Returning false stops the
// traversal early.
type RelativeVisitFunc func(relFile types.RelativeFile) bool

// WalkLevels performs the breadth-oriented, level-by-level traversal across
// a set of roots that the pairwise comparator needs: first all roots'
// top-level children, then all their first-level subdirectories, and so on,
// joining same-named entries across roots by RelativeFile.
//
// A RelativeFile is admitted if it passes filt under ANY root that has it.
func WalkLevels(roots []string, filt *filter.PatternSet, counters *types.Counters, aborted *types.AbortFlag, visit RelativeVisitFunc) {
	nextDirs := []string{""}

	for len(nextDirs) > 0 {
		if aborted != nil && aborted.Load() {
			return
		}

		files := levelFiles(roots, nextDirs, filt, counters)
		for _, relFile := range files {
			if !visit(relFile) {
				return
			}
		}

		nextDirs = levelDirs(roots, nextDirs)
	}
}

// levelFiles returns, for the given set of relative subdirectories (one
// "level" of the tree), the sorted union of relative file paths found under
// any root, admitted by filt.
func levelFiles(roots []string, nextDirs []string, filt *filter.PatternSet, counters *types.Counters) []string {
	set := make(map[string]struct{})
	for _, nextDir := range nextDirs {
		for _, root := range roots {
			dir := pathutil.Join(root, nextDir)
			listDir(dir, func(it *dirIter) {
				if it.isDirectory() {
					return
				}
				if !it.isRegular() {
					return
				}
				name := it.name()
				fullPath := it.fullName()
				if filt != nil && !filt.Valid(name, fullPath, counters) {
					return
				}
				set[pathutil.Join(nextDir, name)] = struct{}{}
			})
		}
	}
	return sortedKeys(set)
}

// levelDirs returns the sorted union of relative subdirectory paths found
// under any root for the given level, becoming the next level.
func levelDirs(roots []string, nextDirs []string) []string {
	set := make(map[string]struct{})
	for _, nextDir := range nextDirs {
		for _, root := range roots {
			dir := pathutil.Join(root, nextDir)
			listDir(dir, func(it *dirIter) {
				if !it.isDirectory() {
					return
				}
				set[pathutil.Join(nextDir, it.name())] = struct{}{}
			})
		}
	}
	return sortedKeys(set)
}

// listDir opens dir and calls fn for every entry; unreadable directories
// silently yield nothing.
func listDir(dir string, fn func(it *dirIter)) {
	it, err := newDirIter(dir)
	if err != nil {
		return
	}
	defer it.close()
	for it.more() {
		fn(it)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// StatSize returns a file's length in bytes, or -1 if stat fails.
func StatSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
