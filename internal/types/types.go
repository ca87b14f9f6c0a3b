// Package types provides shared types used across the dupscan codebase.
package types

import (
	"cmp"
	"slices"
	"sync/atomic"
)

// Sorted is an ordered collection that maintains sort order by a key function.
// T is the element type, K is the comparable key type.
// Once constructed, items are guaranteed to be sorted by key.
type Sorted[T any, K cmp.Ordered] struct {
	items   []T
	keyFunc func(T) K
}

// NewSorted creates a sorted collection from items using keyFunc for ordering.
// Items are copied and sorted at construction time.
func NewSorted[T any, K cmp.Ordered](items []T, keyFunc func(T) K) Sorted[T, K] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b T) int {
		return cmp.Compare(keyFunc(a), keyFunc(b))
	})
	return Sorted[T, K]{items: sorted, keyFunc: keyFunc}
}

// Items returns the sorted items.
func (s Sorted[T, K]) Items() []T { return s.items }

// First returns the first item (smallest key), or zero value if empty.
func (s Sorted[T, K]) First() T {
	if len(s.items) == 0 {
		var zero T
		return zero
	}
	return s.items[0]
}

// Len returns the number of items.
func (s Sorted[T, K]) Len() int { return len(s.items) }

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit is reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }

// RelativeFile is a file's path expressed relative to its root - the identity
// used to pair files across roots in pairwise mode, and the per-name key used
// by the grouper in N-way mode.
type RelativeFile = string

// Counters tracks the four terminal verdict tallies. Mutated only by the
// control thread (pairwise/grouper and the walker's filter-rejection path);
// no atomics required.
type Counters struct {
	SameCnt int
	DiffCnt int
	MissCnt int
	SkipCnt int

	// TotalBytes accumulates file sizes for the human-readable summary line
	// (cmd/dup): in pairwise mode the first root's size of each RelativeFile,
	// in grouping mode every admitted file, but only under the general
	// algorithm. Missing and zero-length files add nothing.
	TotalBytes int64
}

// Total returns the sum of all four counters.
func (c *Counters) Total() int {
	return c.SameCnt + c.DiffCnt + c.MissCnt + c.SkipCnt
}

// PathList interns directory prefixes so that FileRecord can store a small
// integer pathIndex instead of a repeated string. Exploits depth-first walk
// locality: consecutive files sharing a directory reuse the last-seen index
// in amortised O(1).
type PathList struct {
	paths    []string
	lastPath string
	lastIdx  int
}

// NewPathList returns an empty, ready-to-use PathList.
func NewPathList() *PathList {
	return &PathList{lastIdx: -1}
}

// Intern returns the index for dir, reusing the last-seen index when dir
// matches it, walking backward through previously seen prefixes for a
// directory-local match, and otherwise appending a new entry.
func (pl *PathList) Intern(dir string) int {
	if pl.lastPath == dir {
		return pl.lastIdx
	}

	if pl.lastIdx >= 0 {
		for i := pl.lastIdx; i >= 0; i-- {
			if pl.paths[i] == dir {
				pl.lastPath = dir
				pl.lastIdx = i
				return i
			}
		}
	}

	idx := len(pl.paths)
	pl.paths = append(pl.paths, dir)
	pl.lastPath = dir
	pl.lastIdx = idx
	return idx
}

// At returns the directory prefix stored at idx.
func (pl *PathList) At(idx int) string { return pl.paths[idx] }

// FileRecord identifies a file by name plus an interned directory-prefix
// index. Concatenating PathList.At(PathIndex) with Name yields the full
// path.
type FileRecord struct {
	Name      string
	PathIndex int
}

// AbortFlag is the process-wide aborted signal the walker consults between
// directory entries. An *atomic.Bool, not a plain bool, since it may be set
// from a signal handler goroutine.
type AbortFlag = atomic.Bool
