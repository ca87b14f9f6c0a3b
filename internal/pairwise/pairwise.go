// Package pairwise implements dupscan's pairwise comparator: a
// two-or-more-root verdict engine that walks same-named files across all
// roots level by level and classifies each as duplicate, different,
// missing, or unreadable. Hashing is dispatched through internal/hashpool
// instead of comparing synchronously.
package pairwise

import (
	"fmt"
	"io"
	"os"

	"github.com/mkessler/dupscan/internal/filter"
	"github.com/mkessler/dupscan/internal/hashpool"
	"github.com/mkessler/dupscan/internal/pathutil"
	"github.com/mkessler/dupscan/internal/types"
	"github.com/mkessler/dupscan/internal/walkfs"
)

// Delete selects which side(s) of a duplicate pair get unlinked.
type Delete int

const (
	DeleteNone Delete = iota
	DeleteFirst
	DeleteSecond
	DeleteBoth
)

// LogMode restricts which root's path is printed in a verdict line.
type LogMode int

const (
	LogBoth LogMode = iota
	LogFirst
	LogSecond
)

// Options configures a Comparator's behavior and output formatting.
type Options struct {
	JustName bool // suppress hashing; a length match alone is a duplicate
	Hardlink bool // reserved; treated as a no-op with a warning
	Delete   Delete
	DryRun   bool
	Log      LogMode

	PreDup      string
	PreDiff     string
	PreMiss     string
	PostDivider string
	Separator   string

	// Visibility toggles. Counters are always updated regardless of
	// visibility. Duplicate lines
	// print by default; HideDup suppresses them. Different/missing lines are
	// hidden by default; ShowDiff/ShowMiss reveal them.
	HideDup  bool
	ShowDiff bool
	ShowMiss bool

	MaxThreads int
	Out        io.Writer
	ErrCh      chan<- error
}

// Comparator runs the pairwise comparison over a fixed set of roots.
type Comparator struct {
	roots    []string
	filt     *filter.PatternSet
	opts     Options
	counters *types.Counters
	aborted  *types.AbortFlag
}

// New returns a Comparator over roots (at least 2), filtered by filt (may be
// nil). aborted, if non-nil, is polled between levels and stops the walk.
func New(roots []string, filt *filter.PatternSet, opts Options, aborted *types.AbortFlag) *Comparator {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Comparator{roots: roots, filt: filt, opts: opts, aborted: aborted}
}

// Run performs the full comparison and returns the terminal counters.
func (c *Comparator) Run() (*types.Counters, error) {
	c.counters = &types.Counters{}

	if c.opts.JustName {
		return c.runJustName()
	}

	pool, err := hashpool.New(c.opts.MaxThreads, c.onGroupReady)
	if err != nil {
		return nil, fmt.Errorf("pairwise: starting hash pool: %w", err)
	}
	defer pool.Release()

	walkfs.WalkLevels(c.roots, c.filt, c.counters, c.aborted, func(relFile types.RelativeFile) bool {
		sizes := c.statAll(relFile)

		if _, ok := anyMissing(sizes); ok {
			c.emitMissing(relFile, sizes)
			return true
		}
		if !allEqual(sizes) {
			c.emitDifferent(relFile)
			return true
		}

		pool.FindDupsAsync(c.roots, relFile)
		return true
	})

	pool.WaitForAsync()
	return c.counters, nil
}

// runJustName: a length match alone (after the missing/different checks)
// is treated as a duplicate, no hashing.
func (c *Comparator) runJustName() (*types.Counters, error) {
	walkfs.WalkLevels(c.roots, c.filt, c.counters, c.aborted, func(relFile types.RelativeFile) bool {
		sizes := c.statAll(relFile)

		if _, ok := anyMissing(sizes); ok {
			c.emitMissing(relFile, sizes)
			return true
		}
		if !allEqual(sizes) {
			c.emitDifferent(relFile)
			return true
		}

		c.counters.SameCnt++
		if !c.opts.HideDup {
			c.printVerdict(c.opts.PreDup, relFile)
		}
		c.applySideEffects(relFile)
		return true
	})
	return c.counters, nil
}

func (c *Comparator) statAll(relFile types.RelativeFile) []int64 {
	sizes := make([]int64, len(c.roots))
	for i, root := range c.roots {
		sizes[i] = walkfs.StatSize(pathutil.Join(root, relFile))
	}
	if sizes[0] > 0 {
		c.counters.TotalBytes += sizes[0]
	}
	return sizes
}

func anyMissing(sizes []int64) (int, bool) {
	for i, s := range sizes {
		if s == -1 {
			return i, true
		}
	}
	return 0, false
}

func allEqual(sizes []int64) bool {
	for i := 1; i < len(sizes); i++ {
		if sizes[i] != sizes[0] {
			return false
		}
	}
	return true
}

// onGroupReady is hashpool's completion callback, invoked from the control
// thread in enqueue order (never from a worker goroutine).
func (c *Comparator) onGroupReady(group *hashpool.Group) {
	for _, j := range group.Jobs {
		if j.Err != nil {
			c.emitUnreadable(group.RelFile, j.Err)
			return
		}
	}

	duplicate := true
	for i := 1; i < len(group.Jobs); i++ {
		if group.Jobs[i].Hash != group.Jobs[i-1].Hash {
			duplicate = false
			break
		}
	}

	if duplicate {
		c.counters.SameCnt++
		if !c.opts.HideDup {
			c.printVerdict(c.opts.PreDup, group.RelFile)
		}
		c.applySideEffects(group.RelFile)
	} else {
		c.counters.DiffCnt++
		if c.opts.ShowDiff {
			c.printVerdict(c.opts.PreDiff, group.RelFile)
		}
	}
}

// emitMissing counts a RelativeFile absent under at least one root and, if
// ShowMiss is set, prints the path(s) under the roots that do have it.
func (c *Comparator) emitMissing(relFile types.RelativeFile, sizes []int64) {
	c.counters.MissCnt++
	if !c.opts.ShowMiss {
		return
	}
	sep := c.opts.Separator
	if sep == "" {
		sep = " "
	}
	joined := ""
	for i, s := range sizes {
		if s == -1 {
			continue
		}
		if joined != "" {
			joined += sep
		}
		joined += c.rootPath(i, relFile)
	}
	_, _ = fmt.Fprintf(c.opts.Out, "%s%s%s\n", c.opts.PreMiss, joined, c.opts.PostDivider)
}

func (c *Comparator) emitDifferent(relFile types.RelativeFile) {
	c.counters.DiffCnt++
	if c.opts.ShowDiff {
		c.printVerdict(c.opts.PreDiff, relFile)
	}
}

func (c *Comparator) emitUnreadable(relFile types.RelativeFile, err error) {
	if c.opts.ErrCh != nil {
		c.opts.ErrCh <- fmt.Errorf("unreadable: %s: %w", relFile, err)
	}
}

func (c *Comparator) printVerdict(pre string, relFile types.RelativeFile) {
	paths := c.selectedPaths(relFile)
	sep := c.opts.Separator
	if sep == "" {
		sep = " "
	}

	joined := ""
	for i, p := range paths {
		if i > 0 {
			joined += sep
		}
		joined += p
	}
	_, _ = fmt.Fprintf(c.opts.Out, "%s%s%s\n", pre, joined, c.opts.PostDivider)
}

func (c *Comparator) selectedPaths(relFile types.RelativeFile) []string {
	switch c.opts.Log {
	case LogFirst:
		return []string{c.rootPath(0, relFile)}
	case LogSecond:
		if len(c.roots) > 1 {
			return []string{c.rootPath(1, relFile)}
		}
		return []string{c.rootPath(0, relFile)}
	default:
		paths := make([]string, len(c.roots))
		for i := range c.roots {
			paths[i] = c.rootPath(i, relFile)
		}
		return paths
	}
}

func (c *Comparator) rootPath(idx int, relFile types.RelativeFile) string {
	return pathutil.Join(c.roots[idx], relFile)
}

// applySideEffects fires hardlink/delete mutations on a duplicate verdict,
// hardlink first, then delete.
func (c *Comparator) applySideEffects(relFile types.RelativeFile) {
	if c.opts.Hardlink {
		if c.opts.ErrCh != nil {
			c.opts.ErrCh <- fmt.Errorf("hardlink: not implemented, skipping %s", relFile)
		}
	}

	switch c.opts.Delete {
	case DeleteFirst:
		c.deletePath(c.rootPath(0, relFile))
	case DeleteSecond:
		if len(c.roots) > 1 {
			c.deletePath(c.rootPath(1, relFile))
		}
	case DeleteBoth:
		for i := range c.roots {
			c.deletePath(c.rootPath(i, relFile))
		}
	}
}

func (c *Comparator) deletePath(path string) {
	if c.opts.DryRun {
		_, _ = fmt.Fprintf(c.opts.Out, "would delete %s\n", path)
		return
	}
	if err := os.Remove(path); err != nil && c.opts.ErrCh != nil {
		c.opts.ErrCh <- fmt.Errorf("delete %s: %w", path, err)
	}
}
