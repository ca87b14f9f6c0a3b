// Package grouper implements dupscan's N-root equivalence grouper: an
// in-memory index built incrementally by Add, classified into duplicate
// groups by End using one of four sub-algorithms selected by (justName,
// ignoreExtn, sameName).
package grouper

import (
	"cmp"
	"fmt"
	"io"
	"os"

	"github.com/mkessler/dupscan/internal/hash"
	"github.com/mkessler/dupscan/internal/pathutil"
	"github.com/mkessler/dupscan/internal/types"
)

// Options configures a Grouper's classification algorithm and output.
type Options struct {
	JustName   bool // name-only duplicate detection (no content read)
	IgnoreExtn bool // with JustName: strip extensions before comparing
	SameName   bool // "same name + same content": hash partitioned by name

	Invert  bool // emit singletons (unique files) instead of duplicate groups
	Verbose bool // expand each file into a structured stat line

	PreDivider  string
	PostDivider string
	Separator   string

	Out io.Writer
}

// Grouper accumulates admitted files via Add and classifies them on End.
type Grouper struct {
	opts     Options
	pathList *types.PathList
	fileList map[string][]types.FileRecord
	scratch  []byte
}

// New returns an empty, ready-to-use Grouper.
func New(opts Options) *Grouper {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Grouper{
		opts:     opts,
		pathList: types.NewPathList(),
		fileList: make(map[string][]types.FileRecord),
		scratch:  make([]byte, 64*1024),
	}
}

// Add admits one file by its full path, interning its directory prefix and
// appending a FileRecord keyed by base name.
func (g *Grouper) Add(fullPath string) {
	dir, name := pathutil.Split(fullPath)
	idx := g.pathList.Intern(dir)
	g.fileList[name] = append(g.fileList[name], types.FileRecord{Name: name, PathIndex: idx})
}

func (g *Grouper) fullPath(r types.FileRecord) string {
	return pathutil.Join(g.pathList.At(r.PathIndex), r.Name)
}

// End runs the selected sub-algorithm and writes emitted groups to Out,
// returning terminal counters (SameCnt counts the files in every emitted
// group: duplicate groups normally, singletons when Invert is set).
func (g *Grouper) End() (*types.Counters, error) {
	counters := &types.Counters{}

	switch {
	case g.opts.JustName && g.opts.IgnoreExtn:
		g.endJustNameIgnoreExtn(counters)
	case g.opts.JustName:
		g.endJustName(counters)
	case g.opts.SameName:
		g.endSameName(counters)
	default:
		g.endGeneral(counters)
	}

	return counters, nil
}

// endJustNameIgnoreExtn re-keys by extension-stripped name and emits groups
// of size >= 2.
func (g *Grouper) endJustNameIgnoreExtn(counters *types.Counters) {
	byStem := make(map[string][]types.FileRecord)
	for name, records := range g.fileList {
		stem := pathutil.StripExt(name)
		byStem[stem] = append(byStem[stem], records...)
	}
	g.emitByKey(byStem, counters)
}

// endJustName emits each fileList entry of size >= 2 directly, content
// unread.
func (g *Grouper) endJustName(counters *types.Counters) {
	g.emitByKey(g.fileList, counters)
}

// endSameName: for each name with >= 2 hits, hash every occurrence and emit
// one sub-group per hash value.
func (g *Grouper) endSameName(counters *types.Counters) {
	for _, name := range sortedKeys(g.fileList) {
		records := g.fileList[name]
		if len(records) < 2 {
			g.emitGroup(records, counters)
			continue
		}

		byHash := make(map[uint64][]types.FileRecord)
		for _, r := range records {
			h := g.hashRecord(r)
			byHash[h] = append(byHash[h], r)
		}
		for _, h := range sortedKeys(byHash) {
			g.emitGroup(byHash[h], counters)
		}
	}
}

// endGeneral is the default algorithm: classify all admitted files by size,
// then hash only size-colliding candidates, then emit hash-colliding groups.
func (g *Grouper) endGeneral(counters *types.Counters) {
	bySize := make(map[int64][]types.FileRecord)
	for _, name := range sortedKeys(g.fileList) {
		for _, r := range g.fileList[name] {
			size := g.statSize(r)
			bySize[size] = append(bySize[size], r)
			if size > 0 {
				counters.TotalBytes += size
			}
		}
	}

	for _, size := range sortedKeys(bySize) {
		candidates := bySize[size]
		if len(candidates) < 2 {
			g.emitGroup(candidates, counters)
			continue
		}

		byHash := make(map[uint64][]types.FileRecord)
		for _, r := range candidates {
			var h uint64
			if size == 0 {
				// Zero-length files collapse by content into one mega-group;
				// fingerprint by path instead.
				h = hash.OfString(g.fullPath(r))
			} else {
				h = g.hashRecord(r)
			}
			byHash[h] = append(byHash[h], r)
		}
		for _, h := range sortedKeys(byHash) {
			g.emitGroup(byHash[h], counters)
		}
	}
}

func (g *Grouper) hashRecord(r types.FileRecord) uint64 {
	h, err := hash.Hash(g.fullPath(r), g.scratch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: unreadable: %s: %v\n", g.fullPath(r), err)
		return 0
	}
	return h
}

func (g *Grouper) statSize(r types.FileRecord) int64 {
	info, err := os.Stat(g.fullPath(r))
	if err != nil {
		return -1
	}
	return info.Size()
}

func (g *Grouper) emitByKey(fileList map[string][]types.FileRecord, counters *types.Counters) {
	for _, name := range sortedKeys(fileList) {
		g.emitGroup(fileList[name], counters)
	}
}

// emitGroup applies the invert predicate and prints a group, formatted
// either as a separator-joined bracketed list or, if Verbose, as expanded
// per-file stat lines.
func (g *Grouper) emitGroup(records []types.FileRecord, counters *types.Counters) {
	isDuplicate := len(records) >= 2
	if g.opts.Invert == isDuplicate {
		return
	}

	counters.SameCnt += len(records)

	if g.opts.Verbose {
		for _, r := range records {
			g.printVerboseLine(r)
		}
		return
	}

	sep := g.opts.Separator
	if sep == "" {
		sep = " "
	}

	joined := ""
	for i, r := range records {
		if i > 0 {
			joined += sep
		}
		joined += g.fullPath(r)
	}
	_, _ = fmt.Fprintf(g.opts.Out, "%s%s%s\n", g.opts.PreDivider, joined, g.opts.PostDivider)
}

// printVerboseLine writes a structured stat line: size, modification time,
// inode, link count, symlink marker, path.
func (g *Grouper) printVerboseLine(r types.FileRecord) {
	path := g.fullPath(r)
	info, err := os.Lstat(path)
	if err != nil {
		_, _ = fmt.Fprintf(g.opts.Out, "? ? ? ? %s\n", path)
		return
	}

	symlinkMarker := " "
	if info.Mode()&os.ModeSymlink != 0 {
		symlinkMarker = "@"
	}

	ino, nlink := statIdentity(info)
	_, _ = fmt.Fprintf(g.opts.Out, "%10d %s %10d %4d %s%s\n",
		info.Size(), info.ModTime().Format("Mon 02-Jan-2006 03:04 PM"),
		ino, nlink, symlinkMarker, path)
}

// sortedKeys returns m's keys in ascending order, via types.Sorted so that
// group emission order is deterministic regardless of map iteration order.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return types.NewSorted(keys, func(k K) K { return k }).Items()
}
