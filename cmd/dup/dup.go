package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mkessler/dupscan/internal/filter"
	"github.com/mkessler/dupscan/internal/grouper"
	"github.com/mkessler/dupscan/internal/pairwise"
	"github.com/mkessler/dupscan/internal/progress"
	"github.com/mkessler/dupscan/internal/types"
	"github.com/mkessler/dupscan/internal/walkfs"
)

// dupOptions holds every CLI flag, bound directly by newDupCmd.
type dupOptions struct {
	includeName []string
	excludeName []string
	includePath []string
	excludePath []string
	rawRegex    bool

	justName   bool
	ignoreExtn bool
	sameAll    bool

	showDiff bool
	showMiss bool
	hideDup  bool
	showAll  bool
	invert   bool

	preDup      string
	preDiff     string
	preMiss     string
	preDivider  string
	postDivider string
	separator   string
	simple      bool

	log    int
	delete int
	dryRun bool

	verbose bool
	quiet   bool

	mode string

	workers int
}

func newDupCmd() *cobra.Command {
	opts := &dupOptions{
		preDup:    "",
		workers:   min(runtime.NumCPU(), 8),
		mode:      "auto",
	}

	cmd := &cobra.Command{
		Use:   "dup [options] <path> [<path> ...]",
		Short: "Find duplicate files across one or more directory trees",
		Long: `Scans one or more filesystem roots and reports files whose contents are
identical. With exactly two roots, runs in pairwise mode (duplicate/
different/missing verdicts per file). With one root or more than two,
runs in grouping mode (equivalence classes by name and/or content).

A single "-" argument reads roots, one per line, from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDup(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.includeName, "include-file", nil, "include files matching name pattern (repeatable)")
	flags.StringArrayVar(&opts.excludeName, "exclude-file", nil, "exclude files matching name pattern (repeatable)")
	flags.StringArrayVar(&opts.includePath, "include-path", nil, "include files matching full-path pattern (repeatable)")
	flags.StringArrayVar(&opts.excludePath, "exclude-path", nil, "exclude files matching full-path pattern (repeatable)")
	flags.BoolVar(&opts.rawRegex, "regex", false, "treat patterns as raw regular expressions instead of DOS-glob shorthand")

	flags.BoolVar(&opts.justName, "just-name", false, "name-only duplicate detection, content unread")
	flags.BoolVar(&opts.ignoreExtn, "ignore-extn", false, "with --just-name, strip extensions before comparing")
	flags.BoolVar(&opts.sameAll, "same-all", false, "N-way content comparison partitioned by name")

	flags.BoolVar(&opts.showDiff, "show-diff", false, "also print different verdicts")
	flags.BoolVar(&opts.showMiss, "show-miss", false, "also print missing verdicts")
	flags.BoolVar(&opts.hideDup, "hide-dup", false, "suppress duplicate verdicts")
	flags.BoolVar(&opts.showAll, "show-all", false, "shorthand for --show-diff --show-miss")
	flags.BoolVar(&opts.invert, "invert", false, "invert the duplicate/singleton selection")

	flags.StringVar(&opts.preDup, "pre-dup", "", "prefix string for duplicate verdict lines")
	flags.StringVar(&opts.preDiff, "pre-diff", "", "prefix string for different verdict lines")
	flags.StringVar(&opts.preMiss, "pre-miss", "", "prefix string for missing verdict lines")
	flags.StringVar(&opts.preDivider, "pre-divider", "", "prefix string before each emitted group")
	flags.StringVar(&opts.postDivider, "post-divider", "", "suffix string after each verdict/group")
	flags.StringVar(&opts.separator, "separator", " ", "separator between file names in a verdict/group")
	flags.BoolVar(&opts.simple, "simple", false, `shorthand: empty pre-strings, " " separator, "\n" divider`)

	flags.IntVar(&opts.log, "log", 0, "in 2-root mode, restrict output to root 1 or 2 (0 = both)")
	flags.IntVar(&opts.delete, "delete", 0, "on duplicate, unlink file from root 1, 2, or both (3)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "print mutating side effects without performing them")

	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "per-file verbose line with stat info (grouping mode)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress and summary output")

	flags.StringVar(&opts.mode, "mode", "auto", `comparison mode: "pairwise", "group", or "auto" (root-count heuristic)`)
	flags.IntVarP(&opts.workers, "workers", "w", opts.workers, "hash worker pool size")

	return cmd
}

func runDup(cmd *cobra.Command, args []string, opts *dupOptions) error {
	roots, err := resolveRoots(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		return fmt.Errorf("no root paths given")
	}

	filt, err := buildFilter(opts)
	if err != nil {
		return err
	}

	applyOutputDefaults(opts)

	errCh := make(chan error, 64)
	go drainErrors(errCh)
	defer close(errCh)

	mode := opts.mode
	if mode == "auto" {
		if len(roots) == 2 {
			mode = "pairwise"
		} else {
			mode = "group"
		}
	}

	var counters *types.Counters
	switch mode {
	case "pairwise":
		counters, err = runPairwise(roots, filt, opts, errCh)
	case "group":
		counters, err = runGroup(roots, filt, opts)
	default:
		return fmt.Errorf("unknown --mode %q", mode)
	}
	if err != nil {
		return err
	}

	if !opts.quiet {
		printSummary(counters)
	}
	return nil
}

func buildFilter(opts *dupOptions) (*filter.PatternSet, error) {
	filt := filter.New()
	for _, pat := range opts.includeName {
		if err := filt.AddIncludeName(pat, opts.rawRegex); err != nil {
			return nil, err
		}
	}
	for _, pat := range opts.excludeName {
		if err := filt.AddExcludeName(pat, opts.rawRegex); err != nil {
			return nil, err
		}
	}
	for _, pat := range opts.includePath {
		if err := filt.AddIncludePath(pat, opts.rawRegex); err != nil {
			return nil, err
		}
	}
	for _, pat := range opts.excludePath {
		if err := filt.AddExcludePath(pat, opts.rawRegex); err != nil {
			return nil, err
		}
	}
	return filt, nil
}

// applyOutputDefaults expands --simple and unescapes the format strings.
func applyOutputDefaults(opts *dupOptions) {
	if opts.simple {
		opts.preDup = ""
		opts.preDiff = ""
		opts.preMiss = ""
		opts.preDivider = ""
		opts.separator = " "
		opts.postDivider = "\n"
		return
	}
	opts.preDup = unescape(opts.preDup)
	opts.preDiff = unescape(opts.preDiff)
	opts.preMiss = unescape(opts.preMiss)
	opts.preDivider = unescape(opts.preDivider)
	opts.postDivider = unescape(opts.postDivider)
	opts.separator = unescape(opts.separator)
}

func runPairwise(roots []string, filt *filter.PatternSet, opts *dupOptions, errCh chan<- error) (*types.Counters, error) {
	aborted := &types.AbortFlag{}
	installSignalAbort(aborted)

	del := pairwise.DeleteNone
	switch opts.delete {
	case 1:
		del = pairwise.DeleteFirst
	case 2:
		del = pairwise.DeleteSecond
	case 3:
		del = pairwise.DeleteBoth
	}

	logMode := pairwise.LogBoth
	switch opts.log {
	case 1:
		logMode = pairwise.LogFirst
	case 2:
		logMode = pairwise.LogSecond
	}

	comparator := pairwise.New(roots, filt, pairwise.Options{
		JustName:    opts.justName,
		Delete:      del,
		DryRun:      opts.dryRun,
		Log:         logMode,
		PreDup:      opts.preDup,
		PreDiff:     opts.preDiff,
		PreMiss:     opts.preMiss,
		PostDivider: opts.postDivider,
		Separator:   opts.separator,
		HideDup:     opts.hideDup,
		ShowDiff:    opts.showDiff || opts.showAll,
		ShowMiss:    opts.showMiss || opts.showAll,
		MaxThreads:  opts.workers,
		Out:         os.Stdout,
		ErrCh:       errCh,
	}, aborted)

	bar := progress.New(!opts.quiet, -1)
	defer bar.Finish(countersStringer{})

	return comparator.Run()
}

func runGroup(roots []string, filt *filter.PatternSet, opts *dupOptions) (*types.Counters, error) {
	g := grouper.New(grouper.Options{
		JustName:    opts.justName,
		IgnoreExtn:  opts.ignoreExtn,
		SameName:    opts.sameAll,
		Invert:      opts.invert,
		Verbose:     opts.verbose,
		PreDivider:  opts.preDivider,
		PostDivider: opts.postDivider,
		Separator:   opts.separator,
		Out:         os.Stdout,
	})

	counters := &types.Counters{}
	aborted := &types.AbortFlag{}
	installSignalAbort(aborted)

	for _, root := range roots {
		walkfs.Walk(root, filt, counters, aborted, func(_, fullPath string) bool {
			g.Add(fullPath)
			return true
		})
	}

	return g.End()
}

func printSummary(c *types.Counters) {
	fmt.Fprintf(os.Stderr, "same=%d diff=%d miss=%d skip=%d total=%d scanned=%s\n",
		c.SameCnt, c.DiffCnt, c.MissCnt, c.SkipCnt, c.Total(), humanize.Bytes(uint64(c.TotalBytes)))
}

type countersStringer struct{}

func (countersStringer) String() string { return "scan complete" }
