// Package progress wraps github.com/schollz/progressbar/v3 with an
// enabled/disabled switch so callers don't have to branch on -quiet
// themselves.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Bar wraps progressbar with enabled/disabled handling. All methods are
// no-ops when disabled, so callers never need a nil check.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a progress bar. If enabled is false, every method on the
// returned Bar is a no-op. total < 0 selects spinner mode (unknown total
// file count, the common case for a directory scan); total >= 0 selects a
// determinate bar.
func New(enabled bool, total int64) *Bar {
	if !enabled {
		return &Bar{}
	}

	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(false),
		)
		return &Bar{bar: progressbar.NewOptions(-1, opts...)}
	}

	opts = append(opts, progressbar.OptionSetWidth(40))
	return &Bar{bar: progressbar.NewOptions64(total, opts...)}
}

// Set moves the bar to an absolute position.
func (b *Bar) Set(n uint64) {
	if b.bar != nil {
		_ = b.bar.Set64(int64(n))
	}
}

// Add advances the bar by delta, used to tick one count per file visited.
func (b *Bar) Add(delta int) {
	if b.bar != nil {
		_ = b.bar.Add(delta)
	}
}

// Describe updates the bar's description text.
func (b *Bar) Describe(s fmt.Stringer) {
	if b.bar != nil {
		b.bar.Describe(s.String())
	}
}

// Finish completes the bar and prints a final summary line.
func (b *Bar) Finish(s fmt.Stringer) {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(os.Stderr, "done: "+s.String())
	}
}
