package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkessler/dupscan/internal/types"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newDupCmd()
	root.Version = version + " (" + commit + ")"

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

// drainErrors consumes non-fatal errors from errCh and prints them to
// stderr.
func drainErrors(errs <-chan error) {
	for err := range errs {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

// installSignalAbort sets aborted on SIGINT/SIGTERM so a long scan can wind
// down early instead of being killed outright.
func installSignalAbort(aborted *types.AbortFlag) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		aborted.Store(true)
	}()
}
