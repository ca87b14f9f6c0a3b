// Package integration exercises end-to-end duplicate-detection scenarios
// against the pairwise comparator and grouper directly, without going
// through the cmd/dup CLI layer.
package integration

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mkessler/dupscan/internal/filter"
	"github.com/mkessler/dupscan/internal/grouper"
	"github.com/mkessler/dupscan/internal/pairwise"
	"github.com/mkessler/dupscan/internal/testfs"
	"github.com/mkessler/dupscan/internal/walkfs"
)

// Scenario 1: two roots each containing identical x and differing y.
func TestScenario1DuplicateAndDifferent(t *testing.T) {
	xContent := bytes.Repeat([]byte{'x'}, 512)
	yLeft := bytes.Repeat([]byte{'a'}, 512)
	yRight := bytes.Repeat([]byte{'b'}, 512)

	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{"x": xContent, "y": yLeft}},
		testfs.Root{Files: map[string][]byte{"x": xContent, "y": yRight}},
	)

	var out bytes.Buffer
	c := pairwise.New(roots, nil, pairwise.Options{Out: &out, PostDivider: "\n", Separator: " "}, nil)
	counters, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if counters.SameCnt != 1 {
		t.Errorf("sameCnt = %d, want 1", counters.SameCnt)
	}
	if counters.DiffCnt != 1 {
		t.Errorf("diffCnt = %d, want 1", counters.DiffCnt)
	}
	if counters.MissCnt != 0 {
		t.Errorf("missCnt = %d, want 0", counters.MissCnt)
	}
}

// Scenario 2: root B is missing a file root A has; with ShowMiss set the
// comparator prints a missing line naming A's copy, and MissCnt is 1.
func TestScenario2Missing(t *testing.T) {
	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{"only.txt": []byte("present")}},
		testfs.Root{Files: map[string][]byte{}},
	)

	var out bytes.Buffer
	c := pairwise.New(roots, nil, pairwise.Options{Out: &out, PreMiss: "missing: ", PostDivider: "\n", ShowMiss: true}, nil)
	counters, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if counters.MissCnt != 1 {
		t.Errorf("missCnt = %d, want 1", counters.MissCnt)
	}
	if !bytes.Contains(out.Bytes(), []byte(filepath.Join(roots[0], "only.txt"))) {
		t.Errorf("expected missing-verdict output to name %s, got %q", filepath.Join(roots[0], "only.txt"), out.String())
	}
}

// Scenario 3: single root with two identical 1MiB files under different
// names form one group of two paths. Exercised in the default general mode
// (SameName false): SameName partitions by name, so a.bin and b.bin would
// never be compared there.
func TestScenario3SameAllSingleRoot(t *testing.T) {
	content := make([]byte, 1<<20)
	if _, err := rand.Read(content); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	roots := testfs.Build(t, testfs.Root{Files: map[string][]byte{
		"a.bin": content,
		"b.bin": content,
	}})

	var out bytes.Buffer
	g := grouper.New(grouper.Options{SameName: false, Out: &out})
	for _, root := range roots {
		walkfs.Walk(root, nil, nil, nil, func(_, fullPath string) bool {
			g.Add(fullPath)
			return true
		})
	}
	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters.SameCnt != 2 {
		t.Errorf("sameCnt = %d, want 2 (a.bin + b.bin form one group)", counters.SameCnt)
	}
}

// Scenario 4: foo.txt/foo.md identical content; -justName -ignoreExtn groups
// them, but plain -justName (different names) does not.
func TestScenario4JustNameIgnoreExtn(t *testing.T) {
	roots := testfs.Build(t, testfs.Root{Files: map[string][]byte{
		"foo.txt": []byte("shared"),
		"foo.md":  []byte("shared"),
	}})

	var out bytes.Buffer
	withIgnoreExtn := grouper.New(grouper.Options{JustName: true, IgnoreExtn: true, Out: &out})
	for _, root := range roots {
		walkfs.Walk(root, nil, nil, nil, func(_, fullPath string) bool {
			withIgnoreExtn.Add(fullPath)
			return true
		})
	}
	counters, err := withIgnoreExtn.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters.SameCnt != 2 {
		t.Errorf("sameCnt with -ignoreExtn = %d, want 2", counters.SameCnt)
	}

	var out2 bytes.Buffer
	withoutIgnoreExtn := grouper.New(grouper.Options{JustName: true, Out: &out2})
	for _, root := range roots {
		walkfs.Walk(root, nil, nil, nil, func(_, fullPath string) bool {
			withoutIgnoreExtn.Add(fullPath)
			return true
		})
	}
	counters2, err := withoutIgnoreExtn.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters2.SameCnt != 0 {
		t.Errorf("sameCnt without -ignoreExtn = %d, want 0 (foo.txt and foo.md have different names)", counters2.SameCnt)
	}
}

// Scenario 5: ten distinct-named zero-length files; default (general) mode
// emits no duplicate group for them.
func TestScenario5ZeroLengthFilesStayDistinct(t *testing.T) {
	files := make(map[string][]byte)
	for i := 0; i < 10; i++ {
		files[fmt.Sprintf("empty%d.bin", i)] = []byte{}
	}
	roots := testfs.Build(t, testfs.Root{Files: files})

	var out bytes.Buffer
	g := grouper.New(grouper.Options{Out: &out})
	for _, root := range roots {
		walkfs.Walk(root, nil, nil, nil, func(_, fullPath string) bool {
			g.Add(fullPath)
			return true
		})
	}
	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters.SameCnt != 0 {
		t.Errorf("sameCnt = %d, want 0 (zero-length files disambiguated by path)", counters.SameCnt)
	}
}

// Scenario 6: two roots with many identical small files; verifies the run
// completes and is order-deterministic across repeated runs. The
// MAX_THREADS=8 bound itself is not measured here; hashpool enforces it
// with a semaphore sized to the worker count.
func TestScenario6ManyIdenticalFilesDeterministicOutput(t *testing.T) {
	files := make(map[string][]byte)
	content := bytes.Repeat([]byte{'z'}, 4096)
	for i := 0; i < 200; i++ {
		files[fmt.Sprintf("f%d.bin", i)] = content
	}

	roots := testfs.Build(t,
		testfs.Root{Files: files},
		testfs.Root{Files: files},
	)

	run := func() (string, *struct{ same, diff, miss int }) {
		var out bytes.Buffer
		c := pairwise.New(roots, nil, pairwise.Options{Out: &out, PostDivider: "\n", Separator: " "}, nil)
		counters, err := c.Run()
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return out.String(), &struct{ same, diff, miss int }{counters.SameCnt, counters.DiffCnt, counters.MissCnt}
	}

	out1, stats1 := run()
	out2, stats2 := run()

	if stats1.same != 200 || stats1.diff != 0 || stats1.miss != 0 {
		t.Errorf("first run counters = %+v, want same=200 diff=0 miss=0", stats1)
	}
	if out1 != out2 {
		t.Error("expected byte-identical stdout across repeated runs")
	}
	if *stats1 != *stats2 {
		t.Errorf("counters differ across runs: %+v vs %+v", stats1, stats2)
	}
}

// Excluded files never reach either engine.
func TestWalkerFilterExcludesFiles(t *testing.T) {
	roots := testfs.Build(t, testfs.Root{Files: map[string][]byte{
		"keep.txt":    []byte("x"),
		"skip.secret": []byte("y"),
	}})

	filt := filter.New()
	if err := filt.AddExcludeName(`.*\.secret`, true); err != nil {
		t.Fatalf("AddExcludeName: %v", err)
	}

	var seen []string
	walkfs.Walk(roots[0], filt, nil, nil, func(name, _ string) bool {
		seen = append(seen, name)
		return true
	})

	for _, name := range seen {
		if name == "skip.secret" {
			t.Fatalf("excluded file reached the walker's visit callback: %v", seen)
		}
	}
}
