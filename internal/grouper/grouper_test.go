package grouper

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/mkessler/dupscan/internal/testfs"
	"github.com/mkessler/dupscan/internal/walkfs"
)

func addAll(t *testing.T, g *Grouper, roots []string) {
	t.Helper()
	for _, root := range roots {
		walkfs.Walk(root, nil, nil, nil, func(_, fullPath string) bool {
			g.Add(fullPath)
			return true
		})
	}
}

func TestGeneralModeGroupsByContent(t *testing.T) {
	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{
			"a.txt": testfs.Same("hello"),
			"b.txt": testfs.Same("hello"),
			"c.txt": testfs.Same("different"),
		}},
	)

	var out bytes.Buffer
	g := New(Options{Out: &out})
	addAll(t, g, roots)

	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}

	if counters.SameCnt != 2 {
		t.Errorf("SameCnt = %d, want 2 (a.txt + b.txt in one group)", counters.SameCnt)
	}
}

func TestGeneralModeDisambiguatesZeroLengthFiles(t *testing.T) {
	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{
			"empty1.txt": {},
			"empty2.txt": {},
		}},
	)

	var out bytes.Buffer
	g := New(Options{Out: &out})
	addAll(t, g, roots)

	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}

	if counters.SameCnt != 0 {
		t.Errorf("SameCnt = %d, want 0 (zero-length files fingerprint distinctly by path)", counters.SameCnt)
	}
}

func TestJustNameModeIgnoresContent(t *testing.T) {
	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{"a.txt": testfs.Same("one")}},
		testfs.Root{Files: map[string][]byte{"a.txt": testfs.Same("two")}},
	)

	var out bytes.Buffer
	g := New(Options{JustName: true, Out: &out})
	addAll(t, g, roots)

	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters.SameCnt != 2 {
		t.Errorf("SameCnt = %d, want 2 (just-name groups by name alone)", counters.SameCnt)
	}
}

func TestJustNameIgnoreExtnStripsExtension(t *testing.T) {
	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{
			"report.txt": testfs.Same("x"),
			"report.csv": testfs.Same("y"),
		}},
	)

	var out bytes.Buffer
	g := New(Options{JustName: true, IgnoreExtn: true, Out: &out})
	addAll(t, g, roots)

	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters.SameCnt != 2 {
		t.Errorf("SameCnt = %d, want 2 (report.txt and report.csv merge once extensions are stripped)", counters.SameCnt)
	}
}

func TestSameNameModePartitionsByHash(t *testing.T) {
	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{"a.txt": testfs.Same("v1")}},
		testfs.Root{Files: map[string][]byte{"a.txt": testfs.Same("v1")}},
		testfs.Root{Files: map[string][]byte{"a.txt": testfs.Same("v2")}},
	)

	var out bytes.Buffer
	g := New(Options{SameName: true, Out: &out})
	addAll(t, g, roots)

	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters.SameCnt != 2 {
		t.Errorf("SameCnt = %d, want 2 (only the two v1 copies form a group)", counters.SameCnt)
	}
}

func TestInvertEmitsSingletons(t *testing.T) {
	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{
			"unique.txt": testfs.Same("only one"),
			"a.txt":      testfs.Same("dup"),
			"b.txt":      testfs.Same("dup"),
		}},
	)

	var out bytes.Buffer
	g := New(Options{Invert: true, Out: &out})
	addAll(t, g, roots)

	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters.SameCnt != 1 {
		t.Errorf("SameCnt = %d, want 1 (only unique.txt is a singleton)", counters.SameCnt)
	}
}

func TestPathListInterningAcrossDirectories(t *testing.T) {
	roots := testfs.Build(t,
		testfs.Root{Files: map[string][]byte{
			filepath.Join("dir1", "a.txt"): testfs.Same("x"),
			filepath.Join("dir1", "b.txt"): testfs.Same("y"),
			filepath.Join("dir2", "a.txt"): testfs.Same("z"),
		}},
	)

	var out bytes.Buffer
	g := New(Options{JustName: true, Out: &out})
	addAll(t, g, roots)

	counters, err := g.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if counters.SameCnt != 2 {
		t.Errorf("SameCnt = %d, want 2 (the two a.txt occurrences across dir1/dir2)", counters.SameCnt)
	}
}
