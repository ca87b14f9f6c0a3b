// Package testfs builds small multi-root filesystem fixtures under
// t.TempDir() for exercising the pairwise comparator and the grouper.
package testfs

import (
	"os"
	"path/filepath"
	"testing"
)

// Root describes one filesystem root to build: relative file paths mapped
// to their content.
type Root struct {
	Files map[string][]byte
}

// Build creates one temporary directory per Root and populates it according
// to its Files map, returning the roots' absolute paths in order.
func Build(t *testing.T, roots ...Root) []string {
	t.Helper()

	paths := make([]string, len(roots))
	for i, root := range roots {
		dir := t.TempDir()
		for rel, content := range root.Files {
			full := filepath.Join(dir, rel)
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				t.Fatalf("testfs: mkdir %s: %v", filepath.Dir(full), err)
			}
			if err := os.WriteFile(full, content, 0o644); err != nil {
				t.Fatalf("testfs: write %s: %v", full, err)
			}
		}
		paths[i] = dir
	}
	return paths
}

// Same is shorthand for content shared verbatim across fixtures.
func Same(s string) []byte { return []byte(s) }
