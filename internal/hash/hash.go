// Package hash implements dupscan's 64-bit content hash primitive: a
// non-cryptographic digest of a file's bytes read through a caller-supplied
// scratch buffer, built on cespare/xxhash.
package hash

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Hash reads path's bytes in chunks of at most len(scratch) through scratch,
// folding them through xxHash64, and returns the digest. Equal bytes yield
// equal digests; unequal bytes may coincidentally collide with probability
// approximately 2^-64. Files that cannot be opened or read return a non-nil
// error; callers that must still produce a result (the hash worker pool)
// record 0 for that job.
func Hash(path string, scratch []byte) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	d := xxhash.New()
	if _, err := io.CopyBuffer(d, f, scratch); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

// OfString hashes a string directly (no file I/O). Used to fingerprint
// zero-length files by path so they don't collapse into one spurious
// duplicate group.
func OfString(s string) uint64 {
	return xxhash.Sum64String(s)
}
