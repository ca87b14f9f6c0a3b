package grouper

import (
	"os"
	"syscall"
)

// statIdentity extracts inode and link count for the verbose listing.
func statIdentity(info os.FileInfo) (ino uint64, nlink int) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return stat.Ino, int(stat.Nlink) //nolint:unconvert // platform-dependent type
}
