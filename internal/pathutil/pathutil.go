// Package pathutil provides name/directory splitting and extension handling
// shared by the walker, grouper, pairwise comparator, and hash pool.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Split separates a full path into its directory (including the trailing
// separator) and base name, so that dir+name losslessly reconstructs
// fullPath. It behaves exactly like filepath.Split: dir is "" when fullPath
// is a bare name.
func Split(fullPath string) (dir, name string) {
	dir, name = filepath.Split(fullPath)
	return dir, name
}

// Join composes a directory and a name using the platform separator,
// avoiding a doubled separator when dir already ends in one.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}

// Ext returns name's extension, including the leading dot, or "" if name has
// none. Matches filepath.Ext except a leading-dot dotfile (".bashrc") is
// not treated as having an extension.
func Ext(name string) string {
	base := name
	if i := strings.LastIndexByte(base, filepath.Separator); i >= 0 {
		base = base[i+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return ""
	}
	return base[dot:]
}

// StripExt removes name's final extension (per Ext); earlier dots are kept
// ("archive.tar.gz" -> "archive.tar").
func StripExt(name string) string {
	if ext := Ext(name); ext != "" {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
