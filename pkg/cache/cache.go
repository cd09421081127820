// Package cache decides whether an existing archive file is fresh
// enough to serve instead of hitting the API again.
package cache

import (
	"os"
	"time"
)

// Age returns how long ago the file was last modified. A missing file
// reports ok=false.
func Age(path string) (time.Duration, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return time.Since(info.ModTime()), true
}

// IsFresh reports whether the file exists and was modified within
// maxAge. Missing files are always stale.
func IsFresh(path string, maxAge time.Duration) bool {
	age, ok := Age(path)
	if !ok {
		return false
	}
	return age <= maxAge
}
