package storage

import (
	"path/filepath"
	"time"
)

// PathFor computes the directory holding a photo's bytes from its capture
// date. Pure: two dates that format identically under the pattern yield
// the same directory.
func PathFor(root, pattern string, t time.Time) string {
	return filepath.Join(root, t.Format(pattern))
}
