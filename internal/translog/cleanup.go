package translog

import (
	"os"
	"path/filepath"
	"time"
)

// Cleaner handles cleanup of old transcripts based on a retention policy.
type Cleaner struct {
	baseDir       string
	retentionDays int
}

// NewCleaner creates a new Cleaner with the specified base directory and
// retention period.
func NewCleaner(baseDir string, retentionDays int) *Cleaner {
	return &Cleaner{baseDir: baseDir, retentionDays: retentionDays}
}

// Cleanup removes transcripts older than the retention period and prunes
// emptied day directories. Returns the number of files deleted.
func (c *Cleaner) Cleanup() (int, error) {
	threshold := time.Now().AddDate(0, 0, -c.retentionDays)
	var deleted int

	err := filepath.Walk(c.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().Before(threshold) {
			if err := os.Remove(path); err == nil {
				deleted++
			}
		}
		return nil
	})

	c.cleanEmptyDirs()

	return deleted, err
}

// cleanEmptyDirs removes empty directories within the base directory.
// Multiple passes, since removing a directory may empty its parent.
func (c *Cleaner) cleanEmptyDirs() {
	for {
		removedAny := false
		filepath.Walk(c.baseDir, func(path string, info os.FileInfo, err error) error {
			if err != nil || !info.IsDir() || path == c.baseDir {
				return nil
			}
			entries, _ := os.ReadDir(path)
			if len(entries) == 0 {
				if os.Remove(path) == nil {
					removedAny = true
				}
			}
			return nil
		})
		if !removedAny {
			break
		}
	}
}
