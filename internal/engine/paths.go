package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// availableName returns the first destination path that does not already
// exist, appending a numeric suffix like "report (2).pdf" on collision so a
// transfer never silently replaces an unrelated file.
func availableName(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// removeIfEmpty deletes a directory tree that contains no files. Folders
// that still hold anything after decomposition are left for the user.
func removeIfEmpty(dir string) {
	if dirIsEmpty(dir) {
		_ = os.RemoveAll(dir)
	}
}

func dirIsEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			return false
		}
		if !dirIsEmpty(filepath.Join(dir, entry.Name())) {
			return false
		}
	}
	return true
}
