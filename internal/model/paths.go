package model

import (
	"os"
	"path/filepath"
)

// defaultCacheDir returns ~/.helpscan/cache, or a temp dir when no home is available
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "helpscan-cache")
	}
	return filepath.Join(home, ".helpscan", "cache")
}
