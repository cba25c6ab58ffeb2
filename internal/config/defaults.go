package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Wiki: WikiConfig{
			MetaAPI:           "https://meta.wikimedia.org/w/api.php",
			UserAgent:         "wiki-top/1.0 (https://github.com/nixlim/wiki-top)",
			RequestsPerSecond: 5.0,
			Burst:             1,
			TimeoutSeconds:    30,
		},
		Display: DisplayConfig{
			StartView:   "overview",
			BarWidth:    30,
			RecentEdits: 50,
		},
		Storage: StorageConfig{
			DBPath:        "~/.config/wiki-top/cache.db",
			CacheTTLHours: 24,
			RetentionDays: 30,
		},
	}
}

// ExpandPath resolves a leading "~/" against the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
