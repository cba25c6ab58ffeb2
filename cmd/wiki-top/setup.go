package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nixlim/wiki-top/internal/config"
)

// initFile mirrors the sections of config.toml.
type initFile struct {
	Wiki    config.WikiConfig    `toml:"wiki"`
	Display config.DisplayConfig `toml:"display"`
	Storage config.StorageConfig `toml:"storage"`
}

// RunInit writes the default configuration to path. An existing file is
// left untouched.
//
// Exit codes:
//   - 0: written or already present
//   - 1: error
func RunInit(path string) {
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot determine config path; pass -config")
		os.Exit(1)
	}

	if err := writeDefaultConfig(path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			fmt.Printf("Config already exists at %s. No changes made.\n", path)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s.\n", path)
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	def := config.DefaultConfig()
	fmt.Fprintln(f, "# wiki-top configuration")
	fmt.Fprintln(f, "# Namespace colours may be overridden in a [namespace_colors] table, e.g. 4 = \"#FF8800\".")
	fmt.Fprintln(f)

	enc := toml.NewEncoder(f)
	enc.Indent = ""
	if err := enc.Encode(initFile{Wiki: def.Wiki, Display: def.Display, Storage: def.Storage}); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}
