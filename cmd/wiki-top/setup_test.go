package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/nixlim/wiki-top/internal/config"
)

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}

	result, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("loading written config: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}

	def := config.DefaultConfig()
	if result.Config.Wiki != def.Wiki {
		t.Errorf("expected wiki section %+v, got %+v", def.Wiki, result.Config.Wiki)
	}
	if result.Config.Display != def.Display {
		t.Errorf("expected display section %+v, got %+v", def.Display, result.Config.Display)
	}
	if result.Config.Storage != def.Storage {
		t.Errorf("expected storage section %+v, got %+v", def.Storage, result.Config.Storage)
	}
}

func TestWriteDefaultConfig_KeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[display]\nbar_width = 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := writeDefaultConfig(path)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "[display]\nbar_width = 10\n" {
		t.Errorf("existing config was modified: %q", data)
	}
}
