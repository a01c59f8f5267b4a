// Package config loads optional project-level settings from a chuckfmt.toml
// discovered by walking up from the working directory, the same way the
// toolchain finds a project manifest. Flags always win over config values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest searched for in the start directory and its
// parents.
const FileName = "chuckfmt.toml"

// Config mirrors the chuckfmt.toml layout.
type Config struct {
	Format Format `toml:"format"`
}

// Format holds formatter settings.
type Format struct {
	// Style is passed to clang-format as --style when set.
	Style string `toml:"style"`
	// AssumeFilename overrides the default --assume-filename=code.java.
	AssumeFilename string `toml:"assume-filename"`
	// ClangFormat is an explicit path to the clang-format binary.
	ClangFormat string `toml:"clang-format"`
	// ExtraArgs are appended to the clang-format invocation verbatim.
	ExtraArgs []string `toml:"extra-args"`
	// Jobs caps parallel file formatting; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
}

// Find walks up from startDir looking for chuckfmt.toml. ok is false when no
// manifest exists anywhere up the tree.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load discovers and parses the nearest manifest. ok is false when there is
// none; that is not an error.
func Load(startDir string) (cfg Config, path string, ok bool, err error) {
	path, ok, err = Find(startDir)
	if err != nil || !ok {
		return Config{}, "", false, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, path, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, path, true, nil
}

// ClangArgs assembles the clang-format arguments implied by the config.
func (f Format) ClangArgs() []string {
	var args []string
	if f.Style != "" {
		args = append(args, "--style="+f.Style)
	}
	if f.AssumeFilename != "" {
		args = append(args, "--assume-filename="+f.AssumeFilename)
	}
	args = append(args, f.ExtraArgs...)
	return args
}
