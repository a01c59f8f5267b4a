// Package clangformat locates and runs the external clang-format binary that
// does the heavy lifting of layout. chuckfmt feeds it pre-processed ChucK
// source on stdin and captures stdout; everything ChucK-specific happens
// before and after in the transform pipeline.
package clangformat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// EnvBin overrides binary resolution when set.
const EnvBin = "CLANG_FORMAT_BIN"

// DefaultAssumeFilename makes clang-format treat stdin as Java, the closest
// grammar to ChucK that it ships.
const DefaultAssumeFilename = "code.java"

// Resolve locates the clang-format binary.
//
// Resolution order:
//  1. CLANG_FORMAT_BIN environment variable (must be executable)
//  2. clang-format in PATH
func Resolve() (string, error) {
	if p := os.Getenv(EnvBin); p != "" {
		if !isExecutable(p) {
			return "", fmt.Errorf("%s is set but not executable: %s", EnvBin, p)
		}
		return p, nil
	}

	if p, err := exec.LookPath("clang-format"); err == nil {
		return p, nil
	}

	return "", errors.New("clang-format not found\n" +
		"- install clang-format and ensure it is on PATH, or\n" +
		"- set " + EnvBin + " to the full path of clang-format")
}

// Run sends input to the binary's stdin and returns captured stdout. stderr
// is inherited so clang-format warnings stay visible. A non-zero exit or a
// canceled context surfaces as an error.
func Run(ctx context.Context, bin string, args []string, input string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stderr = os.Stderr

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("clang-format: %w", err)
	}
	return out.String(), nil
}

// HasAssumeFilename reports whether args already carry an assume-filename
// option in any of clang-format's accepted spellings.
func HasAssumeFilename(args []string) bool {
	for _, a := range args {
		if a == "--assume-filename" || a == "-assume-filename" ||
			strings.HasPrefix(a, "--assume-filename=") ||
			strings.HasPrefix(a, "-assume-filename=") {
			return true
		}
	}
	return false
}

// EnsureAssumeFilename appends the default assume-filename unless the caller
// already provided one.
func EnsureAssumeFilename(args []string) []string {
	if HasAssumeFilename(args) {
		return args
	}
	return append(args, "--assume-filename="+DefaultAssumeFilename)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
