package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aik2mlj/chuckfmt/internal/config"
)

const sampleManifest = `[format]
style = "file"
assume-filename = "code.java"
clang-format = "/opt/llvm/bin/clang-format"
extra-args = ["--ferror-limit", "0"]
jobs = 4
`

func TestLoadFromParentDir(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "chugins")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, config.FileName)
	if err := os.WriteFile(manifest, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, ok, err := config.Load(nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load: manifest not found")
	}
	if path != manifest {
		t.Errorf("path = %q, want %q", path, manifest)
	}
	if cfg.Format.Style != "file" {
		t.Errorf("Style = %q", cfg.Format.Style)
	}
	if cfg.Format.ClangFormat != "/opt/llvm/bin/clang-format" {
		t.Errorf("ClangFormat = %q", cfg.Format.ClangFormat)
	}
	if cfg.Format.Jobs != 4 {
		t.Errorf("Jobs = %d", cfg.Format.Jobs)
	}
	if len(cfg.Format.ExtraArgs) != 2 || cfg.Format.ExtraArgs[0] != "--ferror-limit" {
		t.Errorf("ExtraArgs = %v", cfg.Format.ExtraArgs)
	}
}

func TestLoadAbsent(t *testing.T) {
	_, _, ok, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("Load: unexpected manifest in empty temp dir")
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("[format\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, ok, err := config.Load(dir)
	if err == nil {
		t.Fatal("Load: expected parse error")
	}
	if !ok {
		t.Error("Load: manifest existed, ok should be true")
	}
}

func TestClangArgs(t *testing.T) {
	f := config.Format{Style: "file", AssumeFilename: "x.java", ExtraArgs: []string{"--length", "80"}}
	got := f.ClangArgs()
	want := []string{"--style=file", "--assume-filename=x.java", "--length", "80"}
	if len(got) != len(want) {
		t.Fatalf("ClangArgs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ClangArgs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
