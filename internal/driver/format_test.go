package driver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

// fakeFormatter drops a clang-format stand-in (plain cat) into a temp dir.
func fakeFormatter(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-clang-format")
	if err := os.WriteFile(path, []byte("#!/bin/sh\ncat\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessString(t *testing.T) {
	bin := fakeFormatter(t)

	// with a pass-through formatter the result is exactly the transform
	// pipeline: import shim round-trips, operators get fixed
	in := "@import \"deps.ck\"\nSinOsc s = > dac;\n1 ::second = > now;\n"
	want := "@import \"deps.ck\"\nSinOsc s => dac;\n1::second => now;\n"

	got, err := ProcessString(context.Background(), bin, nil, in)
	if err != nil {
		t.Fatalf("ProcessString: %v", err)
	}
	if got != want {
		t.Errorf("ProcessString = %q, want %q", got, want)
	}
}

func TestCollectSourceFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ck", "")
	b := writeFile(t, dir, "sub/b.ck", "")
	writeFile(t, dir, "sub/notes.txt", "")
	other := writeFile(t, dir, "explicit.txt", "")

	files, err := CollectFiles(context.Background(), []string{dir, other, a})
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}

	want := []string{a, other, b}
	sortWant := map[string]bool{a: true, b: true, other: true}
	if len(files) != len(want) {
		t.Fatalf("got %d files %v, want %d", len(files), files, len(want))
	}
	for _, f := range files {
		if !sortWant[f] {
			t.Errorf("unexpected file %q", f)
		}
	}
	// duplicates collapse: dir walk already found a.ck
	for i := 1; i < len(files); i++ {
		if files[i] == files[i-1] {
			t.Errorf("duplicate entry %q", files[i])
		}
	}
}

func TestFormatPathsInPlace(t *testing.T) {
	bin := fakeFormatter(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	dirty := writeFile(t, dir, "dirty.ck", "x = > y;\n")
	clean := writeFile(t, dir, "clean.ck", "x => y;\n")

	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{
		Binary:  bin,
		InPlace: true,
	})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}

	byPath := map[string]FormatResult{}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Path, r.Err)
		}
		byPath[r.Path] = r
	}
	if !byPath[dirty].Changed {
		t.Error("dirty.ck should report changed")
	}
	if byPath[clean].Changed {
		t.Error("clean.ck should be unchanged")
	}

	got, err := os.ReadFile(dirty)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "x => y;\n" {
		t.Errorf("dirty.ck content = %q", got)
	}
}

func TestFormatPathsCheck(t *testing.T) {
	bin := fakeFormatter(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	dirty := writeFile(t, dir, "dirty.ck", "spork ~go();\n")

	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{
		Binary: bin,
		Check:  true,
	})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 || !results[0].Changed {
		t.Fatalf("results = %+v, want one changed entry", results)
	}

	// check mode must not touch the file
	got, err := os.ReadFile(dirty)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "spork ~go();\n" {
		t.Errorf("check mode rewrote the file: %q", got)
	}
}

func TestFormatPathsStdoutContent(t *testing.T) {
	bin := fakeFormatter(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	writeFile(t, dir, "a.ck", "<<<x>>>;\n")

	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Binary: bin})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	if string(results[0].Formatted) != "<<< x >>>;\n" {
		t.Errorf("Formatted = %q", results[0].Formatted)
	}
}

func TestFormatPathsMissingFile(t *testing.T) {
	bin := fakeFormatter(t)
	_, err := FormatPaths(context.Background(), []string{"does-not-exist.ck"}, FormatOptions{Binary: bin})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestFormatPathsPublishesEvents(t *testing.T) {
	bin := fakeFormatter(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	writeFile(t, dir, "a.ck", "x = > y;\n")

	sink := &recordingSink{}
	_, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{
		Binary:   bin,
		Check:    true,
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}

	stages := map[Stage]int{}
	for _, ev := range sink.events {
		stages[ev.Stage]++
	}
	if stages[StageQueued] != 1 || stages[StageFormatting] != 1 || stages[StageDone] != 1 {
		t.Errorf("stage counts = %v", stages)
	}

	// same input again: the output cache is warm now, so the terminal
	// stage is StageCached instead of StageDone
	warm := &recordingSink{}
	_, err = FormatPaths(context.Background(), []string{dir}, FormatOptions{
		Binary:   bin,
		Check:    true,
		Progress: warm,
	})
	if err != nil {
		t.Fatalf("FormatPaths (warm): %v", err)
	}
	warmStages := map[Stage]int{}
	var cachedChanged bool
	for _, ev := range warm.events {
		warmStages[ev.Stage]++
		if ev.Stage == StageCached {
			cachedChanged = ev.Changed
		}
	}
	if warmStages[StageCached] != 1 || warmStages[StageDone] != 0 {
		t.Errorf("warm stage counts = %v", warmStages)
	}
	if !cachedChanged {
		t.Error("cached event should still report the file as changed")
	}
}

func TestExpandListFile(t *testing.T) {
	dir := t.TempDir()
	list := writeFile(t, dir, "files.txt", "a.ck\n\n  b.ck  \nsub/c.ck\n")

	got, err := ExpandListFile(list)
	if err != nil {
		t.Fatalf("ExpandListFile: %v", err)
	}
	want := []string{"a.ck", "b.ck", "sub/c.ck"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExpandListFileMissing(t *testing.T) {
	if _, err := ExpandListFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing list file")
	}
}
