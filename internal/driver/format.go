// Package driver orchestrates the chuckfmt pipeline over files and text:
// pre-process, run clang-format, post-process, and write or report results.
package driver

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aik2mlj/chuckfmt/internal/clangformat"
	"github.com/aik2mlj/chuckfmt/internal/transform"
)

// SourceExt is the ChucK source file extension collected from directories.
const SourceExt = ".ck"

// FormatOptions configures formatting.
type FormatOptions struct {
	// Check reports whether files would change without touching them.
	Check bool
	// InPlace rewrites changed files instead of returning their content.
	InPlace bool
	// Jobs caps parallel files in flight; 0 means GOMAXPROCS.
	Jobs int
	// NoCache bypasses the on-disk output cache.
	NoCache bool
	// Binary is the clang-format path; resolved from the environment when
	// empty.
	Binary string
	// ClangArgs are passed to clang-format verbatim; an assume-filename is
	// appended when absent.
	ClangArgs []string
	// Progress receives per-file stage events when non-nil.
	Progress EventSink
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Formatted []byte
	Err       error
}

// FormatPaths formats provided files or directories (recursively collecting
// .ck files) in parallel. Results come back in deterministic path order, one
// per file; per-file failures land in FormatResult.Err rather than aborting
// the batch. When opts.Check is set files are not modified and Changed says
// whether formatting would update them; when opts.InPlace is set changed
// files are rewritten; otherwise the formatted content is returned in the
// results.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bin, args, err := resolveInvocation(opts)
	if err != nil {
		return nil, err
	}

	files, err := CollectFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("format: no source files found")
	}

	cache := openCache(opts)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FormatResult, len(files))
	for i, path := range files {
		results[i] = FormatResult{Path: path}
		publish(opts.Progress, Event{Path: path, Stage: StageQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			publish(opts.Progress, Event{Path: path, Stage: StageFormatting})
			res := &results[i]
			var hit bool
			res.Changed, res.Formatted, hit, res.Err = formatOneFile(gctx, path, bin, args, cache, opts)

			ev := Event{Path: path, Changed: res.Changed}
			switch {
			case res.Err != nil:
				ev.Stage = StageFailed
				ev.Err = res.Err
			case hit:
				ev.Stage = StageCached
			default:
				ev.Stage = StageDone
			}
			publish(opts.Progress, ev)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// FormatText runs the pipeline over a single in-memory document (the stdin
// path of the CLI). The cache is not consulted.
func FormatText(ctx context.Context, input string, opts FormatOptions) (string, error) {
	bin, args, err := resolveInvocation(opts)
	if err != nil {
		return "", err
	}
	return ProcessString(ctx, bin, args, input)
}

// ProcessString is the core sequence: pre-process, external formatter,
// post-process.
func ProcessString(ctx context.Context, bin string, args []string, input string) (string, error) {
	pre := transform.Preprocess(input)
	formatted, err := clangformat.Run(ctx, bin, args, pre)
	if err != nil {
		return "", err
	}
	return transform.Postprocess(formatted), nil
}

func formatOneFile(ctx context.Context, path, bin string, args []string, cache *DiskCache, opts FormatOptions) (changed bool, formatted []byte, hit bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, nil, false, err
	}

	var out []byte
	key := CacheKey(args, data)
	if cached, ok := cache.Get(key, args); ok {
		out = cached
		hit = true
	} else {
		fixed, procErr := ProcessString(ctx, bin, args, string(data))
		if procErr != nil {
			return false, nil, false, procErr
		}
		out = []byte(fixed)
		// cache write failures only cost speed
		_ = cache.Put(key, args, out)
	}

	changed = !bytes.Equal(data, out)
	if opts.Check {
		return changed, nil, hit, nil
	}
	if !opts.InPlace {
		return changed, out, hit, nil
	}

	if changed {
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(path, out, mode.Perm()); err != nil {
			return false, nil, hit, err
		}
	}
	return changed, nil, hit, nil
}

func resolveInvocation(opts FormatOptions) (bin string, args []string, err error) {
	bin = opts.Binary
	if bin == "" {
		bin, err = clangformat.Resolve()
		if err != nil {
			return "", nil, err
		}
	}
	args = clangformat.EnsureAssumeFilename(opts.ClangArgs)
	return bin, args, nil
}

func openCache(opts FormatOptions) *DiskCache {
	if opts.NoCache {
		return nil
	}
	cache, err := OpenDiskCache(cacheAppName)
	if err != nil {
		// a missing cache directory only costs speed
		return nil
	}
	return cache
}

// CollectFiles resolves files and directories into the sorted, deduplicated
// list of files FormatPaths will visit. Directories are walked recursively
// for .ck files; explicitly named files are taken as-is.
func CollectFiles(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if filepath.Ext(path) == SourceExt {
					addFile(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		// explicitly named files are taken as-is, whatever their extension
		addFile(p)
	}

	sort.Strings(files)
	return files, nil
}
