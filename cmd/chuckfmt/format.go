package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aik2mlj/chuckfmt/internal/config"
	"github.com/aik2mlj/chuckfmt/internal/driver"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [path...]",
	Short: "Format ChucK source files",
	Long: `Format pre-processes ChucK source, runs it through clang-format and
restores the ChucK operator spacing afterwards. Without paths, input is read
from stdin and written to stdout. Directories are searched recursively for
.ck files.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolP("in-place", "i", false, "rewrite files instead of printing to stdout")
	fmtCmd.Flags().Bool("check", false, "report files that would change; exit 1 if any")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().String("files", "", "read additional file paths from this list file")
	fmtCmd.Flags().String("style", "", "clang-format --style value")
	fmtCmd.Flags().String("assume-filename", "", "clang-format --assume-filename value")
	fmtCmd.Flags().String("clang-format", "", "path to the clang-format binary")
	fmtCmd.Flags().StringArray("clang-arg", nil, "extra argument passed to clang-format verbatim (repeatable)")
	fmtCmd.Flags().Int("jobs", 0, "parallel files in flight (0 = number of CPUs)")
	fmtCmd.Flags().Bool("no-cache", false, "bypass the on-disk formatting cache")
	fmtCmd.Flags().Bool("drop-cache", false, "wipe the on-disk formatting cache before running")
	fmtCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	flags, err := readFmtFlags(cmd)
	if err != nil {
		return err
	}
	if flags.check && flags.inPlace {
		return fmt.Errorf("fmt: --check cannot be used with --in-place")
	}
	if !flags.check && !flags.inPlace && flags.outputFormat != "text" {
		return fmt.Errorf("fmt: writing formatted code to stdout is only supported with text output")
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	opts, err := buildFormatOptions(flags)
	if err != nil {
		return err
	}

	paths := append([]string(nil), args...)
	if flags.listFile != "" {
		extra, err := driver.ExpandListFile(flags.listFile)
		if err != nil {
			return err
		}
		paths = append(paths, extra...)
	}

	if flags.dropCache {
		if err := driver.DropCache(); err != nil {
			return fmt.Errorf("fmt: drop cache: %w", err)
		}
		// with nothing to format, wiping the cache is the whole job
		if len(paths) == 0 {
			return nil
		}
	}

	if len(paths) == 0 {
		return runFmtStdin(cmd, flags, opts)
	}

	var results []driver.FormatResult
	if flags.useTUI && flags.outputFormat == "text" && (flags.check || flags.inPlace) {
		results, err = runFormatWithUI(cmd.Context(), fmtTitle(flags), paths, opts)
	} else {
		results, err = driver.FormatPaths(cmd.Context(), paths, opts)
	}
	if err != nil {
		return err
	}

	var hasErrors bool
	var hasChanges bool

	switch flags.outputFormat {
	case "text":
		if !flags.check && !flags.inPlace {
			renderFmtStdout(results, &hasErrors)
			if hasErrors {
				return fmt.Errorf("fmt: failed to format some files")
			}
			return nil
		}
		renderFmtText(results, flags.check, quiet, &hasErrors, &hasChanges)
	case "json":
		if err := renderFmtJSON(results, flags.check); err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				hasErrors = true
			}
			if res.Changed {
				hasChanges = true
			}
		}
	default:
		return fmt.Errorf("fmt: unsupported output format %q", flags.outputFormat)
	}

	if hasErrors {
		return fmt.Errorf("fmt: failed to format some files")
	}
	if flags.check && hasChanges {
		return fmt.Errorf("fmt: formatting changes required")
	}
	return nil
}

type fmtFlags struct {
	inPlace        bool
	check          bool
	outputFormat   string
	listFile       string
	style          string
	assumeFilename string
	binary         string
	clangArgs      []string
	jobs           int
	noCache        bool
	dropCache      bool
	useTUI         bool
}

func readFmtFlags(cmd *cobra.Command) (fmtFlags, error) {
	var f fmtFlags
	var err error

	if f.inPlace, err = cmd.Flags().GetBool("in-place"); err != nil {
		return f, err
	}
	if f.check, err = cmd.Flags().GetBool("check"); err != nil {
		return f, err
	}
	if f.outputFormat, err = cmd.Flags().GetString("format"); err != nil {
		return f, err
	}
	if f.listFile, err = cmd.Flags().GetString("files"); err != nil {
		return f, err
	}
	if f.style, err = cmd.Flags().GetString("style"); err != nil {
		return f, err
	}
	if f.assumeFilename, err = cmd.Flags().GetString("assume-filename"); err != nil {
		return f, err
	}
	if f.binary, err = cmd.Flags().GetString("clang-format"); err != nil {
		return f, err
	}
	if f.clangArgs, err = cmd.Flags().GetStringArray("clang-arg"); err != nil {
		return f, err
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, err
	}
	if f.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return f, err
	}
	if f.dropCache, err = cmd.Flags().GetBool("drop-cache"); err != nil {
		return f, err
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, err
	}
	if f.useTUI, err = resolveUIFlag(uiFlag); err != nil {
		return f, err
	}
	return f, nil
}

// resolveUIFlag decides whether the progress display runs, mirroring how the
// root command handles --color: explicit on/off win, auto follows whether
// stdout is a terminal.
func resolveUIFlag(value string) (bool, error) {
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// buildFormatOptions merges flags over the nearest chuckfmt.toml. Flags win.
func buildFormatOptions(flags fmtFlags) (driver.FormatOptions, error) {
	cfg, cfgPath, ok, err := config.Load("")
	if err != nil {
		return driver.FormatOptions{}, fmt.Errorf("fmt: %s: %w", cfgPath, err)
	}

	merged := cfg.Format
	if !ok {
		merged = config.Format{}
	}
	if flags.style != "" {
		merged.Style = flags.style
	}
	if flags.assumeFilename != "" {
		merged.AssumeFilename = flags.assumeFilename
	}
	if flags.binary != "" {
		merged.ClangFormat = flags.binary
	}
	jobs := merged.Jobs
	if flags.jobs > 0 {
		jobs = flags.jobs
	}

	clangArgs := merged.ClangArgs()
	clangArgs = append(clangArgs, flags.clangArgs...)

	return driver.FormatOptions{
		Check:     flags.check,
		InPlace:   flags.inPlace,
		Jobs:      jobs,
		NoCache:   flags.noCache,
		Binary:    merged.ClangFormat,
		ClangArgs: clangArgs,
	}, nil
}

func runFmtStdin(cmd *cobra.Command, flags fmtFlags, opts driver.FormatOptions) error {
	if flags.inPlace {
		return fmt.Errorf("fmt: --in-place requires at least one file")
	}
	if flags.check {
		return fmt.Errorf("fmt: --check requires at least one file")
	}

	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	fixed, err := driver.FormatText(cmd.Context(), string(input), opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), fixed)
	return err
}

func fmtTitle(flags fmtFlags) string {
	if flags.check {
		return "checking format"
	}
	return "formatting"
}

func renderFmtStdout(results []driver.FormatResult, hasErrors *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(os.Stderr, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}

		_, _ = os.Stdout.Write(res.Formatted)
	}
}

func renderFmtText(results []driver.FormatResult, check, quiet bool, hasErrors, hasChanges *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(os.Stderr, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}

		if check {
			if res.Changed {
				*hasChanges = true
				if !quiet {
					fmt.Fprintln(os.Stdout, res.Path)
				}
			}
			continue
		}

		if res.Changed && !quiet {
			fmt.Fprintf(os.Stdout, "reformatted %s\n", res.Path)
		}
	}
}

func renderFmtJSON(results []driver.FormatResult, check bool) error {
	type jsonResult struct {
		Path     string `json:"path"`
		Changed  bool   `json:"changed"`
		Error    string `json:"error,omitempty"`
		CheckRun bool   `json:"check"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Changed: res.Changed, CheckRun: check}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
