package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aik2mlj/chuckfmt/internal/segment"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments [flags] [file.ck]",
	Short: "Dump the comment-aware segmentation of a source file",
	Long: `Segments shows how chuckfmt partitions a file into code, comment and
string spans before the transform rules run. Useful for debugging why a rule
did or did not fire. Without a file, input is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSegments,
}

func init() {
	segmentsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runSegments(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	var src []byte
	if len(args) == 1 {
		src, err = os.ReadFile(args[0])
		if err != nil {
			return err
		}
	} else {
		src, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	segs := segment.Scan(string(src))

	switch format {
	case "pretty":
		return renderSegmentsPretty(cmd.OutOrStdout(), segs)
	case "json":
		return renderSegmentsJSON(cmd.OutOrStdout(), segs)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func renderSegmentsPretty(out io.Writer, segs []segment.Segment) error {
	for _, s := range segs {
		if _, err := fmt.Fprintf(out, "%5d..%-5d %-13s %q\n", s.Start, s.End, s.Kind, s.Text); err != nil {
			return err
		}
	}
	return nil
}

func renderSegmentsJSON(out io.Writer, segs []segment.Segment) error {
	type jsonSegment struct {
		Kind  string `json:"kind"`
		Start uint32 `json:"start"`
		End   uint32 `json:"end"`
		Text  string `json:"text"`
	}
	payload := make([]jsonSegment, 0, len(segs))
	for _, s := range segs {
		payload = append(payload, jsonSegment{
			Kind:  s.Kind.String(),
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
