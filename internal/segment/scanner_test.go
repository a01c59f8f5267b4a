package segment_test

import (
	"strings"
	"testing"

	"github.com/aik2mlj/chuckfmt/internal/segment"
)

func joinSegments(segs []segment.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestScanCoverage(t *testing.T) {
	// concatenating segments must reproduce the input exactly
	inputs := []string{
		"",
		"SinOsc s => dac;",
		"// just a comment",
		"/* block */",
		"s => dac; // route\n1::second => now;\n",
		"/* a\nmulti\nline */ code",
		"\"// not a comment\" => string s;",
		"'\"' => char c; /* after */",
		"/* unterminated",
		"\"unterminated string\nnext line;",
		"a\\b \"esc\\\"aped\" c",
		"x == y; // trailing\n",
	}
	for _, in := range inputs {
		segs := segment.Scan(in)
		if got := joinSegments(segs); got != in {
			t.Errorf("Scan(%q): segments join to %q", in, got)
		}
		for i := 1; i < len(segs); i++ {
			if segs[i].Start != segs[i-1].End {
				t.Errorf("Scan(%q): gap between segment %d and %d", in, i-1, i)
			}
		}
	}
}

func TestScanKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []segment.Kind
	}{
		{
			name:  "code only",
			input: "SinOsc s => dac;",
			want:  []segment.Kind{segment.Code},
		},
		{
			name:  "line comment after code",
			input: "s => dac; // route",
			want:  []segment.Kind{segment.Code, segment.LineComment},
		},
		{
			name:  "line comment keeps newline out",
			input: "// a\nb;",
			want:  []segment.Kind{segment.LineComment, segment.Code},
		},
		{
			name:  "block comment inline",
			input: "a /* b */ c",
			want:  []segment.Kind{segment.Code, segment.BlockComment, segment.Code},
		},
		{
			name:  "unterminated block comment",
			input: "a /* b",
			want:  []segment.Kind{segment.Code, segment.BlockComment},
		},
		{
			name:  "string literal",
			input: "\"hi\" => string s;",
			want:  []segment.Kind{segment.String, segment.Code},
		},
		{
			name:  "comment marker inside string",
			input: "\"// no\" => s;",
			want:  []segment.Kind{segment.String, segment.Code},
		},
		{
			name:  "block marker inside string",
			input: "\"/* no */\";",
			want:  []segment.Kind{segment.String, segment.Code},
		},
		{
			name:  "char literal",
			input: "'a' => c;",
			want:  []segment.Kind{segment.String, segment.Code},
		},
		{
			name:  "unterminated string ends at newline",
			input: "\"oops\n// real comment",
			want:  []segment.Kind{segment.String, segment.Code, segment.LineComment},
		},
		{
			name:  "escaped quote stays inside string",
			input: "\"a\\\"b\" c",
			want:  []segment.Kind{segment.String, segment.Code},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := segment.Scan(tt.input)
			if len(segs) != len(tt.want) {
				t.Fatalf("got %d segments, want %d: %+v", len(segs), len(tt.want), segs)
			}
			for i, k := range tt.want {
				if segs[i].Kind != k {
					t.Errorf("segment %d: kind = %v, want %v (text %q)", i, segs[i].Kind, k, segs[i].Text)
				}
			}
		})
	}
}

func TestScanCommentText(t *testing.T) {
	in := "before /* keep = > this */ after // and = > this too"
	segs := segment.Scan(in)

	var comments []string
	for _, s := range segs {
		if s.Kind == segment.BlockComment || s.Kind == segment.LineComment {
			comments = append(comments, s.Text)
		}
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0] != "/* keep = > this */" {
		t.Errorf("block comment text = %q", comments[0])
	}
	if comments[1] != "// and = > this too" {
		t.Errorf("line comment text = %q", comments[1])
	}
}

func TestScanEmpty(t *testing.T) {
	if segs := segment.Scan(""); len(segs) != 0 {
		t.Errorf("Scan(\"\") = %+v, want no segments", segs)
	}
}

func TestScanDivisionIsCode(t *testing.T) {
	// a lone '/' must not open a comment
	in := "1 / 2 => x;"
	segs := segment.Scan(in)
	if len(segs) != 1 || segs[0].Kind != segment.Code {
		t.Fatalf("Scan(%q) = %+v, want a single code segment", in, segs)
	}
}
