// Package transform restores ChucK operator spacing in text produced by a
// general-purpose formatter that does not know the language. It exposes two
// pure functions: Preprocess runs before the external formatter, Postprocess
// after. Both are total and fail-open: unrecognized input passes through
// unchanged, and nothing inside comment or string literals is ever touched.
package transform

import (
	"strings"

	"github.com/aik2mlj/chuckfmt/internal/segment"
)

// Preprocess rewrites constructs the external formatter misparses into a
// formatter-safe stand-in. Today that is a single rewrite: "@import" lines
// gain a trailing ";" so clang-format's grammar accepts them. Postprocess
// removes it again. Idempotent: a line that already carries the ";" does not
// match a second time.
//
// The directive's quoted path is a string literal, so the rewrite runs over
// comment-free text rather than code-only segments.
func Preprocess(src string) string {
	return rewriteOutsideComments(src, func(s string) string {
		return importDirective.ReplaceAllString(s, "$1;")
	})
}

// Postprocess applies the operator rule table to formatter output. Comment
// and string segments pass through byte-for-byte; code segments are rewritten
// by every rule in table order. The function is total over any input,
// including the empty string, and idempotent.
func Postprocess(src string) string {
	out := rewriteCode(src, func(code string) string {
		for _, r := range rules {
			code = r.apply(code)
		}
		return code
	})
	// undo the pre-processor's "@import ...;" shim; the quoted path is a
	// string segment, so this pass sees comment-free text like Preprocess
	return rewriteOutsideComments(out, func(s string) string {
		return importSemi.ReplaceAllString(s, "$1")
	})
}

// Rules exposes a copy of the rule table for debug tooling.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// rewriteCode applies fn to every code segment and reassembles the text with
// comment and string segments untouched.
func rewriteCode(src string, fn func(string) string) string {
	segs := segment.Scan(src)
	var b strings.Builder
	b.Grow(len(src))
	for _, seg := range segs {
		if seg.Protected() {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString(fn(seg.Text))
	}
	return b.String()
}

// rewriteOutsideComments joins runs of adjacent non-comment segments (code
// and string literals) and applies fn to each run, so patterns that span a
// quoted path still match. Comment segments pass through untouched.
func rewriteOutsideComments(src string, fn func(string) string) string {
	segs := segment.Scan(src)
	var b strings.Builder
	b.Grow(len(src))

	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(fn(run.String()))
			run.Reset()
		}
	}
	for _, seg := range segs {
		switch seg.Kind {
		case segment.LineComment, segment.BlockComment:
			flush()
			b.WriteString(seg.Text)
		default:
			run.WriteString(seg.Text)
		}
	}
	flush()
	return b.String()
}
