package transform

import "regexp"

// Rule rewrites one operator pattern. Rules run in table order over code
// segments, each rule seeing the output of the previous one. Patterns allow
// any whitespace (including newlines) between the operator's characters,
// because clang-format can emit "=\n  >".
type Rule struct {
	Name string
	re   *regexp.Regexp
	repl string
}

// apply rewrites until the text stops changing. A single ReplaceAllString
// pass is not enough: matches are non-overlapping, so in "2*a*b" the first
// match consumes the "a" and the second "*" is only seen on the next pass.
// Every rule's replacement is stable under its own pattern, so the loop
// terminates.
func (r Rule) apply(s string) string {
	for {
		next := r.re.ReplaceAllString(s, r.repl)
		if next == s {
			return next
		}
		s = next
	}
}

// rules is the fixed pipeline, built once and never mutated. Order is the
// contract: the at-chuck rule relies on the chuck rule having already
// collapsed "= >" into "=>", and the unary-sign rule must run before
// mul-spacing so that a leading sign is glued to its number before any "*"
// spacing is considered.
var rules = []Rule{
	{"chuck", regexp.MustCompile(`=\s*>`), "=>"},
	{"unchuck", regexp.MustCompile(`=\s*<`), "=<"},
	{"at-chuck", regexp.MustCompile(`@\s*=>`), "@=>"},
	{"upchuck", regexp.MustCompile(`=\s*\^\s*`), "=^ "},
	{"time-scope", regexp.MustCompile(`([0-9]+(?:\.[0-9]*)?|[A-Za-z_][A-Za-z0-9_]*)\s+::`), "$1::"},
	{"print-open", regexp.MustCompile(`<<<\s*`), "<<< "},
	{"print-open-split", regexp.MustCompile(`< < <\s*`), "<<< "},
	{"print-close", regexp.MustCompile(`\s*>>>`), " >>>"},
	{"print-close-semi", regexp.MustCompile(`\s*>>>\s*;`), " >>>;"},
	{"polar", regexp.MustCompile(`%\s*\(`), "%("},
	{"gruck", regexp.MustCompile(`\s*-\s*-\s*>\s*`), " --> "},
	{"ungruck", regexp.MustCompile(`\s*-\s*-\s*<\s*`), " --< "},
	{"unary-sign", regexp.MustCompile(`(?m)^(\s*[+-])\s+([0-9]+(?:\.[0-9]*)?|\.[0-9]+)`), "$1$2"},
	{"mul-spacing", regexp.MustCompile(`([0-9A-Za-z_])\*([A-Za-z_])`), "$1 * $2"},
	{"spork", regexp.MustCompile(`\bspork\s*~\s*`), "spork ~ "},
}

// importDirective matches an @import line, optionally brace-wrapped, that
// clang-format's Java grammar cannot parse without a trailing ";".
var importDirective = regexp.MustCompile(`(?m)^(\s*@import\s*\{?\s*".*"\s*?\}?\s*?)$`)

// importSemi matches the ";" the pre-processor added, for removal after the
// formatter has run.
var importSemi = regexp.MustCompile(`(?m)^(\s*@import.*);$`)
