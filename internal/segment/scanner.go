package segment

import "fortio.org/safecast"

// Scan splits src into code, comment and string segments. It is a pure
// function: no state survives between calls.
//
// Comment markers inside string literals are not comment starts, so the
// scanner tracks single- and double-quoted literals (with backslash escapes)
// and suppresses marker recognition there. ChucK strings do not span lines;
// an unclosed quote ends at the newline so that one stray quote cannot
// disable comment detection for the rest of the file. An unterminated block
// comment extends to EOF and is still reported as a comment segment.
func Scan(src string) []Segment {
	var segs []Segment
	start := 0 // start of the pending code segment

	emit := func(kind Kind, from, to int) {
		if to <= from {
			return
		}
		segs = append(segs, Segment{
			Kind:  kind,
			Start: offset32(from),
			End:   offset32(to),
			Text:  src[from:to],
		})
	}

	i := 0
	for i < len(src) {
		c := src[i]

		if c == '/' && i+1 < len(src) {
			switch src[i+1] {
			case '/':
				emit(Code, start, i)
				end := lineEnd(src, i)
				emit(LineComment, i, end)
				i = end
				start = i
				continue
			case '*':
				emit(Code, start, i)
				end := blockEnd(src, i+2)
				emit(BlockComment, i, end)
				i = end
				start = i
				continue
			}
		}

		if c == '"' || c == '\'' {
			emit(Code, start, i)
			end := stringEnd(src, i+1, c)
			emit(String, i, end)
			i = end
			start = i
			continue
		}

		i++
	}
	emit(Code, start, len(src))
	return segs
}

// lineEnd returns the index just before the terminating newline, or len(src).
// The newline itself stays with the following code segment.
func lineEnd(src string, from int) int {
	for j := from; j < len(src); j++ {
		if src[j] == '\n' {
			return j
		}
	}
	return len(src)
}

// blockEnd returns the index just past the closing "*/", or len(src) when the
// comment is unterminated.
func blockEnd(src string, from int) int {
	for j := from; j+1 < len(src); j++ {
		if src[j] == '*' && src[j+1] == '/' {
			return j + 2
		}
	}
	return len(src)
}

// stringEnd returns the index just past the closing quote. A newline or EOF
// before the closing quote terminates the literal early (fail-open); the
// newline stays with the following code segment.
func stringEnd(src string, from int, quote byte) int {
	for j := from; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++ // skip the escaped byte
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(src)
}

func offset32(i int) uint32 {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		// inputs beyond 4 GiB are clamped; spans degrade but text survives
		return ^uint32(0)
	}
	return v
}
