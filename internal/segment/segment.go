package segment

// Kind classifies a contiguous span of ChucK source text.
type Kind uint8

const (
	// Code is anything the transform pipeline may rewrite.
	Code Kind = iota
	// LineComment covers "//" up to (not including) the newline.
	LineComment
	// BlockComment covers "/*" through "*/", or to EOF when unterminated.
	BlockComment
	// String covers a single- or double-quoted literal including its quotes.
	String
)

func (k Kind) String() string {
	switch k {
	case Code:
		return "code"
	case LineComment:
		return "line-comment"
	case BlockComment:
		return "block-comment"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

// Segment is one span of classified source text. Segments produced by Scan
// partition the input: no gaps, no overlaps, and concatenating Text in order
// reproduces the input byte-for-byte.
type Segment struct {
	Kind  Kind
	Start uint32
	End   uint32
	Text  string
}

// Protected reports whether the segment must pass through the transform
// pipeline untouched.
func (s Segment) Protected() bool {
	return s.Kind != Code
}
