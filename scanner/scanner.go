// Package scanner provides string-boundary-aware scanning for the Twi
// translator and the emitted-Python validator. It encapsulates the tracking
// of double-quoted and single-quoted string literals plus escape sequences,
// eliminating the need for every caller to re-implement this logic.
package scanner

import "strings"

// closingKind tracks which type of string delimiter was just closed.
type closingKind byte

const (
	noClosing     closingKind = iota
	closingDouble             // just closed a "..." string
	closingSingle             // just closed a '...' string
)

// CodeScanner iterates byte-by-byte over source text, tracking string
// literal boundaries (double-quoted, single-quoted) and escape sequences.
// Callers check InString() instead of maintaining their own
// inDouble/inSingle/escaped flags.
//
// InString() returns true for the entire string span including both
// opening and closing delimiters.
type CodeScanner struct {
	src     string
	pos     int
	line    int
	inDbl   bool
	inSgl   bool
	escaped bool
	closing closingKind // set when a closing delimiter is processed
}

// New creates a CodeScanner for the given source text.
// Call Next() to advance to the first byte.
func New(src string) *CodeScanner {
	return &CodeScanner{src: src, pos: -1, line: 1}
}

// Next advances to the next byte, updating string/escape state.
// Returns the byte and true, or (0, false) at end of input.
func (s *CodeScanner) Next() (byte, bool) {
	s.closing = noClosing
	s.pos++
	if s.pos >= len(s.src) {
		return 0, false
	}
	ch := s.src[s.pos]
	if ch == '\n' {
		s.line++
	}

	if s.escaped {
		s.escaped = false
		return ch, true
	}
	if ch == '\\' && (s.inDbl || s.inSgl) {
		s.escaped = true
		return ch, true
	}
	if ch == '"' && !s.inSgl {
		if s.inDbl {
			s.closing = closingDouble
		}
		s.inDbl = !s.inDbl
	} else if ch == '\'' && !s.inDbl {
		if s.inSgl {
			s.closing = closingSingle
		}
		s.inSgl = !s.inSgl
	}

	return ch, true
}

// InString reports whether the current position is inside a string literal
// (double-quoted or single-quoted), including both opening and closing
// delimiters.
func (s *CodeScanner) InString() bool {
	return s.inDbl || s.inSgl || s.closing != noClosing
}

// Open reports whether a string literal is open at the current position,
// without the closing-delimiter correction that InString() applies. At a
// closing quote this returns false while InString() returns true.
func (s *CodeScanner) Open() bool { return s.inDbl || s.inSgl }

// InCode reports whether the current position is outside all string literals.
func (s *CodeScanner) InCode() bool { return !s.InString() }

// Pos returns the current byte offset (the position of the last byte
// returned by Next). Returns -1 before the first call to Next.
func (s *CodeScanner) Pos() int { return s.pos }

// Line returns the current 1-based line number.
func (s *CodeScanner) Line() int { return s.line }

// Peek returns the next byte without advancing, or (0, false) at end.
func (s *CodeScanner) Peek() (byte, bool) {
	if s.pos+1 >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos+1], true
}

// LookingAt checks if src[pos:] starts with the given prefix.
// Useful for multi-byte token detection.
func (s *CodeScanner) LookingAt(prefix string) bool {
	if s.pos < 0 {
		return strings.HasPrefix(s.src, prefix)
	}
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

// Skip advances past n bytes without returning them. String/escape state
// is updated for each skipped byte. Returns the number of bytes actually
// skipped (may be less than n at end of input).
func (s *CodeScanner) Skip(n int) int {
	skipped := 0
	for i := 0; i < n; i++ {
		if _, ok := s.Next(); !ok {
			break
		}
		skipped++
	}
	return skipped
}

// IsOpenBracket reports whether ch is an opening bracket/paren/brace.
func IsOpenBracket(ch byte) bool {
	return ch == '(' || ch == '[' || ch == '{'
}

// IsCloseBracket reports whether ch is a closing bracket/paren/brace.
func IsCloseBracket(ch byte) bool {
	return ch == ')' || ch == ']' || ch == '}'
}

// ReplaceOutsideStrings replaces every occurrence of old with new in s,
// skipping occurrences that fall inside string literals. Used by the
// lexical rule table so keyword substitution never rewrites quoted text.
func ReplaceOutsideStrings(s, old, new string) string {
	if old == "" {
		return s
	}
	var sb strings.Builder
	sc := New(s)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.InCode() && sc.LookingAt(old) {
			sb.WriteString(new)
			sc.Skip(len(old) - 1)
			continue
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}

// EndsWithInCode reports whether the last non-space byte of s is ch and
// falls outside all string literals. The validator uses this to detect
// block headers (trailing ':').
func EndsWithInCode(s string, ch byte) bool {
	trimmed := strings.TrimRight(s, " \t")
	if trimmed == "" || trimmed[len(trimmed)-1] != ch {
		return false
	}
	sc := New(trimmed)
	for i := 0; i < len(trimmed)-1; i++ {
		sc.Next()
	}
	return !sc.Open()
}
