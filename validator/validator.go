// Package validator checks that emitted Python source is structurally
// well-formed before any execution is attempted. It is a pure parse of the
// target text's block grammar: logical-line assembly (bracket continuation,
// string termination), an indentation stack in the style of Python's
// tokenizer, and block-header discipline. It never executes, mutates, or
// repairs the text.
//
// Only the block-per-line layout the translator emits is accepted:
// single-line suites such as "if x: pass" are valid Python but are
// rejected here with a dedicated message.
package validator

import (
	"fmt"
	"strings"

	"github.com/akan-lang/twi/scanner"
)

// SyntaxError reports the first structural problem found in the emitted
// text, with the 1-based line number it occurred on.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errAt(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// blockKeywords are the statement keywords that open (or continue) an
// indented block and therefore must end with ':'.
var blockKeywords = map[string]bool{
	"if": true, "elif": true, "else": true,
	"for": true, "while": true, "def": true,
	"try": true, "except": true, "finally": true,
	"with": true, "class": true,
}

// elseMatches are the keywords an 'else' clause may follow at the same level.
var elseMatches = map[string]bool{
	"if": true, "elif": true, "for": true, "while": true, "except": true,
}

// Validate parses code and returns nil if it is structurally valid, or a
// *SyntaxError describing the first problem. Empty input is valid.
func Validate(code string) error {
	lines, err := assemble(code)
	if err != nil {
		return err
	}
	return checkBlocks(lines)
}

// logicalLine is one statement after bracket continuation has been folded
// in: possibly several physical lines joined into one.
type logicalLine struct {
	text   string // trimmed statement text, continuations joined by a space
	line   int    // 1-based physical line the statement starts on
	indent int    // leading spaces of the first physical line
}

// assemble splits code into logical lines, verifying string termination
// and bracket balance along the way.
func assemble(code string) ([]logicalLine, error) {
	var out []logicalLine
	var cur *logicalLine
	depth := 0

	for num, physical := range strings.Split(code, "\n") {
		lineNo := num + 1
		trimmed := strings.TrimSpace(physical)

		if cur == nil {
			if trimmed == "" {
				continue
			}
			indent, err := measureIndent(physical, lineNo)
			if err != nil {
				return nil, err
			}
			cur = &logicalLine{text: trimmed, line: lineNo, indent: indent}
		} else {
			cur.text += " " + trimmed
		}

		sc := scanner.New(physical)
		for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
			if sc.InString() {
				continue
			}
			if scanner.IsOpenBracket(ch) {
				depth++
			} else if scanner.IsCloseBracket(ch) {
				depth--
				if depth < 0 {
					return nil, errAt(lineNo, "unmatched %q", string(ch))
				}
			}
		}
		if sc.Open() {
			return nil, errAt(lineNo, "unterminated string literal")
		}

		if depth == 0 {
			out = append(out, *cur)
			cur = nil
		}
	}

	if cur != nil {
		return nil, errAt(cur.line, "unclosed bracket at end of input")
	}
	return out, nil
}

// measureIndent counts leading spaces. Tabs in indentation are rejected;
// the translator only ever emits spaces, so a tab means foreign text.
func measureIndent(physical string, lineNo int) (int, error) {
	indent := 0
	for _, ch := range []byte(physical) {
		if ch == ' ' {
			indent++
			continue
		}
		if ch == '\t' {
			return 0, errAt(lineNo, "tab in indentation")
		}
		break
	}
	return indent, nil
}

// checkBlocks runs the indentation-stack pass over logical lines,
// enforcing that every block header has an indented body, that dedents
// land on an enclosing level, and that else/elif clauses follow a
// matching opener.
func checkBlocks(lines []logicalLine) error {
	stack := []int{0}
	expectIndent := false
	headerLine := 0
	lastKw := map[int]string{} // indent level → keyword of last statement there

	for _, ll := range lines {
		if strings.HasPrefix(ll.text, "#") {
			continue // comments never open or satisfy a block
		}

		top := stack[len(stack)-1]
		if expectIndent {
			if ll.indent <= top {
				return errAt(ll.line, "expected an indented block")
			}
			stack = append(stack, ll.indent)
			expectIndent = false
		} else {
			if ll.indent > top {
				return errAt(ll.line, "unexpected indent")
			}
			for ll.indent < top {
				delete(lastKw, top)
				stack = stack[:len(stack)-1]
				top = stack[len(stack)-1]
			}
			if ll.indent != top {
				return errAt(ll.line, "unindent does not match any outer indentation level")
			}
		}

		kw := firstWord(ll.text)
		isHeader := scanner.EndsWithInCode(ll.text, ':')

		if err := checkStatement(ll, kw, isHeader, lastKw); err != nil {
			return err
		}

		if isHeader {
			expectIndent = true
			headerLine = ll.line
			lastKw[ll.indent] = kw
		} else {
			lastKw[ll.indent] = ""
		}
	}

	if expectIndent {
		return errAt(headerLine, "expected an indented block")
	}
	return nil
}

// checkStatement validates the shape of a single logical line given its
// leading keyword and whether it ends with a block-opening colon.
func checkStatement(ll logicalLine, kw string, isHeader bool, lastKw map[int]string) error {
	if blockKeywords[kw] && !isHeader {
		if colonInCode(ll.text) {
			return errAt(ll.line, "single-line suite after %q is not supported, put the body on an indented line", kw)
		}
		return errAt(ll.line, "expected ':' after %q statement", kw)
	}
	if !isHeader {
		return nil
	}

	// Text between the keyword and the trailing colon.
	body := strings.TrimSpace(strings.TrimSuffix(ll.text[len(kw):], ":"))
	switch kw {
	case "else":
		if strings.TrimSpace(ll.text) != "else:" {
			return errAt(ll.line, "invalid syntax after 'else'")
		}
		if !elseMatches[lastKw[ll.indent]] {
			return errAt(ll.line, "'else' without a matching 'if', loop, or 'except'")
		}
	case "elif":
		if body == "" {
			return errAt(ll.line, "expected a condition after 'elif'")
		}
		if prev := lastKw[ll.indent]; prev != "if" && prev != "elif" {
			return errAt(ll.line, "'elif' without a matching 'if'")
		}
	case "if", "while":
		if body == "" {
			return errAt(ll.line, "expected a condition after %q", kw)
		}
	case "for":
		if !strings.Contains(body, " in ") {
			return errAt(ll.line, "expected 'in' in 'for' statement")
		}
	case "def":
		if !strings.Contains(body, "(") || !strings.HasSuffix(strings.TrimSpace(body), ")") {
			return errAt(ll.line, "invalid function definition")
		}
	case "except", "finally", "try", "with", "class":
		// Header shape is enough for these; bodies are checked like any block.
	default:
		// Non-keyword line with a trailing colon: still treated as a block
		// header, so the indented-body requirement applies.
	}
	return nil
}

// colonInCode reports whether s contains a ':' outside string literals.
func colonInCode(s string) bool {
	sc := scanner.New(s)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if ch == ':' && sc.InCode() {
			return true
		}
	}
	return false
}

// firstWord returns the leading identifier of a statement, or "".
func firstWord(s string) string {
	end := 0
	for end < len(s) {
		ch := s[end]
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || (end > 0 && ch >= '0' && ch <= '9') {
			end++
			continue
		}
		break
	}
	return s[:end]
}
