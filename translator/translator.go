// Package translator converts Twi DSL source into Python source text.
//
// Translation is a single forward pass over the input lines. Each line is
// matched against an ordered table of construct recognizers (rules.go);
// the first match wins. Lines that match no construct fall through to the
// lexical rule table, so translation is total: any input produces output.
// Block structure in the output is synthesized from recognized constructs
// only; input indentation is discarded.
package translator

import "strings"

// indentUnit is the indentation emitted per block level.
const indentUnit = "    "

// LineMapping ties one emitted Python line to the Twi source line that
// produced it. Both ordinals are 1-based.
type LineMapping struct {
	TwiLine int `json:"twi_line"`
	PyLine  int `json:"py_line"`
}

// Result holds a completed translation: the Python source and the
// per-line mapping back to the Twi input. Every emitted line has exactly
// one mapping entry, in emission order.
type Result struct {
	Code    string        `json:"python_code"`
	Mapping []LineMapping `json:"mapping"`
}

// Translator translates Twi DSL text. The zero value is not usable;
// construct one with New. Translators are stateless between calls and
// safe for concurrent use.
type Translator struct {
	rules []Rule
	recs  []recognizer
}

// New returns a Translator using the default lexical rule table and
// construct recognizers.
func New() *Translator {
	return &Translator{rules: DefaultRules, recs: recognizers}
}

// NewWithRules returns a Translator with a caller-supplied lexical rule
// table. The construct recognizer table is fixed.
func NewWithRules(rules []Rule) *Translator {
	return &Translator{rules: rules, recs: recognizers}
}

// Translate converts Twi source to Python source. It never fails: lines
// matching no construct are emitted through the lexical rule table as-is.
// Identical input always yields an identical Result.
func (t *Translator) Translate(src string) *Result {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return &Result{}
	}

	lines := strings.Split(trimmed, "\n")
	pyLines := make([]string, 0, len(lines))
	mapping := make([]LineMapping, 0, len(lines))
	indent := 0

	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		em, ok := t.recognize(line, indent)
		if !ok {
			// Fallback: token-level substitution, emitted verbatim.
			em = emission{text: applyRules(t.rules, line), indent: indent, next: indent}
		}

		pyLines = append(pyLines, render(em))
		mapping = append(mapping, LineMapping{TwiLine: i + 1, PyLine: len(pyLines)})
		indent = em.next
	}

	return &Result{Code: strings.Join(pyLines, "\n"), Mapping: mapping}
}

// recognize tries every construct recognizer in table order.
func (t *Translator) recognize(line string, indent int) (emission, bool) {
	for _, r := range t.recs {
		if em, ok := r.match(line, indent); ok {
			return em, true
		}
	}
	return emission{}, false
}

// render produces the final emitted line. Blank emissions stay blank,
// they never carry indentation.
func render(em emission) string {
	if em.text == "" {
		return ""
	}
	return strings.Repeat(indentUnit, em.indent) + em.text
}
