package translator

import (
	"regexp"
	"strings"

	"github.com/akan-lang/twi/scanner"
)

// Rule is one entry of the lexical rule table: a Twi token and the Python
// token it becomes. Rules apply in table order, outside string literals only.
type Rule struct {
	Twi string
	Py  string
}

// DefaultRules is the lexical rule table for token-level translations:
// boolean literals, operators, and connectives that need no structural
// handling. Order matters: earlier rules rewrite text before later ones see it.
var DefaultRules = []Rule{
	{"nokware", "True"},
	{"atɔkyɛ", "False"},
	{"ka ho", "+"},
	// Matched with its delimiting spaces: bare "ne" occurs inside too
	// many identifiers, and the operator is always infix.
	{" ne ", " and "},
	{"anaa", "or"},
	{"ɛnyɛ", "not"},
}

// applyRules runs every lexical rule over line, in table order, skipping
// text inside string literals.
func applyRules(rules []Rule, line string) string {
	for _, r := range rules {
		line = scanner.ReplaceOutsideStrings(line, r.Twi, r.Py)
	}
	return line
}

// emission is the outcome of one recognizer matching one source line:
// the Python text to emit (without indentation), the indent level to
// render it at, and the indent level in force after it.
type emission struct {
	text   string
	indent int
	next   int
}

// recognizer matches one line-level Twi construct. match is a pure function
// of the trimmed line and the current indent level; it returns false when
// the construct is not present.
type recognizer struct {
	name  string
	match func(line string, indent int) (emission, bool)
}

var (
	quotedPrintRe = regexp.MustCompile(`^ka\s+"([^"]*)"$`)
	iterationRe   = regexp.MustCompile(`^bɔ mmirika wɔ (.+) kyekyere (\w+)`)
	importRe      = regexp.MustCompile(`^fa ([A-Za-z_]\w*)$`)
)

// recognizers is the ordered construct table. First match wins; the order
// is part of the translator's contract since several patterns could match
// overlapping text.
var recognizers = []recognizer{
	{"blank", func(line string, indent int) (emission, bool) {
		if line != "" {
			return emission{}, false
		}
		return emission{text: "", indent: 0, next: indent}, true
	}},
	{"assignment", func(line string, indent int) (emission, bool) {
		rest, ok := strings.CutPrefix(line, "siesie ")
		if !ok {
			return emission{}, false
		}
		return emission{text: rest, indent: indent, next: indent}, true
	}},
	{"quoted-print", func(line string, indent int) (emission, bool) {
		m := quotedPrintRe.FindStringSubmatch(line)
		if m == nil {
			return emission{}, false
		}
		return emission{text: `print("` + m[1] + `")`, indent: indent, next: indent}, true
	}},
	{"bare-print", func(line string, indent int) (emission, bool) {
		name, ok := strings.CutPrefix(line, "sɔ hwɛ ")
		if !ok {
			return emission{}, false
		}
		return emission{text: "print(" + name + ")", indent: indent, next: indent}, true
	}},
	{"conditional", func(line string, indent int) (emission, bool) {
		if !strings.HasPrefix(line, "sɛ ") || !strings.HasSuffix(line, " a") {
			return emission{}, false
		}
		cond := strings.TrimSpace(line[len("sɛ ") : len(line)-len(" a")])
		return emission{text: "if " + cond + ":", indent: indent, next: indent + 1}, true
	}},
	{"else", func(line string, indent int) (emission, bool) {
		if line != "nanso" {
			return emission{}, false
		}
		// Re-base one level up, floor at zero. An else at indent zero
		// still emits; the validator rejects the dangling block later.
		at := max(indent-1, 0)
		return emission{text: "else:", indent: at, next: at + 1}, true
	}},
	{"indent-hint", func(line string, indent int) (emission, bool) {
		if line != "kyerɛ me" {
			return emission{}, false
		}
		// Marker comment keeps the mapping 1:1 with source lines.
		return emission{text: "# kyerɛ me (indent)", indent: indent + 1, next: indent + 1}, true
	}},
	{"iteration", func(line string, indent int) (emission, bool) {
		m := iterationRe.FindStringSubmatch(line)
		if m == nil {
			return emission{}, false
		}
		iterable := strings.TrimSpace(m[1])
		binding := m[2]
		return emission{text: "for " + binding + " in " + iterable + ":", indent: indent, next: indent + 1}, true
	}},
	{"function-def", func(line string, indent int) (emission, bool) {
		sig, ok := strings.CutPrefix(line, "yɛ adwuma ")
		if !ok {
			return emission{}, false
		}
		if !strings.HasSuffix(sig, ":") {
			sig += ":"
		}
		return emission{text: "def " + sig, indent: indent, next: indent + 1}, true
	}},
	{"import", func(line string, indent int) (emission, bool) {
		m := importRe.FindStringSubmatch(line)
		if m == nil {
			return emission{}, false
		}
		return emission{text: "import " + m[1], indent: indent, next: indent}, true
	}},
}
