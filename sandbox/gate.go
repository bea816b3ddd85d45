// Package sandbox executes validated Python text in a short-lived,
// resource-bounded child process, behind a static denylist gate.
package sandbox

import (
	"fmt"
	"strings"
)

// DefaultDenylist is the fixed set of substrings rejected before
// execution: operating-environment access, file handles, process
// spawning, networking, and module-introspection primitives.
//
// This is a coarse, best-effort filter. It over-rejects (any identifier
// containing a listed substring) and under-rejects (equivalent constructs
// reachable through alternate spellings). It is a second line of defense
// behind process isolation, not a security boundary of its own.
var DefaultDenylist = []string{
	"import os",
	"import sys",
	"__import__",
	"open(",
	"subprocess",
	"socket",
	"shutil",
	"os.system",
	"eval(",
	"exec(",
}

// ForbiddenError reports the first denylisted token found in the text.
type ForbiddenError struct {
	Token string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("use of %q is not allowed", e.Token)
}

// Gate checks emitted Python text against a denylist. Construct one with
// NewGate; the token set is fixed afterwards.
type Gate struct {
	tokens []string
}

// NewGate returns a Gate over the default denylist plus any extra tokens.
func NewGate(extra ...string) *Gate {
	tokens := make([]string, 0, len(DefaultDenylist)+len(extra))
	tokens = append(tokens, DefaultDenylist...)
	tokens = append(tokens, extra...)
	return &Gate{tokens: tokens}
}

// Check returns nil if code contains no denylisted token, or a
// *ForbiddenError naming the first one found. Tokens are matched as plain
// substrings over the whole text, string literals included.
func (g *Gate) Check(code string) error {
	for _, tok := range g.tokens {
		if tok != "" && strings.Contains(code, tok) {
			return &ForbiddenError{Token: tok}
		}
	}
	return nil
}
