// Package action implements the $N/@N action-code substitution pass
// (spec §6), out of the CORE contract but needed end to end: it rewrites
// the opaque action text a Rule carries into Go stack-accessor
// expressions a generated parser's reduce handler can evaluate.
//
// Grounded on the teacher's command-substitution style in
// internal/ictiobus (its fishi.go embeds similar "$N" placeholders in
// markdown-fenced action blocks before the ANTLR-generated visitor
// consumes them) -- generalized here into a standalone, testable pass
// over grammar.Rule rather than inline string surgery during grammar
// reading.
package action

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
)

// placeholder matches $N, $name, @N, @name tokens. The sigil ($ or @)
// selects value-accessor vs. location-accessor; the body is either a
// decimal index or a bare identifier.
var placeholder = regexp.MustCompile(`([$@])(\d+|[A-Za-z_][A-Za-z0-9_]*)`)

// Substitute rewrites every $N/$name/@N/@name token in actionText
// against rule r's RHS, returning Go expressions a reduce handler can
// splice in directly. Indices are zero-based from the left in the
// source text; since the runtime parser stack holds the rightmost RHS
// symbol on top, the accessor index emitted is inverted (spec §6: "the
// substitution layer internally inverts indices because the runtime
// stack is reversed").
func Substitute(g *grammar.Grammar, r grammar.Rule, actionText string) (string, error) {
	var firstErr error

	out := placeholder.ReplaceAllStringFunc(actionText, func(tok string) string {
		if firstErr != nil {
			return tok
		}
		sigil := tok[0]
		body := tok[1:]

		pos, err := resolvePosition(g, r, body)
		if err != nil {
			firstErr = err
			return tok
		}

		inverted := len(r.RHS) - 1 - pos
		if sigil == '$' {
			return fmt.Sprintf("stack.Value(%d)", inverted)
		}
		return fmt.Sprintf("stack.Location(%d)", inverted)
	})

	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// resolvePosition turns a placeholder body (a decimal index, or a bare
// symbol name) into a zero-based RHS position.
func resolvePosition(g *grammar.Grammar, r grammar.Rule, body string) (int, error) {
	if n, err := strconv.Atoi(body); err == nil {
		if n < 0 || n >= len(r.RHS) {
			return 0, fmt.Errorf("action references position %d but rule %q has %d RHS symbols", n, g.RuleString(r), len(r.RHS))
		}
		return n, nil
	}

	id, ok := g.Symbols.Lookup(body)
	if !ok {
		return 0, fmt.Errorf("action references undefined symbol %q", body)
	}

	found := -1
	for i, s := range r.RHS {
		if s != id {
			continue
		}
		if found != -1 {
			return 0, fmt.Errorf("action reference %q is ambiguous: symbol appears more than once in rule %q", body, g.RuleString(r))
		}
		found = i
	}
	if found == -1 {
		return 0, fmt.Errorf("action references symbol %q, which does not appear in rule %q", body, g.RuleString(r))
	}
	return found, nil
}
