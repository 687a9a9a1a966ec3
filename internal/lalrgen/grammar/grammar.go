// Package grammar implements C2 (the ordered rule list, directives, and
// start-symbol bookkeeping) and C3 (the FIRST/FOLLOW fixed-point engine,
// in firstfollow.go) of the LALR(1) generator core.
//
// The rule/production shape is adapted from the teacher's
// internal/ictiobus/grammar (grammar/item.go's LR0Item.Left/Right split
// around a dot), generalized to carry symbol.ID instead of strings and to
// record an opaque action blob and source position per spec §3/§6.
package grammar

import (
	"fmt"

	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
)

// Position identifies where in a grammar source file a rule or terminal
// was declared, for error messages (spec §7: "filename:line:col").
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// RuleID is the stable, file-order index of a Rule within a Grammar.
// Rule 0 is always the augmented start production (spec §3).
type RuleID int

// Rule is one production: LHS -> RHS, with an opaque action blob and the
// source location it was declared at. Two rules are Equal if they share
// both LHS and RHS, regardless of id, action text, or position.
type Rule struct {
	ID     RuleID
	LHS    symbol.ID
	RHS    []symbol.ID // nil/empty means an EMPTY (ε) production
	Action string
	Pos    Position
}

// Equal reports whether r and o have the same LHS and RHS sequence.
func (r Rule) Equal(o Rule) bool {
	if r.LHS != o.LHS || len(r.RHS) != len(o.RHS) {
		return false
	}
	for i := range r.RHS {
		if r.RHS[i] != o.RHS[i] {
			return false
		}
	}
	return true
}

// Grammar is an ordered list of rules over an interned symbol table, plus
// the directive map and start symbol. Rules[0] is reserved for the
// synthetic augmented start production and is only populated by Finalize.
type Grammar struct {
	Symbols *symbol.Table
	Rules   []Rule

	// Start is the grammar's user-declared start symbol.
	Start symbol.ID
	// AugmentedStart is the synthetic "__START__" nonterminal prepended as
	// Rules[0]'s LHS once Finalize has run. It is symbol.Invalid before
	// that.
	AugmentedStart symbol.ID

	Directives map[string][]string

	finalized bool
}

// New returns an empty Grammar over symtab, with the rule-0 slot reserved
// for the augmented start production that Finalize will fill in.
func New(symtab *symbol.Table) *Grammar {
	g := &Grammar{
		Symbols:        symtab,
		Directives:     map[string][]string{},
		AugmentedStart: symbol.Invalid,
	}
	g.Rules = append(g.Rules, Rule{}) // placeholder; see Finalize
	return g
}

// AddRule appends a user rule and returns its id. Must be called before
// Finalize.
func (g *Grammar) AddRule(lhs symbol.ID, rhs []symbol.ID, action string, pos Position) RuleID {
	id := RuleID(len(g.Rules))
	g.Rules = append(g.Rules, Rule{ID: id, LHS: lhs, RHS: rhs, Action: action, Pos: pos})
	return id
}

// AddDirective appends value to the directive named name.
func (g *Grammar) AddDirective(name string, value string) {
	g.Directives[name] = append(g.Directives[name], value)
}

// Finalize sets the start symbol, synthesizes the augmented start
// production S' -> Start at Rules[0] (spec §3: "Start production must be
// unique; if the user writes multiple productions for the natural start
// symbol, a synthetic single-RHS start production is prepended"), and
// validates the result.
func (g *Grammar) Finalize(start symbol.ID) error {
	if g.finalized {
		return fmt.Errorf("grammar already finalized")
	}

	g.Start = start
	g.AugmentedStart = g.Symbols.Intern("__START__", false)
	g.Rules[0] = Rule{ID: 0, LHS: g.AugmentedStart, RHS: []symbol.ID{start}}
	g.finalized = true

	return g.Validate()
}

// Validate checks the invariants spec §3 assigns to Grammar: every RHS
// symbol must be defined as terminal or nonterminal, and there must be at
// least one user rule.
func (g *Grammar) Validate() error {
	if !g.finalized {
		return fmt.Errorf("grammar not finalized")
	}
	if len(g.Rules) < 2 {
		return fmt.Errorf("grammar has no rules")
	}

	for _, r := range g.Rules[1:] {
		if int(r.LHS) < 0 || int(r.LHS) >= g.Symbols.Len() {
			return fmt.Errorf("rule %d: undefined LHS symbol id %d", r.ID, r.LHS)
		}
		if g.Symbols.IsTerminal(r.LHS) {
			return fmt.Errorf("rule %d: terminal %q cannot appear on LHS", r.ID, g.Symbols.Name(r.LHS))
		}
		for _, s := range r.RHS {
			if int(s) < 0 || int(s) >= g.Symbols.Len() {
				return fmt.Errorf("rule %d: undefined RHS symbol id %d", r.ID, s)
			}
		}
	}

	return nil
}

// RulesFor returns every rule (including the augmented start rule, if
// lhs is AugmentedStart) whose LHS is lhs, in file order.
func (g *Grammar) RulesFor(lhs symbol.ID) []Rule {
	var out []Rule
	for _, r := range g.Rules {
		if r.LHS == lhs {
			out = append(out, r)
		}
	}
	return out
}

// IsEmptyProduction reports whether rhs is an ε production, i.e. has no
// symbols at all. A non-empty rhs of nullable symbols is not reported.
func (g *Grammar) IsEmptyProduction(rhs []symbol.ID) bool {
	return len(rhs) == 0
}

// Terminals returns the grammar's user-defined terminal symbols in
// definition order (spec §4.3: "terminals in definition order"),
// excluding the three reserved symbols (EMPTY, $, ERROR) every Table
// carries -- those get their own fixed columns (table.Build appends
// ERROR then $ itself).
func (g *Grammar) Terminals() []symbol.ID {
	var out []symbol.ID
	for _, id := range g.Symbols.Terminals() {
		if id == symbol.Empty || id == symbol.End || id == symbol.Error {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Nonterminals returns the grammar's nonterminal symbols, excluding the
// synthetic augmented start symbol, in definition order.
func (g *Grammar) Nonterminals() []symbol.ID {
	var out []symbol.ID
	for _, id := range g.Symbols.Nonterminals() {
		if id == g.AugmentedStart {
			continue
		}
		out = append(out, id)
	}
	return out
}

// StartRule returns the synthetic augmented start rule (Rules[0]).
func (g *Grammar) StartRule() Rule {
	return g.Rules[0]
}

// RuleString renders r as "LHS -> RHS" using g's symbol names, for
// diagnostics and table output.
func (g *Grammar) RuleString(r Rule) string {
	rhs := ""
	if len(r.RHS) == 0 {
		rhs = "EMPTY"
	} else {
		for i, s := range r.RHS {
			if i > 0 {
				rhs += " "
			}
			rhs += g.Symbols.Name(s)
		}
	}
	return fmt.Sprintf("%s -> %s", g.Symbols.Name(r.LHS), rhs)
}
