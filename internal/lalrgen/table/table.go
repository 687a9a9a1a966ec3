// Package table implements C5: the action/goto parse table builder. It
// walks a built automaton.Automaton and fills in one cell per (state,
// symbol), recording a Conflict for every cell that would otherwise be
// overwritten.
//
// The cell-filling rules and the conflict-resolution policy ("prefer
// SHIFT over REDUCE", spec §4.3) are adapted from the teacher's
// internal/ictiobus/parse/lalr.go Action method, generalized from a
// string-keyed per-call scan of the item set to a table built once over
// the automaton.Index's dense ids, and extended to actually record
// Conflicts instead of panicking on one (the teacher's lalr1Table.Action
// panics on any conflict, since tunaq only ever fed it LALR(1) grammars;
// this generator's whole purpose is explaining conflicts, not refusing to
// build a table when they occur).
package table

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"
	"github.com/joeblu/lalrgen/internal/lalrgen/automaton"
	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ActionType distinguishes the four cell contents spec §4.3/§8 allow.
type ActionType int

const (
	ActionError ActionType = iota
	ActionShift
	ActionReduce
	ActionAccept
)

// Action is one ACTION-table cell.
type Action struct {
	Type ActionType

	// State is the shift/goto target; meaningful only for ActionShift.
	State int
	// Rule is the production to reduce by; meaningful only for
	// ActionReduce.
	Rule grammar.RuleID
	// OriginRule is the rule of the item that produced this action,
	// including for ActionShift -- kept purely for Conflict diagnostics
	// (spec §3: "rule₁ always a reduce item... rule₂" needs a rule on the
	// shift side too).
	OriginRule grammar.RuleID
}

func (a Action) String() string {
	switch a.Type {
	case ActionShift:
		return fmt.Sprintf("s%d", a.State)
	case ActionReduce:
		return fmt.Sprintf("r%d", a.Rule)
	case ActionAccept:
		return "acc"
	default:
		return ""
	}
}

func (a Action) equalAction(o Action) bool {
	if a.Type != o.Type {
		return false
	}
	switch a.Type {
	case ActionShift:
		return a.State == o.State
	case ActionReduce:
		return a.Rule == o.Rule
	default:
		return true
	}
}

// Conflict records a parse-table cell that two items both wanted to set,
// per spec §3/§4.3. Rule1 is always the reduce-side rule when the
// conflict is classifiable as shift/reduce.
type Conflict struct {
	State         int
	Symbol        symbol.ID
	Rule1, Rule2  grammar.RuleID
	IsShiftReduce bool
}

// ParseTable is C5's output: the action/goto matrix plus every conflict
// encountered while filling it.
type ParseTable struct {
	G   *grammar.Grammar
	Aut *automaton.Automaton

	Action map[int]map[symbol.ID]Action
	Goto   map[int]map[symbol.ID]int

	Conflicts []Conflict

	// NonterminalColumns is the emitted table's nonterminal column order:
	// case-insensitive alphabetical, excluding the synthetic augmented
	// start symbol (spec §4.3: "column index -1, excluded from the
	// emitted table").
	NonterminalColumns []symbol.ID
	// TerminalColumns is the emitted table's terminal column order:
	// definition order, then ERROR, then END (spec §4.3).
	TerminalColumns []symbol.ID
}

// Build fills in the action/goto matrix for aut, recording a Conflict for
// every cell two items disagree on. The table still contains a (possibly
// inconsistent) action in every such cell: per spec §4.3/§7, conflicts are
// warnings, not fatal errors -- the generator always produces a table, and
// separately explains the conflicts via C6.
func Build(aut *automaton.Automaton) *ParseTable {
	g := aut.G

	pt := &ParseTable{
		G:      g,
		Aut:    aut,
		Action: map[int]map[symbol.ID]Action{},
		Goto:   map[int]map[symbol.ID]int{},
	}

	for _, s := range aut.States {
		pt.Action[s.ID] = map[symbol.ID]Action{}
		pt.Goto[s.ID] = map[symbol.ID]int{}

		for _, item := range s.Items {
			rule := g.Rules[item.Rule]

			if item.Dot >= len(rule.RHS) {
				// reduce item
				for la := range item.Lookahead {
					var act Action
					if item.Rule == 0 && la == symbol.End {
						act = Action{Type: ActionAccept, OriginRule: item.Rule}
					} else {
						act = Action{Type: ActionReduce, Rule: item.Rule, OriginRule: item.Rule}
					}
					pt.setAction(s.ID, la, act)
				}
				continue
			}

			x := rule.RHS[item.Dot]
			target, ok := s.Trans[x]
			if !ok {
				continue
			}

			if g.Symbols.IsTerminal(x) {
				pt.setAction(s.ID, x, Action{Type: ActionShift, State: target, OriginRule: item.Rule})
			} else {
				pt.Goto[s.ID][x] = target
			}
		}
	}

	pt.NonterminalColumns = ColumnOrder(g)
	pt.TerminalColumns = append(append([]symbol.ID{}, g.Terminals()...), symbol.Error, symbol.End)

	return pt
}

// setAction writes act into cell (state, sym), resolving a collision per
// spec §4.3's policy: prefer SHIFT over REDUCE; a reduce/reduce collision
// keeps the first-reported rule. Every collision is recorded as a
// Conflict, reordered so Rule1 is the reduce side when classifiable as
// shift/reduce.
func (pt *ParseTable) setAction(state int, sym symbol.ID, act Action) {
	cell := pt.Action[state]
	existing, has := cell[sym]
	if !has {
		cell[sym] = act
		return
	}
	if existing.equalAction(act) {
		return
	}

	c := Conflict{State: state, Symbol: sym}

	switch {
	case existing.Type == ActionReduce && act.Type == ActionShift:
		c.IsShiftReduce = true
		c.Rule1, c.Rule2 = existing.Rule, act.OriginRule
		cell[sym] = act // shift wins
	case existing.Type == ActionShift && act.Type == ActionReduce:
		c.IsShiftReduce = true
		c.Rule1, c.Rule2 = act.Rule, existing.OriginRule
		// shift already in the cell; keep it
	case existing.Type == ActionReduce && act.Type == ActionReduce:
		c.Rule1, c.Rule2 = existing.Rule, act.Rule
		// first-reported rule kept; do not overwrite cell[sym]
	default:
		c.Rule1, c.Rule2 = existing.OriginRule, act.OriginRule
	}

	pt.Conflicts = append(pt.Conflicts, c)
}

// ColumnOrder returns g's nonterminals (excluding the synthetic augmented
// start symbol) in case-insensitive alphabetical order, per spec §4.3.
// Unlike a hand-rolled strings.ToLower comparator, this uses a
// golang.org/x/text/collate.Collator so the ordering follows the same
// locale-aware rules the rest of the x/text ecosystem would apply to
// grammar source written in a non-ASCII alphabet.
func ColumnOrder(g *grammar.Grammar) []symbol.ID {
	nts := g.Nonterminals()
	col := collate.New(language.Und)

	sort.SliceStable(nts, func(i, j int) bool {
		return col.CompareString(g.Symbols.Name(nts[i]), g.Symbols.Name(nts[j])) < 0
	})

	return nts
}

// String renders the table as an ASCII matrix via rosed, in the same
// state-row / symbol-column layout the teacher's lalr1Table.String()
// produces (internal/ictiobus/parse/lalr.go), generalized to the column
// order ColumnOrder defines instead of hard-coded "A:"/"G:" prefixes over
// teacher-specific symbol sets.
func (pt *ParseTable) String() string {
	g := pt.G

	headers := []string{"State", "|"}
	for _, t := range pt.TerminalColumns {
		headers = append(headers, "A:"+g.Symbols.Name(t))
	}
	headers = append(headers, "|")
	for _, nt := range pt.NonterminalColumns {
		headers = append(headers, "G:"+g.Symbols.Name(nt))
	}

	data := [][]string{headers}

	for _, s := range pt.Aut.States {
		row := []string{fmt.Sprintf("%d", s.ID), "|"}

		for _, t := range pt.TerminalColumns {
			act, ok := pt.Action[s.ID][t]
			cell := ""
			if ok {
				cell = act.String()
			}
			row = append(row, cell)
		}

		row = append(row, "|")

		for _, nt := range pt.NonterminalColumns {
			cell := ""
			if dest, ok := pt.Goto[s.ID][nt]; ok {
				cell = fmt.Sprintf("%d", dest)
			}
			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// ConflictSummary renders each conflict as a one-line human-readable
// description, the style the teacher's makeLRConflictError produces
// (internal/ictiobus/parse/lraction.go) but as a report line rather than a
// fatal error, since conflicts here are warnings (spec §7).
func (pt *ParseTable) ConflictSummary() []string {
	var lines []string
	for _, c := range pt.Conflicts {
		sym := pt.G.Symbols.Name(c.Symbol)
		if c.IsShiftReduce {
			lines = append(lines, fmt.Sprintf(
				"state %d: shift/reduce conflict on %q (reduce rule %d: %s)",
				c.State, sym, c.Rule1, pt.G.RuleString(pt.G.Rules[c.Rule1]),
			))
		} else {
			lines = append(lines, fmt.Sprintf(
				"state %d: reduce/reduce conflict on %q (rule %d: %s vs rule %d: %s)",
				c.State, sym,
				c.Rule1, pt.G.RuleString(pt.G.Rules[c.Rule1]),
				c.Rule2, pt.G.RuleString(pt.G.Rules[c.Rule2]),
			))
		}
	}
	return lines
}
