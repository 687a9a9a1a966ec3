// Package automaton implements C4: LALR(1) item-set construction
// (closure, GOTO, and core-merging) and the StateItem index C6's
// counterexample search walks.
//
// The closure/GOTO/merge control flow is grounded on the teacher's
// internal/ictiobus/automaton/dfa.go (NewLR1ViablePrefixDFA,
// NewLALR1ViablePrefixDFA): a worklist of item sets, closure expansion
// per item, and a post-pass that merges states with identical cores. The
// representation is different on purpose (spec §9's design note): instead
// of the teacher's approach of keying states by a giant serialized string
// of their LR1Item set, states and items live in flat slices addressed by
// int id, mirroring the arena nihei9/vartan's grammar/lalr1.go builds
// (stateAndLRItem{kernelID, itemID} pairs with integer ids rather than
// string keys).
package automaton

import (
	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/joeblu/lalrgen/internal/util"
	"golang.org/x/exp/slices"
)

// Item is a rule with a dot position; dot == len(RHS) means a reduce item.
type Item struct {
	Rule grammar.RuleID
	Dot  int
}

// DotSymbol returns the symbol immediately after the dot and true, or
// (symbol.Invalid, false) if the dot is at the end of the production.
func (it Item) DotSymbol(g *grammar.Grammar) (symbol.ID, bool) {
	rhs := g.Rules[it.Rule].RHS
	if it.Dot >= len(rhs) {
		return symbol.Invalid, false
	}
	return rhs[it.Dot], true
}

// AnnotatedItem is an Item plus its LALR lookahead set (spec §3: "annotated
// rule").
type AnnotatedItem struct {
	Item
	Lookahead util.KeySet[symbol.ID]
}

// State is one LALR(1) item set: a dense, de-duplicated list of annotated
// items (at most one per (rule, dot), per spec §3's State invariant) and
// its outgoing transition map.
type State struct {
	ID    int
	Items []AnnotatedItem
	Trans map[symbol.ID]int

	// index of Items by (rule,dot), used to merge lookaheads in O(1)
	// instead of a linear scan whenever closure or LALR-merge revisits an
	// existing core.
	itemIndex map[Item]int
}

func newState(id int) *State {
	return &State{ID: id, Trans: map[symbol.ID]int{}, itemIndex: map[Item]int{}}
}

// addOrMerge inserts item/lookahead into s, union-merging the lookahead set
// if the core (rule, dot) is already present. Returns whether the state's
// item set changed (new item, or an existing item's lookahead grew).
func (s *State) addOrMerge(item Item, la util.KeySet[symbol.ID]) bool {
	if idx, ok := s.itemIndex[item]; ok {
		changed := false
		for a := range la {
			if !s.Items[idx].Lookahead.Has(a) {
				s.Items[idx].Lookahead.Add(a)
				changed = true
			}
		}
		return changed
	}

	s.itemIndex[item] = len(s.Items)
	s.Items = append(s.Items, AnnotatedItem{Item: item, Lookahead: la.Copy()})
	return true
}

// core returns the state's item set without lookaheads, for LALR merge
// comparisons (spec §4.2 "Core").
func (s *State) core() []Item {
	items := make([]Item, len(s.Items))
	for i, ai := range s.Items {
		items[i] = ai.Item
	}
	slices.SortFunc(items, func(a, b Item) bool {
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Dot < b.Dot
	})
	return items
}

func sameCore(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Automaton is the full LALR(1) viable-prefix automaton over a grammar:
// dense states numbered 0..n-1, with state 0 the start state (spec §4.2).
type Automaton struct {
	G     *grammar.Grammar
	States []*State
	Start int
}

// closure computes the closure of a freshly-created state in place,
// following spec §4.2: for every item [A -> α·Bβ, a] with B a nonterminal,
// add [B -> ·γ, FIRST(βa)] for every B-production, merging lookaheads with
// any existing same-core item, until no item's lookahead set grows.
func closure(g *grammar.Grammar, s *State) {
	changed := true
	for changed {
		changed = false

		// Items grows during the loop; the loop condition re-reads
		// len(s.Items) each iteration, so newly appended items are visited
		// in the same pass (a "for i := range s.Items" would evaluate the
		// length only once). No recursion, per spec §9.
		for i := 0; i < len(s.Items); i++ {
			item := s.Items[i]
			b, ok := item.DotSymbol(g)
			if !ok || g.Symbols.IsTerminal(b) {
				continue
			}

			beta := g.Rules[item.Rule].RHS[item.Dot+1:]

			for _, r := range g.Rules {
				if r.LHS != b {
					continue
				}

				for la := range item.Lookahead {
					propagated := grammar.FirstOfSequenceWithLookahead(g, beta, la)
					newItem := Item{Rule: r.ID, Dot: 0}
					if s.addOrMerge(newItem, propagated) {
						changed = true
					}
				}
			}
		}
	}
}

// goTo computes GOTO(s, x): every item of s whose dot-symbol is x, with
// the dot advanced, closed.
func goTo(g *grammar.Grammar, s *State, x symbol.ID) *State {
	next := newState(-1) // id assigned by caller once merge/dedup is resolved
	for _, item := range s.Items {
		dotSym, ok := item.DotSymbol(g)
		if !ok || dotSym != x {
			continue
		}
		next.addOrMerge(Item{Rule: item.Rule, Dot: item.Dot + 1}, item.Lookahead)
	}
	closure(g, next)
	return next
}

// Build constructs the LALR(1) automaton for g (which must already be
// Finalize()d and have FIRST/FOLLOW computed). It follows spec §4.2: BFS
// worklist over (state, dot-symbol) pairs and core-based state merging with
// lookahead re-expansion on growth. State ids are assigned densely in
// insertion order as states are appended, with the start state at id 0.
func Build(g *grammar.Grammar) *Automaton {
	start := newState(0)
	startItem := Item{Rule: 0, Dot: 0}
	start.addOrMerge(startItem, util.NewKeySet(symbol.End))
	closure(g, start)

	aut := &Automaton{G: g, Start: 0}
	aut.States = append(aut.States, start)

	// worklist of state ids whose transitions still need constructing or
	// re-checking (a merge can grow lookaheads and require re-expansion).
	worklist := []int{0}

	for len(worklist) > 0 {
		sid := worklist[0]
		worklist = worklist[1:]
		s := aut.States[sid]

		dotSymbols := outgoingSymbols(g, s)
		for _, x := range dotSymbols {
			candidate := goTo(g, s, x)
			if len(candidate.Items) == 0 {
				continue
			}

			mergedID, grew := aut.mergeOrAppend(candidate)
			s.Trans[x] = mergedID
			if grew {
				worklist = append(worklist, mergedID)
			}
		}
	}

	return aut
}

// mergeOrAppend finds an existing state with the same core as candidate
// and union-merges lookaheads into it (spec §4.2 "LALR merge"), or appends
// candidate as a new state. Returns the resulting state's id and whether
// any lookahead set grew (requiring re-expansion of its successors).
func (aut *Automaton) mergeOrAppend(candidate *State) (id int, grew bool) {
	candCore := candidate.core()

	for _, existing := range aut.States {
		if sameCore(existing.core(), candCore) {
			changed := false
			for _, item := range candidate.Items {
				if existing.addOrMerge(item.Item, item.Lookahead) {
					changed = true
				}
			}
			return existing.ID, changed
		}
	}

	candidate.ID = len(aut.States)
	aut.States = append(aut.States, candidate)
	return candidate.ID, true
}

// outgoingSymbols returns the distinct dot-symbols of s's items, sorted by
// symbol id (the symbol table's interning order).
func outgoingSymbols(g *grammar.Grammar, s *State) []symbol.ID {
	seen := util.NewKeySet[symbol.ID]()
	var out []symbol.ID
	for _, item := range s.Items {
		x, ok := item.DotSymbol(g)
		if !ok || seen.Has(x) {
			continue
		}
		seen.Add(x)
		out = append(out, x)
	}
	slices.Sort(out)
	return out
}
