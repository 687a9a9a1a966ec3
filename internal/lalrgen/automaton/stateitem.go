package automaton

import (
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/joeblu/lalrgen/internal/util"
)

// StateItemID indexes the StateItem arena built by Index.
type StateItemID int

// InvalidStateItem marks "no such StateItem" (e.g. a reduce item has no
// TransItem).
const InvalidStateItem StateItemID = -1

// StateItem is an interned (state, item) pair, per spec §3. It is the unit
// the counterexample search (C6) walks: TransItem/RevTrans let the search
// shift forward and backward across the automaton, and FwdProd/RevProd let
// it walk into and out of closure-introduced productions without
// re-deriving closure from scratch.
type StateItem struct {
	ID    StateItemID
	State int
	Item  Item

	// TransSymbol is the item's dot-symbol, or symbol.Invalid if the item
	// is a reduce item (dot at end).
	TransSymbol symbol.ID
	// TransItem is the StateItem reached by shifting TransSymbol, or
	// InvalidStateItem for a reduce item.
	TransItem StateItemID
	// RevTrans maps a symbol to every StateItem that transitions to this
	// one by shifting that symbol.
	RevTrans map[symbol.ID][]StateItemID

	// FwdProd holds the closure-introduced production items (dot-0 items
	// in the same state whose rule's LHS is this item's dot-symbol)
	// reachable in one closure step from this item.
	FwdProd []StateItemID
	// RevProd is the inverse of FwdProd, keyed by the dot-symbol that
	// produced the edge: RevProd[Y] holds every StateItem i in the same
	// state whose dot-symbol is Y and whose FwdProd includes this item.
	RevProd map[symbol.ID][]StateItemID
}

// Index is the StateItem arena for one Automaton. Rebuilt fresh whenever
// the automaton is rebuilt (spec §3: "StateItem caches are invalidated
// whenever the automaton is rebuilt").
type Index struct {
	Aut   *Automaton
	Items []*StateItem

	byKey map[stateItemKey]StateItemID
}

type stateItemKey struct {
	state int
	item  Item
}

// BuildIndex constructs the StateItem arena for aut: one entry per (state,
// item) pair, with forward/backward shift and production edges filled in.
func BuildIndex(aut *Automaton) *Index {
	idx := &Index{Aut: aut, byKey: map[stateItemKey]StateItemID{}}

	for _, s := range aut.States {
		for _, ai := range s.Items {
			si := &StateItem{
				ID:          StateItemID(len(idx.Items)),
				State:       s.ID,
				Item:        ai.Item,
				TransSymbol: symbol.Invalid,
				TransItem:   InvalidStateItem,
				RevTrans:    map[symbol.ID][]StateItemID{},
				RevProd:     map[symbol.ID][]StateItemID{},
			}
			idx.byKey[stateItemKey{s.ID, ai.Item}] = si.ID
			idx.Items = append(idx.Items, si)
		}
	}

	g := aut.G
	for _, si := range idx.Items {
		s := aut.States[si.State]
		x, ok := si.Item.DotSymbol(g)
		if !ok {
			continue
		}
		si.TransSymbol = x

		if g.Symbols.IsTerminal(x) {
			// shift transition
			destState, ok := s.Trans[x]
			if ok {
				destItem := Item{Rule: si.Item.Rule, Dot: si.Item.Dot + 1}
				if destID, ok := idx.byKey[stateItemKey{destState, destItem}]; ok {
					si.TransItem = destID
					idx.Items[destID].RevTrans[x] = append(idx.Items[destID].RevTrans[x], si.ID)
				}
			}
			continue
		}

		// nonterminal dot-symbol: both a GOTO shift edge (TransItem) and
		// the closure production edges (FwdProd) apply.
		destState, ok := s.Trans[x]
		if ok {
			destItem := Item{Rule: si.Item.Rule, Dot: si.Item.Dot + 1}
			if destID, ok := idx.byKey[stateItemKey{destState, destItem}]; ok {
				si.TransItem = destID
				idx.Items[destID].RevTrans[x] = append(idx.Items[destID].RevTrans[x], si.ID)
			}
		}

		for _, other := range s.Items {
			if other.Rule == si.Item.Rule && other.Dot == si.Item.Dot {
				continue
			}
			if other.Dot != 0 {
				continue
			}
			if g.Rules[other.Rule].LHS != x {
				continue
			}
			prodID := idx.byKey[stateItemKey{s.ID, other.Item}]
			si.FwdProd = append(si.FwdProd, prodID)
			idx.Items[prodID].RevProd[x] = append(idx.Items[prodID].RevProd[x], si.ID)
		}
	}

	return idx
}

// Get returns the StateItem for (state, item), or nil if none exists.
func (idx *Index) Get(state int, item Item) *StateItem {
	id, ok := idx.byKey[stateItemKey{state, item}]
	if !ok {
		return nil
	}
	return idx.Items[id]
}

// Lookahead returns the lookahead set of the (state, item) pair si
// addresses, looked up from the live automaton state rather than cached on
// the StateItem, since lookaheads are only final once Build has converged.
func (idx *Index) Lookahead(si StateItemID) util.KeySet[symbol.ID] {
	item := idx.Items[si]
	s := idx.Aut.States[item.State]
	for _, ai := range s.Items {
		if ai.Item == item.Item {
			return ai.Lookahead
		}
	}
	return util.NewKeySet[symbol.ID]()
}

// IsReduce reports whether the StateItem's dot is at the end of its
// production.
func (si *StateItem) IsReduce() bool {
	return si.TransSymbol == symbol.Invalid
}
