package counterexample

import (
	"time"

	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/joeblu/lalrgen/internal/lalrgen/automaton"
	"github.com/joeblu/lalrgen/internal/lalrgen/glog"
	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/joeblu/lalrgen/internal/lalrgen/table"
)

// Soft and hard wall-clock deadlines, spec §4.4/§9: an informational
// message at the soft deadline, a forced stop (with whatever partial
// result is on hand) at the hard one. Overridable via SetHardDeadline
// (wired from the CLI's --config search_budget_millis, SPEC_FULL.md's
// ambient stack).
var (
	softDeadline = 2 * time.Second
	hardDeadline = 5 * time.Second
)

// SetHardDeadline overrides the search's hard wall-clock deadline,
// scaling the soft (progress-message) deadline to two fifths of it. A
// non-positive d leaves the current deadlines untouched.
func SetHardDeadline(d time.Duration) {
	if d <= 0 {
		return
	}
	hardDeadline = d
	softDeadline = d * 2 / 5
}

// CounterExample is C6's output: two derivations, whether they unify at
// a common nonterminal, and whether the search gave up on time.
type CounterExample struct {
	Deriv1, Deriv2 *Derivation
	IsShiftReduce  bool
	Unifying       bool
	Timeout        bool
}

// Generate runs the counterexample search for one table.Conflict, per
// spec §4.4: a complexity-bucketed bidirectional search over
// Configurations, falling back to a shortest-path construction if the
// search exhausts its time budget or never finds a unifying prefix.
func Generate(g *grammar.Grammar, idx *automaton.Index, c table.Conflict, log *glog.Logger) *CounterExample {
	si1 := findReduceStateItem(idx, c.State, c.Rule1)
	si2 := findOtherStateItem(g, idx, c.State, c.Rule2, c.Symbol, c.IsShiftReduce)
	if si1 == nil || si2 == nil {
		// Internal invariant violation (spec §7): the Conflict's rule ids
		// must correspond to items present in the recorded state. This
		// only happens if table.Build and this search disagree about the
		// automaton, which would be a bug in this generator, not a bad
		// input grammar.
		if log != nil {
			log.Error("conflict at state %d symbol %q has no matching state item", c.State, g.Symbols.Name(c.Symbol))
		}
		return &CounterExample{IsShiftReduce: c.IsShiftReduce}
	}

	start := &Configuration{
		States1:     stateItemDeque{si1.ID},
		States2:     stateItemDeque{si2.ID},
		ReduceDepth: depthFor(g, si1.Item),
		ShiftDepth:  depthFor(g, si2.Item),
	}

	pq := priorityqueue.NewWith(byComplexity)
	pq.Enqueue(start)
	visited := map[string]bool{}

	deadline := time.Now().Add(hardDeadline)
	softAt := time.Now().Add(softDeadline)
	softWarned := false
	var stage3Result *Configuration

	for !pq.Empty() {
		now := time.Now()
		if now.After(deadline) {
			if log != nil {
				log.Warn("counterexample search hit the %s hard deadline", hardDeadline)
			}
			if stage3Result != nil {
				return finalizeUnify(stage3Result, c.IsShiftReduce, true)
			}
			return shortestPathFallback(g, idx, si1, si2, c, true)
		}
		if !softWarned && now.After(softAt) {
			if log != nil {
				log.Info("counterexample search still running after %s", softDeadline)
			}
			softWarned = true
		}

		v, ok := pq.Dequeue()
		if !ok {
			break
		}
		cfg := v.(*Configuration)

		key := cfg.key()
		if visited[key] {
			continue
		}
		visited[key] = true

		if cfg.stage3() {
			if d, ok := tryUnify(cfg); ok {
				return &CounterExample{Deriv1: d, Deriv2: d, IsShiftReduce: c.IsShiftReduce, Unifying: true}
			}
			if stage3Result == nil {
				stage3Result = cfg
			}
			continue
		}

		for _, next := range expand(g, idx, cfg) {
			if !visited[next.key()] {
				pq.Enqueue(next)
			}
		}
	}

	if stage3Result != nil {
		return finalizeUnify(stage3Result, c.IsShiftReduce, false)
	}
	return shortestPathFallback(g, idx, si1, si2, c, false)
}

// byComplexity orders the priority queue by Configuration.Complexity
// ascending -- the "pop the lowest-complexity bucket" policy of spec
// §4.4/§9, implemented directly as a gods comparator rather than a
// hand-rolled bucket map, since gods' binary heap already gives pop-min
// in O(log n).
func byComplexity(a, b interface{}) int {
	ca, cb := a.(*Configuration), b.(*Configuration)
	return ca.Complexity - cb.Complexity
}

func depthFor(g *grammar.Grammar, item automaton.Item) int {
	rhs := g.Rules[item.Rule].RHS
	if item.Dot >= len(rhs) {
		return 0
	}
	return len(rhs) - item.Dot
}

func findReduceStateItem(idx *automaton.Index, state int, rule grammar.RuleID) *automaton.StateItem {
	rhsLen := len(idx.Aut.G.Rules[rule].RHS)
	return idx.Get(state, automaton.Item{Rule: rule, Dot: rhsLen})
}

func findOtherStateItem(g *grammar.Grammar, idx *automaton.Index, state int, rule grammar.RuleID, sym symbol.ID, isShiftReduce bool) *automaton.StateItem {
	s := idx.Aut.States[state]
	if !isShiftReduce {
		rhsLen := len(g.Rules[rule].RHS)
		return idx.Get(state, automaton.Item{Rule: rule, Dot: rhsLen})
	}
	for _, ai := range s.Items {
		if ai.Rule != rule {
			continue
		}
		if x, ok := ai.DotSymbol(g); ok && x == sym {
			return idx.Get(state, ai.Item)
		}
	}
	return nil
}

// tryUnify checks whether each side's derivation deque holds exactly one
// derivation and the two compare equal (same root symbol). It does not
// look at the depths (Generate only calls it once cfg.stage3() holds) and
// does not compare the leading state-items' LHS or rule prefix.
func tryUnify(cfg *Configuration) (*Derivation, bool) {
	if len(cfg.Derivs1) != 1 || len(cfg.Derivs2) != 1 {
		return nil, false
	}
	if cfg.Derivs1[0].Equal(cfg.Derivs2[0]) {
		return cfg.Derivs1[0], true
	}
	return nil, false
}

func finalizeUnify(cfg *Configuration, isShiftReduce, timeout bool) *CounterExample {
	var d1, d2 *Derivation
	if len(cfg.Derivs1) > 0 {
		d1 = cfg.Derivs1[len(cfg.Derivs1)-1]
	}
	if len(cfg.Derivs2) > 0 {
		d2 = cfg.Derivs2[len(cfg.Derivs2)-1]
	}
	return &CounterExample{Deriv1: d1, Deriv2: d2, IsShiftReduce: isShiftReduce, Unifying: false, Timeout: timeout}
}

// expand produces every Configuration one search step away from cfg, per
// spec §4.4 step 3: joint shift when dot-symbols agree, production steps
// into closure-introduced items, reduction when a side is ready, and
// prepend (reverse transition) when no other step applies. Configurations
// from the shift, production and reduction steps have nullable closure
// already applied (step 4); prepended configurations do not.
func expand(g *grammar.Grammar, idx *automaton.Index, cfg *Configuration) []*Configuration {
	si1 := idx.Items[cfg.States1.back()]
	si2 := idx.Items[cfg.States2.back()]

	var out []*Configuration

	if !si1.IsReduce() && !si2.IsReduce() && si1.TransSymbol == si2.TransSymbol && si1.TransItem != automaton.InvalidStateItem && si2.TransItem != automaton.InvalidStateItem {
		next := cfg.clone()
		next.States1 = next.States1.pushBack(si1.TransItem)
		next.States2 = next.States2.pushBack(si2.TransItem)
		leaf := &Derivation{Symbol: si1.TransSymbol}
		next.Derivs1 = next.Derivs1.pushBack(leaf)
		next.Derivs2 = next.Derivs2.pushBack(leaf)
		next.Complexity += 2 * costShift
		if cfg.ShiftDepth >= 0 {
			next.ShiftDepth--
		}
		if cfg.ReduceDepth >= 0 {
			next.ReduceDepth--
		}
		out = append(out, nullableCloseConfig(g, idx, next))
	}

	out = append(out, productionSteps(g, idx, cfg, si1, si2, true)...)
	out = append(out, productionSteps(g, idx, cfg, si2, si1, false)...)

	if ready := si1.IsReduce() && len(cfg.States1) > rhsLen(g, si1.Item); ready {
		if next := reduceStep(g, idx, cfg, true); next != nil {
			out = append(out, nullableCloseConfig(g, idx, next))
		}
	}
	if ready := si2.IsReduce() && len(cfg.States2) > rhsLen(g, si2.Item); ready {
		if next := reduceStep(g, idx, cfg, false); next != nil {
			out = append(out, nullableCloseConfig(g, idx, next))
		}
	}

	if len(out) == 0 {
		out = append(out, prependStep(g, idx, cfg)...)
	}

	return out
}

func rhsLen(g *grammar.Grammar, item automaton.Item) int {
	return len(g.Rules[item.Rule].RHS)
}

// productionSteps takes a production step on side 'from': every
// closure-produced item in from's fwdProd whose first RHS symbol is
// compatible with the other side's current dot-symbol (spec §4.4).
func productionSteps(g *grammar.Grammar, idx *automaton.Index, cfg *Configuration, from, other *automaton.StateItem, isSide1 bool) []*Configuration {
	if from.IsReduce() {
		return nil
	}
	var out []*Configuration
	otherSym, otherHasSym := other.TransSymbol, !other.IsReduce()

	for _, prodID := range from.FwdProd {
		prod := idx.Items[prodID]
		if otherHasSym && !compatible(g, prod.TransSymbol, otherSym) {
			continue
		}

		next := cfg.clone()
		dup := false
		if isSide1 {
			for _, id := range next.States1 {
				if id == prodID {
					dup = true
				}
			}
			next.States1 = next.States1.pushBack(prodID)
		} else {
			for _, id := range next.States2 {
				if id == prodID {
					dup = true
				}
			}
			next.States2 = next.States2.pushBack(prodID)
		}
		next.Complexity += costProduction
		if dup {
			next.Complexity += costDuplicateProd
		}
		out = append(out, nullableCloseConfig(g, idx, next))
	}
	return out
}

// compatible implements spec §4.4's compatibility relation between two
// dot-symbols considered for a joint production step.
func compatible(g *grammar.Grammar, a, b symbol.ID) bool {
	if a == symbol.Invalid || b == symbol.Invalid {
		return false
	}
	aTerm, bTerm := g.Symbols.IsTerminal(a), g.Symbols.IsTerminal(b)
	switch {
	case aTerm && bTerm:
		return a == b
	case aTerm && !bTerm:
		return g.Symbols.Get(b).First[a]
	case !aTerm && bTerm:
		return g.Symbols.Get(a).First[b]
	default:
		if a == b {
			return true
		}
		for f := range g.Symbols.Get(a).First {
			if g.Symbols.Get(b).First[f] {
				return true
			}
		}
		return false
	}
}

// reduceStep pops |RHS| state-items off the ready side, builds a
// derivation node from their per-symbol derivations (inserting a DOT at
// the first reduction of the conflict side), and pushes the GOTO
// successor. isSide1 selects which conflict side is being reduced.
func reduceStep(g *grammar.Grammar, idx *automaton.Index, cfg *Configuration, isSide1 bool) *Configuration {
	next := cfg.clone()

	var states *stateItemDeque
	var derivs *derivDeque
	var depth *int
	if isSide1 {
		states, derivs, depth = &next.States1, &next.Derivs1, &next.ReduceDepth
	} else {
		states, derivs, depth = &next.States2, &next.Derivs2, &next.ShiftDepth
	}

	item := idx.Items[(*states).back()].Item
	rhsN := rhsLen(g, item)

	var children []*Derivation
	if len(*derivs) >= rhsN && rhsN > 0 {
		children = append(children, (*derivs)[len(*derivs)-rhsN:]...)
		*derivs = (*derivs)[:len(*derivs)-rhsN]
	}
	if len(*states) > rhsN {
		*states = (*states)[:len(*states)-rhsN]
	}

	wasFresh := *depth == 0
	node := &Derivation{Symbol: g.Rules[item.Rule].LHS, Children: children}
	if wasFresh {
		node.Children = append([]*Derivation{dotDerivation()}, node.Children...)
	}
	*derivs = derivs.pushBack(node)
	*depth = -1

	predecessor := idx.Items[(*states).back()]
	if gotoItem, ok := gotoSuccessor(idx, predecessor, node.Symbol); ok {
		*states = states.pushBack(gotoItem)
	}

	next.Complexity += costReduce
	return next
}

// gotoSuccessor finds the StateItem reached by taking the GOTO
// transition on sym from the state predecessor sits in.
func gotoSuccessor(idx *automaton.Index, predecessor *automaton.StateItem, sym symbol.ID) (automaton.StateItemID, bool) {
	s := idx.Aut.States[predecessor.State]
	target, ok := s.Trans[sym]
	if !ok {
		return automaton.InvalidStateItem, false
	}
	for _, si := range idx.Items {
		if si.State == target {
			return si.ID, true
		}
	}
	return automaton.InvalidStateItem, false
}

// prependStep implements spec §4.4's backward "prepend" move: when
// neither side is ready to shift or reduce, walk backward to find a
// predecessor pair, cloning the configuration with both predecessors
// prepended. Tries reverse shift (RevTrans) first; when a side's front
// item is a dot-0 item (it was produced by closure, not reached by a
// shift), falls back to reverse production (RevProd) instead, per spec
// §4.4's reverseTransition: "when the current item is at dot 0, items in
// the same state that produced it."
func prependStep(g *grammar.Grammar, idx *automaton.Index, cfg *Configuration) []*Configuration {
	si1 := idx.Items[cfg.States1.front()]
	si2 := idx.Items[cfg.States2.front()]

	var out []*Configuration

	for sym1, preds1 := range si1.RevTrans {
		preds2, ok := si2.RevTrans[sym1]
		if !ok {
			continue
		}
		out = append(out, pairUp(cfg, idx, preds1, preds2)...)
	}

	if len(out) == 0 && si1.Item.Dot == 0 && si2.Item.Dot == 0 {
		for sym1, preds1 := range si1.RevProd {
			preds2, ok := si2.RevProd[sym1]
			if !ok {
				continue
			}
			out = append(out, pairUp(cfg, idx, preds1, preds2)...)
		}
	}

	return out
}

// pairUp clones cfg once per (p1, p2) predecessor pair that share a
// source state, prepending both.
func pairUp(cfg *Configuration, idx *automaton.Index, preds1, preds2 []automaton.StateItemID) []*Configuration {
	var out []*Configuration
	for _, p1 := range preds1 {
		for _, p2 := range preds2 {
			if idx.Items[p1].State != idx.Items[p2].State {
				continue
			}
			next := cfg.clone()
			next.States1 = next.States1.pushFront(p1)
			next.States2 = next.States2.pushFront(p2)
			next.Complexity += costUnshift
			out = append(out, next)
		}
	}
	return out
}

// nullableCloseConfig greedily extends cfg along nullable dot-symbols on
// either side, appending empty-expansion derivations (spec §4.4 step 4)
// so subsequent equality checks line up symbols that were nulled out.
func nullableCloseConfig(g *grammar.Grammar, idx *automaton.Index, cfg *Configuration) *Configuration {
	changed := true
	for changed {
		changed = false
		if grew := nullableCloseSide(g, idx, &cfg.States1, &cfg.Derivs1); grew {
			changed = true
		}
		if grew := nullableCloseSide(g, idx, &cfg.States2, &cfg.Derivs2); grew {
			changed = true
		}
	}
	return cfg
}

func nullableCloseSide(g *grammar.Grammar, idx *automaton.Index, states *stateItemDeque, derivs *derivDeque) bool {
	if len(*states) == 0 {
		return false
	}
	si := idx.Items[(*states).back()]
	if si.IsReduce() || g.Symbols.IsTerminal(si.TransSymbol) {
		return false
	}
	if !g.Symbols.Get(si.TransSymbol).Nullable {
		return false
	}
	if si.TransItem == automaton.InvalidStateItem {
		return false
	}
	*states = states.pushBack(si.TransItem)
	*derivs = derivs.pushBack(&Derivation{Symbol: si.TransSymbol})
	return true
}
