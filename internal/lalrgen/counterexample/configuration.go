package counterexample

import (
	"github.com/cnf/structhash"
	"github.com/joeblu/lalrgen/internal/lalrgen/automaton"
)

// Complexity costs, spec §4.4. Relative, tuned per implementation; the
// ordering between them (shift/reduce cheapest, production next,
// prepend/duplicate expensive, leaving the guide catastrophic) is what
// the search actually depends on, not the absolute numbers.
const (
	costShift              = 1
	costReduce             = 1
	costProduction         = 50
	costUnshift            = 100
	costDuplicateProd      = 100
	costExtended           = 10000
)

// deque is a minimal double-ended queue over StateItemIDs/*Derivation,
// backed by a plain slice rather than a ring buffer. pushFront and
// pushBack copy the whole slice (O(n)) and return the copy, so a cloned
// Configuration never shares a backing array with its parent; front, back
// and popBackN are O(1).
type stateItemDeque []automaton.StateItemID

func (d stateItemDeque) front() automaton.StateItemID { return d[0] }
func (d stateItemDeque) back() automaton.StateItemID  { return d[len(d)-1] }

func (d stateItemDeque) pushFront(si automaton.StateItemID) stateItemDeque {
	out := make(stateItemDeque, 0, len(d)+1)
	out = append(out, si)
	return append(out, d...)
}

func (d stateItemDeque) pushBack(si automaton.StateItemID) stateItemDeque {
	return append(append(stateItemDeque{}, d...), si)
}

func (d stateItemDeque) popBackN(n int) stateItemDeque {
	return d[:len(d)-n]
}

type derivDeque []*Derivation

func (d derivDeque) pushFront(v *Derivation) derivDeque {
	out := make(derivDeque, 0, len(d)+1)
	out = append(out, v)
	return append(out, d...)
}

func (d derivDeque) pushBack(v *Derivation) derivDeque {
	return append(append(derivDeque{}, d...), v)
}

// Configuration is one search node: two parallel state-item stacks (one
// growing from each conflicting item) and their partial derivations,
// per spec §4.4.
type Configuration struct {
	States1, States2 stateItemDeque
	Derivs1, Derivs2 derivDeque

	Complexity int

	// ReduceDepth/ShiftDepth start at 0 for a reduce item and at the
	// number of RHS symbols still to shift for a shift item; a joint
	// shift decrements a non-negative depth and a side's reduction sets
	// it to -1. Both negative means the configuration has entered
	// "Stage 3" (looking for a unifying common prefix).
	ReduceDepth, ShiftDepth int
}

// stage3 reports whether both depths have gone negative.
func (c *Configuration) stage3() bool {
	return c.ReduceDepth < 0 && c.ShiftDepth < 0
}

// dedupKey is the (tuple(states1), tuple(states2)) key spec §4.4 uses to
// dedup configurations within a complexity bucket and across the visited
// map. Hashed with structhash rather than a hand-rolled string-concat
// key, over the StateItemID slices alone: Derivs carry *Derivation
// pointers that would make two structurally-identical derivations hash
// differently, and only the state-item stacks define search identity.
type dedupPair struct {
	S1 []automaton.StateItemID
	S2 []automaton.StateItemID
}

func (c *Configuration) key() string {
	h, err := structhash.Hash(dedupPair{S1: []automaton.StateItemID(c.States1), S2: []automaton.StateItemID(c.States2)}, 1)
	if err != nil {
		// structhash only fails on unhashable types (channels, funcs);
		// StateItemID is a plain int, so this path is unreachable in
		// practice. Fall back to a degenerate key rather than panicking.
		return ""
	}
	return h
}

func (c *Configuration) clone() *Configuration {
	cp := &Configuration{
		States1:     append(stateItemDeque{}, c.States1...),
		States2:     append(stateItemDeque{}, c.States2...),
		Derivs1:     append(derivDeque{}, c.Derivs1...),
		Derivs2:     append(derivDeque{}, c.Derivs2...),
		Complexity:  c.Complexity,
		ReduceDepth: c.ReduceDepth,
		ShiftDepth:  c.ShiftDepth,
	}
	return cp
}
