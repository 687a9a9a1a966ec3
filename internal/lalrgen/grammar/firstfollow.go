package grammar

import (
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/joeblu/lalrgen/internal/util"
)

// ComputeFirstFollow runs the C3 fixed-point engine over g, decorating
// every symbol in g.Symbols with Nullable, First, and Follow (spec §4.1).
// It must be called once, after Finalize, before the automaton is built.
//
// Grounded on the teacher's LR1_CLOSURE propagated-lookahead computation
// (internal/ictiobus/automaton/dfa.go), which inlines the same FIRST(βa)
// logic this engine exposes as a standalone, reusable pass -- expressed
// here as worklist loops per spec §9 ("no recursion").
func ComputeFirstFollow(g *Grammar) {
	computeNullable(g)
	computeFirst(g)
	computeFollow(g)
}

func computeNullable(g *Grammar) {
	changed := true
	for changed {
		changed = false
		for _, r := range g.Rules {
			sym := g.Symbols.Get(r.LHS)
			if sym.Nullable {
				continue
			}
			if allNullable(g, r.RHS) {
				sym.Nullable = true
				changed = true
			}
		}
	}
}

func allNullable(g *Grammar, seq []symbol.ID) bool {
	for _, s := range seq {
		if !g.Symbols.Get(s).Nullable {
			return false
		}
	}
	return true
}

func computeFirst(g *Grammar) {
	// terminals are their own FIRST set; EMPTY is handled by NewTable.
	for _, t := range g.Symbols.Terminals() {
		g.Symbols.Get(t).First[t] = true
	}

	changed := true
	for changed {
		changed = false
		for _, r := range g.Rules {
			lhs := g.Symbols.Get(r.LHS)

			allNull := true
			for _, s := range r.RHS {
				sSym := g.Symbols.Get(s)
				for f := range sSym.First {
					if f == symbol.Empty {
						continue
					}
					if !lhs.First[f] {
						lhs.First[f] = true
						changed = true
					}
				}
				if !sSym.Nullable {
					allNull = false
					break
				}
			}
			if allNull && !lhs.First[symbol.Empty] {
				lhs.First[symbol.Empty] = true
				changed = true
			}
		}
	}
}

func computeFollow(g *Grammar) {
	startSym := g.Symbols.Get(g.AugmentedStart)
	if !startSym.Follow[symbol.End] {
		startSym.Follow[symbol.End] = true
	}

	changed := true
	for changed {
		changed = false
		for _, r := range g.Rules {
			for i, b := range r.RHS {
				bSym := g.Symbols.Get(b)
				if bSym.Terminal {
					continue
				}

				beta := r.RHS[i+1:]
				firstBeta := FirstOfSequence(g, beta)

				for f := range firstBeta {
					if f == symbol.Empty {
						continue
					}
					if !bSym.Follow[f] {
						bSym.Follow[f] = true
						changed = true
					}
				}

				if allNullable(g, beta) {
					aSym := g.Symbols.Get(r.LHS)
					for f := range aSym.Follow {
						if !bSym.Follow[f] {
							bSym.Follow[f] = true
							changed = true
						}
					}
				}
			}
		}
	}
}

// FirstOfSequence computes FIRST(Y1...Yk) for an arbitrary symbol sequence,
// including EMPTY iff every Yi is nullable. Used by computeFollow above and
// by the automaton package's closure step to compute propagated lookaheads
// (spec §4.2: "L = first(β L_item)").
func FirstOfSequence(g *Grammar, seq []symbol.ID) util.KeySet[symbol.ID] {
	out := util.NewKeySet[symbol.ID]()

	if len(seq) == 0 {
		out.Add(symbol.Empty)
		return out
	}

	for _, s := range seq {
		sSym := g.Symbols.Get(s)
		for f := range sSym.First {
			if f != symbol.Empty {
				out.Add(f)
			}
		}
		if !sSym.Nullable {
			return out
		}
	}
	// every symbol in seq was nullable
	out.Add(symbol.Empty)
	return out
}

// FirstOfSequenceWithLookahead computes FIRST(seq · la) \ {EMPTY}: the
// propagated lookahead set used when closing an item [A -> α·Bβ, la] into
// [B -> ·γ, FirstOfSequenceWithLookahead(β, la)] (spec §4.2).
func FirstOfSequenceWithLookahead(g *Grammar, seq []symbol.ID, la symbol.ID) util.KeySet[symbol.ID] {
	out := FirstOfSequence(g, seq)
	if out.Has(symbol.Empty) {
		out.Remove(symbol.Empty)
		out.Add(la)
	}
	return out
}
