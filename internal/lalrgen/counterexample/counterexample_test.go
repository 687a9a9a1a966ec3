package counterexample

import (
	"testing"

	"github.com/google/uuid"
	"github.com/joeblu/lalrgen/internal/lalrgen/automaton"
	"github.com/joeblu/lalrgen/internal/lalrgen/glog"
	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/joeblu/lalrgen/internal/lalrgen/table"
	"github.com/stretchr/testify/assert"
)

// buildScenario5Grammar constructs spec §8 scenario 5's grammar:
//
//	S = T | S T; T = X | Y; X = a; Y = a a b;
//
// Reading a single "a" leaves a state with both a ready reduce item
// (X -> a .) and a shift item (Y -> a . a b) on lookahead "a": a classic
// shift/reduce conflict.
func buildScenario5Grammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	tab := symbol.NewTable()
	a := tab.Intern("a", true)
	b := tab.Intern("b", true)
	s := tab.Intern("S", false)
	tNT := tab.Intern("T", false)
	x := tab.Intern("X", false)
	y := tab.Intern("Y", false)

	g := grammar.New(tab)
	g.AddRule(s, []symbol.ID{tNT}, "", grammar.Position{})
	g.AddRule(s, []symbol.ID{s, tNT}, "", grammar.Position{})
	g.AddRule(tNT, []symbol.ID{x}, "", grammar.Position{})
	g.AddRule(tNT, []symbol.ID{y}, "", grammar.Position{})
	g.AddRule(x, []symbol.ID{a}, "", grammar.Position{})
	g.AddRule(y, []symbol.ID{a, a, b}, "", grammar.Position{})

	assert.NoError(t, g.Finalize(s))
	grammar.ComputeFirstFollow(g)
	return g
}

func Test_Generate_scenario5_shiftReduce(t *testing.T) {
	assert := assert.New(t)

	g := buildScenario5Grammar(t)
	aut := automaton.Build(g)
	pt := table.Build(aut)

	assert.Len(pt.Conflicts, 1, "scenario 5 has exactly one shift/reduce conflict on 'a'")

	idx := automaton.BuildIndex(aut)
	log := glog.New("counterexample-test", uuid.New())

	c := pt.Conflicts[0]
	ce := Generate(g, idx, c, log)
	assert.NotNil(ce)
	assert.Equal(c.IsShiftReduce, ce.IsShiftReduce)
	assert.False(ce.Unifying, "a shift/reduce conflict should never unify")

	// reduce side: X -> a ., with the conflict symbol "a" forced on after
	// the dot per spec's _expandFirst requirement.
	assert.Equal("a • a", Flat(g.Symbols, ce.Deriv1))
	// shift side: Y -> a . a b, rendered with its own remaining RHS.
	assert.Equal("a • a b", Flat(g.Symbols, ce.Deriv2))
}

// Test_tryUnify_matchingRootSymbolsUnify exercises the Stage 3 decision
// search.go's Generate reaches once both conflict sides have reduced
// down to a shared nonterminal: two equal-rooted derivations unify,
// mismatched roots don't.
func Test_tryUnify_matchingRootSymbolsUnify(t *testing.T) {
	assert := assert.New(t)

	tab := symbol.NewTable()
	stmt := tab.Intern("Stmt", false)
	a := tab.Intern("a", true)

	same := &Configuration{
		Derivs1:     derivDeque{{Symbol: stmt, Children: []*Derivation{{Symbol: a}}}},
		Derivs2:     derivDeque{{Symbol: stmt}},
		ReduceDepth: -1,
		ShiftDepth:  -1,
	}
	assert.True(same.stage3())
	d, ok := tryUnify(same)
	assert.True(ok, "equal-rooted derivations on both sides must unify")
	assert.Equal(stmt, d.Symbol)

	different := &Configuration{
		Derivs1: derivDeque{{Symbol: stmt}},
		Derivs2: derivDeque{{Symbol: a}},
	}
	_, ok = tryUnify(different)
	assert.False(ok, "differently-rooted derivations must not unify")
}

func Test_Derivation_Equal_comparesOnlyRoot(t *testing.T) {
	assert := assert.New(t)

	tab := symbol.NewTable()
	a := tab.Intern("a", true)

	d1 := &Derivation{Symbol: a, Children: nil}
	d2 := &Derivation{Symbol: a, Children: []*Derivation{{Symbol: a}}}
	d3 := &Derivation{Symbol: tab.Intern("b", true)}

	assert.True(d1.Equal(d2))
	assert.False(d1.Equal(d3))
}

func Test_Flat_rendersDotMarker(t *testing.T) {
	assert := assert.New(t)

	tab := symbol.NewTable()
	a := tab.Intern("a", true)
	s := tab.Intern("S", false)

	d := &Derivation{Symbol: s, Children: []*Derivation{
		{Symbol: a},
		dotDerivation(),
		{Symbol: a},
	}}

	assert.Equal("a • a", Flat(tab, d))
}

func Test_Tree_rendersWithoutPanicking(t *testing.T) {
	tab := symbol.NewTable()
	a := tab.Intern("a", true)
	s := tab.Intern("S", false)

	d := &Derivation{Symbol: s, Children: []*Derivation{{Symbol: a}, dotDerivation()}}

	out := Tree(tab, d)
	assert.NotEmpty(t, out)
}
