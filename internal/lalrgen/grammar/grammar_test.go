package grammar

import (
	"testing"

	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/stretchr/testify/assert"
)

// buildG10 constructs the spec's scenario-1 grammar:
//
//	P = E;
//	E = E + T | T;
//	T = id ( E ) | id;
func buildG10(t *testing.T) (*Grammar, map[string]symbol.ID) {
	t.Helper()

	tab := symbol.NewTable()
	ids := map[string]symbol.ID{}
	for _, name := range []string{"id", "+", "(", ")"} {
		ids[name] = tab.Intern(name, true)
	}
	for _, name := range []string{"P", "E", "T"} {
		ids[name] = tab.Intern(name, false)
	}

	g := New(tab)
	g.AddRule(ids["P"], []symbol.ID{ids["E"]}, "", Position{})
	g.AddRule(ids["E"], []symbol.ID{ids["E"], ids["+"], ids["T"]}, "", Position{})
	g.AddRule(ids["E"], []symbol.ID{ids["T"]}, "", Position{})
	g.AddRule(ids["T"], []symbol.ID{ids["id"], ids["("], ids["E"], ids[")"]}, "", Position{})
	g.AddRule(ids["T"], []symbol.ID{ids["id"]}, "", Position{})

	err := g.Finalize(ids["P"])
	assert.NoError(t, err)

	return g, ids
}

// buildNullableGrammar constructs the spec's scenario-2 grammar:
//
//	S = A;
//	A = B b;
//	B = B a | EMPTY;
func buildNullableGrammar(t *testing.T) (*Grammar, map[string]symbol.ID) {
	t.Helper()

	tab := symbol.NewTable()
	ids := map[string]symbol.ID{}
	for _, name := range []string{"a", "b"} {
		ids[name] = tab.Intern(name, true)
	}
	for _, name := range []string{"S", "A", "B"} {
		ids[name] = tab.Intern(name, false)
	}

	g := New(tab)
	g.AddRule(ids["S"], []symbol.ID{ids["A"]}, "", Position{})
	g.AddRule(ids["A"], []symbol.ID{ids["B"], ids["b"]}, "", Position{})
	g.AddRule(ids["B"], []symbol.ID{ids["B"], ids["a"]}, "", Position{})
	g.AddRule(ids["B"], nil, "", Position{})

	err := g.Finalize(ids["S"])
	assert.NoError(t, err)

	return g, ids
}

func Test_Grammar_Finalize_prependsAugmentedStart(t *testing.T) {
	assert := assert.New(t)
	g, ids := buildG10(t)

	assert.Equal(g.AugmentedStart, g.Rules[0].LHS)
	assert.Equal([]symbol.ID{ids["P"]}, g.Rules[0].RHS)
	assert.Equal(RuleID(0), g.Rules[0].ID)
}

func Test_Grammar_Validate_rejectsUndefinedSymbol(t *testing.T) {
	tab := symbol.NewTable()
	s := tab.Intern("S", false)

	g := New(tab)
	g.AddRule(s, []symbol.ID{symbol.ID(999)}, "", Position{})

	err := g.Finalize(s)
	assert.Error(t, err)
}

func Test_Grammar_Validate_rejectsTerminalOnLHS(t *testing.T) {
	tab := symbol.NewTable()
	s := tab.Intern("S", false)
	a := tab.Intern("a", true)

	g := New(tab)
	g.AddRule(a, []symbol.ID{s}, "", Position{})

	err := g.Finalize(s)
	assert.Error(t, err)
}

func Test_Rule_Equal(t *testing.T) {
	assert := assert.New(t)

	tab := symbol.NewTable()
	a := tab.Intern("a", true)
	s := tab.Intern("S", false)

	r1 := Rule{LHS: s, RHS: []symbol.ID{a}}
	r2 := Rule{ID: 7, LHS: s, RHS: []symbol.ID{a}, Action: "different"}
	r3 := Rule{LHS: s, RHS: []symbol.ID{a, a}}

	assert.True(r1.Equal(r2))
	assert.False(r1.Equal(r3))
}

func Test_ComputeFirstFollow_G10(t *testing.T) {
	assert := assert.New(t)

	g, ids := buildG10(t)
	ComputeFirstFollow(g)

	first := func(name string) map[symbol.ID]bool { return g.Symbols.Get(ids[name]).First }
	follow := func(name string) map[symbol.ID]bool { return g.Symbols.Get(ids[name]).Follow }

	assert.Equal(map[symbol.ID]bool{ids["id"]: true}, first("E"))
	assert.Equal(map[symbol.ID]bool{ids["id"]: true}, first("T"))
	assert.Equal(map[symbol.ID]bool{ids["id"]: true}, first("P"))

	assert.Equal(map[symbol.ID]bool{symbol.End: true}, follow("P"))
	assert.Equal(map[symbol.ID]bool{ids["+"]: true, ids[")"]: true, symbol.End: true}, follow("E"))
	assert.Equal(map[symbol.ID]bool{ids["+"]: true, ids[")"]: true, symbol.End: true}, follow("T"))
}

func Test_ComputeFirstFollow_nullable(t *testing.T) {
	assert := assert.New(t)

	g, ids := buildNullableGrammar(t)
	ComputeFirstFollow(g)

	assert.True(g.Symbols.Get(ids["B"]).Nullable)
	assert.False(g.Symbols.Get(ids["A"]).Nullable)

	first := func(name string) map[symbol.ID]bool { return g.Symbols.Get(ids[name]).First }
	follow := func(name string) map[symbol.ID]bool { return g.Symbols.Get(ids[name]).Follow }

	assert.Equal(map[symbol.ID]bool{ids["a"]: true, symbol.Empty: true}, first("B"))
	assert.Equal(map[symbol.ID]bool{ids["a"]: true, ids["b"]: true}, first("A"))
	assert.Equal(map[symbol.ID]bool{ids["a"]: true, ids["b"]: true}, first("S"))

	assert.Equal(map[symbol.ID]bool{ids["a"]: true, ids["b"]: true}, follow("B"))
	assert.Equal(map[symbol.ID]bool{symbol.End: true}, follow("A"))
	assert.Equal(map[symbol.ID]bool{symbol.End: true}, follow("S"))
}
