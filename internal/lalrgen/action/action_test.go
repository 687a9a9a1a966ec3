package action

import (
	"testing"

	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/stretchr/testify/assert"
)

func buildSumRule(t *testing.T) (*grammar.Grammar, grammar.Rule) {
	t.Helper()

	tab := symbol.NewTable()
	e := tab.Intern("E", false)
	plus := tab.Intern("+", true)
	tNT := tab.Intern("T", false)

	g := grammar.New(tab)
	ruleID := g.AddRule(e, []symbol.ID{e, plus, tNT}, "", grammar.Position{})
	assert.NoError(t, g.Finalize(e))

	return g, g.Rules[ruleID]
}

func Test_Substitute_invertsIndices(t *testing.T) {
	assert := assert.New(t)

	g, r := buildSumRule(t)

	// RHS is [E, +, T] (length 3): $0 (leftmost, E) inverts to slot 2;
	// $2 (rightmost, T) inverts to slot 0.
	out, err := Substitute(g, r, "$0 $1 $2")
	assert.NoError(err)
	assert.Equal("stack.Value(2) stack.Value(1) stack.Value(0)", out)
}

func Test_Substitute_byName(t *testing.T) {
	assert := assert.New(t)

	g, r := buildSumRule(t)

	out, err := Substitute(g, r, "@T")
	assert.NoError(err)
	assert.Equal("stack.Location(0)", out)
}

func Test_Substitute_outOfRangeIndex_errors(t *testing.T) {
	g, r := buildSumRule(t)

	_, err := Substitute(g, r, "$9")
	assert.Error(t, err)
}

func Test_Substitute_ambiguousName_errors(t *testing.T) {
	assert := assert.New(t)

	tab := symbol.NewTable()
	e := tab.Intern("E", false)
	plus := tab.Intern("+", true)

	g := grammar.New(tab)
	ruleID := g.AddRule(e, []symbol.ID{e, plus, e}, "", grammar.Position{})
	assert.NoError(g.Finalize(e))

	_, err := Substitute(g, g.Rules[ruleID], "$E")
	assert.Error(err)
}

func Test_Substitute_undefinedName_errors(t *testing.T) {
	g, r := buildSumRule(t)

	_, err := Substitute(g, r, "$nope")
	assert.Error(t, err)
}
