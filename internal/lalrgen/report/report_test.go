package report

import (
	"testing"

	"github.com/google/uuid"
	"github.com/joeblu/lalrgen/internal/lalrgen/automaton"
	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/joeblu/lalrgen/internal/lalrgen/table"
	"github.com/stretchr/testify/assert"
)

// buildDanglingElse mirrors the table package's own dangling-else test
// fixture: a classic shift/reduce conflict grammar.
//
//	S = if E then S | if E then S else S | a ;
//	E = b ;
func buildDanglingElse(t *testing.T) *grammar.Grammar {
	t.Helper()

	tab := symbol.NewTable()
	ids := map[string]symbol.ID{}
	for _, name := range []string{"if", "then", "else", "a", "b"} {
		ids[name] = tab.Intern(name, true)
	}
	for _, name := range []string{"S", "E"} {
		ids[name] = tab.Intern(name, false)
	}

	g := grammar.New(tab)
	g.AddRule(ids["S"], []symbol.ID{ids["if"], ids["E"], ids["then"], ids["S"]}, "", grammar.Position{})
	g.AddRule(ids["S"], []symbol.ID{ids["if"], ids["E"], ids["then"], ids["S"], ids["else"], ids["S"]}, "", grammar.Position{})
	g.AddRule(ids["S"], []symbol.ID{ids["a"]}, "", grammar.Position{})
	g.AddRule(ids["E"], []symbol.ID{ids["b"]}, "", grammar.Position{})

	assert.NoError(t, g.Finalize(ids["S"]))
	grammar.ComputeFirstFollow(g)
	return g
}

func Test_Build_countsConflictsAndStates(t *testing.T) {
	assert := assert.New(t)

	g := buildDanglingElse(t)
	aut := automaton.Build(g)
	pt := table.Build(aut)

	r := Build(uuid.New(), "dangling.lg", pt, nil)
	assert.Equal(len(aut.States), r.States)
	assert.Equal(len(g.Rules)-1, r.Rules)
	assert.NotZero(r.Conflicts)
	assert.NotEmpty(r.String())
}

func Test_GroupAmbiguities_noReduceReduceConflicts_isEmpty(t *testing.T) {
	assert := assert.New(t)

	g := buildDanglingElse(t)
	aut := automaton.Build(g)
	pt := table.Build(aut)

	// the dangling-else grammar only produces shift/reduce conflicts.
	groups := GroupAmbiguities(pt)
	assert.Empty(groups)
}

// buildAmbiguousStmt mirrors spec §8 scenario 6's shape: three distinct
// statement forms that all reduce from the same single lookahead, so the
// parser cannot tell which one a bare "a" was meant to be.
//
//	S = Stmt; Stmt = NumStmt | StrStmt | BoolStmt;
//	NumStmt = a; StrStmt = a; BoolStmt = a;
func buildAmbiguousStmt(t *testing.T) *grammar.Grammar {
	t.Helper()

	tab := symbol.NewTable()
	a := tab.Intern("a", true)
	s := tab.Intern("S", false)
	stmt := tab.Intern("Stmt", false)
	numStmt := tab.Intern("NumStmt", false)
	strStmt := tab.Intern("StrStmt", false)
	boolStmt := tab.Intern("BoolStmt", false)

	g := grammar.New(tab)
	g.AddRule(s, []symbol.ID{stmt}, "", grammar.Position{})
	g.AddRule(stmt, []symbol.ID{numStmt}, "", grammar.Position{})
	g.AddRule(stmt, []symbol.ID{strStmt}, "", grammar.Position{})
	g.AddRule(stmt, []symbol.ID{boolStmt}, "", grammar.Position{})
	g.AddRule(numStmt, []symbol.ID{a}, "", grammar.Position{})
	g.AddRule(strStmt, []symbol.ID{a}, "", grammar.Position{})
	g.AddRule(boolStmt, []symbol.ID{a}, "", grammar.Position{})

	assert.NoError(t, g.Finalize(s))
	grammar.ComputeFirstFollow(g)
	return g
}

func Test_GroupAmbiguities_scenario6_collapsesSharedCell(t *testing.T) {
	assert := assert.New(t)

	g := buildAmbiguousStmt(t)
	aut := automaton.Build(g)
	pt := table.Build(aut)

	assert.NotEmpty(pt.Conflicts, "three rules reducing on the same lookahead must conflict")
	for _, c := range pt.Conflicts {
		assert.False(c.IsShiftReduce, "NumStmt/StrStmt/BoolStmt collide only as reduce/reduce")
	}

	groups := GroupAmbiguities(pt)
	assert.Len(groups, 1, "all three rules collide on the same (state, symbol) cell")
	assert.Equal("a", groups[0].Symbol)
	assert.Len(groups[0].Rules, 3, "the group must list every rule sharing the cell, not just the first two")
}

func Test_AmbiguityGroup_String_oxfordCommaList(t *testing.T) {
	assert := assert.New(t)

	g := AmbiguityGroup{State: 4, Symbol: "a", Rules: []int{1, 2, 3}}
	assert.Equal(`rules 1, 2, and 3 conflict in state 4 on "a"`, g.String())
}
