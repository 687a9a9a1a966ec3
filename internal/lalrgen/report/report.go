// Package report builds the end-of-run console summary the CLI prints
// after table construction, mirroring the summary hermes_gen/main.py
// prints once its own table build finishes (original_source/_INDEX.md;
// spec.md's distillation drops this, see SPEC_FULL.md's supplemented
// features).
package report

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/joeblu/lalrgen/internal/lalrgen/counterexample"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/joeblu/lalrgen/internal/lalrgen/table"
	"github.com/joeblu/lalrgen/internal/util"
)

// GenerationReport summarizes one generator run: how big the automaton
// came out, how many conflicts were found, and how the counterexample
// search fared on each of them.
type GenerationReport struct {
	RunID uuid.UUID

	GrammarFile string
	States      int
	Rules       int

	Conflicts           int
	ShiftReduceCount    int
	ReduceReduceCount   int
	Counterexamples     int
	UnifyingCount       int
	TimedOutCount       int
}

// Build assembles a GenerationReport from a built table and the
// counterexamples generated for its conflicts (ces is aligned with
// pt.Conflicts by index; a nil entry means no counterexample was
// requested or found for that conflict).
func Build(runID uuid.UUID, grammarFile string, pt *table.ParseTable, ces []*counterexample.CounterExample) GenerationReport {
	r := GenerationReport{
		RunID:       runID,
		GrammarFile: grammarFile,
		States:      len(pt.Aut.States),
		Rules:       len(pt.G.Rules) - 1, // exclude the synthetic augmented start rule
		Conflicts:   len(pt.Conflicts),
	}

	for _, c := range pt.Conflicts {
		if c.IsShiftReduce {
			r.ShiftReduceCount++
		} else {
			r.ReduceReduceCount++
		}
	}

	for _, ce := range ces {
		if ce == nil {
			continue
		}
		r.Counterexamples++
		if ce.Unifying {
			r.UnifyingCount++
		}
		if ce.Timeout {
			r.TimedOutCount++
		}
	}

	return r
}

// String renders the report the way a console summary line reads:
// terse, one fact per clause.
func (r GenerationReport) String() string {
	return fmt.Sprintf(
		"run %s: %q -> %d states, %d rules, %d conflicts (%d shift/reduce, %d reduce/reduce), "+
			"%d counterexamples generated (%d unifying, %d timed out)",
		r.RunID.String()[:8], r.GrammarFile, r.States, r.Rules, r.Conflicts,
		r.ShiftReduceCount, r.ReduceReduceCount,
		r.Counterexamples, r.UnifyingCount, r.TimedOutCount,
	)
}

// AmbiguityGroup collects the conflicts (and their counterexamples) that
// share a (state, symbol) cell rooted at reduce/reduce alternatives of
// the same family, so the CLI can report them under one heading instead
// of one line per pairwise conflict (hermes_gen/counterexampleGen.py's
// grouping, supplemented feature 3 in SPEC_FULL.md).
type AmbiguityGroup struct {
	State  int
	Symbol string
	Rules  []int
}

// GroupAmbiguities collapses pt's reduce/reduce conflicts sharing a
// (state, symbol) cell into single groups; shift/reduce conflicts are
// never grouped, since each already names exactly one shift and one
// reduce rule.
func GroupAmbiguities(pt *table.ParseTable) []AmbiguityGroup {
	byCell := map[[2]int][]int{}
	var order [][2]int

	for _, c := range pt.Conflicts {
		if c.IsShiftReduce {
			continue
		}
		key := [2]int{c.State, int(c.Symbol)}
		if _, seen := byCell[key]; !seen {
			order = append(order, key)
			byCell[key] = []int{int(c.Rule1)}
		}
		byCell[key] = appendUnique(byCell[key], int(c.Rule2))
	}

	var groups []AmbiguityGroup
	for _, key := range order {
		groups = append(groups, AmbiguityGroup{
			State:  key[0],
			Symbol: pt.G.Symbols.Name(symbol.ID(key[1])),
			Rules:  byCell[key],
		})
	}
	return groups
}

// String renders g as a sentence: `rules 3, 5, and 7 conflict in state 12
// on "a"` reads better at the console than a bare slice of rule numbers.
func (g AmbiguityGroup) String() string {
	names := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		names[i] = strconv.Itoa(r)
	}
	return fmt.Sprintf("rules %s conflict in state %d on %q", util.MakeTextList(names), g.State, g.Symbol)
}

func appendUnique(rules []int, r int) []int {
	for _, existing := range rules {
		if existing == r {
			return rules
		}
	}
	return append(rules, r)
}
