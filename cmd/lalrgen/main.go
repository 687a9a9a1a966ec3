/*
Lalrgen builds an LALR(1) parse table from a grammar source file and
reports on any conflicts it finds.

It reads the grammar file named as its single positional argument,
builds the symbol table, automaton, and parse table, and prints a
summary of the run. When conflicts are found, it searches for a
counterexample pair of derivations explaining each one and prints them
alongside the table.

Usage:

	lalrgen [flags] GRAMMAR_FILE

The flags are:

	-o, --table FILE
		Write the rendered parse table to FILE instead of stdout.

	-s, --strict
		Treat unresolved conflicts as a failure (exit code 2) instead
		of a warning.

	--no-color
		Disable ANSI color output.

	--no-counterexamples
		Skip the counterexample search; only report that conflicts
		exist.

	--no-cache
		Ignore and do not update the on-disk generation cache.

	-c, --config FILE
		Load defaults from a TOML config file. Flags override file
		values.

When the grammar source is unchanged since a cached run, the cached
summary is printed and the counterexample search is skipped.

"lalrgen inspect GRAMMAR_FILE" rebuilds the table for GRAMMAR_FILE and
starts an interactive session for stepping through its cells; type
"help" in the session for its commands.
*/
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joeblu/lalrgen/internal/lalrgen/automaton"
	"github.com/joeblu/lalrgen/internal/lalrgen/cache"
	"github.com/joeblu/lalrgen/internal/lalrgen/counterexample"
	"github.com/joeblu/lalrgen/internal/lalrgen/glog"
	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
	"github.com/joeblu/lalrgen/internal/lalrgen/report"
	"github.com/joeblu/lalrgen/internal/lalrgen/source"
	"github.com/joeblu/lalrgen/internal/lalrgen/table"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates the table was built, with no unresolved
	// conflicts or with --strict not set.
	ExitSuccess = iota
	// ExitInvalidInput indicates a bad grammar file or an internal
	// error while building the table.
	ExitInvalidInput
	// ExitStrictConflicts indicates --strict was set and the grammar
	// was not LALR(1).
	ExitStrictConflicts
)

var (
	returnCode    = ExitSuccess
	flagTableOut  = pflag.StringP("table", "o", "", "write the rendered parse table to this file instead of stdout")
	flagStrict    = pflag.BoolP("strict", "s", false, "treat unresolved conflicts as a failure")
	flagNoColor   = pflag.Bool("no-color", false, "disable ANSI color output")
	flagNoCE      = pflag.Bool("no-counterexamples", false, "skip the counterexample search")
	flagNoCache   = pflag.Bool("no-cache", false, "ignore and do not update the on-disk generation cache")
	flagConfig    = pflag.StringP("config", "c", "", "load defaults from a TOML config file")
)

func main() {
	defer func() {
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if pflag.NArg() > 0 && pflag.Arg(0) == "inspect" {
		runInspect(pflag.Args()[1:])
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: expected exactly one grammar file argument")
		returnCode = ExitInvalidInput
		return
	}

	cfg, err := LoadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInvalidInput
		return
	}
	cfg = cfg.FillDefaults()
	if *flagStrict {
		cfg.Strict = true
	}
	if *flagNoColor {
		cfg.NoColor = true
	}
	if cfg.NoColor {
		pterm.DisableColor()
	}

	runID := uuid.New()
	log := glog.New("lalrgen", runID)

	grammarFile := pflag.Arg(0)
	if err := run(grammarFile, cfg, log, runID); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInvalidInput
	}
}

func run(grammarFile string, cfg Config, log *glog.Logger, runID uuid.UUID) error {
	if cfg.SearchBudgetMillis > 0 {
		counterexample.SetHardDeadline(time.Duration(cfg.SearchBudgetMillis) * time.Millisecond)
	}

	src, err := (source.Loader{}).Load(grammarFile)
	if err != nil {
		return fmt.Errorf("loading %q: %w", grammarFile, err)
	}

	g, readErrs := source.Read(grammarFile, src)
	if len(readErrs) > 0 {
		for _, e := range readErrs {
			fmt.Fprintf(os.Stderr, "%s\n", e)
		}
		return fmt.Errorf("%d error(s) reading grammar", len(readErrs))
	}

	hash := cache.HashSource(src)
	cached := false
	if !*flagNoCache {
		if entry, ok := cache.Load(cfg.CacheDir, hash); ok {
			log.Info("unchanged grammar, using cached result from run %s", entry.Report.RunID.String()[:8])
			fmt.Println(entry.Report.String())
			cached = true
		}
	}

	aut := automaton.Build(g)
	pt := table.Build(aut)

	if *flagTableOut != "" {
		if err := os.WriteFile(*flagTableOut, []byte(pt.String()), 0o644); err != nil {
			return fmt.Errorf("writing table to %q: %w", *flagTableOut, err)
		}
	} else {
		fmt.Println(pt.String())
	}

	if cached {
		reportAmbiguities(pt)
		if cfg.Strict && len(pt.Conflicts) > 0 {
			returnCode = ExitStrictConflicts
		}
		return nil
	}

	ces := generateCounterexamples(g, pt, log, *flagNoCE)
	reportAmbiguities(pt)

	rep := report.Build(runID, grammarFile, pt, ces)
	fmt.Println(rep.String())

	if !*flagNoCache {
		if err := cache.Store(cfg.CacheDir, cache.Entry{GrammarHash: hash, Report: rep}); err != nil {
			log.Warn("could not write generation cache: %s", err)
		}
	}

	if cfg.Strict && len(pt.Conflicts) > 0 {
		returnCode = ExitStrictConflicts
	}
	return nil
}

func generateCounterexamples(g *grammar.Grammar, pt *table.ParseTable, log *glog.Logger, skip bool) []*counterexample.CounterExample {
	if skip || len(pt.Conflicts) == 0 {
		return nil
	}

	idx := automaton.BuildIndex(pt.Aut)
	ces := make([]*counterexample.CounterExample, len(pt.Conflicts))

	for i, c := range pt.Conflicts {
		stop := glog.Progress(log, fmt.Sprintf("searching for counterexample %d/%d", i+1, len(pt.Conflicts)))
		ce := counterexample.Generate(g, idx, c, log)
		ces[i] = ce

		if ce == nil {
			stop(false, "search produced no counterexample")
			continue
		}
		if ce.Timeout {
			stop(false, "search timed out")
		} else {
			stop(true, "done")
		}

		if ce.Deriv1 != nil {
			fmt.Printf("conflict %d, derivation 1:\n%s\n", i, counterexample.Flat(g.Symbols, ce.Deriv1))
		}
		if ce.Deriv2 != nil {
			fmt.Printf("conflict %d, derivation 2:\n%s\n", i, counterexample.Flat(g.Symbols, ce.Deriv2))
		}
	}

	return ces
}

func reportAmbiguities(pt *table.ParseTable) {
	groups := report.GroupAmbiguities(pt)
	for _, grp := range groups {
		fmt.Printf("ambiguity: %s\n", grp)
	}
}
