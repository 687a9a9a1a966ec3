package source

import (
	"fmt"
	"strings"

	"github.com/joeblu/lalrgen/internal/lalrgen/grammar"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
)

// reserved LHS names, spec §6.
var reservedLHS = map[string]bool{
	"EMPTY": true, "__START__": true, "__EOF__": true, "ERROR": true,
}

// ReadError is one accumulated parse or semantic error, carrying a line
// number for the "filename:line:col"-shaped diagnostics spec §7 calls
// for (column tracking is left at 0; lexmachine's Match also carries
// start/end columns, but the line-oriented grammar format here never
// needs column-level precision to disambiguate an error).
type ReadError struct {
	File string
	Line int
	Msg  string
}

func (e ReadError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

type ruleAlt struct {
	lhs    string
	rhs    []string // symbol names; a single "EMPTY" entry means the ε production
	action string
	line   int
}

type termDef struct {
	name    string
	pattern string
	line    int
}

// Read parses grammar source text (already fully %import-inlined by
// Loader) into a Grammar. Per spec §7, parse and semantic errors are
// accumulated rather than failing on the first one; Read returns a nil
// Grammar only if errs is non-empty.
func Read(file string, src []byte) (*grammar.Grammar, []error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, []error{err}
	}

	directives := map[string][]string{}
	var terms []termDef
	var alts []ruleAlt
	var errs []error

	i := 0
	for i < len(toks) {
		tok := toks[i]

		switch {
		case tok.Kind == TokDirective:
			i = readDirective(toks, i, directives)

		case tok.Kind == TokIdent:
			var alt []ruleAlt
			var term *termDef
			var consumed int
			var perr error
			alt, term, consumed, perr = readDefinition(file, toks, i)
			i += consumed
			if perr != nil {
				errs = append(errs, perr)
				break
			}
			if term != nil {
				terms = append(terms, *term)
			}
			alts = append(alts, alt...)

		default:
			errs = append(errs, ReadError{File: file, Line: tok.Line, Msg: fmt.Sprintf("unexpected token %q", tok.Text)})
			i++
		}
	}

	return build(file, directives, terms, alts, errs)
}

// readDirective consumes one %name[ value] directive, returning the
// index just past it.
func readDirective(toks []Token, i int, directives map[string][]string) int {
	name := strings.TrimPrefix(toks[i].Text, "%")
	line := toks[i].Line
	i++

	if i < len(toks) && toks[i].Kind == TokDirectiveBlockOpen {
		i++
		var parts []string
		for i < len(toks) && toks[i].Kind != TokDirectiveBlockOpen {
			parts = append(parts, toks[i].Text)
			i++
		}
		if i < len(toks) {
			i++ // closing %%
		}
		directives[name] = append(directives[name], strings.Join(parts, " "))
		return i
	}

	var parts []string
	for i < len(toks) && toks[i].Line == line && toks[i].Kind != TokDirective {
		parts = append(parts, toks[i].Text)
		i++
	}
	directives[name] = append(directives[name], strings.Join(parts, " "))
	return i
}

// readDefinition consumes either a terminal definition (NAME = "regex" ;)
// or one or more rule alternatives sharing an LHS (NAME = rhs { action }
// | rhs { action } ... ;), returning however many tokens it consumed.
func readDefinition(file string, toks []Token, i int) (alts []ruleAlt, term *termDef, consumed int, err error) {
	start := i
	lhs := toks[i].Text
	line := toks[i].Line
	i++

	if i >= len(toks) || toks[i].Kind != TokEquals {
		return nil, nil, i - start, ReadError{File: file, Line: line, Msg: fmt.Sprintf("expected '=' after %q", lhs)}
	}
	i++

	if i+1 < len(toks) && toks[i].Kind == TokRegex && toks[i+1].Kind == TokSemi {
		t := termDef{name: lhs, pattern: toks[i].Text, line: line}
		return nil, &t, i + 2 - start, nil
	}

	for {
		var rhs []string
		var action string
		for i < len(toks) && toks[i].Kind == TokIdent {
			rhs = append(rhs, toks[i].Text)
			i++
		}
		if i < len(toks) && toks[i].Kind == TokAction {
			action = toks[i].Text
			i++
		}
		alts = append(alts, ruleAlt{lhs: lhs, rhs: rhs, action: action, line: line})

		if i < len(toks) && toks[i].Kind == TokPipe {
			i++
			continue
		}
		if i < len(toks) && toks[i].Kind == TokSemi {
			i++
			break
		}
		return alts, nil, i - start, ReadError{File: file, Line: line, Msg: fmt.Sprintf("rule for %q missing terminating ';'", lhs)}
	}

	return alts, nil, i - start, nil
}

// build assembles the parsed directives/terminals/rules into a Grammar,
// reporting semantic errors (spec §7): undefined symbols, terminal on
// LHS, reserved LHS names, missing/duplicated %return.
func build(file string, directives map[string][]string, terms []termDef, alts []ruleAlt, errs []error) (*grammar.Grammar, []error) {
	nonterminalNames := map[string]bool{}
	for _, a := range alts {
		nonterminalNames[a.lhs] = true
	}

	termByName := map[string]termDef{}
	for _, t := range terms {
		if _, dup := termByName[t.name]; dup {
			errs = append(errs, ReadError{File: file, Line: t.line, Msg: fmt.Sprintf("terminal %q defined more than once", t.name)})
			continue
		}
		termByName[t.name] = t
	}

	for name := range nonterminalNames {
		if reservedLHS[name] {
			errs = append(errs, ReadError{File: file, Msg: fmt.Sprintf("%q is a reserved name and cannot be a rule LHS", name)})
		}
		if _, isTerm := termByName[name]; isTerm {
			errs = append(errs, ReadError{File: file, Msg: fmt.Sprintf("%q is declared as both a terminal and a rule LHS", name)})
		}
	}

	tab := symbol.NewTable()
	for _, t := range terms {
		if reservedLHS[t.name] {
			continue
		}
		id := tab.Intern(t.name, true)
		tab.Get(id).Pattern = t.pattern
	}
	for _, a := range alts {
		if _, isTerm := termByName[a.lhs]; isTerm || reservedLHS[a.lhs] {
			continue
		}
		tab.Intern(a.lhs, false)
	}

	g := grammar.New(tab)

	defaultAction := firstOrEmpty(directives["default"])
	emptyAction := firstOrEmpty(directives["empty"])

	for _, a := range alts {
		lhsID, ok := tab.Lookup(a.lhs)
		if !ok {
			continue // already reported above
		}

		var rhsIDs []symbol.ID
		isEmpty := len(a.rhs) == 1 && a.rhs[0] == "EMPTY"
		if !isEmpty {
			for _, name := range a.rhs {
				if name == "EMPTY" {
					errs = append(errs, ReadError{File: file, Line: a.line, Msg: "EMPTY must appear alone in a production"})
					continue
				}
				id, ok := tab.Lookup(name)
				if !ok {
					errs = append(errs, ReadError{File: file, Line: a.line, Msg: fmt.Sprintf("undefined symbol %q", name)})
					continue
				}
				rhsIDs = append(rhsIDs, id)
			}
		}

		action := a.action
		if action == "" {
			if isEmpty && emptyAction != "" {
				action = emptyAction
			} else if defaultAction != "" {
				action = defaultAction
			}
		}

		g.AddRule(lhsID, rhsIDs, action, grammar.Position{File: file, Line: a.line})
	}

	returns := directives["return"]
	if len(returns) != 1 {
		errs = append(errs, ReadError{File: file, Msg: fmt.Sprintf("expected exactly one %%return directive, found %d", len(returns))})
		return nil, errs
	}

	startID, ok := tab.Lookup(strings.TrimSpace(returns[0]))
	if !ok {
		errs = append(errs, ReadError{File: file, Msg: fmt.Sprintf("%%return symbol %q is not defined by any rule", returns[0])})
		return nil, errs
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if err := g.Finalize(startID); err != nil {
		return nil, []error{err}
	}
	grammar.ComputeFirstFollow(g)

	g.Directives = directives
	return g, nil
}

func firstOrEmpty(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
