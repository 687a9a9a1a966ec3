// Package counterexample implements C6: given a parse-table Conflict, find
// two derivations that explain why both of its competing actions are
// simultaneously valid, following the complexity-ordered bidirectional
// search of Isradisaikul & Myers (2015).
//
// Grounded on the teacher's rendering idiom (rosed flat layout,
// internal/ictiobus/parse's table String() methods) for the flat
// derivation and on npillmayer/gorgo's pterm usage for the colorized tree
// form; the search itself has no teacher analogue (tunaq's ictiobus never
// explains a conflict, it panics on one -- parse/lalr.go's
// lalr1Table.Action), so its shape is grounded directly on nihei9-vartan's
// int-id StateItem style already used by automaton, generalized per spec
// §4.4/§9.
package counterexample

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/joeblu/lalrgen/internal/lalrgen/symbol"
	"github.com/pterm/pterm"
)

// Derivation is a tree: a symbol plus optional children (nil children
// means "leaf / not yet expanded"). A single sentinel derivation with
// IsDot set marks the conflict point when rendered (spec §3).
type Derivation struct {
	Symbol   symbol.ID
	Children []*Derivation
	IsDot    bool
}

// dotDerivation returns the sentinel DOT marker node.
func dotDerivation() *Derivation {
	return &Derivation{IsDot: true}
}

// Equal compares only the root symbol, per spec §4.5: "so that
// unification can recognize 'same nonterminal' regardless of partial
// expansion."
func (d *Derivation) Equal(o *Derivation) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.IsDot != o.IsDot {
		return false
	}
	if d.IsDot {
		return true
	}
	return d.Symbol == o.Symbol
}

// leaves collects the in-order leaf sequence of d, including DOT
// sentinels, for flat rendering.
func (d *Derivation) leaves() []*Derivation {
	if d == nil {
		return nil
	}
	if d.IsDot {
		return []*Derivation{d}
	}
	if len(d.Children) == 0 {
		return []*Derivation{d}
	}
	var out []*Derivation
	for _, c := range d.Children {
		out = append(out, c.leaves()...)
	}
	return out
}

// Flat renders d as space-separated leaf names with "•" standing in for
// the DOT sentinel, via rosed -- the same flat-join idiom the teacher
// uses for its own one-line renderings, generalized from table rows to
// derivation leaves.
func Flat(g symbolNamer, d *Derivation) string {
	leaves := d.leaves()
	parts := make([]string, len(leaves))
	for i, l := range leaves {
		if l.IsDot {
			parts[i] = "•"
		} else {
			parts[i] = g.Name(l.Symbol)
		}
	}
	return rosed.Edit(strings.Join(parts, " ")).String()
}

// Tree renders d as a multi-line indented tree using "↳" as the
// parent-child connector, with pterm color rotating by depth (spec
// §4.5). Color is only applied when pterm's global color profile allows
// it (pterm auto-detects non-tty output and degrades to plain text).
func Tree(g symbolNamer, d *Derivation) string {
	var b strings.Builder
	treeLines(g, d, 0, &b)
	return b.String()
}

var depthColors = []pterm.Color{
	pterm.FgCyan, pterm.FgYellow, pterm.FgGreen, pterm.FgMagenta, pterm.FgRed,
}

func treeLines(g symbolNamer, d *Derivation, depth int, b *strings.Builder) {
	if d == nil {
		return
	}
	label := "•"
	if !d.IsDot {
		label = g.Name(d.Symbol)
	}

	color := depthColors[depth%len(depthColors)]
	indent := strings.Repeat("  ", depth)
	connector := ""
	if depth > 0 {
		connector = "↳ "
	}
	b.WriteString(fmt.Sprintf("%s%s%s\n", indent, connector, color.Sprint(label)))

	for _, c := range d.Children {
		treeLines(g, c, depth+1, b)
	}
}

// symbolNamer is the minimal interface Flat/Tree need from a symbol
// table, letting them render without importing grammar.Grammar directly.
type symbolNamer interface {
	Name(id symbol.ID) string
}
