// Package symbol implements C1 of the LALR(1) generator core: an interned
// symbol table that hands out stable integer ids to terminals and
// nonterminals and carries the nullable/FIRST/FOLLOW attributes the
// grammar-analysis engine decorates onto them.
//
// Grounded on the teacher's interning style in
// internal/ictiobus/grammar (string-keyed item sets) and on
// nihei9/vartan's grammar/symbol package, which is the reference this
// spec's "fixed ids at the head of the intern table" design note points
// at -- we use that approach rather than the teacher's map-of-strings one,
// since the spec explicitly calls for stable integer ids and an arena.
package symbol

import "fmt"

// ID is a stable, densely-assigned symbol identifier. The zero value and
// the next two values are always the three distinguished symbols every
// Table reserves: Empty, End, and Error.
type ID int

// Invalid is returned by lookups that fail.
const Invalid ID = -1

// Reserved symbol ids, present in every Table at construction.
const (
	Empty ID = iota // ε, the empty-production marker
	End             // $, end-of-input
	Error           // parser-side error sentinel; never appears on an RHS
)

// Symbol is one interned terminal or nonterminal.
type Symbol struct {
	ID       ID
	Name     string
	Pattern  string // optional terminal lexical pattern, opaque to the core
	Terminal bool

	Nullable bool
	First    map[ID]bool
	Follow   map[ID]bool // meaningful only for nonterminals
}

func newSymbol(id ID, name string, terminal bool) *Symbol {
	return &Symbol{
		ID:       id,
		Name:     name,
		Terminal: terminal,
		First:    map[ID]bool{},
		Follow:   map[ID]bool{},
	}
}

// Table is a per-grammar intern table. Per spec §5, intern tables must be
// fresh for each independent grammar run; never share a Table across
// concurrent Build calls.
type Table struct {
	symbols []*Symbol
	byName  map[string]ID
}

// NewTable returns a Table pre-loaded with the three reserved symbols.
func NewTable() *Table {
	t := &Table{byName: map[string]ID{}}

	t.symbols = append(t.symbols, newSymbol(Empty, "EMPTY", true))
	t.symbols = append(t.symbols, newSymbol(End, "$", true))
	t.symbols = append(t.symbols, newSymbol(Error, "ERROR", true))

	t.byName["EMPTY"] = Empty
	t.byName["$"] = End
	t.byName["ERROR"] = Error

	// Empty is trivially nullable and its own FIRST set.
	t.symbols[Empty].Nullable = true
	t.symbols[Empty].First[Empty] = true

	return t
}

// Intern returns the id for name, creating a new symbol of the given
// terminal-ness if it isn't already known. Re-interning an existing name
// with a different terminal-ness panics: the grammar reader is expected to
// have already rejected "terminal on LHS" / "nonterminal redeclared as
// terminal" as semantic errors before symbols ever reach the table.
func (t *Table) Intern(name string, terminal bool) ID {
	if id, ok := t.byName[name]; ok {
		if t.symbols[id].Terminal != terminal {
			panic(fmt.Sprintf("symbol %q interned as both terminal and nonterminal", name))
		}
		return id
	}

	id := ID(len(t.symbols))
	t.symbols = append(t.symbols, newSymbol(id, name, terminal))
	t.byName[name] = id
	return id
}

// Lookup returns the id for name and whether it was found.
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Get returns the Symbol for id. Panics on an out-of-range id; callers only
// ever hold ids this table itself handed out.
func (t *Table) Get(id ID) *Symbol {
	return t.symbols[id]
}

// Name is shorthand for Get(id).Name.
func (t *Table) Name(id ID) string {
	return t.symbols[id].Name
}

// IsTerminal is shorthand for Get(id).Terminal.
func (t *Table) IsTerminal(id ID) bool {
	return t.symbols[id].Terminal
}

// Len returns the number of interned symbols, including the three reserved
// ones.
func (t *Table) Len() int {
	return len(t.symbols)
}

// All returns every interned id in assignment order.
func (t *Table) All() []ID {
	ids := make([]ID, len(t.symbols))
	for i := range t.symbols {
		ids[i] = ID(i)
	}
	return ids
}

// Terminals returns every interned terminal id, in assignment (i.e.
// definition) order. This is the order spec §4.3 uses for the table's
// terminal columns.
func (t *Table) Terminals() []ID {
	var out []ID
	for _, s := range t.symbols {
		if s.Terminal {
			out = append(out, s.ID)
		}
	}
	return out
}

// Nonterminals returns every interned nonterminal id, in assignment order.
// Callers that need spec §4.3's case-insensitive alphabetical order sort
// this slice themselves (see table.ColumnOrder).
func (t *Table) Nonterminals() []ID {
	var out []ID
	for _, s := range t.symbols {
		if !s.Terminal {
			out = append(out, s.ID)
		}
	}
	return out
}
