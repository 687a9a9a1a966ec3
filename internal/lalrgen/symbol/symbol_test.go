package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewTable_reservesDistinguishedSymbols(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()

	assert.Equal("EMPTY", tab.Name(Empty))
	assert.Equal("$", tab.Name(End))
	assert.Equal("ERROR", tab.Name(Error))
	assert.True(tab.Get(Empty).Nullable)
	assert.Equal(3, tab.Len())
}

func Test_Table_Intern(t *testing.T) {
	testCases := []struct {
		name     string
		symbol   string
		terminal bool
	}{
		{name: "terminal", symbol: "id", terminal: true},
		{name: "nonterminal", symbol: "expr", terminal: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			tab := NewTable()
			id := tab.Intern(tc.symbol, tc.terminal)

			assert.Equal(tc.symbol, tab.Name(id))
			assert.Equal(tc.terminal, tab.IsTerminal(id))

			// re-interning the same name returns the same id
			again := tab.Intern(tc.symbol, tc.terminal)
			assert.Equal(id, again)
			assert.Equal(4, tab.Len())
		})
	}
}

func Test_Table_Intern_conflictingTerminalnessPanics(t *testing.T) {
	tab := NewTable()
	tab.Intern("X", true)

	assert.Panics(t, func() {
		tab.Intern("X", false)
	})
}

func Test_Table_TerminalsAndNonterminals(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	idA := tab.Intern("a", true)
	ntE := tab.Intern("E", false)

	terms := tab.Terminals()
	nonterms := tab.Nonterminals()

	assert.Contains(terms, idA)
	assert.NotContains(terms, ntE)
	assert.Contains(nonterms, ntE)
	assert.NotContains(nonterms, idA)
}
