package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/joeblu/lalrgen/internal/lalrgen/report"
	"github.com/stretchr/testify/assert"
)

func Test_HashSource_isStableAndDistinct(t *testing.T) {
	assert := assert.New(t)

	a := HashSource([]byte("%return S\nS = \"a\" ;\n"))
	b := HashSource([]byte("%return S\nS = \"a\" ;\n"))
	c := HashSource([]byte("%return S\nS = \"b\" ;\n"))

	assert.Equal(a, b)
	assert.NotEqual(a, c)
}

func Test_Store_then_Load_roundTrips(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	hash := HashSource([]byte("grammar"))

	e := Entry{
		GrammarHash: hash,
		Report: report.GenerationReport{
			RunID:       uuid.New(),
			GrammarFile: "g.lg",
			States:      7,
			Rules:       4,
			Conflicts:   1,
		},
	}

	assert.NoError(Store(dir, e))

	got, ok := Load(dir, hash)
	assert.True(ok)
	assert.Equal(e.GrammarHash, got.GrammarHash)
	assert.Equal(e.Report.States, got.Report.States)
	assert.Equal(e.Report.GrammarFile, got.Report.GrammarFile)
}

func Test_Load_missingEntry_isMiss(t *testing.T) {
	dir := t.TempDir()
	_, ok := Load(dir, "does-not-exist")
	assert.False(t, ok)
}
