// Package cache stores the summary of a previous generator run keyed by
// a hash of the grammar source, so a CLI invocation against an unchanged
// grammar file can report its previous result instead of re-running the
// counterexample search. Grounded on the same "serialize a value with
// rezi, write it to disk" idiom tunaq's server/dao/sqlite package uses
// for encoding game-save state (rezi.EncBinary/DecBinary), adapted here
// to a plain file on disk rather than a SQLite BLOB column, since this
// generator has no database of its own.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/rezi"
	"github.com/joeblu/lalrgen/internal/lalrgen/report"
)

// Entry is the on-disk cache record: the report from the run that last
// built a table for this exact grammar source.
type Entry struct {
	GrammarHash string
	Report      report.GenerationReport
}

// HashSource returns the cache key for grammar source bytes.
func HashSource(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Dir is the default cache directory, mirroring how tunaq's save files
// live alongside the world file rather than in a system temp directory.
const Dir = ".lalrgen-cache"

func path(dir, hash string) string {
	return filepath.Join(dir, hash+".rezi")
}

// Load returns the cached Entry for a grammar source hash, or ok=false
// if nothing is cached (or the cache is stale/corrupt, in which case it
// is treated the same as a miss rather than surfaced as an error -- a
// cache is an optimization, never a source of truth).
func Load(dir, hash string) (Entry, bool) {
	data, err := os.ReadFile(path(dir, hash))
	if err != nil {
		return Entry{}, false
	}

	var e Entry
	n, err := rezi.DecBinary(data, &e)
	if err != nil || n != len(data) {
		return Entry{}, false
	}
	return e, true
}

// Store writes e to the cache directory, creating it if necessary.
func Store(dir string, e Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %q: %w", dir, err)
	}

	data := rezi.EncBinary(e)
	if err := os.WriteFile(path(dir, e.GrammarHash), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
