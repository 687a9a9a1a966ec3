// Package source implements the grammar-source reader spec §6 describes
// as "out of scope for the core... interface only": turning grammar
// source text into a symbol.Table and grammar.Grammar is necessary for
// the rest of this repository to be usable end to end, even though the
// CORE's data structures never depend on it.
//
// Tokenizing is grounded on npillmayer/gorgo's lexmachine adapter
// (lr/scanner/lexmach/lexmachine.go): a lexmachine.Lexer built once from
// a fixed token list, Compile()d, and scanned over the source bytes.
// lexmachine is pulled from the retrieval pack's dependency surface
// rather than from the teacher, which has no grammar-source reader of
// its own (tunaq's fishi.go reads grammar rules out of markdown via
// gomarkdown, a library absent from every go.mod in the pack).
package source

import (
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token kinds, in the order the lexer registers their patterns (longest
// regex matches win ties within lexmachine, but more specific patterns
// are still listed first to document intent).
const (
	TokComment = iota
	TokDirectiveBlockOpen
	TokDirectiveBlockClose
	TokDirective
	TokRegex
	TokAction
	TokEquals
	TokPipe
	TokSemi
	TokIdent
)

var tokenNames = map[int]string{
	TokComment:             "COMMENT",
	TokDirectiveBlockOpen:  "%%",
	TokDirectiveBlockClose: "%%",
	TokDirective:           "DIRECTIVE",
	TokRegex:               "REGEX",
	TokAction:              "ACTION",
	TokEquals:              "EQUALS",
	TokPipe:                "PIPE",
	TokSemi:                "SEMI",
	TokIdent:               "IDENT",
}

// Token is one lexed unit: its kind, literal text (quotes/braces
// stripped for REGEX/ACTION), and 1-based line number for diagnostics.
type Token struct {
	Kind int
	Text string
	Line int
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func emit(kind int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return Token{Kind: kind, Text: string(m.Bytes), Line: m.StartLine}, nil
	}
}

// emitTrimmed strips n bytes from each end of the match before emitting
// (quotes around a regex/string, or the braces around an action block).
func emitTrimmed(kind int, n int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		text := string(m.Bytes)
		if len(text) >= 2*n {
			text = text[n : len(text)-n]
		}
		return Token{Kind: kind, Text: text, Line: m.StartLine}, nil
	}
}

// newLexer builds and compiles the grammar-source lexer. Pattern order
// matters only among ambiguous prefixes; lexmachine already resolves
// longest-match ties itself.
func newLexer() (*lexmachine.Lexer, error) {
	lx := lexmachine.NewLexer()

	lx.Add([]byte(`#[^\n]*\n`), skip)              // line comment
	lx.Add([]byte(`##([^#]|#[^#])*##`), skip)       // block comment
	lx.Add([]byte(`%%`), emit(TokDirectiveBlockOpen))
	lx.Add([]byte(`%[A-Za-z_][A-Za-z0-9_]*`), emit(TokDirective))
	lx.Add([]byte(`"([^"\\]|\\.)*"`), emitTrimmed(TokRegex, 1))
	lx.Add([]byte(`'([^'\\]|\\.)*'`), emitTrimmed(TokRegex, 1))
	lx.Add([]byte(`\{([^}]|\\\})*\}`), emitTrimmed(TokAction, 1))
	lx.Add([]byte(`=`), emit(TokEquals))
	lx.Add([]byte(`\|`), emit(TokPipe))
	lx.Add([]byte(`;`), emit(TokSemi))
	lx.Add([]byte(`[A-Za-z_][A-Za-z0-9_]*`), emit(TokIdent))
	lx.Add([]byte(`[ \t\r\n]+`), skip)

	if err := lx.Compile(); err != nil {
		return nil, fmt.Errorf("compiling grammar-source lexer: %w", err)
	}
	return lx, nil
}

// tokenize runs the lexer over src, returning every non-skipped token in
// order.
func tokenize(src []byte) ([]Token, error) {
	lx, err := newLexer()
	if err != nil {
		return nil, err
	}

	scanner, err := lx.Scanner(src)
	if err != nil {
		return nil, fmt.Errorf("starting scanner: %w", err)
	}

	var toks []Token
	for {
		tok, err, eof := scanner.Next()
		if eof {
			break
		}
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				scanner.TC = ui.FailTC
				continue
			}
			return nil, fmt.Errorf("lexing grammar source: %w", err)
		}
		toks = append(toks, tok.(Token))
	}
	return toks, nil
}
