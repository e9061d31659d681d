package codemap

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/moradology/pith/internal/filter"
)

// grammar identifies a tree-sitter grammar. JavaScript and JSX reuse the
// TypeScript grammars.
type grammar int

const (
	grammarRust grammar = iota
	grammarTypeScript
	grammarTSX
	grammarPython
	grammarGo
	grammarJava
	grammarC
)

func grammarFor(lang filter.Language) (grammar, bool) {
	switch lang {
	case filter.Rust:
		return grammarRust, true
	case filter.TypeScript, filter.JavaScript:
		return grammarTypeScript, true
	case filter.TSX, filter.JSX:
		return grammarTSX, true
	case filter.Python:
		return grammarPython, true
	case filter.Go:
		return grammarGo, true
	case filter.Java:
		return grammarJava, true
	case filter.C:
		return grammarC, true
	}
	return 0, false
}

func (g grammar) language() *sitter.Language {
	switch g {
	case grammarRust:
		return sitter.NewLanguage(rust.Language())
	case grammarTypeScript:
		return sitter.NewLanguage(typescript.LanguageTypescript())
	case grammarTSX:
		return sitter.NewLanguage(typescript.LanguageTSX())
	case grammarPython:
		return sitter.NewLanguage(python.Language())
	case grammarGo:
		return sitter.NewLanguage(golang.Language())
	case grammarJava:
		return sitter.NewLanguage(java.Language())
	case grammarC:
		return sitter.NewLanguage(c.Language())
	}
	return nil
}

// ParserPool holds at most one parser per grammar. It is owned by a single
// worker and is not safe for concurrent use.
type ParserPool struct {
	parsers map[grammar]*sitter.Parser
}

// NewParserPool creates an empty pool. Parsers are built on first use.
func NewParserPool() *ParserPool {
	return &ParserPool{parsers: make(map[grammar]*sitter.Parser)}
}

// Get returns the parser for lang, constructing it on first use.
func (p *ParserPool) Get(lang filter.Language) (*sitter.Parser, error) {
	g, ok := grammarFor(lang)
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	if parser, ok := p.parsers[g]; ok {
		return parser, nil
	}

	language := g.language()
	if language == nil {
		return nil, fmt.Errorf("failed to load %s grammar", lang)
	}
	parser := sitter.NewParser()
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to initialize %s parser: %w", lang, err)
	}
	p.parsers[g] = parser
	return parser, nil
}

// Len returns the number of constructed parsers.
func (p *ParserPool) Len() int {
	return len(p.parsers)
}

// Close releases all parsers.
func (p *ParserPool) Close() {
	for g, parser := range p.parsers {
		parser.Close()
		delete(p.parsers, g)
	}
}
