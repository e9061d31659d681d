package codemap

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/moradology/pith/internal/filter"
)

type extractFunc func(root *sitter.Node, source []byte, opts Options) ([]Import, []Declaration)

// extractorFor picks the walker for lang. JavaScript and JSX share the
// TypeScript extractor; the pool parses them with the matching grammar.
func extractorFor(lang filter.Language) (extractFunc, bool) {
	switch lang {
	case filter.Rust:
		return extractRust, true
	case filter.TypeScript, filter.TSX, filter.JavaScript, filter.JSX:
		return extractTypeScript, true
	case filter.Python:
		return extractPython, true
	case filter.Go:
		return extractGo, true
	case filter.Java:
		return extractJava, true
	case filter.C:
		return extractC, true
	}
	return nil, false
}

// Extract parses source with the pool's parser for lang and builds its
// Codemap. It never fails: parser problems and syntax errors are recorded in
// ParseError, and whatever declarations were found are kept.
func Extract(pool *ParserPool, path string, lang filter.Language, source []byte, opts Options) *Codemap {
	cm := &Codemap{Path: path, Language: lang}

	extract, ok := extractorFor(lang)
	if !ok {
		cm.ParseError = fmt.Sprintf("unsupported language: %s", lang)
		return cm
	}
	parser, err := pool.Get(lang)
	if err != nil {
		cm.ParseError = err.Error()
		return cm
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		cm.ParseError = "failed to parse"
		return cm
	}
	defer tree.Close()

	root := tree.RootNode()
	cm.Imports, cm.Declarations = extract(root, source, opts)
	if row, bad := firstErrorRow(root); bad {
		cm.ParseError = fmt.Sprintf("syntax error near line %d", row+1)
	}
	return cm
}

// ExtractSource is Extract with a throwaway parser pool, for one-off use.
func ExtractSource(path string, lang filter.Language, source []byte, opts Options) *Codemap {
	pool := NewParserPool()
	defer pool.Close()
	return Extract(pool, path, lang, source, opts)
}
