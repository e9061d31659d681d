package filter

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies a grammar pith can extract codemaps from.
type Language int

const (
	Unknown Language = iota
	Rust
	TypeScript
	TSX
	JavaScript
	JSX
	Python
	Go
	Java
	C
)

var languageNames = map[Language]string{
	Rust:       "rust",
	TypeScript: "typescript",
	TSX:        "tsx",
	JavaScript: "javascript",
	JSX:        "jsx",
	Python:     "python",
	Go:         "go",
	Java:       "java",
	C:          "c",
}

// Extensions without the leading dot, lowercase.
var languageExtensions = map[Language][]string{
	Rust:       {"rs"},
	TypeScript: {"ts", "mts", "cts"},
	TSX:        {"tsx"},
	JavaScript: {"js", "mjs", "cjs"},
	JSX:        {"jsx"},
	Python:     {"py", "pyi"},
	Go:         {"go"},
	Java:       {"java"},
	C:          {"c", "h"},
}

var extensionIndex = func() map[string]Language {
	idx := make(map[string]Language)
	for lang, exts := range languageExtensions {
		for _, ext := range exts {
			idx[ext] = lang
		}
	}
	return idx
}()

// All returns every supported language in declaration order.
func All() []Language {
	return []Language{Rust, TypeScript, TSX, JavaScript, JSX, Python, Go, Java, C}
}

func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "unknown"
}

// Extensions returns the file extensions (without dot) mapped to this language.
func (l Language) Extensions() []string {
	return languageExtensions[l]
}

// ParseLanguage converts a user supplied name into a Language.
// Matching is case-insensitive and accepts a few common aliases.
func ParseLanguage(name string) (Language, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "rs":
		return Rust, nil
	case "ts":
		return TypeScript, nil
	case "js":
		return JavaScript, nil
	case "py":
		return Python, nil
	case "golang":
		return Go, nil
	}
	for lang, langName := range languageNames {
		if langName == n {
			return lang, nil
		}
	}
	return Unknown, fmt.Errorf("unknown language: %s", name)
}

// ParseLanguages parses a list of names, failing on the first unknown one.
func ParseLanguages(names []string) ([]Language, error) {
	langs := make([]Language, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		lang, err := ParseLanguage(name)
		if err != nil {
			return nil, err
		}
		langs = append(langs, lang)
	}
	return langs, nil
}

// FromExtension maps an extension (with or without leading dot) to a Language.
func FromExtension(ext string) (Language, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	lang, ok := extensionIndex[ext]
	return lang, ok
}

// Detect returns the language of a file based on its extension.
func Detect(path string) (Language, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return Unknown, false
	}
	return FromExtension(ext)
}

// SupportedExtensions returns every known extension with a leading dot, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionIndex))
	for ext := range extensionIndex {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)
	return exts
}

// Contains reports whether lang is in langs. An empty set contains everything.
func Contains(langs []Language, lang Language) bool {
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
