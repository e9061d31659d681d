package walker

import (
	"bufio"
	"os"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

type ignorePattern struct {
	raw      string
	negated  bool
	dirOnly  bool
	anchored bool // contains a slash: matched against the full relative path
	glob     glob.Glob
	root     glob.Glob // "**/x" also matches "x" at the top level
}

// Matcher evaluates slash-separated paths against gitignore-style patterns.
// Paths are relative to the directory the patterns were loaded from.
type Matcher struct {
	patterns []ignorePattern
}

// LoadMatcher reads patterns from an ignore file, one per line.
func LoadMatcher(file string) (*Matcher, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParsePatterns(lines), nil
}

// ParsePatterns builds a Matcher from raw pattern lines. Lines that do not
// compile as globs are skipped.
func ParsePatterns(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p := ignorePattern{raw: line}
		if strings.HasPrefix(line, "!") {
			p.negated = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.HasPrefix(line, "/") {
			p.anchored = true
			line = strings.TrimPrefix(line, "/")
		} else if strings.Contains(line, "/") {
			p.anchored = true
		}
		if line == "" {
			continue
		}

		g, err := glob.Compile(line, '/')
		if err != nil {
			continue
		}
		p.glob = g
		if rest, ok := strings.CutPrefix(line, "**/"); ok {
			if rg, err := glob.Compile(rest, '/'); err == nil {
				p.root = rg
			}
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Match reports whether rel is ignored. The second result reports whether any
// pattern matched at all, so callers can layer matchers with the last match
// winning.
func (m *Matcher) Match(rel string, isDir bool) (ignored, matched bool) {
	if m == nil {
		return false, false
	}
	base := path.Base(rel)
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		var hit bool
		if p.anchored {
			hit = p.glob.Match(rel) || (p.root != nil && p.root.Match(rel))
		} else {
			hit = p.glob.Match(base)
		}
		if hit {
			ignored = !p.negated
			matched = true
		}
	}
	return ignored, matched
}

// layer is a matcher scoped to the directory holding its ignore file.
type layer struct {
	dir     string // slash path relative to the walk root, "" for the root
	matcher *Matcher
}

// ignoreStack layers ignore files from the root down. Deeper files and later
// patterns take precedence.
type ignoreStack struct {
	layers []layer
}

func (s *ignoreStack) push(dir string, m *Matcher) {
	if m.Len() == 0 {
		return
	}
	s.layers = append(s.layers, layer{dir: dir, matcher: m})
}

func (s *ignoreStack) ignored(rel string, isDir bool) bool {
	result := false
	for _, l := range s.layers {
		local, ok := within(l.dir, rel)
		if !ok {
			continue
		}
		if ign, matched := l.matcher.Match(local, isDir); matched {
			result = ign
		}
	}
	return result
}

// within returns rel relative to dir when rel lies below dir.
func within(dir, rel string) (string, bool) {
	if dir == "" {
		return rel, true
	}
	if strings.HasPrefix(rel, dir+"/") {
		return rel[len(dir)+1:], true
	}
	return "", false
}
