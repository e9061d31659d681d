// Package walker traverses a source tree honoring .gitignore, .pithignore,
// hidden-entry exclusion and a depth limit.
package walker

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// IgnoreFileName is the project-specific ignore file read at the root.
	IgnoreFileName = ".pithignore"
	gitignoreName  = ".gitignore"
)

// Options controls traversal.
type Options struct {
	// MaxDepth limits recursion; 0 means unlimited. Root children are depth 1.
	MaxDepth int
	// IncludeHidden includes entries whose name starts with a dot.
	IncludeHidden bool
	// RespectGitignore applies .gitignore files found during the walk.
	RespectGitignore bool
	// IgnorePatterns are extra gitignore-style patterns applied at the root.
	IgnorePatterns []string
}

// DefaultOptions returns options that respect .gitignore and skip hidden entries.
func DefaultOptions() Options {
	return Options{RespectGitignore: true}
}

// Entry is one visited file or directory. The root itself is not reported
// unless it is a file.
type Entry struct {
	Path   string // root joined with Rel, OS separators
	Rel    string // slash-separated path relative to the root
	Depth  int
	IsFile bool
	Size   int64 // files only
}

// WalkFunc receives entries in lexical pre-order. Returning fs.SkipDir for a
// directory skips its contents; any other error stops the walk.
type WalkFunc func(Entry) error

// Walk visits root. A missing or unreadable root yields *Error; unreadable
// entries below the root are skipped.
func Walk(root string, opts Options, fn WalkFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return NewError(root, err)
	}
	if !info.IsDir() {
		return fn(Entry{
			Path:   root,
			Rel:    filepath.Base(root),
			IsFile: info.Mode().IsRegular(),
			Size:   info.Size(),
		})
	}
	if _, err := os.ReadDir(root); err != nil {
		return NewError(root, err)
	}

	stack := &ignoreStack{}
	if len(opts.IgnorePatterns) > 0 {
		stack.push("", ParsePatterns(opts.IgnorePatterns))
	}
	if opts.RespectGitignore {
		loadInto(stack, "", filepath.Join(root, gitignoreName))
	}
	loadInto(stack, "", filepath.Join(root, IgnoreFileName))

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if p == root {
			return nil
		}
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relOS, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel := filepath.ToSlash(relOS)
		depth := strings.Count(rel, "/") + 1
		isDir := d.IsDir()

		if skip(d.Name(), rel, depth, isDir, opts, stack) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		entry := Entry{Path: p, Rel: rel, Depth: depth, IsFile: d.Type().IsRegular()}
		if entry.IsFile {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			entry.Size = info.Size()
		} else if !isDir {
			// symlinks and special files
			return nil
		}

		if err := fn(entry); err != nil {
			return err
		}
		if isDir && opts.RespectGitignore {
			loadInto(stack, rel, filepath.Join(p, gitignoreName))
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipDir) {
		return err
	}
	return nil
}

// Collect returns all entries under root.
func Collect(root string, opts Options) ([]Entry, error) {
	var entries []Entry
	err := Walk(root, opts, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

func skip(name, rel string, depth int, isDir bool, opts Options, stack *ignoreStack) bool {
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return true
	}
	if isDir && name == ".git" {
		return true
	}
	if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return stack.ignored(rel, isDir)
}

func loadInto(stack *ignoreStack, dir, file string) {
	m, err := LoadMatcher(file)
	if err != nil {
		return
	}
	stack.push(dir, m)
}
