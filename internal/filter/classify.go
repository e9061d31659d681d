package filter

import (
	"bytes"
	"path/filepath"
	"strings"
)

// PrefixSize is how many leading bytes of a file the classifier inspects.
const PrefixSize = 1024

// maxLineLength marks content as minified when any line in the prefix exceeds it.
const maxLineLength = 500

// Rejection reasons reported by ShouldProcess.
const (
	ReasonBinary           = "binary content"
	ReasonMinified         = "minified content"
	ReasonGenerated        = "generated content"
	ReasonLockFile         = "lock file"
	ReasonBlockedDirectory = "blocked directory"
	ReasonBlockedExtension = "blocked extension"
)

// Result is the classifier's verdict for a single file.
type Result struct {
	Accept bool
	Reason string
}

func accept() Result { return Result{Accept: true} }

func reject(reason string) Result { return Result{Reason: reason} }

var blockedDirectories = map[string]bool{
	"node_modules": true,
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"target":       true,
}

var lockFiles = map[string]bool{
	"cargo.lock":        true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"poetry.lock":       true,
	"gemfile.lock":      true,
	"composer.lock":     true,
	"go.sum":            true,
	"uv.lock":           true,
}

var blockedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true,
	".pdf": true, ".zip": true, ".gz": true, ".tar": true, ".tgz": true, ".7z": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true, ".o": true,
	".wasm": true, ".class": true, ".jar": true, ".bin": true, ".pyc": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".mp3": true, ".mp4": true,
	".map": true,
}

// ShouldProcess decides whether a file is worth reading in full.
// path should be relative to the walk root so directory rules only see
// components inside the project. prefix holds at most the first PrefixSize bytes of the file; nil skips the
// content heuristics and only path rules apply.
func ShouldProcess(path string, prefix []byte) Result {
	if r := checkPath(path); !r.Accept {
		return r
	}
	if prefix == nil {
		return accept()
	}
	if len(prefix) > PrefixSize {
		prefix = prefix[:PrefixSize]
	}

	if bytes.IndexByte(prefix, 0) >= 0 {
		return reject(ReasonBinary)
	}
	if isGenerated(prefix) {
		return reject(ReasonGenerated)
	}
	if isMinified(prefix) {
		return reject(ReasonMinified)
	}
	return accept()
}

func checkPath(path string) Result {
	slashed := filepath.ToSlash(path)
	for _, part := range strings.Split(slashed, "/") {
		if blockedDirectories[part] {
			return reject(ReasonBlockedDirectory)
		}
	}

	base := strings.ToLower(filepath.Base(path))
	if lockFiles[base] {
		return reject(ReasonLockFile)
	}
	if blockedExtensions[strings.ToLower(filepath.Ext(base))] {
		return reject(ReasonBlockedExtension)
	}
	if strings.HasSuffix(base, ".min.js") || strings.HasSuffix(base, ".min.css") {
		return reject(ReasonMinified)
	}
	return accept()
}

func isGenerated(prefix []byte) bool {
	lower := bytes.ToLower(prefix)
	if bytes.Contains(lower, []byte("@generated")) || bytes.Contains(lower, []byte("<auto-generated")) {
		return true
	}
	// Go convention: "// Code generated ... DO NOT EDIT."
	if bytes.Contains(prefix, []byte("Code generated")) && bytes.Contains(prefix, []byte("DO NOT EDIT")) {
		return true
	}
	return false
}

func isMinified(prefix []byte) bool {
	for len(prefix) > 0 {
		i := bytes.IndexByte(prefix, '\n')
		if i < 0 {
			return len(prefix) > maxLineLength
		}
		if i > maxLineLength {
			return true
		}
		prefix = prefix[i+1:]
	}
	return false
}
