// Package tokens counts LLM tokens for context budgeting.
//
// Counting uses tiktoken BPE tables. When a table cannot be loaded the
// counter degrades to a ~4 bytes/token heuristic; callers never see an error.
package tokens

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/maypok86/otter"
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Encoding selects a BPE vocabulary.
type Encoding int

const (
	// Cl100kBase is used by GPT-4 and GPT-3.5.
	Cl100kBase Encoding = iota
	// O200kBase is used by GPT-4o.
	O200kBase
)

// ErrUnknownEncoding is returned by ParseEncoding for unsupported names.
var ErrUnknownEncoding = errors.New("unknown encoding")

func (e Encoding) String() string {
	switch e {
	case O200kBase:
		return "o200k_base"
	default:
		return "cl100k_base"
	}
}

// ParseEncoding accepts "cl100k", "cl100k_base", "o200k" and "o200k_base".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cl100k", "cl100k_base":
		return Cl100kBase, nil
	case "o200k", "o200k_base":
		return O200kBase, nil
	}
	return Cl100kBase, fmt.Errorf("%w: %s", ErrUnknownEncoding, s)
}

type lazyEncoder struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// One encoder per vocabulary for the life of the process.
var encoders = map[Encoding]*lazyEncoder{
	Cl100kBase: {},
	O200kBase:  {},
}

func encoderFor(e Encoding) *tiktoken.Tiktoken {
	le, ok := encoders[e]
	if !ok {
		return nil
	}
	le.once.Do(func() {
		enc, err := tiktoken.GetEncoding(e.String())
		if err == nil {
			le.enc = enc
		}
	})
	return le.enc
}

// allSpecial makes special-token text count as ordinary input instead of
// tripping tiktoken's disallowed-token panic.
var allSpecial = []string{"all"}

// Count returns the token count of text under the given encoding.
func Count(text string, encoding Encoding) int {
	if text == "" {
		return 0
	}
	enc := encoderFor(encoding)
	if enc == nil {
		return fallbackCount(text)
	}
	return len(enc.Encode(text, allSpecial, nil))
}

// fallbackCount approximates ~4 bytes per token.
func fallbackCount(text string) int {
	return (len(text) + 3) / 4
}

// Counter counts tokens for one encoding, optionally memoizing results.
type Counter struct {
	encoding Encoding
	cache    otter.Cache[string, int]
	cached   bool
}

// NewCounter creates a counter without a memo cache.
func NewCounter(encoding Encoding) *Counter {
	return &Counter{encoding: encoding}
}

// NewCachedCounter creates a counter that remembers up to capacity results,
// keyed by the text itself. Useful when the same files are counted
// repeatedly (watch mode, MCP server).
func NewCachedCounter(encoding Encoding, capacity int) (*Counter, error) {
	if capacity <= 0 {
		return NewCounter(encoding), nil
	}
	cache, err := otter.MustBuilder[string, int](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build token cache: %w", err)
	}
	return &Counter{encoding: encoding, cache: cache, cached: true}, nil
}

// Encoding returns the counter's encoding.
func (c *Counter) Encoding() Encoding {
	return c.encoding
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if !c.cached {
		return Count(text, c.encoding)
	}

	if n, ok := c.cache.Get(text); ok {
		return n
	}
	n := Count(text, c.encoding)
	c.cache.Set(text, n)
	return n
}

// Close releases the memo cache, if any.
func (c *Counter) Close() {
	if c.cached {
		c.cache.Close()
	}
}
