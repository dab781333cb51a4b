// Package cache memoizes the extraction stage of the pipeline (extract,
// tokenize, detect references) per input content and extraction settings.
//
// The cache is a bounded LRU shared by concurrent runs. Two runs racing on
// the same key both compute and the last one stored wins; extraction is
// deterministic, so either value is correct. A disabled cache computes every
// time and stores nothing, which changes latency only.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEntries is the capacity used when none is configured.
const DefaultMaxEntries = 8

// Extraction is the cached output of the extraction stage. Values are shared
// between runs and must be treated as read-only.
type Extraction struct {
	Text             string         // extracted plain text the tokens came from
	Tokens           []string       // normalized tokens, no length or stopword filter
	ReferenceBonuses map[string]int // reference key -> match count
	ReferenceOrder   []string       // reference keys in first-seen order
	Citations        map[string]int // normalized citation -> match count
	Matches          int            // total reference matches
}

// Options configures a Cache.
type Options struct {
	Enabled    bool
	MaxEntries int
}

// Stats reports cache activity.
type Stats struct {
	Enabled bool
	Entries int
	Hits    uint64
	Misses  uint64
}

// Cache is a bounded, concurrency-safe LRU of extractions.
type Cache struct {
	entries *lru.Cache[string, Extraction]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// New creates a cache. A disabled cache, a non-positive capacity, or an LRU
// construction failure all yield a cache that never stores anything; the
// latter two log a warning instead of failing.
func New(opts Options) *Cache {
	if !opts.Enabled {
		slog.Debug("Extraction cache disabled")
		return &Cache{}
	}
	if opts.MaxEntries <= 0 {
		slog.Warn("Extraction cache capacity must be positive; caching disabled", "maxEntries", opts.MaxEntries)
		return &Cache{}
	}

	entries, err := lru.New[string, Extraction](opts.MaxEntries)
	if err != nil {
		slog.Warn("Failed to create extraction cache; caching disabled", "error", err)
		return &Cache{}
	}

	slog.Debug("Extraction cache enabled", "maxEntries", opts.MaxEntries)
	return &Cache{entries: entries}
}

// Enabled reports whether the cache stores entries.
func (c *Cache) Enabled() bool {
	return c != nil && c.entries != nil
}

// Get returns the cached extraction for key.
func (c *Cache) Get(key string) (Extraction, bool) {
	if !c.Enabled() {
		return Extraction{}, false
	}
	value, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return value, ok
}

// GetOrCompute returns the cached extraction for key, or runs compute, stores
// its result and returns it. Errors from compute are returned and not cached.
func (c *Cache) GetOrCompute(key string, compute func() (Extraction, error)) (Extraction, bool, error) {
	if value, ok := c.Get(key); ok {
		slog.Debug("Extraction cache hit", "key", shortKey(key))
		return value, true, nil
	}

	value, err := compute()
	if err != nil {
		return Extraction{}, false, err
	}

	if c.Enabled() {
		if evicted := c.entries.Add(key, value); evicted {
			slog.Debug("Extraction cache evicted oldest entry", "entries", c.entries.Len())
		}
	}
	return value, false, nil
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c.Enabled() {
		c.entries.Purge()
	}
}

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	s := Stats{Enabled: c.Enabled(), Hits: c.hits.Load(), Misses: c.misses.Load()}
	if s.Enabled {
		s.Entries = c.entries.Len()
	}
	return s
}

// KeyParts are the inputs that determine an Extraction.
type KeyParts struct {
	Content          []byte
	InputType        string
	JSONKeys         []string
	CollectAll       bool
	DetectReferences bool
	HTMLSelector     string
	IncludeAllHTML   bool
}

// Key hashes the content together with the normalized extraction settings.
// JSON keys are lower-cased, de-duplicated and sorted so equivalent requests
// share an entry.
func Key(p KeyParts) string {
	keys := make([]string, 0, len(p.JSONKeys))
	seen := make(map[string]struct{}, len(p.JSONKeys))
	for _, k := range p.JSONKeys {
		k = strings.ToLower(strings.TrimSpace(k))
		if _, dup := seen[k]; k == "" || dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write(p.Content)
	h.Write([]byte{0})
	for _, field := range []string{
		"v1",
		p.InputType,
		strings.Join(keys, "\x1f"),
		strconv.FormatBool(p.CollectAll),
		strconv.FormatBool(p.DetectReferences),
		p.HTMLSelector,
		strconv.FormatBool(p.IncludeAllHTML),
	} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
