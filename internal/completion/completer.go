// Package completion implements the prefix-completion index the launcher
// consults while the user types. The index holds a replaceable word list,
// answers prefix queries, and extends a prefix to the longest unambiguous
// continuation.
//
// Matching is case-insensitive engine-wide, using rune-wise simple case
// folding; candidates and completions come back in stored casing. Words are
// NFC-normalized on entry so canonically equivalent spellings compare equal.
package completion

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Completer is a prefix-completion index over a replaceable word list.
// The zero value is ready to use. Safe for concurrent use.
type Completer struct {
	mu    sync.RWMutex
	words []string // stored casing, ordered by fold key
	folds []string // fold keys, parallel to words
}

// NewCompleter returns an empty index.
func NewCompleter() *Completer {
	return &Completer{}
}

// SetWords atomically replaces the word list. Duplicates under case folding
// collapse to the last occurrence; empty strings are ignored; a nil or empty
// list clears the index. It never fails.
func (c *Completer) SetWords(words []string) {
	type entry struct {
		word string
		fold string
	}
	seen := make(map[string]int, len(words))
	entries := make([]entry, 0, len(words))
	for _, w := range words {
		w = norm.NFC.String(w)
		if w == "" {
			continue
		}
		f := fold(w)
		if i, ok := seen[f]; ok {
			entries[i].word = w
			continue
		}
		seen[f] = len(entries)
		entries = append(entries, entry{word: w, fold: f})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].fold < entries[j].fold })

	ws := make([]string, len(entries))
	fs := make([]string, len(entries))
	for i, e := range entries {
		ws[i], fs[i] = e.word, e.fold
	}

	c.mu.Lock()
	c.words, c.folds = ws, fs
	c.mu.Unlock()
}

// Candidates returns every word matching the prefix case-insensitively, in
// fold order and stored casing. An empty prefix returns all words; no match
// returns an empty slice. The result is a copy the caller owns.
func (c *Completer) Candidates(prefix string) []string {
	fp := fold(norm.NFC.String(prefix))

	c.mu.RLock()
	defer c.mu.RUnlock()

	lo, hi := c.foldRange(fp)
	out := make([]string, hi-lo)
	copy(out, c.words[lo:hi])
	return out
}

// Complete returns the longest unambiguous extension of prefix: the longest
// common prefix shared by every candidate, rendered in the casing of the
// first candidate in fold order. No candidates returns the input unchanged;
// exactly one candidate returns that word in full.
func (c *Completer) Complete(prefix string) string {
	fp := fold(norm.NFC.String(prefix))

	c.mu.RLock()
	defer c.mu.RUnlock()

	lo, hi := c.foldRange(fp)
	if lo == hi {
		return prefix
	}

	// The fold keys are sorted, so the common prefix of the whole range is
	// the common prefix of its first and last elements. Simple folding maps
	// one rune to one rune, so a shared rune count in fold space indexes
	// directly into the stored word without splitting a code point.
	common := commonRuneLen([]rune(c.folds[lo]), []rune(c.folds[hi-1]))
	first := []rune(c.words[lo])
	return string(first[:common])
}

// Len returns the number of indexed words.
func (c *Completer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.words)
}

// foldRange returns the half-open index range of fold keys carrying the
// folded prefix fp. Both bounds are located by binary search.
func (c *Completer) foldRange(fp string) (int, int) {
	n := len(c.folds)
	lo := sort.Search(n, func(i int) bool { return c.folds[i] >= fp })
	hi := lo + sort.Search(n-lo, func(i int) bool { return !strings.HasPrefix(c.folds[lo+i], fp) })
	return lo, hi
}

// fold lowercases rune-by-rune. unicode.ToLower is a simple 1:1 mapping, so
// a fold key always has the same rune count as its source.
func fold(s string) string {
	return strings.Map(unicode.ToLower, s)
}

func commonRuneLen(a, b []rune) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
