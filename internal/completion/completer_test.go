package completion

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleter_SetWords_ReplacesAtomically(t *testing.T) {
	c := NewCompleter()

	c.SetWords([]string{"google", "gmail", "github"})
	require.Equal(t, 3, c.Len())

	c.SetWords([]string{"docs"})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"docs"}, c.Candidates(""))
}

func TestCompleter_SetWords_EmptyClears(t *testing.T) {
	c := NewCompleter()
	c.SetWords([]string{"google", "gmail"})

	c.SetWords(nil)

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Candidates(""))
}

func TestCompleter_SetWords_CollapsesCaseDuplicates(t *testing.T) {
	c := NewCompleter()

	// Last occurrence wins, matching registry replacement semantics.
	c.SetWords([]string{"Google", "google"})

	require.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"google"}, c.Candidates("goo"))
}

func TestCompleter_SetWords_SkipsEmptyStrings(t *testing.T) {
	c := NewCompleter()

	c.SetWords([]string{"", "google", ""})

	assert.Equal(t, 1, c.Len())
}

func TestCompleter_Candidates(t *testing.T) {
	words := []string{"google", "gmail", "github", "Goodreads", "docs", "drive"}

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{
			name:   "exact prefix set",
			prefix: "g",
			want:   []string{"github", "gmail", "Goodreads", "google"},
		},
		{
			name:   "narrower prefix",
			prefix: "goo",
			want:   []string{"Goodreads", "google"},
		},
		{
			name:   "case-insensitive match keeps stored casing",
			prefix: "GOOD",
			want:   []string{"Goodreads"},
		},
		{
			name:   "whole word is its own candidate",
			prefix: "google",
			want:   []string{"google"},
		},
		{
			name:   "empty prefix returns all words",
			prefix: "",
			want:   []string{"docs", "drive", "github", "gmail", "Goodreads", "google"},
		},
		{
			name:   "no match returns empty slice",
			prefix: "z",
			want:   []string{},
		},
		{
			name:   "prefix longer than any word returns empty slice",
			prefix: "googleextra",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompleter()
			c.SetWords(words)

			got := c.Candidates(tt.prefix)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompleter_Candidates_ResultIsACopy(t *testing.T) {
	c := NewCompleter()
	c.SetWords([]string{"google", "gmail"})

	got := c.Candidates("g")
	got[0] = "mutated"

	assert.Equal(t, []string{"gmail", "google"}, c.Candidates("g"))
}

func TestCompleter_Candidates_Unicode(t *testing.T) {
	c := NewCompleter()
	c.SetWords([]string{"müller", "münchen", "🚀launch", "日本語", "日誌"})

	assert.Equal(t, []string{"müller", "münchen"}, c.Candidates("mü"))
	assert.Equal(t, []string{"müller", "münchen"}, c.Candidates("MÜ"))
	assert.Equal(t, []string{"🚀launch"}, c.Candidates("🚀"))
	assert.Equal(t, []string{"日本語"}, c.Candidates("日本"))
}

func TestCompleter_Candidates_NormalizesEquivalentSpellings(t *testing.T) {
	c := NewCompleter()

	// "é" precomposed (U+00E9) in the word, "e"+combining acute (U+0301)
	// in the query. NFC makes them the same code points.
	c.SetWords([]string{"écran"})

	assert.Equal(t, []string{"écran"}, c.Candidates("é"))
}

func TestCompleter_Complete(t *testing.T) {
	tests := []struct {
		name   string
		words  []string
		prefix string
		want   string
	}{
		{
			name:   "no candidates returns prefix unchanged",
			words:  []string{"google", "gmail"},
			prefix: "x",
			want:   "x",
		},
		{
			name:   "empty index returns prefix unchanged",
			words:  nil,
			prefix: "goo",
			want:   "goo",
		},
		{
			name:   "single candidate completes fully",
			words:  []string{"google", "docs"},
			prefix: "goo",
			want:   "google",
		},
		{
			name:   "multiple candidates extend to shared prefix",
			words:  []string{"google", "goodreads", "gmail"},
			prefix: "go",
			want:   "goo",
		},
		{
			name:   "no shared extension returns prefix",
			words:  []string{"gmail", "google"},
			prefix: "g",
			want:   "g",
		},
		{
			name:   "extension rendered in stored casing",
			words:  []string{"GitHub"},
			prefix: "git",
			want:   "GitHub",
		},
		{
			name:   "empty prefix with common root",
			words:  []string{"google", "goodreads"},
			prefix: "",
			want:   "goo",
		},
		{
			name:   "multibyte extension never splits a code point",
			words:  []string{"münchen", "müller"},
			prefix: "m",
			want:   "mü",
		},
		{
			name:   "emoji prefix completes",
			words:  []string{"🚀launch", "🚀liftoff"},
			prefix: "🚀l",
			want:   "🚀l",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompleter()
			c.SetWords(tt.words)

			got := c.Complete(tt.prefix)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompleter_Complete_CaseFoldedAmbiguity(t *testing.T) {
	c := NewCompleter()
	c.SetWords([]string{"Goodreads", "google"})

	// Fold-space shared prefix is "goo"; the first candidate in fold order
	// supplies the casing.
	assert.Equal(t, "Goo", c.Complete("g"))
}

func TestCompleter_ConcurrentAccess(t *testing.T) {
	c := NewCompleter()
	c.SetWords([]string{"google", "gmail", "github"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.SetWords([]string{fmt.Sprintf("word%d", n), "google"})
		}(i)
		go func() {
			defer wg.Done()
			_ = c.Candidates("g")
			_ = c.Complete("g")
			_ = c.Len()
		}()
	}
	wg.Wait()

	// One SetWords call won; the index holds exactly its two words.
	assert.Equal(t, 2, c.Len())
}
