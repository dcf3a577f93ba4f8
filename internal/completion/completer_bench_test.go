package completion

import (
	"fmt"
	"testing"
)

// benchWords builds a 1000-word list in which 25 words share the "proj"
// prefix, approximating a heavily populated launcher.
func benchWords() []string {
	words := make([]string, 0, 1000)
	for i := 0; i < 25; i++ {
		words = append(words, fmt.Sprintf("proj-%03d", i))
	}
	for i := 25; i < 1000; i++ {
		words = append(words, fmt.Sprintf("cmd-%03d-%c", i, 'a'+i%26))
	}
	return words
}

func BenchmarkCompleter_Candidates(b *testing.B) {
	c := NewCompleter()
	c.SetWords(benchWords())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if got := c.Candidates("proj"); len(got) != 25 {
			b.Fatalf("expected 25 candidates, got %d", len(got))
		}
	}
}

func BenchmarkCompleter_Complete(b *testing.B) {
	c := NewCompleter()
	c.SetWords(benchWords())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Complete("proj")
	}
}

func BenchmarkCompleter_SetWords(b *testing.B) {
	words := benchWords()
	c := NewCompleter()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.SetWords(words)
	}
}
