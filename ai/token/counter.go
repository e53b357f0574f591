// Package token defines the pluggable token counting contract used by
// prompt assembly. Counting is intentionally approximate: the model call
// layer owns exact tokenization, assembly only needs a deterministic,
// monotone cost function to budget against.
package token

import (
	"strings"
	"unicode/utf8"
)

// Counter maps text to a non-negative integer cost.
// Implementations must be deterministic and return 0 for empty text.
type Counter func(text string) int

// RuneCount counts one token per rune. This is the default counter:
// it over-counts for latin text but never under-counts, which keeps
// budget decisions safe, and it handles CJK input sensibly.
func RuneCount(text string) int {
	return utf8.RuneCountInString(text)
}

// Approximate estimates tokens as ceil(runes/4), the usual rule of thumb
// for BPE tokenizers on latin text.
func Approximate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// WordCount counts whitespace-separated words. Useful in tests where
// per-message costs need to be obvious from the fixture text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// orDefault returns the counter itself, or RuneCount when nil.
func (c Counter) orDefault() Counter {
	if c == nil {
		return RuneCount
	}
	return c
}

// Count applies the counter with the RuneCount fallback.
func (c Counter) Count(text string) int {
	return c.orDefault()(text)
}
