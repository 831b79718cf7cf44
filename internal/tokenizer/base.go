package tokenizer

import (
	"strings"

	"github.com/crimson-sun/subtext/internal/model"
)

// BaseTokenize produces the raw candidate surface strings of one text:
// whole words when the token list includes -1 and, for every configured
// q-gram length, each rune window of that length over the marker-wrapped
// word, emitted with the "q:" prefix. Windows are taken per word and never
// span two words.
func BaseTokenize(text string, p model.Params) []string {
	words := Words(Normalize(text, p))
	var out []string
	if p.HasWords() {
		out = append(out, words...)
	}
	for _, q := range p.QGramLengths() {
		for _, w := range words {
			wrapped := []rune(wrap(w))
			for i := 0; i+q <= len(wrapped); i++ {
				out = append(out, model.QGramPrefix+string(wrapped[i:i+q]))
			}
		}
	}
	return out
}

// Words splits a normalized boundary-joined string back into its words.
func Words(normalized string) []string {
	var words []string
	for _, w := range strings.Split(normalized, string(model.Boundary)) {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Dedup returns the distinct tokens in first-seen order.
func Dedup(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func wrap(word string) string {
	marker := string(model.Boundary)
	return marker + word + marker
}
