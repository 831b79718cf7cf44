package tokenizer

import (
	"math"
	"strings"

	"github.com/crimson-sun/subtext/internal/model"
)

// Tokenizer segments text into the tokens of a fixed vocabulary by greedy
// longest match over a character trie. It is built once per vocabulary,
// read-only afterwards, and safe for concurrent use.
type Tokenizer struct {
	params  model.Params
	voc     *model.Vocabulary
	root    *trie
	canon   map[string]string
	ids     map[string]int
	names   []string
	weights []float64
	records int64
}

// New compiles voc into a Tokenizer. Token ids follow the counter's
// frequency order; surface registration follows the vocabulary order with
// words overriding colliding q-gram surfaces and symbols overriding both.
func New(voc *model.Vocabulary) (*Tokenizer, error) {
	if err := voc.Validate(); err != nil {
		return nil, err
	}
	entries := voc.Counter.MostCommon(0)
	t := &Tokenizer{
		params:  voc.Params,
		voc:     voc,
		root:    newTrie(),
		canon:   make(map[string]string, len(entries)*2),
		ids:     make(map[string]int, len(entries)),
		names:   make([]string, len(entries)),
		weights: make([]float64, len(entries)),
		records: voc.Counter.UpdateCalls(),
	}
	for i, tc := range entries {
		t.ids[tc.Label] = i
		t.names[i] = tc.Label
		t.weights[i] = idfWeight(t.records, tc.Count)
		if strings.HasPrefix(tc.Label, model.QGramPrefix) {
			t.register(tc.Label[len(model.QGramPrefix):], tc.Label, false)
		} else {
			t.register(wrap(tc.Label), tc.Label, true)
		}
	}
	for _, r := range symbolRunes {
		label := defaultSymbols[r]
		s := string(r)
		for _, surface := range []string{s, wrap(s), string(model.Boundary) + s, s + string(model.Boundary)} {
			t.register(surface, label, true)
		}
	}
	return t, nil
}

func (t *Tokenizer) register(surface, label string, overwrite bool) {
	if !overwrite {
		if _, ok := t.canon[surface]; ok {
			return
		}
	}
	t.canon[surface] = label
	t.root.insert(surface, label, overwrite)
}

// idfWeight is the rarity weight of a token seen in df of n records.
func idfWeight(n, df int64) float64 {
	if n <= 0 || df <= 0 {
		return 0
	}
	return math.Log2(float64(n) / float64(df))
}

// Tokenize normalizes text and segments it into canonical vocabulary
// tokens. Spans whose surface has no canonical mapping fall back to the raw
// surface.
func (t *Tokenizer) Tokenize(text string) []string {
	runes := []rune(Normalize(text, t.params))
	spans := t.root.segment(runes)
	tokens := make([]string, 0, len(spans))
	for _, sp := range spans {
		surface := string(runes[sp.Start:sp.End])
		if label, ok := t.canon[surface]; ok {
			tokens = append(tokens, label)
		} else {
			tokens = append(tokens, surface)
		}
	}
	return tokens
}

// TokenID returns the column id of a canonical token.
func (t *Tokenizer) TokenID(label string) (int, bool) {
	id, ok := t.ids[label]
	return id, ok
}

// IDs maps tokens to their column ids, silently dropping tokens outside the
// vocabulary. Duplicates are preserved in order.
func (t *Tokenizer) IDs(tokens []string) []int {
	out := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if id, ok := t.ids[tok]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Names returns the token labels in id order. The slice is shared; callers
// must not modify it.
func (t *Tokenizer) Names() []string {
	return t.names
}

// IDFWeights returns the per-token rarity weights in id order. The slice is
// shared; callers must not modify it.
func (t *Tokenizer) IDFWeights() []float64 {
	return t.weights
}

// Dim returns the vocabulary dimension.
func (t *Tokenizer) Dim() int {
	return len(t.names)
}

// Records returns the corpus record count behind the vocabulary counts.
func (t *Tokenizer) Records() int64 {
	return t.records
}

// Params returns the base-tokenizer configuration.
func (t *Tokenizer) Params() model.Params {
	return t.params
}

// Vocabulary returns the source vocabulary.
func (t *Tokenizer) Vocabulary() *model.Vocabulary {
	return t.voc
}

// Identifier names the tokenizer after its vocabulary, e.g. "subtext_es_13".
func (t *Tokenizer) Identifier() string {
	return t.voc.Identifier()
}
