package model

import "fmt"

// Vocabulary pairs the base-tokenizer configuration with the frequency table
// of the tokens that survived refinement. It is built offline once per
// (language, size) configuration and never mutated at use time.
type Vocabulary struct {
	Params  Params   `json:"params"`
	Counter *Counter `json:"counter"`
}

// Identifier names an artifact family by language and size exponent, e.g.
// "subtext_es_13".
func Identifier(lang string, sizeExponent int) string {
	return fmt.Sprintf("subtext_%s_%d", lang, sizeExponent)
}

// Identifier names the vocabulary by its language and size exponent.
func (v *Vocabulary) Identifier() string {
	return Identifier(v.Params.Lang, v.Params.SizeExponent)
}

// Size returns the number of tokens.
func (v *Vocabulary) Size() int {
	if v.Counter == nil {
		return 0
	}
	return v.Counter.Len()
}

// Validate checks the structural invariants of a vocabulary. Intermediate
// working sets may exceed the 2^SizeExponent cap, so the cap is enforced
// at the artifact boundary instead.
func (v *Vocabulary) Validate() error {
	if v.Counter == nil || v.Counter.Len() == 0 {
		return fmt.Errorf("%w: vocabulary has no tokens", ErrMalformedArtifact)
	}
	return nil
}
