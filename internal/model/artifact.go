package model

import (
	"errors"
	"fmt"
)

// ErrMalformedArtifact reports a persisted vocabulary or embedding model that
// fails structural validation on load.
var ErrMalformedArtifact = errors.New("subtext: malformed artifact")

// TokenArtifact is one trained token record of a persisted embedding model:
// the classifier fit for Label over N balanced examples. Coef is a
// hex-encoded little-endian float buffer spanning the full vocabulary
// dimension; its byte width is declared by the caller via a Precision.
type TokenArtifact struct {
	N         int     `json:"N"`
	Coef      string  `json:"coef"`
	Intercept float64 `json:"intercept"`
	Label     string  `json:"label"`
}

// SetCoefficients stores w in Coef at precision p.
func (a *TokenArtifact) SetCoefficients(w []float64, p Precision) {
	a.Coef = EncodeFloats(w, p)
}

// Coefficients decodes Coef at precision p and validates it against the
// vocabulary dimension dim.
func (a *TokenArtifact) Coefficients(p Precision, dim int) ([]float64, error) {
	if a.Label == "" {
		return nil, fmt.Errorf("%w: token record has no label", ErrMalformedArtifact)
	}
	if a.Coef == "" {
		return nil, fmt.Errorf("%w: token %q has no coefficients", ErrMalformedArtifact, a.Label)
	}
	w, err := DecodeFloats(a.Coef, p)
	if err != nil {
		return nil, fmt.Errorf("%w: token %q: %v", ErrMalformedArtifact, a.Label, err)
	}
	if len(w) != dim {
		return nil, fmt.Errorf("%w: token %q has %d coefficients, vocabulary has %d",
			ErrMalformedArtifact, a.Label, len(w), dim)
	}
	return w, nil
}
