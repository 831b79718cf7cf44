package trainer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/crimson-sun/subtext/internal/corpus"
	"github.com/crimson-sun/subtext/internal/model"
)

// Convert rewrites the model at inPath with coefficients stored at a
// different precision. The stored width is not embedded in the artifact, so
// the caller declares both the current and the target precision. The
// vocabulary record passes through unchanged.
func Convert(inPath, outPath string, from, to model.Precision) error {
	r, err := corpus.Open(inPath)
	if err != nil {
		return err
	}
	defer r.Close()

	first, err := r.Next()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s is empty", model.ErrMalformedArtifact, inPath)
	}
	if err != nil {
		return err
	}
	var voc model.Vocabulary
	if err := json.Unmarshal(first, &voc); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrMalformedArtifact, inPath, err)
	}
	if err := voc.Validate(); err != nil {
		return err
	}

	w, err := corpus.Create(outPath)
	if err != nil {
		return err
	}
	if err := w.Write(&voc); err != nil {
		w.Close()
		return err
	}
	dim := voc.Size()
	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Close()
			return err
		}
		var a model.TokenArtifact
		if err := json.Unmarshal(line, &a); err != nil {
			w.Close()
			return fmt.Errorf("%w: %s: %v", model.ErrMalformedArtifact, inPath, err)
		}
		coef, err := a.Coefficients(from, dim)
		if err != nil {
			w.Close()
			return err
		}
		a.SetCoefficients(coef, to)
		if err := w.Write(&a); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
