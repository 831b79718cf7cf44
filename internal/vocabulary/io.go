package vocabulary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/crimson-sun/subtext/internal/corpus"
	"github.com/crimson-sun/subtext/internal/model"
)

// Save writes voc as a single JSON object to path, gzip-compressed when the
// name ends in .gz.
func Save(voc *model.Vocabulary, path string) error {
	w, err := corpus.Create(path)
	if err != nil {
		return err
	}
	if err := w.Write(voc); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Load reads a vocabulary artifact written by Save and validates it.
func Load(path string) (*model.Vocabulary, error) {
	r, err := corpus.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", model.ErrMalformedArtifact, path)
	}
	if err != nil {
		return nil, err
	}
	var voc model.Vocabulary
	if err := json.Unmarshal(data, &voc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrMalformedArtifact, path, err)
	}
	if err := voc.Validate(); err != nil {
		return nil, fmt.Errorf("vocabulary: %s: %w", path, err)
	}
	if e := voc.Params.SizeExponent; e > 0 && voc.Counter.Len() > 1<<e {
		return nil, fmt.Errorf("%w: %s has %d tokens, budget is 2^%d",
			model.ErrMalformedArtifact, path, voc.Counter.Len(), e)
	}
	return &voc, nil
}
