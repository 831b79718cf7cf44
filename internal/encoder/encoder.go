// Package encoder assembles trained token classifiers into a dense
// embedding matrix and turns text into fixed-width vectors over it.
//
// A persisted model carries its vocabulary as the first record and one
// classifier per trained token after it. Load stacks the classifier rows
// in file order and optionally rescales them by column rarity (merged IDF)
// or patches each row's own-token column (force token). Adjustments that
// reshape the matrix return a new owned copy unless in-place mutation is
// requested explicitly.
package encoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/crimson-sun/subtext/internal/corpus"
	"github.com/crimson-sun/subtext/internal/linear"
	"github.com/crimson-sun/subtext/internal/model"
	"github.com/crimson-sun/subtext/internal/tokenizer"
)

// Estimator is the downstream classifier contract consumed by Fit and the
// cross-validated scorers. *linear.Classifier satisfies it.
type Estimator interface {
	Fit(X *mat.Dense, y []string) error
	DecisionFunction(X *mat.Dense) (*mat.Dense, error)
	Predict(X *mat.Dense) ([]string, error)
}

// Encoder maps text onto the rows of a trained embedding matrix: one row
// per trained token, one column per vocabulary dimension. The matrix is
// read-only after Load; Fill and Clone hand out independent copies.
type Encoder struct {
	voc     *model.Vocabulary
	tok     *tokenizer.Tokenizer
	weights *mat.Dense
	bias    []float64
	names   []string

	intercept    bool
	newEstimator func() Estimator
	folds        int
	seed         int64
	est          Estimator
}

type settings struct {
	precision    model.Precision
	mergeIDF     bool
	forceToken   bool
	intercept    bool
	newEstimator func() Estimator
	folds        int
	seed         int64
}

// Option adjusts how a persisted model is loaded and scored.
type Option func(*settings)

// WithPrecision declares the byte width the coefficient buffers were
// persisted at. It must match the width used at training time.
func WithPrecision(p model.Precision) Option {
	return func(s *settings) { s.precision = p }
}

// WithMergeIDF toggles rescaling every matrix row by the per-column rarity
// weights derived from the vocabulary counts. Enabled by default.
func WithMergeIDF(enabled bool) Option {
	return func(s *settings) { s.mergeIDF = enabled }
}

// WithForceToken toggles patching each row's own-token column with the row
// maximum. A classifier never sees its own label as a feature, so that
// column holds no learned value. Enabled by default.
func WithForceToken(enabled bool) Option {
	return func(s *settings) { s.forceToken = enabled }
}

// WithIntercept switches Transform to the affine bag-of-tokens map using
// the persisted intercepts. Incompatible with merged IDF.
func WithIntercept(enabled bool) Option {
	return func(s *settings) { s.intercept = enabled }
}

// WithEstimator installs the factory that builds a fresh downstream
// classifier for each Fit call and each cross-validation fold.
func WithEstimator(factory func() Estimator) Option {
	return func(s *settings) { s.newEstimator = factory }
}

// WithFolds sets the cross-validation fold count. Values below two are
// ignored.
func WithFolds(n int) Option {
	return func(s *settings) {
		if n >= 2 {
			s.folds = n
		}
	}
}

// WithSeed seeds the cross-validation fold shuffles.
func WithSeed(seed int64) Option {
	return func(s *settings) { s.seed = seed }
}

// Load reads a persisted embedding model. The first record must be the
// vocabulary artifact; every record after it is one trained token.
func Load(path string, opts ...Option) (*Encoder, error) {
	s := settings{
		precision:  model.Float32,
		mergeIDF:   true,
		forceToken: true,
		folds:      5,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.intercept && s.mergeIDF {
		return nil, errors.New("encoder: intercept mode excludes merged IDF")
	}
	if s.newEstimator == nil {
		s.newEstimator = func() Estimator {
			return linear.NewClassifier(linear.DefaultClassifierConfig())
		}
	}

	r, err := corpus.Open(path)
	if err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	defer r.Close()

	first, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", model.ErrMalformedArtifact, path)
	}
	if err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	var voc model.Vocabulary
	if err := json.Unmarshal(first, &voc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrMalformedArtifact, path, err)
	}
	if err := voc.Validate(); err != nil {
		return nil, fmt.Errorf("encoder: %s: %w", path, err)
	}
	tok, err := tokenizer.New(&voc)
	if err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}

	dim := tok.Dim()
	var (
		data  []float64
		bias  []float64
		names []string
	)
	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("encoder: %w", err)
		}
		var a model.TokenArtifact
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrMalformedArtifact, path, err)
		}
		coef, err := a.Coefficients(s.precision, dim)
		if err != nil {
			return nil, fmt.Errorf("encoder: %s: %w", path, err)
		}
		data = append(data, coef...)
		bias = append(bias, a.Intercept)
		names = append(names, a.Label)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s has no trained tokens", model.ErrMalformedArtifact, path)
	}

	e := &Encoder{
		voc:          &voc,
		tok:          tok,
		weights:      mat.NewDense(len(names), dim, data),
		bias:         bias,
		names:        names,
		intercept:    s.intercept,
		newEstimator: s.newEstimator,
		folds:        s.folds,
		seed:         s.seed,
	}
	if s.mergeIDF {
		mergeRows(e.weights, tok.IDFWeights())
	}
	if s.forceToken {
		if err := e.forceTokenColumns(!s.mergeIDF && s.intercept); err != nil {
			return nil, err
		}
	}
	slog.Debug("embedding model loaded", "path", path, "rows", len(names), "dim", dim)
	return e, nil
}

// mergeRows scales every matrix row element-wise by the column weights.
func mergeRows(w *mat.Dense, idf []float64) {
	rows, cols := w.Dims()
	for i := 0; i < rows; i++ {
		row := w.RawRowView(i)
		for j := 0; j < cols; j++ {
			row[j] *= idf[j]
		}
	}
}

// forceTokenColumns overwrites each row's own-token column with the row
// maximum. When useIDF is set the maximum is taken over the IDF-rescaled
// row and mapped back to the own column's scale; a zero rarity weight
// would blow up that rescale, so the maximum is left unscaled then.
func (e *Encoder) forceTokenColumns(useIDF bool) error {
	idf := e.tok.IDFWeights()
	for r, label := range e.names {
		id, ok := e.tok.TokenID(label)
		if !ok {
			return fmt.Errorf("%w: trained token %q is not in the vocabulary",
				model.ErrMalformedArtifact, label)
		}
		row := e.weights.RawRowView(r)
		best := math.Inf(-1)
		if useIDF {
			for j, v := range row {
				if s := v * idf[j]; s > best {
					best = s
				}
			}
			if own := idf[id]; own != 0 {
				best /= own
			}
		} else {
			for _, v := range row {
				if v > best {
					best = v
				}
			}
		}
		row[id] = best
	}
	return nil
}

// Names returns the row labels in matrix order. The slice is shared;
// callers must not modify it.
func (e *Encoder) Names() []string {
	return e.names
}

// Rows returns the embedding width, one row per trained token.
func (e *Encoder) Rows() int {
	rows, _ := e.weights.Dims()
	return rows
}

// Weights returns the weight matrix. Shared; callers must not modify it.
func (e *Encoder) Weights() *mat.Dense {
	return e.weights
}

// Bias returns the per-row intercepts. Shared; callers must not modify it.
func (e *Encoder) Bias() []float64 {
	return e.bias
}

// Vocabulary returns the source vocabulary.
func (e *Encoder) Vocabulary() *model.Vocabulary {
	return e.voc
}

// Tokenize exposes the underlying vocabulary segmentation.
func (e *Encoder) Tokenize(text string) []string {
	return e.tok.Tokenize(text)
}

// Fill densifies the matrix to one row per vocabulary token, copying each
// trained row into its token's id slot and leaving untrained tokens as
// exact zero rows. It returns a new Encoder unless inplace is set, in
// which case the receiver is rewritten and returned. Either way a fitted
// downstream estimator is discarded because the output width changes.
func (e *Encoder) Fill(inplace bool) *Encoder {
	dim := e.tok.Dim()
	_, cols := e.weights.Dims()
	w := mat.NewDense(dim, cols, nil)
	bias := make([]float64, dim)
	for r, label := range e.names {
		id, ok := e.tok.TokenID(label)
		if !ok {
			continue
		}
		w.SetRow(id, e.weights.RawRowView(r))
		bias[id] = e.bias[r]
	}
	names := append([]string(nil), e.tok.Names()...)
	if inplace {
		e.weights, e.bias, e.names, e.est = w, bias, names, nil
		return e
	}
	out := *e
	out.weights, out.bias, out.names, out.est = w, bias, names, nil
	return &out
}

// Clone returns an independent copy sharing only the read-only vocabulary
// and trie. The matrix, bias, and labels are deep copies, and any fitted
// downstream estimator is discarded.
func (e *Encoder) Clone() *Encoder {
	out := *e
	out.weights = mat.DenseCopyOf(e.weights)
	out.bias = append([]float64(nil), e.bias...)
	out.names = append([]string(nil), e.names...)
	out.est = nil
	return &out
}
