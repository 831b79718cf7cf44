package subtext

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/crimson-sun/subtext/internal/encoder"
	"github.com/crimson-sun/subtext/internal/model"
)

// Precision selects the byte width of persisted classifier coefficients.
type Precision = model.Precision

// Supported coefficient precisions.
const (
	Float16 = model.Float16
	Float32 = model.Float32
	Float64 = model.Float64
)

// Model is a loaded embedding model: one dense vector dimension per
// trained vocabulary token.
type Model struct {
	enc *encoder.Encoder
}

// Open loads a persisted embedding model. Loading decodes every trained
// token row and applies the configured matrix adjustments once; reuse the
// instance across calls.
func Open(path string, opts ...Option) (*Model, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	enc, err := encoder.Load(path, o.encoder()...)
	if err != nil {
		return nil, fmt.Errorf("subtext: %w", err)
	}
	return &Model{enc: enc}, nil
}

// Dimension returns the embedding width, one per trained token.
func (m *Model) Dimension() int {
	return m.enc.Rows()
}

// Tokens returns the trained token labels in embedding order.
func (m *Model) Tokens() []string {
	return append([]string(nil), m.enc.Names()...)
}

// Identifier returns the model's vocabulary identifier, for example
// "subtext_es_13".
func (m *Model) Identifier() string {
	return m.enc.Vocabulary().Identifier()
}

// Tokenize segments text into vocabulary tokens.
func (m *Model) Tokenize(text string) []string {
	return m.enc.Tokenize(text)
}

// Vector embeds one text as a unit-norm vector. Texts whose pooled vector
// is exactly zero come back unnormalized.
func (m *Model) Vector(text string) []float64 {
	X := m.enc.Transform([]string{text})
	return append([]float64(nil), X.RawRowView(0)...)
}

// Vectors embeds texts, one unit-norm vector per text.
func (m *Model) Vectors(texts []string) [][]float64 {
	return matRows(m.enc.Transform(texts))
}

// TokenVectors returns one weight column per in-vocabulary token of text,
// duplicates preserved. A text matching nothing yields a single all-ones
// column.
func (m *Model) TokenVectors(text string) [][]float64 {
	cols := m.enc.Encode(text)
	rows, n := cols.Dims()
	out := make([][]float64, n)
	for j := 0; j < n; j++ {
		col := make([]float64, rows)
		mat.Col(col, j, cols)
		out[j] = col
	}
	return out
}

// Fill densifies the model to one dimension per vocabulary token, with
// untrained tokens as zero rows. The receiver is untouched unless inplace
// is set.
func (m *Model) Fill(inplace bool) *Model {
	enc := m.enc.Fill(inplace)
	if inplace {
		return m
	}
	return &Model{enc: enc}
}

// Clone returns an independent copy of the model.
func (m *Model) Clone() *Model {
	return &Model{enc: m.enc.Clone()}
}

// Fit trains the downstream classifier on labeled texts.
func (m *Model) Fit(texts, labels []string) error {
	if err := m.enc.Fit(texts, labels); err != nil {
		return fmt.Errorf("subtext: %w", err)
	}
	return nil
}

// Predict labels texts with the fitted downstream classifier.
func (m *Model) Predict(texts []string) ([]string, error) {
	out, err := m.enc.Predict(texts)
	if err != nil {
		return nil, fmt.Errorf("subtext: %w", err)
	}
	return out, nil
}

// DecisionFunction scores texts with the fitted downstream classifier:
// one column for binary problems, one per class otherwise.
func (m *Model) DecisionFunction(texts []string) ([][]float64, error) {
	out, err := m.enc.DecisionFunction(texts)
	if err != nil {
		return nil, fmt.Errorf("subtext: %w", err)
	}
	return matRows(out), nil
}

// TrainPredictDecisionFunction returns out-of-fold decision scores: every
// text is scored by a classifier fitted on folds that excluded it.
func (m *Model) TrainPredictDecisionFunction(texts, labels []string) ([][]float64, error) {
	out, err := m.enc.TrainPredictDecisionFunction(texts, labels)
	if err != nil {
		return nil, fmt.Errorf("subtext: %w", err)
	}
	return matRows(out), nil
}

func matRows(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	rows, _ := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return out
}
