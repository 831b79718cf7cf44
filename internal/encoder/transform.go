package encoder

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Encode tokenizes text and returns the weight columns of its
// in-vocabulary tokens in order, duplicates preserved. Out-of-vocabulary
// tokens are dropped silently; text matching nothing yields a single
// all-ones column so downstream pooling stays well-defined.
func (e *Encoder) Encode(text string) *mat.Dense {
	rows, _ := e.weights.Dims()
	ids := e.tok.IDs(e.tok.Tokenize(text))
	if len(ids) == 0 {
		ones := make([]float64, rows)
		for i := range ones {
			ones[i] = 1
		}
		return mat.NewDense(rows, 1, ones)
	}
	out := mat.NewDense(rows, len(ids), nil)
	col := make([]float64, rows)
	for j, id := range ids {
		mat.Col(col, id, e.weights)
		out.SetCol(j, col)
	}
	return out
}

// Transform maps every text to one L2-normalized vector: the sum of its
// Encode columns, or a single affine bag-of-tokens map when intercept mode
// is on. Exactly-zero vectors are left unnormalized. Returns nil when
// texts is empty.
func (e *Encoder) Transform(texts []string) *mat.Dense {
	if len(texts) == 0 {
		return nil
	}
	rows, _ := e.weights.Dims()
	out := mat.NewDense(len(texts), rows, nil)
	if e.intercept {
		out.Mul(e.bagOfTokens(texts), e.weights.T())
		for i := range texts {
			row := out.RawRowView(i)
			for j := range row {
				row[j] += e.bias[j]
			}
		}
	} else {
		for i, text := range texts {
			cols := e.Encode(text)
			_, n := cols.Dims()
			row := out.RawRowView(i)
			for j := 0; j < n; j++ {
				for r := 0; r < rows; r++ {
					row[r] += cols.At(r, j)
				}
			}
		}
	}
	normalizeRows(out)
	return out
}

// bagOfTokens builds the dense token-count matrix of texts over the full
// vocabulary dimension.
func (e *Encoder) bagOfTokens(texts []string) *mat.Dense {
	bow := mat.NewDense(len(texts), e.tok.Dim(), nil)
	for i, text := range texts {
		row := bow.RawRowView(i)
		for _, id := range e.tok.IDs(e.tok.Tokenize(text)) {
			row[id]++
		}
	}
	return bow
}

// normalizeRows scales each row to unit L2 norm, leaving zero rows alone.
func normalizeRows(m *mat.Dense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		var ss float64
		for _, v := range row {
			ss += v * v
		}
		if ss == 0 {
			continue
		}
		inv := 1 / math.Sqrt(ss)
		for j := 0; j < cols; j++ {
			row[j] *= inv
		}
	}
}
