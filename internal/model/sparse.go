package model

// SparseVector is one sparse feature row: parallel index and value slices
// with strictly increasing indices. The indicator projection stores 1.0 per
// present token; alternate projections may store arbitrary weights.
type SparseVector struct {
	Indices []int32
	Values  []float32
}

// Dot returns the inner product of v with a dense vector.
func (v SparseVector) Dot(w []float64) float64 {
	var s float64
	for k, idx := range v.Indices {
		s += float64(v.Values[k]) * w[idx]
	}
	return s
}

// SquaredNorm returns ‖v‖².
func (v SparseVector) SquaredNorm() float64 {
	var s float64
	for _, x := range v.Values {
		s += float64(x) * float64(x)
	}
	return s
}

// AddTo accumulates scale·v into a dense vector.
func (v SparseVector) AddTo(w []float64, scale float64) {
	for k, idx := range v.Indices {
		w[idx] += scale * float64(v.Values[k])
	}
}
