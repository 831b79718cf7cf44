package linear

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/crimson-sun/subtext/internal/model"
)

// Classifier is a one-vs-rest linear classifier over dense feature rows.
// Class costs are balanced by inverse frequency across the whole label set,
// so every class pulls with the same total weight. The zero value is not
// usable; construct with NewClassifier.
type Classifier struct {
	cfg       Config
	classes   []string
	coef      *mat.Dense
	intercept []float64
}

// NewClassifier returns an unfitted classifier with the given solver
// configuration.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// DefaultClassifierConfig returns the solver defaults with intercept
// estimation enabled, the usual setup when features are embeddings rather
// than raw indicators.
func DefaultClassifierConfig() Config {
	cfg := DefaultConfig()
	cfg.FitIntercept = true
	return cfg
}

// Fit trains one binary problem per class, or a single problem for two
// classes. Labels are ordered lexicographically; for the binary case the
// decision score is positive for the second class.
func (c *Classifier) Fit(X *mat.Dense, y []string) error {
	n, d := X.Dims()
	if len(y) != n {
		return fmt.Errorf("linear: %d rows with %d labels", n, len(y))
	}
	counts := make(map[string]int)
	for _, label := range y {
		counts[label]++
	}
	classes := make([]string, 0, len(counts))
	for label := range counts {
		classes = append(classes, label)
	}
	sort.Strings(classes)
	if len(classes) < 2 {
		return fmt.Errorf("linear: need at least two classes, got %d", len(classes))
	}

	base := c.cfg.C
	if base <= 0 {
		base = 1
	}
	cost := make([]float64, n)
	for i, label := range y {
		cost[i] = base * float64(n) / (float64(len(classes)) * float64(counts[label]))
	}
	rows := denseRows(X)

	ncol := len(classes)
	if ncol == 2 {
		ncol = 1
	}
	coef := mat.NewDense(ncol, d, nil)
	intercept := make([]float64, ncol)
	yk := make([]float64, n)
	for k := 0; k < ncol; k++ {
		target := classes[k]
		if ncol == 1 {
			target = classes[1]
		}
		for i, label := range y {
			if label == target {
				yk[i] = 1
			} else {
				yk[i] = -1
			}
		}
		w, b := solve(rows, d, yk, cost, c.cfg)
		coef.SetRow(k, w)
		intercept[k] = b
	}
	c.classes, c.coef, c.intercept = classes, coef, intercept
	return nil
}

// DecisionFunction returns w·x+b per decision column: a single column for
// binary problems, one per class otherwise.
func (c *Classifier) DecisionFunction(X *mat.Dense) (*mat.Dense, error) {
	if c.coef == nil {
		return nil, fmt.Errorf("linear: classifier is not fitted")
	}
	n, d := X.Dims()
	k, dc := c.coef.Dims()
	if d != dc {
		return nil, fmt.Errorf("linear: %d features, classifier trained on %d", d, dc)
	}
	out := mat.NewDense(n, k, nil)
	out.Mul(X, c.coef.T())
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out.Set(i, j, out.At(i, j)+c.intercept[j])
		}
	}
	return out, nil
}

// Predict returns the highest-scoring class per row.
func (c *Classifier) Predict(X *mat.Dense) ([]string, error) {
	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	n, k := scores.Dims()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		if k == 1 {
			if scores.At(i, 0) > 0 {
				out[i] = c.classes[1]
			} else {
				out[i] = c.classes[0]
			}
			continue
		}
		best := 0
		for j := 1; j < k; j++ {
			if scores.At(i, j) > scores.At(i, best) {
				best = j
			}
		}
		out[i] = c.classes[best]
	}
	return out, nil
}

// Classes returns the fitted labels in decision-column order.
func (c *Classifier) Classes() []string {
	return c.classes
}

// Clone returns an unfitted classifier with the same configuration.
func (c *Classifier) Clone() *Classifier {
	return &Classifier{cfg: c.cfg}
}

// denseRows adapts a dense matrix to the solver's sparse row form. All rows
// share one index slice.
func denseRows(X *mat.Dense) []model.SparseVector {
	n, d := X.Dims()
	idx := make([]int32, d)
	for j := range idx {
		idx[j] = int32(j)
	}
	rows := make([]model.SparseVector, n)
	for i := 0; i < n; i++ {
		vals := make([]float32, d)
		for j := 0; j < d; j++ {
			vals[j] = float32(X.At(i, j))
		}
		rows[i] = model.SparseVector{Indices: idx, Values: vals}
	}
	return rows
}
