// Package linear trains L2-regularized squared-hinge support vector
// classifiers by dual coordinate descent, over sparse rows for the
// per-token models and dense rows for the one-vs-rest estimator.
package linear

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/crimson-sun/subtext/internal/model"
)

// Config holds the solver knobs.
type Config struct {
	// C scales the hinge penalty before per-class balancing.
	C float64
	// Tol stops the solver once the projected-gradient spread of a full
	// pass falls below it.
	Tol float64
	// MaxIter bounds the number of passes over the data.
	MaxIter int
	// FitIntercept learns a bias through an augmented constant feature.
	FitIntercept bool
	// Seed fixes the coordinate visiting order.
	Seed int64
}

// DefaultConfig returns the solver defaults: C=1, tol=1e-4, 1000 passes,
// no intercept.
func DefaultConfig() Config {
	return Config{C: 1, Tol: 1e-4, MaxIter: 1000}
}

// Fit trains a binary classifier on sparse rows. pos marks the positive
// class; each sample of class c costs C·n/(2·n_c), so a skewed split still
// pulls the boundary between the classes. Returns the weight vector over
// dim features and the intercept, zero unless cfg.FitIntercept.
func Fit(rows []model.SparseVector, dim int, pos []bool, cfg Config) ([]float64, float64, error) {
	n := len(rows)
	if n == 0 || len(pos) != n {
		return nil, 0, fmt.Errorf("linear: %d rows with %d labels", n, len(pos))
	}
	npos := 0
	for _, p := range pos {
		if p {
			npos++
		}
	}
	nneg := n - npos
	if npos == 0 || nneg == 0 {
		return nil, 0, fmt.Errorf("linear: need both classes, got %d positives in %d rows", npos, n)
	}
	c := cfg.C
	if c <= 0 {
		c = 1
	}
	cpos := c * float64(n) / (2 * float64(npos))
	cneg := c * float64(n) / (2 * float64(nneg))

	y := make([]float64, n)
	cost := make([]float64, n)
	for i, p := range pos {
		if p {
			y[i], cost[i] = 1, cpos
		} else {
			y[i], cost[i] = -1, cneg
		}
	}
	w, b := solve(rows, dim, y, cost, cfg)
	return w, b, nil
}

// solve runs dual coordinate descent on min_w ½‖w‖² + Σ cost_i·max(0,
// 1−y_i·w·x_i)². The squared hinge gives the dual a diagonal term
// D_ii = 1/(2·cost_i) and no upper bound on α.
func solve(rows []model.SparseVector, dim int, y, cost []float64, cfg Config) ([]float64, float64) {
	n := len(rows)
	width := dim
	if cfg.FitIntercept {
		width++
	}
	w := make([]float64, width)
	alpha := make([]float64, n)
	diag := make([]float64, n)
	qbar := make([]float64, n)
	for i, row := range rows {
		diag[i] = 1 / (2 * cost[i])
		q := row.SquaredNorm()
		if cfg.FitIntercept {
			q++
		}
		qbar[i] = q + diag[i]
	}

	tol := cfg.Tol
	if tol <= 0 {
		tol = 1e-4
	}
	maxIter := cfg.MaxIter
	if maxIter <= 0 {
		maxIter = 1000
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for iter := 0; iter < maxIter; iter++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		pgMax := math.Inf(-1)
		pgMin := math.Inf(1)
		for _, i := range order {
			row := rows[i]
			g := y[i]*score(w, row, dim, cfg.FitIntercept) - 1 + diag[i]*alpha[i]
			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			}
			if pg > pgMax {
				pgMax = pg
			}
			if pg < pgMin {
				pgMin = pg
			}
			if math.Abs(pg) > 1e-12 {
				old := alpha[i]
				next := old - g/qbar[i]
				if next < 0 {
					next = 0
				}
				alpha[i] = next
				if step := (next - old) * y[i]; step != 0 {
					row.AddTo(w, step)
					if cfg.FitIntercept {
						w[dim] += step
					}
				}
			}
		}
		if pgMax-pgMin < tol {
			break
		}
	}

	var b float64
	if cfg.FitIntercept {
		b = w[dim]
		w = w[:dim]
	}
	return w, b
}

func score(w []float64, row model.SparseVector, dim int, bias bool) float64 {
	s := row.Dot(w)
	if bias {
		s += w[dim]
	}
	return s
}
