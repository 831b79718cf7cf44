package encoder

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var errNotFitted = errors.New("encoder: estimator not fitted")

// Fit transforms texts and fits a fresh downstream estimator on the
// result.
func (e *Encoder) Fit(texts, labels []string) error {
	if len(texts) == 0 || len(texts) != len(labels) {
		return fmt.Errorf("encoder: %d texts with %d labels", len(texts), len(labels))
	}
	est := e.newEstimator()
	if err := est.Fit(e.Transform(texts), labels); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	e.est = est
	return nil
}

// DecisionFunction scores texts with the fitted downstream estimator.
func (e *Encoder) DecisionFunction(texts []string) (*mat.Dense, error) {
	if e.est == nil {
		return nil, errNotFitted
	}
	out, err := e.est.DecisionFunction(e.Transform(texts))
	if err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	return out, nil
}

// Predict labels texts with the fitted downstream estimator.
func (e *Encoder) Predict(texts []string) ([]string, error) {
	if e.est == nil {
		return nil, errNotFitted
	}
	out, err := e.est.Predict(e.Transform(texts))
	if err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	return out, nil
}

// TrainPredictDecisionFunction scores every text out-of-fold: the inputs
// are split into stratified folds, a fresh estimator is fitted per fold on
// the remaining rows, and each row is scored only by the estimator that
// never saw it. Binary problems yield one score column, multiclass one per
// class.
func (e *Encoder) TrainPredictDecisionFunction(texts, labels []string) (*mat.Dense, error) {
	if len(texts) == 0 || len(texts) != len(labels) {
		return nil, fmt.Errorf("encoder: %d texts with %d labels", len(texts), len(labels))
	}
	classes := classSet(labels)
	if len(classes) < 2 {
		return nil, fmt.Errorf("encoder: need at least two classes, got %d", len(classes))
	}
	counts := make(map[string]int, len(classes))
	for _, y := range labels {
		counts[y]++
	}
	for _, class := range classes {
		if counts[class] < e.folds {
			return nil, fmt.Errorf("encoder: class %q has %d examples, fewer than %d folds",
				class, counts[class], e.folds)
		}
	}

	X := e.Transform(texts)
	width := len(classes)
	if width == 2 {
		width = 1
	}
	out := mat.NewDense(len(texts), width, nil)
	folds := stratifiedFolds(labels, classes, e.folds, e.seed)
	for f := 0; f < e.folds; f++ {
		var train, test []int
		for i, fold := range folds {
			if fold == f {
				test = append(test, i)
			} else {
				train = append(train, i)
			}
		}
		est := e.newEstimator()
		if err := est.Fit(pickRows(X, train), pick(labels, train)); err != nil {
			return nil, fmt.Errorf("encoder: fold %d: %w", f, err)
		}
		scores, err := est.DecisionFunction(pickRows(X, test))
		if err != nil {
			return nil, fmt.Errorf("encoder: fold %d: %w", f, err)
		}
		if _, c := scores.Dims(); c != width {
			return nil, fmt.Errorf("encoder: fold %d produced %d score columns, want %d", f, c, width)
		}
		for i, idx := range test {
			out.SetRow(idx, scores.RawRowView(i))
		}
	}
	return out, nil
}

// classSet returns the distinct labels sorted.
func classSet(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	var classes []string
	for _, y := range labels {
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			classes = append(classes, y)
		}
	}
	sort.Strings(classes)
	return classes
}

// stratifiedFolds assigns each index a fold so every class spreads evenly
// across folds. Indices shuffle within each class, seeded for
// reproducibility.
func stratifiedFolds(labels, classes []string, folds int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	byClass := make(map[string][]int, len(classes))
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}
	out := make([]int, len(labels))
	for _, class := range classes {
		idx := byClass[class]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for pos, i := range idx {
			out[i] = pos % folds
		}
	}
	return out
}

func pickRows(X *mat.Dense, idx []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, j := range idx {
		out.SetRow(i, X.RawRowView(j))
	}
	return out
}

func pick(labels []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
