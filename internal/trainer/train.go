package trainer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/subtext/internal/corpus"
	"github.com/crimson-sun/subtext/internal/model"
)

// Summary reports what a TrainAll run did.
type Summary struct {
	Records  int
	Feasible int
	Trained  int
	Resumed  int
	Skipped  int
}

// TrainOne scans the shared encoded corpus for one label and fits its
// binary classifier. A nil artifact with nil error means the token has no
// viable dataset and was skipped.
func (t *Trainer) TrainOne(label string, records [][]int32) (*model.TokenArtifact, error) {
	id, ok := t.tok.TokenID(label)
	if !ok {
		return nil, fmt.Errorf("trainer: token %q is not in the vocabulary", label)
	}
	seed := t.seed + int64(id)
	rng := rand.New(rand.NewSource(seed))

	// Positives are records containing the label, minus the label itself.
	// Negatives fill a reservoir allowed to run negativeCap ahead of the
	// positive count; at capacity a uniform-random slot is replaced so the
	// pool stays representative of the stream.
	var pos, neg [][]int32
	for _, rec := range records {
		if containsID(rec, int32(id)) {
			pos = append(pos, withoutID(rec, int32(id)))
		} else if len(neg)-len(pos) < t.negativeCap {
			neg = append(neg, rec)
		} else {
			neg[rng.Intn(len(neg))] = rec
		}
		if len(pos) > t.maxPos {
			break
		}
	}
	if len(pos) == 0 || len(neg) == 0 {
		return nil, nil
	}
	rng.Shuffle(len(neg), func(i, j int) { neg[i], neg[j] = neg[j], neg[i] })
	n := len(pos)
	if len(neg) < n {
		n = len(neg)
	}
	pos, neg = pos[:n], neg[:n]

	dim := t.tok.Dim()
	rows := make([]model.SparseVector, 0, 2*n)
	y := make([]bool, 0, 2*n)
	for _, rec := range pos {
		rows = append(rows, t.project(rec, dim))
		y = append(y, true)
	}
	for _, rec := range neg {
		rows = append(rows, t.project(rec, dim))
		y = append(y, false)
	}

	coef, intercept, err := t.fitter.Fit(rows, dim, y, seed)
	if err != nil {
		return nil, fmt.Errorf("trainer: fit %s: %w", label, err)
	}
	a := &model.TokenArtifact{N: len(rows), Intercept: intercept, Label: label}
	a.SetCoefficients(coef, t.precision)
	return a, nil
}

// TrainAll encodes the corpus at corpusPath, trains every feasible token,
// and merges the artifacts into output. Intact staging artifacts from an
// interrupted run are reused rather than retrained.
func (t *Trainer) TrainAll(ctx context.Context, corpusPath, output string) (*Summary, error) {
	if err := os.MkdirAll(t.staging(output), 0o755); err != nil {
		return nil, fmt.Errorf("trainer: staging: %w", err)
	}
	encPath := t.encodedPath(corpusPath, output)
	counts, err := t.Encode(ctx, corpusPath, encPath)
	if err != nil {
		return nil, err
	}
	feasible := t.FeasibleTokens(counts)
	slog.Info("corpus encoded",
		"path", encPath, "records", counts.UpdateCalls(), "feasible", len(feasible))

	records, err := t.loadEncoded(encPath)
	if err != nil {
		return nil, err
	}

	const (
		stSkipped int8 = iota
		stTrained
		stResumed
	)
	status := make([]int8, len(feasible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i, ft := range feasible {
		i, ft := i, ft
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := t.stagingPath(output, ft.Index)
			if t.resumable(path) {
				status[i] = stResumed
				return nil
			}
			a, err := t.TrainOne(ft.Label, records)
			if err != nil {
				return err
			}
			if a == nil {
				slog.Debug("token skipped", "label", ft.Label)
				return nil
			}
			data, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("trainer: marshal %s: %w", ft.Label, err)
			}
			if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("trainer: stage %s: %w", ft.Label, err)
			}
			status[i] = stTrained
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := &Summary{Records: len(records), Feasible: len(feasible)}
	for _, s := range status {
		switch s {
		case stTrained:
			sum.Trained++
		case stResumed:
			sum.Resumed++
		default:
			sum.Skipped++
		}
	}

	if err := t.merge(output, feasible); err != nil {
		return nil, err
	}
	for _, ft := range feasible {
		os.Remove(t.stagingPath(output, ft.Index))
	}
	os.Remove(encPath)
	slog.Info("model written",
		"path", output, "trained", sum.Trained+sum.Resumed, "skipped", sum.Skipped)
	return sum, nil
}

// resumable reports whether a staging artifact from an earlier run is
// intact for the current precision and vocabulary.
func (t *Trainer) resumable(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var a model.TokenArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return false
	}
	_, err = a.Coefficients(t.precision, t.tok.Dim())
	return err == nil
}

// merge writes the final model: the vocabulary record followed by every
// staged artifact in token order.
func (t *Trainer) merge(output string, feasible []FeasibleToken) error {
	w, err := corpus.Create(output)
	if err != nil {
		return err
	}
	if err := w.Write(t.voc); err != nil {
		w.Close()
		return err
	}
	for _, ft := range feasible {
		data, err := os.ReadFile(t.stagingPath(output, ft.Index))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			w.Close()
			return fmt.Errorf("trainer: merge: %w", err)
		}
		var a model.TokenArtifact
		if err := json.Unmarshal(data, &a); err != nil {
			w.Close()
			return fmt.Errorf("trainer: merge %s: %w", ft.Label, err)
		}
		if err := w.Write(&a); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func containsID(set []int32, id int32) bool {
	i := sort.Search(len(set), func(k int) bool { return set[k] >= id })
	return i < len(set) && set[i] == id
}

// withoutID copies set minus id.
func withoutID(set []int32, id int32) []int32 {
	out := make([]int32, 0, len(set)-1)
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
