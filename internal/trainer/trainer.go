// Package trainer builds one binary linear classifier per feasible
// vocabulary token and merges the resulting artifacts into a single
// compressed model file, vocabulary record first.
package trainer

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/crimson-sun/subtext/internal/corpus"
	"github.com/crimson-sun/subtext/internal/linear"
	"github.com/crimson-sun/subtext/internal/model"
	"github.com/crimson-sun/subtext/internal/tokenizer"
)

// Fitter is the linear-classifier capability consumed per token. seed fixes
// the solver's coordinate order so runs are reproducible.
type Fitter interface {
	Fit(rows []model.SparseVector, dim int, pos []bool, seed int64) (coef []float64, intercept float64, err error)
}

// SVMFitter trains with the package linear dual coordinate descent solver.
type SVMFitter struct {
	Config linear.Config
}

// Fit implements Fitter.
func (f SVMFitter) Fit(rows []model.SparseVector, dim int, pos []bool, seed int64) ([]float64, float64, error) {
	cfg := f.Config
	cfg.Seed = seed
	return linear.Fit(rows, dim, pos, cfg)
}

// ProjectFunc turns one record's distinct sorted token ids into a feature
// row over dim columns.
type ProjectFunc func(ids []int32, dim int) model.SparseVector

// Indicator is the default projection: 1.0 per present token.
func Indicator(ids []int32, dim int) model.SparseVector {
	vals := make([]float32, len(ids))
	for i := range vals {
		vals[i] = 1
	}
	return model.SparseVector{Indices: ids, Values: vals}
}

// FeasibleToken is one vocabulary token worth training, with its position
// in the lexicographically sorted vocabulary.
type FeasibleToken struct {
	Index int
	Label string
}

// Trainer drives per-token classifier training over an encoded corpus.
type Trainer struct {
	voc         *model.Vocabulary
	tok         *tokenizer.Tokenizer
	minPos      int
	maxPos      int
	negativeCap int
	workers     int
	precision   model.Precision
	stagingDir  string
	seed        int64
	limit       int
	fitter      Fitter
	project     ProjectFunc
}

// Option adjusts a Trainer.
type Option func(*Trainer)

// WithMinPos sets the feasibility threshold: tokens with fewer corpus
// occurrences are never trained.
func WithMinPos(n int) Option {
	return func(t *Trainer) { t.minPos = n }
}

// WithMaxPos caps the positive examples gathered per token. The scan stops
// once the count exceeds the cap, so up to cap+1 may be collected before
// balancing.
func WithMaxPos(n int) Option {
	return func(t *Trainer) {
		if n > 0 {
			t.maxPos = n
		}
	}
}

// WithNegativeCap bounds how far the negative reservoir may grow beyond the
// running positive count.
func WithNegativeCap(n int) Option {
	return func(t *Trainer) {
		if n > 0 {
			t.negativeCap = n
		}
	}
}

// WithWorkers sets the per-token training fan-out.
func WithWorkers(n int) Option {
	return func(t *Trainer) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithPrecision selects the persisted coefficient width.
func WithPrecision(p model.Precision) Option {
	return func(t *Trainer) { t.precision = p }
}

// WithStagingDir places per-token staging artifacts; an empty value stages
// next to the final output.
func WithStagingDir(dir string) Option {
	return func(t *Trainer) { t.stagingDir = dir }
}

// WithSeed fixes reservoir sampling, shuffling, and solver order.
func WithSeed(seed int64) Option {
	return func(t *Trainer) { t.seed = seed }
}

// WithLimit caps the corpus records encoded; zero reads everything.
func WithLimit(n int) Option {
	return func(t *Trainer) { t.limit = n }
}

// WithFitter replaces the classifier capability.
func WithFitter(f Fitter) Option {
	return func(t *Trainer) { t.fitter = f }
}

// WithIntercept makes the default fitter estimate a bias term.
func WithIntercept(on bool) Option {
	return func(t *Trainer) {
		if f, ok := t.fitter.(SVMFitter); ok {
			f.Config.FitIntercept = on
			t.fitter = f
		}
	}
}

// WithProjection replaces the indicator feature projection.
func WithProjection(fn ProjectFunc) Option {
	return func(t *Trainer) { t.project = fn }
}

// New compiles voc and returns a Trainer with the standard thresholds:
// min_pos 512, max_pos 8192, negative cap 1024, float32 coefficients.
func New(voc *model.Vocabulary, opts ...Option) (*Trainer, error) {
	tok, err := tokenizer.New(voc)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	t := &Trainer{
		voc:         voc,
		tok:         tok,
		minPos:      512,
		maxPos:      1 << 13,
		negativeCap: 1024,
		workers:     runtime.GOMAXPROCS(0),
		precision:   model.Float32,
		fitter:      SVMFitter{Config: linear.DefaultConfig()},
		project:     Indicator,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Encode tokenizes every record of inPath into outPath, one JSON token
// array per line, and returns the token occurrence counts.
func (t *Trainer) Encode(ctx context.Context, inPath, outPath string) (*model.Counter, error) {
	w, err := corpus.Create(outPath)
	if err != nil {
		return nil, err
	}
	counts := model.NewCounter()
	err = corpus.EachRecord(inPath, t.limit, func(rec corpus.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tokens := t.tok.Tokenize(rec.Text)
		counts.Update(tokens)
		return w.Write(tokens)
	})
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return counts, nil
}

// FeasibleTokens returns the vocabulary tokens whose occurrence count
// reaches the feasibility threshold, ordered lexicographically, each with
// its position in the sorted full vocabulary.
func (t *Trainer) FeasibleTokens(counts *model.Counter) []FeasibleToken {
	labels := append([]string(nil), t.tok.Names()...)
	sort.Strings(labels)
	var out []FeasibleToken
	for i, label := range labels {
		if counts.Count(label) < int64(t.minPos) {
			continue
		}
		out = append(out, FeasibleToken{Index: i, Label: label})
	}
	return out
}

// loadEncoded reads an encoded corpus into memory as sorted distinct id
// sets, one per record. Tokens outside the vocabulary are dropped.
func (t *Trainer) loadEncoded(path string) ([][]int32, error) {
	var records [][]int32
	err := corpus.EachTokenList(path, t.limit, func(tokens []string) error {
		ids := t.tok.IDs(tokens)
		set := make([]int32, 0, len(ids))
		seen := make(map[int]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			set = append(set, int32(id))
		}
		sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
		records = append(records, set)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// encodedPath names the intermediate tokenized corpus for a given input.
func (t *Trainer) encodedPath(corpusPath, output string) string {
	base := strings.TrimSuffix(filepath.Base(corpusPath), ".gz")
	return filepath.Join(t.staging(output), "encode-"+base)
}

func (t *Trainer) stagingPath(output string, index int) string {
	return filepath.Join(t.staging(output), fmt.Sprintf("token-%05d.json", index))
}

func (t *Trainer) staging(output string) string {
	if t.stagingDir != "" {
		return t.stagingDir
	}
	return filepath.Dir(output)
}
