package subtext

import (
	"context"
	"fmt"

	"github.com/crimson-sun/subtext/internal/model"
	"github.com/crimson-sun/subtext/internal/trainer"
	"github.com/crimson-sun/subtext/internal/vocabulary"
)

// Summary reports what a training run scanned and produced.
type Summary struct {
	Records  int // corpus records encoded
	Feasible int // tokens meeting the positive-count floor
	Trained  int // tokens fitted in this run
	Resumed  int // tokens restored from staged artifacts
	Skipped  int // tokens with a degenerate class split
}

type buildOptions struct {
	language     string
	sizeExponent int
	tokenList    []int
	prefixSuffix bool
	limit        int
	workers      int
}

func defaultBuildOptions() buildOptions {
	return buildOptions{language: "es", prefixSuffix: true}
}

// BuildOption configures vocabulary construction.
type BuildOption func(*buildOptions)

// WithLanguage sets the corpus language driving normalization and the
// default token kinds. Default "es".
func WithLanguage(lang string) BuildOption {
	return func(o *buildOptions) { o.language = lang }
}

// WithSizeExponent bounds the vocabulary at 2^k tokens. Default 13.
func WithSizeExponent(k int) BuildOption {
	return func(o *buildOptions) {
		if k > 0 {
			o.sizeExponent = k
		}
	}
}

// WithTokenList overrides the produced token kinds: -1 selects whole
// words, a positive n q-grams of exactly n runes.
func WithTokenList(kinds []int) BuildOption {
	return func(o *buildOptions) { o.tokenList = kinds }
}

// WithPrefixSuffix toggles the word-edge filter for short q-grams.
// Default on.
func WithPrefixSuffix(enabled bool) BuildOption {
	return func(o *buildOptions) { o.prefixSuffix = enabled }
}

// WithCorpusLimit caps how many corpus records are read.
func WithCorpusLimit(n int) BuildOption {
	return func(o *buildOptions) { o.limit = n }
}

// WithBuildWorkers sets the refinement worker count.
func WithBuildWorkers(n int) BuildOption {
	return func(o *buildOptions) { o.workers = n }
}

// BuildVocabulary selects a token inventory from the newline-delimited
// corpus at corpusPath and persists it to outPath.
func BuildVocabulary(ctx context.Context, corpusPath, outPath string, opts ...BuildOption) error {
	o := defaultBuildOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := model.DefaultParams(o.language)
	if o.sizeExponent > 0 {
		p.SizeExponent = o.sizeExponent
	}
	if len(o.tokenList) > 0 {
		p.TokenList = o.tokenList
	}
	bopts := []vocabulary.Option{vocabulary.WithPrefixSuffix(o.prefixSuffix)}
	if o.limit > 0 {
		bopts = append(bopts, vocabulary.WithLimit(o.limit))
	}
	if o.workers > 0 {
		bopts = append(bopts, vocabulary.WithWorkers(o.workers))
	}
	voc, err := vocabulary.NewBuilder(p, bopts...).Build(ctx, corpusPath)
	if err != nil {
		return fmt.Errorf("subtext: %w", err)
	}
	if err := vocabulary.Save(voc, outPath); err != nil {
		return fmt.Errorf("subtext: %w", err)
	}
	return nil
}

type trainOptions struct {
	minPos     int
	maxPos     int
	negCap     int
	workers    int
	precision  Precision
	stagingDir string
	seed       int64
	limit      int
	intercept  bool
}

func defaultTrainOptions() trainOptions {
	return trainOptions{precision: Float32}
}

// TrainOption configures classifier training.
type TrainOption func(*trainOptions)

// WithMinPositives sets the feasibility floor: tokens appearing in fewer
// corpus records are never attempted. Default 512.
func WithMinPositives(n int) TrainOption {
	return func(o *trainOptions) { o.minPos = n }
}

// WithMaxPositives caps the positive examples gathered per token.
// Default 8192.
func WithMaxPositives(n int) TrainOption {
	return func(o *trainOptions) { o.maxPos = n }
}

// WithNegativeCap bounds the negative reservoir relative to the running
// positive count. Default 1024.
func WithNegativeCap(n int) TrainOption {
	return func(o *trainOptions) { o.negCap = n }
}

// WithTrainWorkers sets how many tokens train in parallel.
func WithTrainWorkers(n int) TrainOption {
	return func(o *trainOptions) { o.workers = n }
}

// WithTrainPrecision sets the persisted coefficient width. Default
// Float32.
func WithTrainPrecision(p Precision) TrainOption {
	return func(o *trainOptions) { o.precision = p }
}

// WithStagingDir keeps per-token staging files in dir instead of next to
// the output, letting interrupted runs resume.
func WithStagingDir(dir string) TrainOption {
	return func(o *trainOptions) { o.stagingDir = dir }
}

// WithTrainSeed seeds negative sampling and fitting.
func WithTrainSeed(seed int64) TrainOption {
	return func(o *trainOptions) { o.seed = seed }
}

// WithTrainLimit caps how many corpus records are read.
func WithTrainLimit(n int) TrainOption {
	return func(o *trainOptions) { o.limit = n }
}

// WithTrainIntercept fits per-token intercepts alongside the
// coefficients.
func WithTrainIntercept(enabled bool) TrainOption {
	return func(o *trainOptions) { o.intercept = enabled }
}

// Train fits one classifier per feasible vocabulary token over the corpus
// and merges the artifacts into outPath.
func Train(ctx context.Context, corpusPath, vocabPath, outPath string, opts ...TrainOption) (Summary, error) {
	o := defaultTrainOptions()
	for _, opt := range opts {
		opt(&o)
	}
	voc, err := vocabulary.Load(vocabPath)
	if err != nil {
		return Summary{}, fmt.Errorf("subtext: %w", err)
	}
	topts := []trainer.Option{trainer.WithPrecision(o.precision)}
	if o.minPos > 0 {
		topts = append(topts, trainer.WithMinPos(o.minPos))
	}
	if o.maxPos > 0 {
		topts = append(topts, trainer.WithMaxPos(o.maxPos))
	}
	if o.negCap > 0 {
		topts = append(topts, trainer.WithNegativeCap(o.negCap))
	}
	if o.workers > 0 {
		topts = append(topts, trainer.WithWorkers(o.workers))
	}
	if o.stagingDir != "" {
		topts = append(topts, trainer.WithStagingDir(o.stagingDir))
	}
	if o.seed != 0 {
		topts = append(topts, trainer.WithSeed(o.seed))
	}
	if o.limit > 0 {
		topts = append(topts, trainer.WithLimit(o.limit))
	}
	if o.intercept {
		topts = append(topts, trainer.WithIntercept(true))
	}
	tr, err := trainer.New(voc, topts...)
	if err != nil {
		return Summary{}, fmt.Errorf("subtext: %w", err)
	}
	sum, err := tr.TrainAll(ctx, corpusPath, outPath)
	if err != nil {
		return Summary{}, fmt.Errorf("subtext: %w", err)
	}
	return Summary{
		Records:  sum.Records,
		Feasible: sum.Feasible,
		Trained:  sum.Trained,
		Resumed:  sum.Resumed,
		Skipped:  sum.Skipped,
	}, nil
}

// Convert re-encodes a persisted model's coefficients between precisions.
func Convert(inPath, outPath string, from, to Precision) error {
	if err := trainer.Convert(inPath, outPath, from, to); err != nil {
		return fmt.Errorf("subtext: %w", err)
	}
	return nil
}
