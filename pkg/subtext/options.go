package subtext

import "github.com/crimson-sun/subtext/internal/encoder"

type options struct {
	precision  Precision
	mergeIDF   bool
	forceToken bool
	intercept  bool
	folds      int
	seed       int64
}

func defaultOptions() options {
	return options{
		precision:  Float32,
		mergeIDF:   true,
		forceToken: true,
		folds:      5,
	}
}

// Option configures model loading and scoring.
type Option func(*options)

// WithPrecision declares the coefficient precision the model was persisted
// at. It must match the training side. Default Float32.
func WithPrecision(p Precision) Option {
	return func(o *options) { o.precision = p }
}

// WithMergeIDF toggles rescaling every embedding row by token rarity.
// Default on.
func WithMergeIDF(enabled bool) Option {
	return func(o *options) { o.mergeIDF = enabled }
}

// WithForceToken toggles patching each row's own-token column with the row
// maximum. Default on.
func WithForceToken(enabled bool) Option {
	return func(o *options) { o.forceToken = enabled }
}

// WithIntercept switches embedding to the affine bag-of-tokens map using
// the persisted intercepts. Incompatible with merged IDF.
func WithIntercept(enabled bool) Option {
	return func(o *options) { o.intercept = enabled }
}

// WithFolds sets the fold count for out-of-fold scoring. Default 5.
func WithFolds(n int) Option {
	return func(o *options) {
		if n >= 2 {
			o.folds = n
		}
	}
}

// WithSeed seeds the cross-validation fold shuffles.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

func (o options) encoder() []encoder.Option {
	return []encoder.Option{
		encoder.WithPrecision(o.precision),
		encoder.WithMergeIDF(o.mergeIDF),
		encoder.WithForceToken(o.forceToken),
		encoder.WithIntercept(o.intercept),
		encoder.WithFolds(o.folds),
		encoder.WithSeed(o.seed),
	}
}
