// Package vocabulary selects a fixed-size token inventory from a corpus.
// Whole words seed the working set, then q-gram candidates compete for the
// remaining slots one length at a time, longest first, so short fragments
// only survive where no longer unit covers the same material.
package vocabulary

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/subtext/internal/corpus"
	"github.com/crimson-sun/subtext/internal/model"
	"github.com/crimson-sun/subtext/internal/tokenizer"
)

// AdmitFunc decides whether a q-gram (boundary markers included) may enter
// the working set during refinement.
type AdmitFunc func(gram string) bool

// Builder computes a vocabulary from an NDJSON corpus file.
type Builder struct {
	params       model.Params
	limit        int
	prefixSuffix bool
	workers      int
	admit        AdmitFunc
}

// Option adjusts a Builder.
type Option func(*Builder)

// WithLimit caps the number of corpus records read; zero reads everything.
func WithLimit(n int) Option {
	return func(b *Builder) { b.limit = n }
}

// WithPrefixSuffix restricts short q-grams to word-edge material using
// DefaultAdmit.
func WithPrefixSuffix(on bool) Option {
	return func(b *Builder) { b.prefixSuffix = on }
}

// WithWorkers sets the number of goroutines used during refinement.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithAdmitFunc installs a custom admissibility filter. It replaces the
// prefix/suffix rule entirely.
func WithAdmitFunc(fn AdmitFunc) Option {
	return func(b *Builder) { b.admit = fn }
}

// NewBuilder returns a Builder for the given tokenizer configuration.
func NewBuilder(p model.Params, opts ...Option) *Builder {
	b := &Builder{params: p, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the full selection pipeline against the corpus at path: base
// candidate counting, longest-first refinement, and a final corpus-wide
// recount of the surviving tokens.
func (b *Builder) Build(ctx context.Context, path string) (*model.Vocabulary, error) {
	base, err := BaseCount(ctx, path, b.limit, b.params)
	if err != nil {
		return nil, err
	}
	slog.Info("base candidates counted",
		"path", path, "tokens", base.Len(), "records", base.UpdateCalls())

	refined, err := b.refine(ctx, base)
	if err != nil {
		return nil, err
	}

	voc, err := b.recount(ctx, path, refined)
	if err != nil {
		return nil, err
	}
	slog.Info("vocabulary built",
		"identifier", voc.Identifier(), "tokens", voc.Counter.Len())
	return voc, nil
}

// BaseCount streams the corpus at path and counts every distinct candidate
// token per record: whole words plus all configured q-gram windows.
func BaseCount(ctx context.Context, path string, limit int, p model.Params) (*model.Counter, error) {
	cnt := model.NewCounter()
	err := corpus.EachRecord(path, limit, func(rec corpus.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		cnt.Update(tokenizer.Dedup(tokenizer.BaseTokenize(rec.Text, p)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cnt, nil
}

// refine grows the working set from the top words by admitting one q-gram
// length per round, longest first. Each round re-tokenizes every distinct
// word with a tokenizer over the round's candidates, credits emitted tokens
// with the word's corpus frequency, and keeps the top earners.
func (b *Builder) refine(ctx context.Context, base *model.Counter) (*model.Counter, error) {
	size := 1 << b.params.SizeExponent

	var words []string
	for _, tc := range base.MostCommon(0) {
		if !strings.HasPrefix(tc.Label, model.QGramPrefix) {
			words = append(words, tc.Label)
		}
	}
	current := words
	if len(current) > size {
		current = words[:size]
	}

	var cnt *model.Counter
	for _, length := range b.params.QGramLengths() {
		work := b.workingSet(base, current, length)
		tok, err := tokenizer.New(&model.Vocabulary{Params: b.params, Counter: work})
		if err != nil {
			return nil, fmt.Errorf("vocabulary: refine length %d: %w", length, err)
		}
		cnt, err = b.credit(ctx, tok, words, base)
		if err != nil {
			return nil, err
		}
		kept := cnt.MostCommon(size)
		current = make([]string, 0, len(kept))
		for _, tc := range kept {
			current = append(current, tc.Label)
		}
		slog.Debug("refinement round done",
			"length", length, "candidates", work.Len(), "kept", len(current))
	}
	if cnt == nil {
		// No q-gram lengths configured: the top words are the vocabulary.
		cnt = model.NewCounter()
		for _, w := range current {
			cnt.Set(w, base.Count(w))
		}
	}
	cnt.SetUpdateCalls(base.UpdateCalls())
	return cnt.Top(size), nil
}

// workingSet assembles one round's candidate counter: every admissible
// q-gram of exactly length runes plus the current working tokens, all at
// their base corpus frequencies.
func (b *Builder) workingSet(base *model.Counter, current []string, length int) *model.Counter {
	work := model.NewCounter()
	base.Each(func(label string, count int64) {
		gram, ok := strings.CutPrefix(label, model.QGramPrefix)
		if !ok || utf8.RuneCountInString(gram) != length {
			return
		}
		if !b.admissible(gram) {
			return
		}
		work.Set(label, count)
	})
	for _, tok := range current {
		if n := base.Count(tok); n > 0 {
			work.Set(tok, n)
		}
	}
	work.SetUpdateCalls(base.UpdateCalls())
	return work
}

func (b *Builder) admissible(gram string) bool {
	if b.admit != nil {
		return b.admit(gram)
	}
	if !b.prefixSuffix {
		return true
	}
	return DefaultAdmit(gram)
}

// DefaultAdmit keeps every q-gram of four or more runes and, below that,
// only grams whose second or final rune is the boundary marker. Single-rune
// grams always pass.
func DefaultAdmit(gram string) bool {
	r := []rune(gram)
	if len(r) >= 4 || len(r) < 2 {
		return true
	}
	return r[1] == model.Boundary || r[len(r)-1] == model.Boundary
}

// credit re-tokenizes every distinct word and credits each emitted token
// with the word's corpus frequency. Words are fanned out across workers;
// each worker counts into its own counter and the shards merge at the end.
func (b *Builder) credit(ctx context.Context, tok *tokenizer.Tokenizer, words []string, base *model.Counter) (*model.Counter, error) {
	workers := b.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(words) {
		workers = 1
	}
	empty := string(model.Boundary)

	parts := make([]*model.Counter, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		part := model.NewCounter()
		parts[w] = part
		lo := w * len(words) / workers
		hi := (w + 1) * len(words) / workers
		chunk := words[lo:hi]
		g.Go(func() error {
			for _, word := range chunk {
				if err := ctx.Err(); err != nil {
					return err
				}
				freq := base.Count(word)
				for _, t := range tokenizer.Dedup(tok.Tokenize(word)) {
					if t == empty {
						continue
					}
					part.Add(t, freq)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	cnt := model.NewCounter()
	for _, part := range parts {
		cnt.Absorb(part)
	}
	return cnt, nil
}

// recount rebuilds corpus-wide frequencies for the selected tokens: one
// pass over every record, counting each distinct token once per record.
func (b *Builder) recount(ctx context.Context, path string, refined *model.Counter) (*model.Vocabulary, error) {
	tok, err := tokenizer.New(&model.Vocabulary{Params: b.params, Counter: refined})
	if err != nil {
		return nil, fmt.Errorf("vocabulary: recount: %w", err)
	}
	final := model.NewCounter()
	err = corpus.EachRecord(path, b.limit, func(rec corpus.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		final.Update(tokenizer.Dedup(tok.Tokenize(rec.Text)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	size := 1 << b.params.SizeExponent
	return &model.Vocabulary{Params: b.params, Counter: final.Top(size)}, nil
}
