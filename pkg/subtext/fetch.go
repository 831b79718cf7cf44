package subtext

import (
	"context"
	"fmt"

	"github.com/crimson-sun/subtext/internal/fetch"
	"github.com/crimson-sun/subtext/internal/model"
)

// FetchOption configures artifact fetching.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	baseURL  string
	cacheDir string
}

// WithFetchURL overrides the release URL artifacts are fetched from.
func WithFetchURL(u string) FetchOption {
	return func(o *fetchOptions) { o.baseURL = u }
}

// WithFetchDir overrides the local cache directory.
func WithFetchDir(dir string) FetchOption {
	return func(o *fetchOptions) { o.cacheDir = dir }
}

// Fetch downloads a published artifact by name into the local cache and
// returns its path. A cached artifact is returned without a network call.
func Fetch(ctx context.Context, name string, opts ...FetchOption) (string, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}
	c := fetch.New(fetch.WithBaseURL(o.baseURL), fetch.WithCacheDir(o.cacheDir))
	path, err := c.Fetch(ctx, name)
	if err != nil {
		return "", fmt.Errorf("subtext: %w", err)
	}
	return path, nil
}

// Pretrained fetches the published embedding model for lang at the default
// vocabulary budget and opens it. Model options apply as in Open. For a
// custom artifact host or budget, compose Fetch with Open instead.
func Pretrained(ctx context.Context, lang string, opts ...Option) (*Model, error) {
	p := model.DefaultParams(lang)
	name := model.Identifier(p.Lang, p.SizeExponent) + "_model.json.gz"
	path, err := Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return Open(path, opts...)
}
