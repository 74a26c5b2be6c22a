package ports

import (
	"context"

	"github.com/aalvaropc/docmapr/internal/domain"
)

// Fetcher issues the outbound calls of the pipeline.
// Get returns the decoded JSON body; Head returns the response headers with
// lower-cased names. Every failure is a *domain.FetchFailure.
type Fetcher interface {
	Get(ctx context.Context, uri string) (any, error)
	Head(ctx context.Context, uri string) (map[string]string, error)
}

// FetcherFuncs adapts plain functions to Fetcher.
type FetcherFuncs struct {
	GetFunc  func(ctx context.Context, uri string) (any, error)
	HeadFunc func(ctx context.Context, uri string) (map[string]string, error)
}

var _ Fetcher = FetcherFuncs{}

func (f FetcherFuncs) Get(ctx context.Context, uri string) (any, error) {
	if f.GetFunc == nil {
		return nil, &domain.FetchFailure{Kind: domain.FetchUnknown, Method: domain.MethodGet, Message: "no GET function"}
	}
	return f.GetFunc(ctx, uri)
}

func (f FetcherFuncs) Head(ctx context.Context, uri string) (map[string]string, error) {
	if f.HeadFunc == nil {
		return nil, &domain.FetchFailure{Kind: domain.FetchUnknown, Method: domain.MethodHead, Message: "no HEAD function"}
	}
	return f.HeadFunc(ctx, uri)
}
