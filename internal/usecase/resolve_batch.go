package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/aalvaropc/docmapr/internal/domain"
)

// ItemResolver runs the pipeline for a single item.
type ItemResolver interface {
	Execute(ctx context.Context, item domain.Item) domain.Outcome
}

var _ ItemResolver = (*ResolveDocMap)(nil)

// ResolveBatch runs independent pipelines concurrently and waits for all of them.
// A failing item never cancels the others.
type ResolveBatch struct {
	resolver    ItemResolver
	concurrency int
	newID       func() string
	now         func() time.Time
}

type BatchOption func(*ResolveBatch)

// WithConcurrency limits the number of items in flight. n <= 0 means unlimited.
func WithConcurrency(n int) BatchOption {
	return func(uc *ResolveBatch) { uc.concurrency = n }
}

// WithRunID is useful for tests.
func WithRunID(newID func() string) BatchOption {
	return func(uc *ResolveBatch) {
		if newID != nil {
			uc.newID = newID
		}
	}
}

func NewResolveBatch(r ItemResolver, opts ...BatchOption) *ResolveBatch {
	uc := &ResolveBatch{
		resolver: r,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute returns one outcome per item, in input order. Errors are wrapped
// with the item key.
func (uc *ResolveBatch) Execute(ctx context.Context, items []domain.Item) domain.BatchResult {
	res := domain.BatchResult{
		RunID:     uc.newID(),
		StartedAt: uc.now(),
		Outcomes:  make([]domain.Outcome, len(items)),
	}

	var g errgroup.Group
	if uc.concurrency > 0 {
		g.SetLimit(uc.concurrency)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			out := uc.resolver.Execute(ctx, item)
			if out.Err != nil {
				out.Err = errors.Wrapf(out.Err, "item %s", item.Key)
			}
			res.Outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	res.EndedAt = uc.now()
	return res
}
