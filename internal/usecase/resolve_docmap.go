package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/ports"
	ucextract "github.com/aalvaropc/docmapr/internal/usecase/extract"
	"github.com/aalvaropc/docmapr/internal/usecase/linkheader"
	"github.com/aalvaropc/docmapr/internal/usecase/schema"
)

// ResolveDocMap runs the notification → evaluation → signposting → DocMap
// pipeline for a single item. Stages run strictly in order and the first
// failure ends the run.
type ResolveDocMap struct {
	fetcher  ports.Fetcher
	recorder ports.Recorder
	observer ports.Observer
	logger   *slog.Logger
	now      func() time.Time
}

type ResolveOption func(*ResolveDocMap)

func WithRecorder(r ports.Recorder) ResolveOption {
	return func(uc *ResolveDocMap) { uc.recorder = r }
}

func WithObserver(o ports.Observer) ResolveOption {
	return func(uc *ResolveDocMap) { uc.observer = o }
}

func WithLogger(l *slog.Logger) ResolveOption {
	return func(uc *ResolveDocMap) {
		if l != nil {
			uc.logger = l
		}
	}
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) ResolveOption {
	return func(uc *ResolveDocMap) {
		if now != nil {
			uc.now = now
		}
	}
}

func NewResolveDocMap(f ports.Fetcher, opts ...ResolveOption) *ResolveDocMap {
	uc := &ResolveDocMap{
		fetcher: f,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute resolves item and, when item.Select is set, evaluates it against the DocMap.
// It never returns an error directly: failures are reported on the Outcome.
func (uc *ResolveDocMap) Execute(ctx context.Context, item domain.Item) domain.Outcome {
	start := uc.now()
	out := domain.Outcome{Key: item.Key, URI: item.URI}

	dm, err := uc.Resolve(ctx, item)
	if err == nil {
		out.DocMap = &dm
		out.Stage = domain.StageDocMapFetched
		if item.Select != "" {
			out.Selected, err = ucextract.Select(dm, item.Select)
			if err != nil {
				err = &domain.OpError{
					Op:    "resolve.select",
					Kind:  domain.KindSelect,
					Stage: domain.StageDocMapFetched,
					URI:   dm.ID,
					Err:   err,
				}
			}
		}
	}
	if err != nil {
		out.Stage = domain.StageFailed
		out.Err = err
	}
	out.Duration = uc.now().Sub(start)

	uc.logger.Info("resolve.finished",
		"item", item.Key,
		"uri", item.URI,
		"ok", out.OK(),
		"failed_at", domain.StageOf(err),
		"kind", domain.KindOf(err),
		"duration_ms", out.Duration.Milliseconds(),
	)
	if err != nil {
		uc.logger.Debug("resolve.error", "item", item.Key, "error", err.Error())
	}
	if uc.observer != nil {
		uc.observer.RunFinished(out)
	}
	return out
}

// Resolve returns the first DocMap advertised for the notification at item.URI.
func (uc *ResolveDocMap) Resolve(ctx context.Context, item domain.Item) (domain.DocMap, error) {
	r := &run{uc: uc, item: item, stage: domain.StageStart}

	r.debugURL("Retrieve Docmap url from notification", item.URI)
	evaluationURI, err := r.fetchNotification(ctx, item.URI)
	if err != nil {
		return domain.DocMap{}, err
	}

	r.debugURL("Step 1: retrieved evaluation url", evaluationURI)
	link, err := r.fetchLinkHeader(ctx, evaluationURI)
	if err != nil {
		return domain.DocMap{}, err
	}

	docmapURI, err := r.selectSignposting(link, evaluationURI)
	if err != nil {
		return domain.DocMap{}, err
	}

	r.debugURL("Step 2: retrieved Docmap url", docmapURI)
	dm, err := r.fetchDocMap(ctx, docmapURI)
	if err != nil {
		return domain.DocMap{}, err
	}

	r.debug(domain.DebugSteps, "Docmap steps", dm.Summarize())
	r.debug(domain.DebugDocMap, "Docmap", dm)
	return dm, nil
}

// run holds the state of one pipeline invocation. It is never shared.
type run struct {
	uc      *ResolveDocMap
	item    domain.Item
	stage   domain.Stage
	started time.Time
}

func (r *run) begin() { r.started = r.uc.now() }

func (r *run) advance(to domain.Stage) {
	if r.uc.observer != nil {
		r.uc.observer.StageCompleted(to, r.uc.now().Sub(r.started))
	}
	r.stage = to
}

func (r *run) fail(op string, kind domain.ErrorKind, uri string, err error) error {
	return &domain.OpError{Op: op, Kind: kind, Stage: r.stage, URI: uri, Err: err}
}

// failFetch reports err as a fetch error; errors from other Fetcher
// implementations are classified as unknown.
func (r *run) failFetch(op, uri string, err error) error {
	var ff *domain.FetchFailure
	if !errors.As(err, &ff) {
		err = &domain.FetchFailure{Kind: domain.FetchUnknown, Message: err.Error()}
	}
	return r.fail(op, domain.KindFetch, uri, err)
}

func (r *run) fetchNotification(ctx context.Context, uri string) (string, error) {
	r.begin()
	payload, err := r.uc.fetcher.Get(ctx, uri)
	if err != nil {
		return "", r.failFetch("resolve.fetch_notification", uri, err)
	}

	n, err := schema.Decode(schema.Notification, payload)
	if err != nil {
		return "", r.fail("resolve.decode_notification", domain.KindValidation, uri, err)
	}

	r.advance(domain.StageNotificationFetched)
	return n.Object.ID, nil
}

func (r *run) fetchLinkHeader(ctx context.Context, uri string) (string, error) {
	r.begin()
	headers, err := r.uc.fetcher.Head(ctx, uri)
	if err != nil {
		return "", r.failFetch("resolve.fetch_evaluation", uri, err)
	}

	h, err := schema.Decode(schema.LinkHeaders, headers)
	if err != nil {
		return "", r.fail("resolve.decode_headers", domain.KindValidation, uri, err)
	}

	r.advance(domain.StageAnnouncementURIResolved)
	return h.Link, nil
}

func (r *run) selectSignposting(link, uri string) (string, error) {
	r.begin()
	entry, err := linkheader.SelectDescribedBy(linkheader.Parse(link))
	if err != nil {
		return "", r.fail("resolve.select_signposting", domain.KindNoDescribedByLink, uri, err)
	}

	r.advance(domain.StageSignpostingURIResolved)
	return entry.URI, nil
}

func (r *run) fetchDocMap(ctx context.Context, uri string) (domain.DocMap, error) {
	r.begin()
	payload, err := r.uc.fetcher.Get(ctx, uri)
	if err != nil {
		return domain.DocMap{}, r.failFetch("resolve.fetch_docmap", uri, err)
	}

	docmaps, err := schema.Decode(schema.DocMaps, payload)
	if err != nil {
		return domain.DocMap{}, r.fail("resolve.decode_docmap", domain.KindValidation, uri, err)
	}
	if len(docmaps) == 0 {
		return domain.DocMap{}, r.fail("resolve.first_docmap", domain.KindEmptyCollection, uri, domain.ErrEmptyCollection)
	}

	r.advance(domain.StageDocMapFetched)
	return docmaps[0], nil
}

func (r *run) debugURL(message, uri string) {
	r.debug(domain.DebugURLs, fmt.Sprintf("%s: %s", message, uri), nil)
}

func (r *run) debug(level domain.DebugLevel, message string, data any) {
	if r.uc.recorder == nil || !r.item.Debug.Has(level) {
		return
	}
	r.uc.recorder.Record(level, r.item.Key, message, data)
}
