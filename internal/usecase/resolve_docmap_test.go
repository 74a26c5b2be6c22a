package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/infra/httpclient"
	"github.com/aalvaropc/docmapr/internal/ports"
)

const notificationPath = "/inbox/urn:uuid:bf3513ee-1fef-4f30-a61b-20721b505f11"

// upstream simulates the inbox, the evaluation host and the docmap host.
type upstream struct {
	link        string // Link header on HEAD /evaluation; "" omits it
	docmaps     string // body of GET /docmap.jsonld
	notFound    map[string]bool
	notifBodies map[string]string
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "docmaps.json"))
	require.NoError(t, err)
	return &upstream{
		link:        `<{{base}}/docmap.jsonld>; rel="describedby"; type="application/ld+json"`,
		docmaps:     string(b),
		notFound:    map[string]bool{},
		notifBodies: map[string]string{},
	}
}

func (u *upstream) start(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u.notFound[r.URL.Path] {
			http.NotFound(w, r)
			return
		}
		switch {
		case r.URL.Path == "/evaluation":
			if r.Method != http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if u.link != "" {
				w.Header().Set("Link", expand(u.link, server.URL))
			}
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/docmap.jsonld":
			w.Header().Set("Content-Type", "application/ld+json")
			_, _ = io.WriteString(w, u.docmaps)
		default:
			body, ok := u.notifBodies[r.URL.Path]
			if !ok {
				body = `{"object":{"id":"{{base}}/evaluation","type":"sa:RelatedItem"}}`
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, expand(body, server.URL))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func expand(s, base string) string {
	return strings.ReplaceAll(s, "{{base}}", base)
}

// memRecorder keeps records in memory for assertions.
type memRecorder struct {
	mu      sync.Mutex
	records []record
}

type record struct {
	level   domain.DebugLevel
	item    string
	message string
	data    any
}

func (m *memRecorder) Record(level domain.DebugLevel, item, message string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record{level, item, message, data})
}

func (m *memRecorder) Flush(string, io.Writer) error { return nil }

func (m *memRecorder) levels() map[domain.DebugLevel]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[domain.DebugLevel]int{}
	for _, r := range m.records {
		out[r.level]++
	}
	return out
}

type countingObserver struct {
	mu     sync.Mutex
	stages []domain.Stage
	runs   []domain.Outcome
}

func (c *countingObserver) StageCompleted(stage domain.Stage, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = append(c.stages, stage)
}

func (c *countingObserver) RunFinished(o domain.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, o)
}

func requireOpError(t *testing.T, err error, kind domain.ErrorKind, stage domain.Stage) *domain.OpError {
	t.Helper()
	require.Error(t, err)
	var oe *domain.OpError
	require.True(t, errors.As(err, &oe), "expected *domain.OpError, got %T: %v", err, err)
	assert.Equal(t, kind, oe.Kind, "error: %v", err)
	assert.Equal(t, stage, oe.Stage, "error: %v", err)
	return oe
}

func TestResolve_HappyPath(t *testing.T) {
	up := newUpstream(t)
	server := up.start(t)

	obs := &countingObserver{}
	uc := NewResolveDocMap(httpclient.NewFetcher(), WithObserver(obs))

	dm, err := uc.Resolve(context.Background(), domain.Item{Key: "a", URI: server.URL + notificationPath})
	require.NoError(t, err)

	assert.Equal(t, "https://sciety.org/docmaps/v1/articles/10.1101/2022.11.08.515698.docmap.json", dm.ID)
	assert.Equal(t, "eLife", dm.Publisher.Name)
	assert.Equal(t, []domain.Stage{
		domain.StageNotificationFetched,
		domain.StageAnnouncementURIResolved,
		domain.StageSignpostingURIResolved,
		domain.StageDocMapFetched,
	}, obs.stages)
}

func TestResolve_MissingLinkHeaderIsValidationError(t *testing.T) {
	up := newUpstream(t)
	up.link = ""
	server := up.start(t)

	_, err := NewResolveDocMap(httpclient.NewFetcher()).Resolve(context.Background(), domain.Item{URI: server.URL + notificationPath})

	oe := requireOpError(t, err, domain.KindValidation, domain.StageNotificationFetched)
	assert.Equal(t, server.URL+"/evaluation", oe.URI)
	assert.False(t, errors.Is(err, domain.ErrNoDescribedByLink))

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasField("link"), "fields: %+v", ve.Fields)
}

func TestResolve_NoQualifyingLink(t *testing.T) {
	up := newUpstream(t)
	up.link = `<{{base}}/page.html>; rel="describedby"; type="text/html", <{{base}}/x>; rel="cite-as"`
	server := up.start(t)

	_, err := NewResolveDocMap(httpclient.NewFetcher()).Resolve(context.Background(), domain.Item{URI: server.URL + notificationPath})

	requireOpError(t, err, domain.KindNoDescribedByLink, domain.StageAnnouncementURIResolved)
	assert.ErrorIs(t, err, domain.ErrNoDescribedByLink)
}

func TestResolve_EmptyCollection(t *testing.T) {
	up := newUpstream(t)
	up.docmaps = `[]`
	server := up.start(t)

	_, err := NewResolveDocMap(httpclient.NewFetcher()).Resolve(context.Background(), domain.Item{URI: server.URL + notificationPath})

	oe := requireOpError(t, err, domain.KindEmptyCollection, domain.StageSignpostingURIResolved)
	assert.Equal(t, server.URL+"/docmap.jsonld", oe.URI)
	assert.ErrorIs(t, err, domain.ErrEmptyCollection)
}

func TestResolve_InvalidDocMap(t *testing.T) {
	up := newUpstream(t)
	up.docmaps = `[{"type":"docmap"}]`
	server := up.start(t)

	_, err := NewResolveDocMap(httpclient.NewFetcher()).Resolve(context.Background(), domain.Item{URI: server.URL + notificationPath})

	requireOpError(t, err, domain.KindValidation, domain.StageSignpostingURIResolved)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolve_InvalidNotification(t *testing.T) {
	up := newUpstream(t)
	up.notifBodies[notificationPath] = `{"object":{"type":"sa:RelatedItem"}}`
	server := up.start(t)

	_, err := NewResolveDocMap(httpclient.NewFetcher()).Resolve(context.Background(), domain.Item{URI: server.URL + notificationPath})

	requireOpError(t, err, domain.KindValidation, domain.StageStart)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasField("object.id"))
}

func TestResolve_NotificationNotFound(t *testing.T) {
	up := newUpstream(t)
	up.notFound[notificationPath] = true
	server := up.start(t)

	_, err := NewResolveDocMap(httpclient.NewFetcher()).Resolve(context.Background(), domain.Item{URI: server.URL + notificationPath})

	requireOpError(t, err, domain.KindFetch, domain.StageStart)
	var ff *domain.FetchFailure
	require.True(t, errors.As(err, &ff))
	assert.Equal(t, http.StatusNotFound, ff.Status)
}

func TestResolve_TakesFirstDocMap(t *testing.T) {
	docmap := func(id string) map[string]any {
		return map[string]any{
			"@context": "https://w3id.org/docmaps/context.jsonld", "type": "docmap", "id": id,
			"publisher": map[string]any{"name": "p", "url": "u"},
			"created":   "c", "updated": "u", "first-step": "_:b0", "steps": map[string]any{},
		}
	}

	for _, n := range []int{1, 2, 5} {
		coll := make([]any, 0, n)
		for i := 0; i < n; i++ {
			coll = append(coll, docmap(string(rune('a'+i))))
		}

		fetcher := ports.FetcherFuncs{
			GetFunc: func(_ context.Context, uri string) (any, error) {
				if uri == "docmaps" {
					return coll, nil
				}
				return map[string]any{"object": map[string]any{"id": "evaluation"}}, nil
			},
			HeadFunc: func(_ context.Context, _ string) (map[string]string, error) {
				return map[string]string{"link": `<docmaps>; rel="describedby"; type="application/ld+json"`}, nil
			},
		}

		dm, err := NewResolveDocMap(fetcher).Resolve(context.Background(), domain.Item{URI: "notification"})
		require.NoError(t, err)
		assert.Equal(t, "a", dm.ID, "collection of %d", n)
	}
}

func TestResolve_StopsAtFirstFailure(t *testing.T) {
	var heads, gets int
	fetcher := ports.FetcherFuncs{
		GetFunc: func(_ context.Context, _ string) (any, error) {
			gets++
			return nil, &domain.FetchFailure{Kind: domain.FetchDNS, Method: domain.MethodGet, Message: "no such host"}
		},
		HeadFunc: func(_ context.Context, _ string) (map[string]string, error) {
			heads++
			return nil, nil
		},
	}

	_, err := NewResolveDocMap(fetcher).Resolve(context.Background(), domain.Item{URI: "https://nowhere.invalid/n"})
	requireOpError(t, err, domain.KindFetch, domain.StageStart)
	assert.Equal(t, 1, gets)
	assert.Equal(t, 0, heads)
}

func TestResolve_ForeignFetcherErrorsAreFetchErrors(t *testing.T) {
	fetcher := ports.FetcherFuncs{
		GetFunc: func(_ context.Context, _ string) (any, error) { return nil, errors.New("boom") },
	}
	_, err := NewResolveDocMap(fetcher).Resolve(context.Background(), domain.Item{URI: "x"})
	requireOpError(t, err, domain.KindFetch, domain.StageStart)
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestResolve_DebugLevelsGateRecords(t *testing.T) {
	up := newUpstream(t)
	server := up.start(t)

	cases := []struct {
		levels domain.DebugLevels
		want   map[domain.DebugLevel]int
	}{
		{nil, map[domain.DebugLevel]int{}},
		{domain.DebugLevels{domain.DebugURLs}, map[domain.DebugLevel]int{domain.DebugURLs: 3}},
		{domain.DefaultBatchDebug, map[domain.DebugLevel]int{domain.DebugURLs: 3, domain.DebugSteps: 1}},
		{domain.DebugLevels{domain.DebugDocMap}, map[domain.DebugLevel]int{domain.DebugDocMap: 1}},
	}

	for _, c := range cases {
		rec := &memRecorder{}
		uc := NewResolveDocMap(httpclient.NewFetcher(), WithRecorder(rec))
		_, err := uc.Resolve(context.Background(), domain.Item{Key: "k", URI: server.URL + notificationPath, Debug: c.levels})
		require.NoError(t, err)
		assert.Equal(t, c.want, rec.levels(), "levels %v", c.levels)
	}
}

func TestResolve_DebugStepSummary(t *testing.T) {
	up := newUpstream(t)
	server := up.start(t)

	rec := &memRecorder{}
	uc := NewResolveDocMap(httpclient.NewFetcher(), WithRecorder(rec))
	_, err := uc.Resolve(context.Background(), domain.Item{Key: "k", URI: server.URL + notificationPath, Debug: domain.DebugLevels{domain.DebugURLs, domain.DebugSteps}})
	require.NoError(t, err)

	require.Len(t, rec.records, 4)
	assert.Equal(t, "Retrieve Docmap url from notification: "+server.URL+notificationPath, rec.records[0].message)
	assert.Equal(t, "Step 1: retrieved evaluation url: "+server.URL+"/evaluation", rec.records[1].message)
	assert.Equal(t, "Step 2: retrieved Docmap url: "+server.URL+"/docmap.jsonld", rec.records[2].message)

	summary, ok := rec.records[3].data.([]domain.StepSummary)
	require.True(t, ok)
	require.Len(t, summary, 2)
	assert.Equal(t, "_:b0", summary[0].Step)
	assert.Equal(t, "_:b1", summary[0].NextStep)
	assert.Equal(t, "k", rec.records[3].item)
}

func TestExecute_Select(t *testing.T) {
	up := newUpstream(t)
	server := up.start(t)
	obs := &countingObserver{}
	uc := NewResolveDocMap(httpclient.NewFetcher(), WithObserver(obs))

	out := uc.Execute(context.Background(), domain.Item{Key: "a", URI: server.URL + notificationPath, Select: "$.publisher.name"})
	require.NoError(t, out.Err)
	assert.True(t, out.OK())
	assert.Equal(t, "eLife", out.Selected)
	assert.Equal(t, domain.StageDocMapFetched, out.Stage)

	out = uc.Execute(context.Background(), domain.Item{Key: "b", URI: server.URL + notificationPath, Select: "$.nothing.here"})
	require.Error(t, out.Err)
	assert.False(t, out.OK())
	assert.NotNil(t, out.DocMap)
	assert.Equal(t, domain.StageFailed, out.Stage)
	assert.True(t, domain.IsKind(out.Err, domain.KindSelect))

	require.Len(t, obs.runs, 2)
}

func TestExecute_RecordsDuration(t *testing.T) {
	tick := int64(0)
	clock := func() time.Time {
		tick++
		return time.Unix(tick, 0)
	}
	fetcher := ports.FetcherFuncs{
		GetFunc: func(_ context.Context, _ string) (any, error) { return json.RawMessage(`{}`), nil },
	}

	// start, stage begin, end: the notification fails validation so no stage completes.
	out := NewResolveDocMap(fetcher, WithClock(clock)).Execute(context.Background(), domain.Item{URI: "x"})
	require.Error(t, out.Err)
	assert.Equal(t, 2*time.Second, out.Duration)
}
