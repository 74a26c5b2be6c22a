package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/infra/diaglog"
	"github.com/aalvaropc/docmapr/internal/infra/httpclient"
	"github.com/aalvaropc/docmapr/internal/infra/metrics"
	"github.com/aalvaropc/docmapr/internal/usecase"
)

// pipeline wires the adapters used by resolve and batch.
type pipeline struct {
	recorder *diaglog.Recorder
	metrics  *metrics.Metrics
	resolver *usecase.ResolveDocMap
}

func newPipeline(hc domain.HTTPConfig, log *slog.Logger) *pipeline {
	client := httpclient.New(httpclient.ConfigFrom(hc))
	fetcher := httpclient.NewFetcher(
		httpclient.WithClient(client),
		httpclient.WithMaxBodyBytes(hc.MaxBodyBytes),
		httpclient.WithUserAgent(hc.UserAgent),
		httpclient.WithRateLimit(hc.RequestsPerSecond, 1),
		httpclient.WithLogger(log),
	)

	rec := diaglog.New(diaglog.WithLogger(log))
	m := metrics.New()

	return &pipeline{
		recorder: rec,
		metrics:  m,
		resolver: usecase.NewResolveDocMap(fetcher,
			usecase.WithRecorder(rec),
			usecase.WithObserver(m),
			usecase.WithLogger(log),
		),
	}
}

// flush writes diagnostics item by item, in input order, so concurrent
// items never interleave.
func (p *pipeline) flush(w io.Writer, items []domain.Item) error {
	for _, it := range items {
		if err := p.recorder.Flush(it.Key, w); err != nil {
			return err
		}
	}
	return nil
}

func parseLevels(in []int, changed bool, def domain.DebugLevels) (domain.DebugLevels, error) {
	if !changed {
		return append(domain.DebugLevels(nil), def...), nil
	}
	out := make(domain.DebugLevels, 0, len(in))
	for _, n := range in {
		l := domain.DebugLevel(n)
		if !l.Valid() {
			return nil, fmt.Errorf("unsupported debug level %d (expected 0, 1 or 2)", n)
		}
		if !out.Has(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func checkBatchFile(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", fmt.Errorf("--file is required")
	}
	if !hasYAMLExt(p) {
		return "", fmt.Errorf("batch file %q must be .yaml or .yml", p)
	}
	if !fileExists(p) {
		return "", fmt.Errorf("batch file %q: %w", p, domain.ErrNotFound)
	}
	return filepath.Clean(p), nil
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
