package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/usecase/extract"
)

// MapConfig validates a decoded batch file and maps it onto domain.Config.
// Missing HTTP settings fall back to domain.DefaultConfig.
func MapConfig(path string, yc YAMLConfig) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if s := strings.TrimSpace(yc.HTTP.Timeout); s != "" {
		d, err := parseDuration(s)
		if err != nil {
			return domain.Config{}, invalidField(path, "http.timeout", err.Error())
		}
		cfg.HTTP.Timeout = d
	}
	if yc.HTTP.MaxBodyBytes < 0 {
		return domain.Config{}, invalidField(path, "http.max_body_bytes", "must not be negative")
	}
	if yc.HTTP.MaxBodyBytes > 0 {
		cfg.HTTP.MaxBodyBytes = yc.HTTP.MaxBodyBytes
	}
	if ua := strings.TrimSpace(yc.HTTP.UserAgent); ua != "" {
		cfg.HTTP.UserAgent = ua
	}
	if yc.HTTP.RequestsPerSecond < 0 {
		return domain.Config{}, invalidField(path, "http.requests_per_second", "must not be negative")
	}
	cfg.HTTP.RequestsPerSecond = yc.HTTP.RequestsPerSecond

	if yc.Concurrency < 0 {
		return domain.Config{}, invalidField(path, "concurrency", "must not be negative")
	}
	cfg.Concurrency = yc.Concurrency

	if len(yc.Items) == 0 {
		return domain.Config{}, invalidField(path, "items", "at least one item is required")
	}

	seen := make(map[string]int, len(yc.Items))
	cfg.Items = make([]domain.Item, 0, len(yc.Items))

	for i, it := range yc.Items {
		fieldPrefix := fmt.Sprintf("items[%d]", i)

		raw := strings.TrimSpace(it.URL)
		if raw == "" {
			return domain.Config{}, invalidField(path, fieldPrefix+".url", "url is required")
		}
		raw, err := expandVars(raw, yc.Vars)
		if err != nil {
			return domain.Config{}, invalidField(path, fieldPrefix+".url", err.Error())
		}
		if err := checkURL(raw); err != nil {
			return domain.Config{}, invalidField(path, fieldPrefix+".url", err.Error())
		}

		key := strings.TrimSpace(it.Key)
		if key == "" {
			key = fmt.Sprintf("item-%d", i+1)
		}
		if prev, dup := seen[key]; dup {
			return domain.Config{}, invalidField(path, fieldPrefix+".key",
				fmt.Sprintf("duplicate key %q (also used by items[%d])", key, prev))
		}
		seen[key] = i

		levels, err := mapDebug(it.Debug)
		if err != nil {
			return domain.Config{}, invalidField(path, fieldPrefix+".debug", err.Error())
		}

		sel := strings.TrimSpace(it.Select)
		if sel != "" {
			if err := extract.Compile(sel); err != nil {
				return domain.Config{}, invalidField(path, fieldPrefix+".select", err.Error())
			}
		}

		cfg.Items = append(cfg.Items, domain.Item{
			Key:    key,
			URI:    raw,
			Debug:  levels,
			Select: sel,
		})
	}

	return cfg, nil
}

// mapDebug returns DefaultBatchDebug when no levels are given.
func mapDebug(in []int) (domain.DebugLevels, error) {
	if in == nil {
		return append(domain.DebugLevels(nil), domain.DefaultBatchDebug...), nil
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

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("%s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
