// Package diaglog keeps per-item diagnostic records until they are flushed.
package diaglog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/ports"
)

// Entry is one recorded diagnostic line.
type Entry struct {
	Level   domain.DebugLevel
	Message string
	Data    any
}

// Recorder is an append-only, in-process log keyed by item.
type Recorder struct {
	mu      sync.Mutex
	entries map[string][]Entry
	logger  *slog.Logger
}

var _ ports.Recorder = (*Recorder)(nil)

type Option func(*Recorder)

// WithLogger mirrors every record to l at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(opts ...Option) *Recorder {
	r := &Recorder{
		entries: map[string][]Entry{},
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) Record(level domain.DebugLevel, item, message string, data any) {
	r.mu.Lock()
	r.entries[item] = append(r.entries[item], Entry{Level: level, Message: message, Data: data})
	r.mu.Unlock()

	r.logger.Debug("diag.record", "item", item, "debug_level", int(level), "message", message)
}

// Entries returns a copy of the records held for item.
func (r *Recorder) Entries(item string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries[item]))
	copy(out, r.entries[item])
	return out
}

// Flush writes the records of item to w and forgets them. Records are
// dropped even when writing fails.
func (r *Recorder) Flush(item string, w io.Writer) error {
	r.mu.Lock()
	entries := r.entries[item]
	delete(r.entries, item)
	r.mu.Unlock()

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "[debug level %d] %s: %s\n", e.Level, item, e.Message); err != nil {
			return err
		}
		if e.Data == nil {
			continue
		}
		b, err := json.MarshalIndent(e.Data, "  ", "  ")
		if err != nil {
			return fmt.Errorf("diaglog: encode %q: %w", e.Message, err)
		}
		if _, err := fmt.Fprintf(w, "  %s\n", b); err != nil {
			return err
		}
	}
	return nil
}
