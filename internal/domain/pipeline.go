package domain

import (
	"sort"
	"strings"
	"time"
)

// Stage is a state of the resolution pipeline. Stages only move forward.
type Stage string

const (
	StageStart                   Stage = "start"
	StageNotificationFetched     Stage = "notification_fetched"
	StageAnnouncementURIResolved Stage = "announcement_uri_resolved"
	StageSignpostingURIResolved  Stage = "signposting_uri_resolved"
	StageDocMapFetched           Stage = "docmap_fetched"
	StageFailed                  Stage = "failed"
)

// DebugLevel gates diagnostic output for a single item.
//
//	0: the URL fetched at each step
//	1: the step summary of the resolved DocMap
//	2: the full DocMap
type DebugLevel int

const (
	DebugURLs   DebugLevel = 0
	DebugSteps  DebugLevel = 1
	DebugDocMap DebugLevel = 2
)

// Valid reports whether the level is one of the known levels.
func (l DebugLevel) Valid() bool { return l >= DebugURLs && l <= DebugDocMap }

// DebugLevels is the set of levels enabled for an item.
type DebugLevels []DebugLevel

// Has reports whether the given level is enabled.
func (ls DebugLevels) Has(l DebugLevel) bool {
	for _, x := range ls {
		if x == l {
			return true
		}
	}
	return false
}

var (
	// DefaultSingleDebug is used for one-off resolves.
	DefaultSingleDebug = DebugLevels{DebugURLs}
	// DefaultBatchDebug is used for batch items without explicit levels.
	DefaultBatchDebug = DebugLevels{DebugURLs, DebugSteps}
)

// Item is one independent pipeline input of a batch.
type Item struct {
	Key    string
	URI    string
	Debug  DebugLevels
	Select string // Optional JSONPath evaluated against the resolved DocMap.
}

// KeyFromURI derives an item key from the last path segment of a notification URI.
func KeyFromURI(uri string) string {
	s := strings.TrimRight(strings.TrimSpace(uri), "/")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "notification"
	}
	return s
}

// Outcome is the result of running the pipeline for one Item.
// DocMap is set once DocMapFetched was reached; Err is set on any failure,
// including a failing Select on an otherwise resolved DocMap.
type Outcome struct {
	Key      string
	URI      string
	Stage    Stage // last stage reached; StageFailed when Err != nil
	DocMap   *DocMap
	Selected any
	Err      error
	Duration time.Duration
}

// OK reports whether the pipeline reached DocMapFetched.
func (o Outcome) OK() bool { return o.Err == nil && o.DocMap != nil }

// BatchResult collects every outcome of a batch in input order.
type BatchResult struct {
	RunID     string
	StartedAt time.Time
	EndedAt   time.Time
	Outcomes  []Outcome
}

// Failures counts outcomes that did not reach DocMapFetched.
func (b BatchResult) Failures() int {
	n := 0
	for _, o := range b.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
