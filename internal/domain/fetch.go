package domain

import "fmt"

// FetchFailureKind is a high-level classification of transport errors.
type FetchFailureKind string

const (
	FetchUnknown FetchFailureKind = "unknown"
	FetchTimeout FetchFailureKind = "timeout"
	FetchDNS     FetchFailureKind = "dns"
	FetchConn    FetchFailureKind = "connection"
	FetchHTTP    FetchFailureKind = "http"
	FetchDecode  FetchFailureKind = "decode"
)

// FetchFailure is the single error value produced for any failed GET/HEAD.
// Message carries the original cause's message.
type FetchFailure struct {
	Kind    FetchFailureKind
	Method  HTTPMethod
	Status  int // 0 unless Kind is FetchHTTP
	Message string
}

func (f *FetchFailure) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Status != 0 {
		return fmt.Sprintf("%s %s (status %d): %s", f.Method, f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s %s: %s", f.Method, f.Kind, f.Message)
}

func (f *FetchFailure) Unwrap() error { return ErrFetch }

// HTTPMethod represents the HTTP methods the pipeline issues.
type HTTPMethod string

const (
	MethodGet  HTTPMethod = "GET"
	MethodHead HTTPMethod = "HEAD"
)
