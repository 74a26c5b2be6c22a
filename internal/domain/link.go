package domain

import "strings"

const (
	RelDescribedBy  = "describedby"
	MediaTypeJSONLD = "application/ld+json"
)

// LinkEntry is one entry of an HTTP Link header (RFC 8288).
// Params keeps every parameter, including rel/type/profile.
type LinkEntry struct {
	URI     string
	Rel     string
	Type    string
	Profile string
	Params  map[string]string
}

// IsDescribedByJSONLD reports whether the entry points at a JSON-LD description.
// Relation types and media types compare case-insensitively.
func (l LinkEntry) IsDescribedByJSONLD() bool {
	return strings.EqualFold(l.Rel, RelDescribedBy) && strings.EqualFold(l.Type, MediaTypeJSONLD)
}
