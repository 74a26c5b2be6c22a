// Package linkheader parses HTTP Link headers (RFC 8288) as served by
// signposting-enabled hosts, which are not always well formed.
package linkheader

import (
	"regexp"
	"strings"

	"github.com/aalvaropc/docmapr/internal/domain"
)

var (
	reAfterTarget    = regexp.MustCompile(`>\s*;\s*`)
	reBeforeParam    = regexp.MustCompile(`\s+(type|profile|title|rev)=`)
	reDoubledSemi    = regexp.MustCompile(`;\s*;\s*`)
	reBetweenEntries = regexp.MustCompile(`\s*,\s*<`)
	reEntry          = regexp.MustCompile(`^<([^>]*)>(.*)$`)
)

// Normalize rewrites irregular spacing so that parameters are always
// separated by "; " and entries by ", ". Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := raw
	for {
		next := normalizeOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = reAfterTarget.ReplaceAllString(s, ">; ")
	s = reBetweenEntries.ReplaceAllString(s, ", <")
	s = insertParamSeparators(s)
	s = reDoubledSemi.ReplaceAllString(s, "; ")
	return strings.TrimSpace(s)
}

// insertParamSeparators puts "; " in front of a known parameter name that
// follows whitespace not already preceded by ';' or ','.
func insertParamSeparators(s string) string {
	locs := reBeforeParam.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, nameStart := loc[0], loc[2]
		if start > 0 && (s[start-1] == ';' || s[start-1] == ',') {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString("; ")
		last = nameStart
	}
	b.WriteString(s[last:])
	return b.String()
}

// Parse normalizes raw and returns its entries in header order. Entries that
// cannot be parsed, or carry no rel, are dropped. An entry whose rel lists
// several relation types yields one LinkEntry per type.
func Parse(raw string) []domain.LinkEntry {
	var out []domain.LinkEntry
	for _, part := range splitOutside(Normalize(raw), ',') {
		out = append(out, parseEntry(part)...)
	}
	return out
}

func parseEntry(part string) []domain.LinkEntry {
	m := reEntry.FindStringSubmatch(strings.TrimSpace(part))
	if m == nil {
		return nil
	}
	uri := strings.TrimSpace(m[1])
	if uri == "" {
		return nil
	}

	params := map[string]string{}
	for _, p := range splitOutside(m[2], ';') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key, val, _ := strings.Cut(p, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil
		}
		if _, dup := params[key]; dup {
			// RFC 8288: occurrences after the first are ignored.
			continue
		}
		params[key] = unquote(strings.TrimSpace(val))
	}

	rels := strings.Fields(params["rel"])
	if len(rels) == 0 {
		return nil
	}

	out := make([]domain.LinkEntry, 0, len(rels))
	for _, rel := range rels {
		out = append(out, domain.LinkEntry{
			URI:     uri,
			Rel:     strings.ToLower(rel),
			Type:    params["type"],
			Profile: params["profile"],
			Params:  params,
		})
	}
	return out
}

// SelectDescribedBy returns the entry pointing at the JSON-LD description.
// When several entries qualify the last one wins.
func SelectDescribedBy(entries []domain.LinkEntry) (domain.LinkEntry, error) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsDescribedByJSONLD() {
			return entries[i], nil
		}
	}
	return domain.LinkEntry{}, domain.ErrNoDescribedByLink
}

// splitOutside splits s on sep, ignoring separators inside <...> or "...".
func splitOutside(s string, sep byte) []string {
	var parts []string
	inAngle, inQuote, escaped := false, false, false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inQuote && c == '\\':
			escaped = true
		case c == '"' && !inAngle:
			inQuote = !inQuote
		case c == '<' && !inQuote:
			inAngle = true
		case c == '>' && !inQuote:
			inAngle = false
		case c == sep && !inAngle && !inQuote:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
		return strings.ReplaceAll(v, `\"`, `"`)
	}
	return v
}
