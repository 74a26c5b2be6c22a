// Package extract evaluates JSONPath expressions against a resolved DocMap.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/aalvaropc/docmapr/internal/domain"
)

// Select evaluates expr against the JSON form of dm (so keys are the JSON-LD
// names, e.g. $.steps["_:b0"].inputs[*].doi).
//
// An empty result (nil, "", [] or {}) is an error: the caller asked for a
// value that the DocMap does not carry.
func Select(dm domain.DocMap, expr string) (any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty jsonpath expression", domain.ErrSelect)
	}

	doc, err := toDocument(dm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSelect, err)
	}

	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: jsonpath %q: %v", domain.ErrSelect, expr, err)
	}
	if isEmptyValue(val) {
		return nil, fmt.Errorf("%w: jsonpath %q: no value found", domain.ErrSelect, expr)
	}
	return val, nil
}

// Compile reports whether expr is a valid JSONPath expression without evaluating it.
func Compile(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("empty jsonpath expression")
	}
	_, err := jsonpath.New(expr)
	return err
}

// String renders a selected value for display. A single-element array is unwrapped.
func String(v any) (string, error) {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return "", fmt.Errorf("empty array")
		}
		if len(arr) == 1 {
			return String(arr[0])
		}
		b, err := json.Marshal(arr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case float64, bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(t), nil
	}
}

func toDocument(dm domain.DocMap) (any, error) {
	b, err := json.Marshal(dm)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
