// Package schema validates untyped JSON payloads against JSON Schema documents
// and decodes them into domain types.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/aalvaropc/docmapr/internal/domain"
)

const rootField = "(root)"

// Schema pairs a compiled JSON Schema with the Go type a valid payload decodes into.
type Schema[T any] struct {
	name   string
	schema *gojsonschema.Schema
}

// New compiles raw as a JSON Schema. name is used as the subject of validation errors.
func New[T any](name string, raw []byte) (*Schema[T], error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return &Schema[T]{name: name, schema: s}, nil
}

// MustNew is like New but panics on an invalid schema. Use it for embedded schemas only.
func MustNew[T any](name string, raw []byte) *Schema[T] {
	s, err := New[T](name, raw)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema[T]) Name() string { return s.name }

// Decode validates payload and decodes it into T.
// Every violation is reported in one *domain.ValidationError; values are never coerced.
func Decode[T any](s *Schema[T], payload any) (T, error) {
	var out T

	res, err := s.schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return out, domain.NewValidationError(s.name, []domain.FieldError{{
			Field:       rootField,
			Description: err.Error(),
		}})
	}
	if !res.Valid() {
		fields := make([]domain.FieldError, 0, len(res.Errors()))
		for _, re := range res.Errors() {
			fields = append(fields, domain.FieldError{
				Field:       fieldOf(re),
				Description: re.Description(),
			})
		}
		return out, domain.NewValidationError(s.name, fields)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return out, domain.NewValidationError(s.name, []domain.FieldError{{Field: rootField, Description: err.Error()}})
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, domain.NewValidationError(s.name, []domain.FieldError{{Field: rootField, Description: err.Error()}})
	}
	return out, nil
}

// fieldOf names the violating field. Required errors point at the missing
// property rather than its parent.
func fieldOf(re gojsonschema.ResultError) string {
	field := re.Field()
	if field == rootField {
		field = ""
	}
	if re.Type() == "required" {
		if p, ok := re.Details()["property"].(string); ok && p != "" && field != p && !strings.HasSuffix(field, "."+p) {
			if field == "" {
				field = p
			} else {
				field += "." + p
			}
		}
	}
	if field == "" {
		return rootField
	}
	return field
}
