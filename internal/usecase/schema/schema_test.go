package schema

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/docmapr/internal/domain"
)

func loadJSON(t *testing.T, name string) any {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var doc any
	require.NoError(t, json.Unmarshal(b, &doc))
	return doc
}

func requireValidationError(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	require.Error(t, err)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected *domain.ValidationError, got %T", err)
	return ve
}

func TestDecodeNotificationKeepsObjectID(t *testing.T) {
	ids := []string{
		"https://example.org/evaluation",
		"",
		"urn:uuid:bf3513ee-1fef-4f30-a61b-20721b505f11",
	}
	for _, id := range ids {
		payload := map[string]any{
			"@context": []any{"https://www.w3.org/ns/activitystreams"},
			"type":     []any{"Announce", "coar-notify:ReviewAction"},
			"object":   map[string]any{"id": id, "type": "Document"},
		}

		n, err := Decode(Notification, payload)
		require.NoError(t, err)
		assert.Equal(t, id, n.Object.ID)
	}
}

func TestDecodeNotificationMissingObjectID(t *testing.T) {
	payloads := []any{
		map[string]any{"object": map[string]any{}},
		map[string]any{"object": map[string]any{"type": "Document"}},
	}
	for _, p := range payloads {
		_, err := Decode(Notification, p)
		ve := requireValidationError(t, err)
		assert.True(t, ve.HasField("object.id"), "fields: %+v", ve.Fields)
		assert.Equal(t, "notification", ve.Subject)
	}

	_, err := Decode(Notification, map[string]any{})
	ve := requireValidationError(t, err)
	assert.True(t, ve.HasField("object"), "fields: %+v", ve.Fields)
}

func TestDecodeDoesNotCoerce(t *testing.T) {
	_, err := Decode(Notification, map[string]any{"object": map[string]any{"id": 42.0}})
	ve := requireValidationError(t, err)
	assert.True(t, ve.HasField("object.id"), "fields: %+v", ve.Fields)
}

func TestDecodeNonObjectPayload(t *testing.T) {
	for _, p := range []any{nil, "text", []any{}, 1.0} {
		_, err := Decode(Notification, p)
		requireValidationError(t, err)
	}
}

func TestDecodeLinkHeaders(t *testing.T) {
	h, err := Decode(LinkHeaders, map[string]string{
		"content-type": "text/html",
		"link":         `<https://example.org/d.json>; rel="describedby"`,
	})
	require.NoError(t, err)
	assert.Equal(t, `<https://example.org/d.json>; rel="describedby"`, h.Link)

	_, err = Decode(LinkHeaders, map[string]string{"content-type": "text/html"})
	ve := requireValidationError(t, err)
	assert.True(t, ve.HasField("link"))
	assert.Equal(t, "headers", ve.Subject)
}

func TestDecodeDocMaps(t *testing.T) {
	docmaps, err := Decode(DocMaps, loadJSON(t, "docmaps.json"))
	require.NoError(t, err)
	require.Len(t, docmaps, 2)

	dm := docmaps[0]
	assert.Equal(t, "docmap", dm.Type)
	assert.Equal(t, "eLife", dm.Publisher.Name)
	assert.Equal(t, "_:b0", dm.FirstStep)
	require.Contains(t, dm.Steps, "_:b1")
	assert.Equal(t, "_:b0", dm.Steps["_:b1"].PreviousStep)
	assert.Equal(t, "10.7554/eLife.85111.1.sa0", dm.Steps["_:b1"].Actions[0].Outputs[0].DOI)
}

func TestDecodeDocMapsEmptyArrayIsValid(t *testing.T) {
	docmaps, err := Decode(DocMaps, []any{})
	require.NoError(t, err)
	assert.Empty(t, docmaps)
}

func TestDecodeDocMapsLiteralMismatch(t *testing.T) {
	doc := loadJSON(t, "docmaps.json").([]any)
	first := doc[0].(map[string]any)
	first["type"] = "DocMap"
	first["first-step"] = "_:b1"
	delete(first, "updated")

	_, err := Decode(DocMaps, doc)
	ve := requireValidationError(t, err)
	assert.True(t, ve.HasField("0.type"), "fields: %+v", ve.Fields)
	assert.True(t, ve.HasField("0.first-step"), "fields: %+v", ve.Fields)
	assert.True(t, ve.HasField("0.updated"), "fields: %+v", ve.Fields)
}

func TestDecodeIsDeterministic(t *testing.T) {
	doc := []any{map[string]any{"type": "x", "steps": map[string]any{"s": map[string]any{}}}}

	_, err1 := Decode(DocMaps, doc)
	_, err2 := Decode(DocMaps, doc)
	require.Error(t, err1)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestNewRejectsInvalidSchema(t *testing.T) {
	_, err := New[domain.Notification]("broken", []byte(`{"type": 12}`))
	require.Error(t, err)
	assert.Panics(t, func() { MustNew[domain.Notification]("broken", []byte(`{`)) })
}
