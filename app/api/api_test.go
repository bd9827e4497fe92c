package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

func TestOptionalTracksPresence(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected patch
	}{
		{name: "absent", body: `{}`, expected: patch{}},
		{name: "value", body: `{"name":"Books"}`, expected: patch{Name: Some("Books")}},
		{name: "explicit null", body: `{"description":null}`, expected: patch{Description: Optional[string]{Set: true, Null: true}}},
		{name: "empty string is a value", body: `{"name":""}`, expected: patch{Name: Some("")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got patch
			require.NoError(t, json.Unmarshal([]byte(tc.body), &got))
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestOptionalMarshal(t *testing.T) {
	out, err := json.Marshal(patch{Name: Some("Books")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Books","description":null}`, string(out))
}

type createInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=5"`
	Description *string `json:"description" validate:"omitnil,max=3"`
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(createInput{Name: "Books"}))

	long := "long"
	err := Validate(createInput{Description: &long})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Errors, 2)
	assert.Equal(t, FieldError{Loc: []string{"body", "name"}, Msg: "Field required", Type: "missing"}, verr.Errors[0])
	assert.Equal(t, []string{"body", "description"}, verr.Errors[1].Loc)
	assert.Equal(t, "string_too_long", verr.Errors[1].Type)
	assert.Contains(t, err.Error(), "body.name: Field required")
}

func TestDecodeJSON(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected FieldError
	}{
		{name: "Empty body", body: "", expected: FieldError{Loc: []string{"body"}, Msg: "Field required", Type: "missing"}},
		{name: "Null body", body: "null", expected: FieldError{Loc: []string{"body"}, Msg: "Field required", Type: "missing"}},
		{name: "Truncated object", body: `{"name":`, expected: FieldError{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}},
		{name: "Trailing object", body: `{"name":"Y"}{"name":"W"}`, expected: FieldError{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}},
		{name: "Trailing data", body: `{"name":"Z"} trailing`, expected: FieldError{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}},
		{name: "Wrong field type", body: `{"name":true}`, expected: FieldError{Loc: []string{"body", "name"}, Msg: "Input should be a valid string", Type: "string_type"}},
		{name: "Array body", body: `[{"name":"Books"}]`, expected: FieldError{Loc: []string{"body"}, Msg: "Input should be a valid dictionary", Type: "dict_type"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var in createInput
			err := DecodeJSON(httptest.NewRequest("POST", "/", strings.NewReader(tc.body)), &in)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Errors, 1)
			assert.Equal(t, tc.expected, verr.Errors[0])
		})
	}

	t.Run("Single object with trailing whitespace", func(t *testing.T) {
		var in createInput
		err := DecodeJSON(httptest.NewRequest("POST", "/", strings.NewReader(" {\"name\":\"Books\"}\n ")), &in)
		require.NoError(t, err)
		assert.Equal(t, "Books", in.Name)
	})
}

func TestWriteValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, httptest.NewRequest("GET", "/", nil),
		NewValidationError([]string{"query", "limit"}, "bad", "int_parsing"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":[{"loc":["query","limit"],"msg":"bad","type":"int_parsing"}]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteValidationError(rec, httptest.NewRequest("GET", "/", nil), errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?skip=3&limit=x&neg=-2", nil)

	n, err := QueryInt(r, "skip", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = QueryInt(r, "missing", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	_, err = QueryInt(r, "limit", 100)
	assert.Error(t, err)
	_, err = QueryInt(r, "neg", 0)
	assert.Error(t, err)
}

func TestPathUUID(t *testing.T) {
	id := uuid.New()
	r := httptest.NewRequest("GET", "/", nil)
	r.SetPathValue("id", id.String())

	got, err := PathUUID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	r.SetPathValue("id", "nope")
	_, err = PathUUID(r, "id")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "uuid_parsing", verr.Errors[0].Type)
}
