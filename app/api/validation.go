package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected input, located by where it came from
// ("body", "query" or "path") followed by the field name.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError carries every FieldError found in a request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = strings.Join(fe.Loc, ".") + ": " + fe.Msg
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a single-entry ValidationError.
func NewValidationError(loc []string, msg, typ string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Loc: loc, Msg: msg, Type: typ}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the struct's `validate` tags and reports failures as a
// *ValidationError located in the request body.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, fieldError(fe))
	}
	return out
}

func fieldError(fe validator.FieldError) FieldError {
	loc := []string{"body", fe.Field()}
	switch fe.Tag() {
	case "required":
		return FieldError{Loc: loc, Msg: "Field required", Type: "missing"}
	case "min":
		return FieldError{Loc: loc, Msg: fmt.Sprintf("String should have at least %s characters", fe.Param()), Type: "string_too_short"}
	case "max":
		return FieldError{Loc: loc, Msg: fmt.Sprintf("String should have at most %s characters", fe.Param()), Type: "string_too_long"}
	default:
		return FieldError{Loc: loc, Msg: fmt.Sprintf("Failed on the '%s' rule", fe.Tag()), Type: "value_error"}
	}
}

// DecodeJSON reads the request body into dst. The body must hold exactly one
// JSON value and must not be null. Malformed bodies and type mismatches come
// back as a *ValidationError.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return NewValidationError([]string{"body"}, "Field required", "missing")
		}
		return NewValidationError([]string{"body"}, "JSON decode error", "json_invalid")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return NewValidationError([]string{"body"}, "JSON decode error", "json_invalid")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return NewValidationError([]string{"body"}, "Field required", "missing")
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return NewValidationError([]string{"body"}, "JSON decode error", "json_invalid")
		}
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, strings.Split(typeErr.Field, ".")...)
		}
		msg, typ := typeError(typeErr.Type)
		return NewValidationError(loc, msg, typ)
	}
	return nil
}

// typeError names a Go type the way clients see it in type errors.
func typeError(t reflect.Type) (msg, typ string) {
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "Input should be a valid dictionary", "dict_type"
	case reflect.Slice, reflect.Array:
		return "Input should be a valid list", "list_type"
	case reflect.Bool:
		return "Input should be a valid boolean", "bool_type"
	case reflect.String:
		return "Input should be a valid string", "string_type"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "Input should be a valid integer", "int_type"
	case reflect.Float32, reflect.Float64:
		return "Input should be a valid number", "float_type"
	case reflect.Pointer:
		return typeError(t.Elem())
	default:
		return "Input should be a valid value", "value_error"
	}
}

// WriteValidationError answers 422 with {"detail": [...]} for a
// *ValidationError, or a 500 for anything else.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		WriteInternalError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusUnprocessableEntity, struct {
		Detail []FieldError `json:"detail"`
	}{Detail: verr.Errors})
}
