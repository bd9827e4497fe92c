package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// QueryInt parses a non-negative integer query parameter, falling back to
// def when the parameter is absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewValidationError([]string{"query", name},
			"Input should be a valid integer, unable to parse string as an integer", "int_parsing")
	}
	if n < 0 {
		return 0, NewValidationError([]string{"query", name},
			"Input should be greater than or equal to 0", "greater_than_equal")
	}
	return n, nil
}

// PathUUID parses the named path segment as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, NewValidationError([]string{"path", name},
			"Input should be a valid UUID", "uuid_parsing")
	}
	return id, nil
}
