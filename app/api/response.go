package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the body written for every non-validation error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Message is a plain confirmation body.
type Message struct {
	Message string `json:"message"`
}

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// WriteError writes {"detail": detail} with the given status code.
func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// WriteInternalError logs err and answers with a generic 500.
func WriteInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("api: %s %s: %v", r.Method, r.URL.Path, err)
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
