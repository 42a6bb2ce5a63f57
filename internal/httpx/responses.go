package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the GraphQL-shaped error body used for failures that
// happen before a query reaches the executor.
type ErrorResponse struct {
	Errors []ErrorBody `json:"errors"`
}

type ErrorBody struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// JSONError writes a single error with a machine readable code and the
// request id, when there is one.
func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string) {
	ext := map[string]any{"code": code}
	if requestID := RequestIDFrom(r); requestID != "" {
		ext["request_id"] = requestID
	}
	_ = WriteJSON(w, statusCode, ErrorResponse{
		Errors: []ErrorBody{{Message: message, Extensions: ext}},
	})
}
