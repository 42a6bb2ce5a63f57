package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"bookql/internal/book"
)

// BookData returns a valid BookInput variable for Dune with overrides
// applied. An override of nil removes the key.
func BookData(overrides map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"title":         "Dune",
		"author":        "Herbert",
		"yearPublished": "1965",
		"review":        5,
	}
	for k, v := range overrides {
		if v == nil {
			delete(data, k)
			continue
		}
		data[k] = v
	}
	return data
}

// TestBook mirrors BookData(nil) as a stored record with the first id.
var TestBook = book.Book{
	ID:            1,
	Title:         "Dune",
	Author:        "Herbert",
	YearPublished: "1965",
	Review:        5,
}

// GraphQLError is one entry of a GraphQL errors array.
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path"`
	Extensions map[string]interface{} `json:"extensions"`
}

// GraphQLResponse is a decoded GraphQL response body.
type GraphQLResponse struct {
	Code   int
	Header http.Header
	Data   map[string]json.RawMessage `json:"data"`
	Errors []GraphQLError             `json:"errors"`
}

// ErrorCode returns extensions.code of the first error, or "".
func (r GraphQLResponse) ErrorCode() string {
	if len(r.Errors) == 0 {
		return ""
	}
	code, _ := r.Errors[0].Extensions["code"].(string)
	return code
}

// Field decodes data[name] into dst and reports whether it was non-null.
func (r GraphQLResponse) Field(name string, dst interface{}) bool {
	raw, ok := r.Data[name]
	if !ok || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// NewGraphQLRequest builds a POST /graphql request with a JSON body.
func NewGraphQLRequest(query string, variables map[string]interface{}) *http.Request {
	body, _ := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	r := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// Do serves r on h and decodes the GraphQL response.
func Do(h http.Handler, r *http.Request) GraphQLResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return RecordGraphQLResponse(w)
}

// RecordGraphQLResponse decodes a recorded GraphQL response.
func RecordGraphQLResponse(w *httptest.ResponseRecorder) GraphQLResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	resp := GraphQLResponse{Code: result.StatusCode, Header: result.Header}
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &resp)
	}
	return resp
}
