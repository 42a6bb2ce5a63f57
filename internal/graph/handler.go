package graph

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dgraph-io/gqlparser/v2/ast"
	"github.com/dgraph-io/gqlparser/v2/parser"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bookql/internal/httpx"
)

// Request is a GraphQL-over-HTTP request.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves a schema over HTTP GET and POST.
type Handler struct {
	schema *graphql.Schema
	logger *zap.Logger
}

func NewHandler(schema *graphql.Schema, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{schema: schema, logger: logger}
}

// ServeHTTP executes the request and writes a GraphQL JSON response.
// Execution errors are reported in the body with status 200; only
// transport problems produce a 4xx.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, status, err := decodeRequest(r)
	if err != nil {
		if status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", "GET, POST")
		}
		httpx.JSONError(w, r, status, "BAD_REQUEST", err.Error())
		return
	}

	if r.Method == http.MethodGet {
		if op := selectedOperation(req); op != nil && op.Operation == ast.Mutation {
			w.Header().Set("Allow", http.MethodPost)
			httpx.JSONError(w, r, http.StatusMethodNotAllowed, "BAD_REQUEST",
				"Can only perform a mutation operation from a POST request.")
			return
		}
	}

	resp := h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)
	if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Warn("write graphql response",
			zap.String("request_id", httpx.RequestIDFrom(r)),
			zap.Error(err),
		)
	}
}

func decodeRequest(r *http.Request) (*Request, int, error) {
	req := &Request{}

	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		req.Query = query.Get("query")
		req.OperationName = query.Get("operationName")
		if variables := query.Get("variables"); variables != "" {
			if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
				return nil, http.StatusBadRequest, errors.Wrap(err, "variables must be a JSON object")
			}
		}
	case http.MethodPost:
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return nil, http.StatusUnsupportedMediaType, errors.Wrap(err, "unable to parse media type")
		}
		switch mediaType {
		case "application/json":
			if err := json.NewDecoder(r.Body).Decode(req); err != nil {
				return nil, bodyErrorStatus(err), errors.Wrap(err, "not a valid GraphQL request body")
			}
		case "application/graphql":
			body, err := io.ReadAll(r.Body)
			if err != nil {
				return nil, bodyErrorStatus(err), errors.Wrap(err, "unable to read request body")
			}
			req.Query = string(body)
		default:
			return nil, http.StatusUnsupportedMediaType,
				errors.New("unrecognised Content-Type, use application/json for GraphQL requests")
		}
	default:
		return nil, http.StatusMethodNotAllowed,
			errors.New("unrecognised request method, use GET or POST for GraphQL requests")
	}

	if strings.TrimSpace(req.Query) == "" {
		return nil, http.StatusBadRequest, errors.New("query is required")
	}
	return req, http.StatusOK, nil
}

func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// selectedOperation returns the operation Exec would run for req. It returns
// nil when the document does not parse or no single operation is selected;
// Exec reports those itself.
func selectedOperation(req *Request) *ast.OperationDefinition {
	doc, gqlErr := parser.ParseQuery(&ast.Source{Input: req.Query})
	if gqlErr != nil {
		return nil
	}
	if req.OperationName == "" {
		if len(doc.Operations) == 1 {
			return doc.Operations[0]
		}
		return nil
	}
	for _, op := range doc.Operations {
		if op.Name == req.OperationName {
			return op
		}
	}
	return nil
}
