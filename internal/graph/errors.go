package graph

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bookql/internal/book"
	"bookql/internal/httpx"
)

// Error codes reported under extensions.code.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// resolverError is returned from resolvers; the executor copies
// Extensions into the response error entry.
type resolverError struct {
	code    string
	message string
	fields  map[string]string
}

func (e *resolverError) Error() string {
	return e.message
}

func (e *resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.code}
	if len(e.fields) > 0 {
		ext["fields"] = e.fields
	}
	return ext
}

// outcome names the result of an operation for metrics.
func outcome(err error) string {
	var verr *book.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, book.ErrNotFound):
		return "not_found"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "error"
	}
}

// toResolverError hides store failures from clients and logs them instead.
func (r *Resolver) toResolverError(ctx context.Context, op string, err error) error {
	var verr *book.ValidationError
	switch {
	case errors.Is(err, book.ErrNotFound):
		return &resolverError{code: CodeNotFound, message: book.ErrNotFound.Error()}
	case errors.As(err, &verr):
		return &resolverError{code: CodeValidation, message: verr.Error(), fields: verr.Fields}
	default:
		r.logger.Error("resolver failed",
			zap.String("operation", op),
			zap.String("request_id", httpx.RequestIDFromContext(ctx)),
			zap.Error(err),
		)
		return &resolverError{code: CodeInternal, message: "internal server error"}
	}
}
