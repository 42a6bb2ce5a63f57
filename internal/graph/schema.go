// Package graph exposes the book service as a GraphQL schema.
package graph

import (
	"context"
	_ "embed"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"bookql/internal/httpx"
)

//go:embed schema.graphql
var schemaSDL string

// SchemaConfig tunes the executor.
type SchemaConfig struct {
	MaxDepth int
	Logger   *zap.Logger
}

// NewSchema parses the embedded SDL against resolver. The result is safe
// for concurrent use and should be built once per process.
func NewSchema(resolver *Resolver, cfg SchemaConfig) (*graphql.Schema, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []graphql.SchemaOpt{
		graphql.Logger(panicLogger{logger: logger}),
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, graphql.MaxDepth(cfg.MaxDepth))
	}

	schema, err := graphql.ParseSchema(schemaSDL, resolver, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}
	return schema, nil
}

// panicLogger routes resolver panics caught by the executor to zap.
type panicLogger struct {
	logger *zap.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.Error("graphql resolver panic",
		zap.String("request_id", httpx.RequestIDFromContext(ctx)),
		zap.Any("panic", value),
		zap.Stack("stack"),
	)
}
