package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"bookql/internal/book"
)

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	books  *book.Service
	logger *zap.Logger
	ops    *prometheus.CounterVec
}

// NewResolver wires the GraphQL operations to the book service. ops may be
// nil when metrics are not wanted.
func NewResolver(books *book.Service, logger *zap.Logger, ops *prometheus.CounterVec) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{books: books, logger: logger, ops: ops}
}

// NewOperationsCounter registers the per-operation outcome counter.
func NewOperationsCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookql",
		Subsystem: "graphql",
		Name:      "operations_total",
		Help:      "GraphQL book operations by outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(c)
	return c
}

func (r *Resolver) observe(op, result string) {
	if r.ops != nil {
		r.ops.WithLabelValues(op, result).Inc()
	}
}

// finish records the outcome of op and converts err for the client.
func (r *Resolver) finish(ctx context.Context, op string, err error) error {
	r.observe(op, outcome(err))
	if err == nil {
		return nil
	}
	return r.toResolverError(ctx, op, err)
}

type bookInput struct {
	ID            *graphql.ID
	Title         *string
	Author        *string
	YearPublished *string
	Review        *int32
}

func (in bookInput) fields() book.Input {
	return book.Input{
		Title:         in.Title,
		Author:        in.Author,
		YearPublished: in.YearPublished,
		Review:        in.Review,
	}
}

type createBookPayload struct{ book *bookResolver }

func (p *createBookPayload) Book() *bookResolver { return p.book }

type updateBookPayload struct{ book *bookResolver }

func (p *updateBookPayload) Book() *bookResolver { return p.book }

type deleteBookPayload struct{}

func (p *deleteBookPayload) Ok() bool { return true }

func (p *deleteBookPayload) Book() *bookResolver { return nil }

// Books resolves Query.books.
func (r *Resolver) Books(ctx context.Context) ([]*bookResolver, error) {
	books, err := r.books.List(ctx)
	if err := r.finish(ctx, "books", err); err != nil {
		return nil, err
	}
	out := make([]*bookResolver, len(books))
	for i := range books {
		out[i] = &bookResolver{b: books[i]}
	}
	return out, nil
}

// Book resolves Query.book.
func (r *Resolver) Book(ctx context.Context, args struct{ BookID int32 }) (*bookResolver, error) {
	b, err := r.books.Get(ctx, int64(args.BookID))
	if err := r.finish(ctx, "book", err); err != nil {
		return nil, err
	}
	return &bookResolver{b: b}, nil
}

// CreateBook resolves Mutation.createBook. bookData.id is ignored.
func (r *Resolver) CreateBook(ctx context.Context, args struct{ BookData bookInput }) (*createBookPayload, error) {
	b, err := r.books.Create(ctx, args.BookData.fields())
	if err := r.finish(ctx, "createBook", err); err != nil {
		return nil, err
	}
	return &createBookPayload{book: &bookResolver{b: b}}, nil
}

// UpdateBook resolves Mutation.updateBook. An unknown id yields a payload
// with a null book rather than an error.
func (r *Resolver) UpdateBook(ctx context.Context, args struct{ BookData bookInput }) (*updateBookPayload, error) {
	if args.BookData.ID == nil {
		return nil, r.finish(ctx, "updateBook", book.NewValidationError("id", "id is required"))
	}
	id, err := book.ParseID(string(*args.BookData.ID))
	if err != nil {
		return nil, r.finish(ctx, "updateBook", err)
	}

	updated, err := r.books.Update(ctx, id, args.BookData.fields())
	if err != nil {
		return nil, r.finish(ctx, "updateBook", err)
	}
	if updated == nil {
		r.observe("updateBook", "miss")
		return &updateBookPayload{}, nil
	}
	r.observe("updateBook", "ok")
	return &updateBookPayload{book: &bookResolver{b: *updated}}, nil
}

// DeleteBook resolves Mutation.deleteBook.
func (r *Resolver) DeleteBook(ctx context.Context, args struct{ ID graphql.ID }) (*deleteBookPayload, error) {
	id, err := book.ParseID(string(args.ID))
	if err == nil {
		err = r.books.Delete(ctx, id)
	}
	if err := r.finish(ctx, "deleteBook", err); err != nil {
		return nil, err
	}
	return &deleteBookPayload{}, nil
}
