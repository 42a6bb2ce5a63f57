package graph_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bookql/internal/book"
	"bookql/internal/graph"
	"bookql/internal/testutil"
)

const (
	booksQuery = `{ books { id title author yearPublished review } }`

	bookQuery = `query Book($id: Int!) {
		book(bookId: $id) { id title author yearPublished review }
	}`

	createMutation = `mutation Create($data: BookInput!) {
		createBook(bookData: $data) { book { id title author yearPublished review } }
	}`

	updateMutation = `mutation Update($data: BookInput!) {
		updateBook(bookData: $data) { book { id title author yearPublished review } }
	}`

	deleteMutation = `mutation Delete($id: ID!) {
		deleteBook(id: $id) { ok book { id } }
	}`
)

type bookJSON struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	YearPublished string `json:"yearPublished"`
	Review        int32  `json:"review"`
}

type payloadJSON struct {
	OK   bool      `json:"ok"`
	Book *bookJSON `json:"book"`
}

func newHandler(t *testing.T, repo book.Repository) http.Handler {
	t.Helper()
	resolver := graph.NewResolver(book.NewService(repo), zap.NewNop(), nil)
	schema, err := graph.NewSchema(resolver, graph.SchemaConfig{MaxDepth: 10})
	require.NoError(t, err)
	return graph.NewHandler(schema, nil)
}

func do(h http.Handler, query string, vars map[string]interface{}) testutil.GraphQLResponse {
	return testutil.Do(h, testutil.NewGraphQLRequest(query, vars))
}

func createDune(t *testing.T, h http.Handler) bookJSON {
	t.Helper()
	resp := do(h, createMutation, map[string]interface{}{"data": testutil.BookData(nil)})
	require.Empty(t, resp.Errors)
	var payload payloadJSON
	require.True(t, resp.Field("createBook", &payload))
	require.NotNil(t, payload.Book)
	return *payload.Book
}

func TestResolver_CreateAndGet(t *testing.T) {
	h := newHandler(t, book.NewMemoryRepo())

	created := createDune(t, h)
	assert.Equal(t, bookJSON{ID: "1", Title: "Dune", Author: "Herbert", YearPublished: "1965", Review: 5}, created)

	resp := do(h, bookQuery, map[string]interface{}{"id": 1})
	require.Empty(t, resp.Errors)
	var got bookJSON
	require.True(t, resp.Field("book", &got))
	assert.Equal(t, created, got)
}

func TestResolver_CreateIgnoresID(t *testing.T) {
	h := newHandler(t, book.NewMemoryRepo())

	resp := do(h, createMutation, map[string]interface{}{
		"data": testutil.BookData(map[string]interface{}{"id": "99"}),
	})
	require.Empty(t, resp.Errors)
	var payload payloadJSON
	require.True(t, resp.Field("createBook", &payload))
	assert.Equal(t, "1", payload.Book.ID)
}

func TestResolver_Books(t *testing.T) {
	h := newHandler(t, book.NewMemoryRepo())

	t.Run("empty", func(t *testing.T) {
		resp := do(h, booksQuery, nil)
		require.Empty(t, resp.Errors)
		var books []bookJSON
		require.True(t, resp.Field("books", &books))
		assert.Empty(t, books)
	})

	t.Run("lists in insertion order", func(t *testing.T) {
		for _, title := range []string{"Dune", "Emma", "Ulysses"} {
			resp := do(h, createMutation, map[string]interface{}{
				"data": testutil.BookData(map[string]interface{}{"title": title}),
			})
			require.Empty(t, resp.Errors)
		}

		resp := do(h, booksQuery, nil)
		require.Empty(t, resp.Errors)
		var books []bookJSON
		require.True(t, resp.Field("books", &books))
		require.Len(t, books, 3)
		assert.Equal(t, "Dune", books[0].Title)
		assert.Equal(t, "Emma", books[1].Title)
		assert.Equal(t, "Ulysses", books[2].Title)
	})
}

func TestResolver_BookNotFound(t *testing.T) {
	h := newHandler(t, book.NewMemoryRepo())

	resp := do(h, bookQuery, map[string]interface{}{"id": 404})

	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, graph.CodeNotFound, resp.ErrorCode())
	assert.Equal(t, []interface{}{"book"}, resp.Errors[0].Path)
	assert.False(t, resp.Field("book", &bookJSON{}))
}

func TestResolver_CreateValidation(t *testing.T) {
	testCases := []struct {
		name  string
		data  map[string]interface{}
		field string
	}{
		{"missing title", map[string]interface{}{"title": nil}, "title"},
		{"missing author", map[string]interface{}{"author": nil}, "author"},
		{"missing year", map[string]interface{}{"yearPublished": nil}, "yearPublished"},
		{"missing review", map[string]interface{}{"review": nil}, "review"},
		{"negative review", map[string]interface{}{"review": -3}, "review"},
		{"title too long", map[string]interface{}{"title": strings.Repeat("x", 201)}, "title"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandler(t, book.NewMemoryRepo())

			resp := do(h, createMutation, map[string]interface{}{"data": testutil.BookData(tc.data)})

			require.Len(t, resp.Errors, 1)
			assert.Equal(t, graph.CodeValidation, resp.ErrorCode())
			fields, ok := resp.Errors[0].Extensions["fields"].(map[string]interface{})
			require.True(t, ok, "expected fields extension, got %v", resp.Errors[0].Extensions)
			assert.Contains(t, fields, tc.field)

			list := do(h, booksQuery, nil)
			var books []bookJSON
			require.True(t, list.Field("books", &books))
			assert.Empty(t, books)
		})
	}
}

func TestResolver_Update(t *testing.T) {
	t.Run("overwrites every field", func(t *testing.T) {
		h := newHandler(t, book.NewMemoryRepo())
		created := createDune(t, h)

		resp := do(h, updateMutation, map[string]interface{}{"data": map[string]interface{}{
			"id":            created.ID,
			"title":         "Children of Dune",
			"author":        "Frank Herbert",
			"yearPublished": "1976",
			"review":        3,
		}})
		require.Empty(t, resp.Errors)
		var payload payloadJSON
		require.True(t, resp.Field("updateBook", &payload))
		want := bookJSON{ID: created.ID, Title: "Children of Dune", Author: "Frank Herbert", YearPublished: "1976", Review: 3}
		assert.Equal(t, &want, payload.Book)

		get := do(h, bookQuery, map[string]interface{}{"id": 1})
		var got bookJSON
		require.True(t, get.Field("book", &got))
		assert.Equal(t, want, got)
	})

	t.Run("unknown id returns null book", func(t *testing.T) {
		h := newHandler(t, book.NewMemoryRepo())

		resp := do(h, updateMutation, map[string]interface{}{
			"data": testutil.BookData(map[string]interface{}{"id": "12"}),
		})

		assert.Empty(t, resp.Errors)
		var payload payloadJSON
		require.True(t, resp.Field("updateBook", &payload))
		assert.Nil(t, payload.Book)

		list := do(h, booksQuery, nil)
		var books []bookJSON
		require.True(t, list.Field("books", &books))
		assert.Empty(t, books)
	})

	t.Run("id is required", func(t *testing.T) {
		h := newHandler(t, book.NewMemoryRepo())

		resp := do(h, updateMutation, map[string]interface{}{"data": testutil.BookData(nil)})

		require.Len(t, resp.Errors, 1)
		assert.Equal(t, graph.CodeValidation, resp.ErrorCode())
	})

	t.Run("id must be an integer", func(t *testing.T) {
		h := newHandler(t, book.NewMemoryRepo())

		resp := do(h, updateMutation, map[string]interface{}{
			"data": testutil.BookData(map[string]interface{}{"id": "one"}),
		})

		require.Len(t, resp.Errors, 1)
		assert.Equal(t, graph.CodeValidation, resp.ErrorCode())
	})
}

func TestResolver_Delete(t *testing.T) {
	t.Run("removes the book", func(t *testing.T) {
		h := newHandler(t, book.NewMemoryRepo())
		created := createDune(t, h)

		resp := do(h, deleteMutation, map[string]interface{}{"id": created.ID})
		require.Empty(t, resp.Errors)
		var payload payloadJSON
		require.True(t, resp.Field("deleteBook", &payload))
		assert.True(t, payload.OK)
		assert.Nil(t, payload.Book)

		get := do(h, bookQuery, map[string]interface{}{"id": 1})
		assert.Equal(t, graph.CodeNotFound, get.ErrorCode())

		list := do(h, booksQuery, nil)
		var books []bookJSON
		require.True(t, list.Field("books", &books))
		assert.Empty(t, books)
	})

	t.Run("unknown id fails", func(t *testing.T) {
		h := newHandler(t, book.NewMemoryRepo())

		resp := do(h, deleteMutation, map[string]interface{}{"id": "5"})

		require.Len(t, resp.Errors, 1)
		assert.Equal(t, graph.CodeNotFound, resp.ErrorCode())
		assert.False(t, resp.Field("deleteBook", &payloadJSON{}))
	})
}

func TestResolver_InternalErrorsAreRedacted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := book.NewMockRepository(ctrl)
	mockRepo.EXPECT().List(gomock.Any()).Return(nil, errors.New("pq: password authentication failed"))

	core, logs := observer.New(zap.ErrorLevel)
	resolver := graph.NewResolver(book.NewService(mockRepo), zap.New(core), nil)
	schema, err := graph.NewSchema(resolver, graph.SchemaConfig{})
	require.NoError(t, err)

	resp := schema.Exec(context.Background(), booksQuery, "", nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "internal server error", resp.Errors[0].Message)
	assert.Equal(t, graph.CodeInternal, resp.Errors[0].Extensions["code"])
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "books", logs.All()[0].ContextMap()["operation"])
}

func TestResolver_OperationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ops := graph.NewOperationsCounter(reg)
	resolver := graph.NewResolver(book.NewService(book.NewMemoryRepo()), nil, ops)
	schema, err := graph.NewSchema(resolver, graph.SchemaConfig{})
	require.NoError(t, err)
	h := graph.NewHandler(schema, nil)

	createDune(t, h)
	do(h, updateMutation, map[string]interface{}{"data": testutil.BookData(map[string]interface{}{"id": "77"})})
	do(h, deleteMutation, map[string]interface{}{"id": "77"})

	assert.Equal(t, float64(1), promtestutil.ToFloat64(ops.WithLabelValues("createBook", "ok")))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(ops.WithLabelValues("updateBook", "miss")))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(ops.WithLabelValues("deleteBook", "not_found")))
}

func TestSchema_MaxDepth(t *testing.T) {
	resolver := graph.NewResolver(book.NewService(book.NewMemoryRepo()), nil, nil)
	schema, err := graph.NewSchema(resolver, graph.SchemaConfig{MaxDepth: 1})
	require.NoError(t, err)

	resp := schema.Exec(context.Background(), booksQuery, "", nil)

	assert.NotEmpty(t, resp.Errors)
}
