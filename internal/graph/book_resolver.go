package graph

import (
	"strconv"

	graphql "github.com/graph-gophers/graphql-go"

	"bookql/internal/book"
)

type bookResolver struct {
	b book.Book
}

func (r *bookResolver) ID() graphql.ID {
	return graphql.ID(strconv.FormatInt(r.b.ID, 10))
}

func (r *bookResolver) Title() string {
	return r.b.Title
}

func (r *bookResolver) Author() string {
	return r.b.Author
}

func (r *bookResolver) YearPublished() string {
	return r.b.YearPublished
}

func (r *bookResolver) Review() int32 {
	return r.b.Review
}
