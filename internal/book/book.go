package book

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Book represents a book entity.
type Book struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	YearPublished string `json:"yearPublished"`
	Review        int32  `json:"review"`
}

func (b Book) String() string {
	return b.Title
}

// Input carries the client-supplied fields for create and update.
// A nil field was not supplied.
type Input struct {
	Title         *string `json:"title" validate:"required,max=200"`
	Author        *string `json:"author" validate:"required,max=100"`
	YearPublished *string `json:"yearPublished" validate:"required,max=10"`
	Review        *int32  `json:"review" validate:"required,gte=0"`
}

// apply overwrites every business field of b. Input must be valid.
func (in Input) apply(b *Book) {
	b.Title = *in.Title
	b.Author = *in.Author
	b.YearPublished = *in.YearPublished
	b.Review = *in.Review
}

// ValidationError lists the rejected fields and why.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// ParseID converts a client-supplied identifier into a book id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, NewValidationError("id", "id must be an integer")
	}
	return id, nil
}
