package book

import (
	"context"
	"errors"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every stored book in insertion order.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Get returns the book with the given id or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates in and stores it as a new book.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}
	var b Book
	in.apply(&b)
	return s.repo.Insert(ctx, b)
}

// Update overwrites all four fields of the book with the given id.
//
// A missing id is not an error: Update returns a nil book and nil error
// and nothing is written. Delete on a missing id does fail with
// ErrNotFound; callers rely on both behaviors.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Book, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.apply(&current)

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		// Deleted between lookup and write.
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

// Delete permanently removes the book with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
