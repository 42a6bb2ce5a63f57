package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	// List returns every book ordered by id.
	List(ctx context.Context) ([]Book, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	// Insert stores b under a fresh id and returns the stored record.
	Insert(ctx context.Context, b Book) (Book, error)
	// Update overwrites the record with b.ID. ErrNotFound if it is gone.
	Update(ctx context.Context, b Book) (Book, error)
	Delete(ctx context.Context, id int64) error
}
