package book

import (
	"context"

	"recto/internal/platform/openlibrary"
)

// Repository defines the contract for book storage. Implementations must
// enforce identifier uniqueness across all books: Create and Update return
// ErrConflict when an identifier is already linked to another record.
type Repository interface {
	// FindByIdentifier resolves a book whose primary or alternative
	// identifier set contains id, in a single lookup.
	FindByIdentifier(ctx context.Context, id string) (*Book, error)
	// FindByTitle returns all books whose title matches case-insensitively.
	FindByTitle(ctx context.Context, title string) ([]Book, error)
	// ListByAuthor returns all books sharing at least one of the given
	// author names (case-insensitive exact match).
	ListByAuthor(ctx context.Context, authors []string) ([]Book, error)
	GetByID(ctx context.Context, id string) (*Book, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	// TouchUpdatedAt resets the staleness clock without a full rewrite.
	TouchUpdatedAt(ctx context.Context, id string) error
}

// CatalogClient is the boundary to the external book-metadata source.
type CatalogClient interface {
	GetWork(ctx context.Context, externalID string) (*openlibrary.Work, error)
}
