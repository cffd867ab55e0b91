package review

import "context"

// Repository defines the contract for review storage. The *WithAggregate
// operations run the review write and the book's rating-aggregate update in
// one datastore transaction: either both commit or neither does, and two
// concurrent aggregate recomputations for the same book cannot both read
// the pre-update pair.
type Repository interface {
	GetByID(ctx context.Context, reviewID string) (*Review, error)
	ListForBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error)
	// CreateWithAggregate inserts the review and folds its rating into the
	// book's aggregate. Returns ErrConflict on a duplicate (user, book)
	// pair and ErrNotFound when the book does not exist.
	CreateWithAggregate(ctx context.Context, r *Review) error
	// UpdateWithAggregate saves the review; when oldRating differs from the
	// review's current rating it also re-derives the book's average.
	UpdateWithAggregate(ctx context.Context, r *Review, oldRating int) error
	// DeleteWithAggregate removes the review and subtracts its rating from
	// the book's aggregate.
	DeleteWithAggregate(ctx context.Context, reviewID string) error
}
