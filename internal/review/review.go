package review

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the review (or its book) does not exist,
	// or when an update is attempted by someone other than the owner.
	ErrNotFound = errors.New("review not found")
	// ErrConflict is returned when a user already reviewed the book.
	ErrConflict = errors.New("review already exists for this book")
	// ErrForbidden is returned when a delete is attempted by neither the
	// owner nor a privileged role.
	ErrForbidden = errors.New("not authorized to modify this review")
)

// Roles allowed to delete other users' reviews.
const (
	RoleAdmin     = "ADMIN"
	RoleLibrarian = "LIBRARIAN"
)

// Review is one user's opinion of one book. At most one exists per
// (user, book) pair.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Content   string    `json:"content,omitempty"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
