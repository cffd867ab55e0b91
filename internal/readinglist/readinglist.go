package readinglist

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("book not in reading list")
	ErrInvalidStatus = errors.New("invalid reading status")
)

// Reading statuses, in shelf order.
const (
	StatusTBR     = "TBR"
	StatusReading = "READING"
	StatusRead    = "READ"
)

func ValidStatus(s string) bool {
	return s == StatusTBR || s == StatusReading || s == StatusRead
}

// Item is one book on one user's shelf.
type Item struct {
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	Status     string     `json:"status"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Repository interface {
	Upsert(ctx context.Context, item *Item) error
	Remove(ctx context.Context, userID, bookID string) error
	ListByStatus(ctx context.Context, userID, status string) ([]Item, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetStatus adds the book to the shelf or moves it between statuses.
func (s *Service) SetStatus(ctx context.Context, item *Item) error {
	if !ValidStatus(item.Status) {
		return ErrInvalidStatus
	}
	return s.repo.Upsert(ctx, item)
}

func (s *Service) Remove(ctx context.Context, userID, bookID string) error {
	return s.repo.Remove(ctx, userID, bookID)
}

func (s *Service) ListByStatus(ctx context.Context, userID, status string) ([]Item, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, userID, status)
}
