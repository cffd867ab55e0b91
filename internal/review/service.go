package review

import (
	"context"
	"fmt"
)

// Service owns review mutations and the authorization rules around them.
// Ownership and role checks happen here, before the repository transaction
// begins.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a review and updates the book's rating aggregate in one
// transaction. A duplicate (user, book) pair surfaces as ErrConflict.
func (s *Service) Create(ctx context.Context, userID, bookID, content string, rating int) (*Review, error) {
	r := &Review{
		UserID:  userID,
		BookID:  bookID,
		Content: content,
		Rating:  rating,
	}
	if err := s.repo.CreateWithAggregate(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update modifies the caller's own review. A review owned by someone else
// is reported as not found rather than forbidden, so the endpoint does not
// leak other users' review ids.
func (s *Service) Update(ctx context.Context, userID, reviewID string, content *string, rating *int) (*Review, error) {
	r, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, fmt.Errorf("%w: not the owner", ErrNotFound)
	}

	oldRating := r.Rating
	if content != nil {
		r.Content = *content
	}
	if rating != nil {
		r.Rating = *rating
	}

	if err := s.repo.UpdateWithAggregate(ctx, r, oldRating); err != nil {
		return nil, err
	}
	return r, nil
}

// Remove deletes a review. Allowed for its owner and for privileged roles.
func (s *Service) Remove(ctx context.Context, userID, reviewID, role string) error {
	r, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}

	isOwner := r.UserID == userID
	isPrivileged := role == RoleAdmin || role == RoleLibrarian
	if !isOwner && !isPrivileged {
		return ErrForbidden
	}

	return s.repo.DeleteWithAggregate(ctx, reviewID)
}

// ListForBook returns one page of a book's reviews plus the total count.
func (s *Service) ListForBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error) {
	return s.repo.ListForBook(ctx, bookID, limit, offset)
}
