package user

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	// SearchByUsername returns users whose username starts with the query,
	// case-insensitively.
	SearchByUsername(ctx context.Context, username string, limit int) ([]User, error)
}
