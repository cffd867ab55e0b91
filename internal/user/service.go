package user

import (
	"context"
	"errors"
	"time"

	"recto/internal/auth"
)

const tokenTTL = 24 * time.Hour

type Service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret}
}

func (s *Service) Register(ctx context.Context, username, email, password string) (User, error) {
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return User{}, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	newUser := &User{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     "USER",
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if !auth.VerifyPassword(u.Password, password) {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.jwtSecret, u.ID, u.Role, tokenTTL)
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, username string, limit int) ([]User, error) {
	return s.repo.SearchByUsername(ctx, username, limit)
}
