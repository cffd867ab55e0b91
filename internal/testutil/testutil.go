package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"recto/internal/auth"
	"recto/internal/book"
	"recto/internal/user"
)

// TestUser is a fixture account used across handler tests.
var TestUser = user.User{
	ID:        "test-user-id-123",
	Username:  "testuser",
	Email:     "test@example.com",
	Password:  "hashedpassword",
	Role:      "USER",
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// TestAdminUser is a fixture admin account.
var TestAdminUser = user.User{
	ID:        "test-admin-id-456",
	Username:  "adminuser",
	Email:     "admin@example.com",
	Password:  "hashedpassword",
	Role:      "ADMIN",
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// TestBook is a fixture canonical record.
var TestBook = book.Book{
	ID:            "test-book-id-789",
	ExternalID:    "OL893468W",
	Title:         "Dune",
	Authors:       []string{"Frank Herbert"},
	Genres:        []string{"Science Fiction"},
	Description:   "A desert planet and its spice.",
	AverageRating: 4.0,
	RatingsCount:  2,
	CreatedAt:     time.Now(),
	UpdatedAt:     time.Now(),
}

// GenerateTestToken issues a short-lived token for handler tests.
func GenerateTestToken(secret, userID, role string) string {
	token, _ := auth.GenerateToken(secret, userID, role, time.Hour)
	return token
}

// NewRequest builds a JSON request for handler tests.
func NewRequest(method, path string, body interface{}) *http.Request {
	var r *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth builds a JSON request carrying a bearer token.
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}
