package book

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no local record exists and the external
	// catalog does not know the identifier either.
	ErrNotFound = errors.New("book not found")
	// ErrConflict is returned when a write collides with an identifier that
	// already belongs to another book.
	ErrConflict = errors.New("book identifier already linked")
	// ErrUpstreamUnavailable is returned when the catalog fetch failed and no
	// local record could be served instead.
	ErrUpstreamUnavailable = errors.New("catalog unavailable")
)

// Book is the canonical record for one logical work. Multiple catalog
// editions map to a single Book through AlternativeIDs.
type Book struct {
	ID             string    `json:"id"`
	ExternalID     string    `json:"external_id"`
	AlternativeIDs []string  `json:"alternative_ids,omitempty"`
	Title          string    `json:"title"`
	Subtitle       string    `json:"subtitle,omitempty"`
	Authors        []string  `json:"authors"`
	Genres         []string  `json:"genres,omitempty"`
	Description    string    `json:"description,omitempty"`
	CoverImage     string    `json:"cover_image,omitempty"`
	CoverID        int       `json:"cover_id,omitempty"`
	ReleaseDate    string    `json:"release_date,omitempty"`
	AverageRating  float64   `json:"average_rating"`
	RatingsCount   int       `json:"ratings_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasIdentifier reports whether id is the primary external identifier or one
// of the linked alternatives.
func (b *Book) HasIdentifier(id string) bool {
	if b.ExternalID == id {
		return true
	}
	for _, alt := range b.AlternativeIDs {
		if alt == id {
			return true
		}
	}
	return false
}

// Candidate is the normalized attribute set produced from one catalog
// record, before it is merged into (or becomes) a Book.
type Candidate struct {
	ExternalID  string
	Title       string
	Subtitle    string
	Authors     []string
	Genres      []string
	Description string
	CoverImage  string
	CoverID     int
	ReleaseDate string
}

// Hints carries caller-supplied fields used to fill gaps the catalog record
// leaves open.
type Hints struct {
	Title       string
	Authors     []string
	CoverImage  string
	CoverID     int
	ReleaseDate string
}
