package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeInto(t *testing.T) {
	t.Run("longer description wins", func(t *testing.T) {
		b := Book{ID: "b1", ExternalID: "OL1W", Description: "short"}
		dirty := MergeInto(&b, Candidate{Description: "a much longer description"}, "OL1W")
		assert.True(t, dirty)
		assert.Equal(t, "a much longer description", b.Description)
	})

	t.Run("shorter description never replaces", func(t *testing.T) {
		b := Book{ID: "b1", ExternalID: "OL1W", Description: "the long established description"}
		dirty := MergeInto(&b, Candidate{Description: "short"}, "OL1W")
		assert.False(t, dirty)
		assert.Equal(t, "the long established description", b.Description)
	})

	t.Run("cover fills only when missing and carries its id", func(t *testing.T) {
		b := Book{ID: "b1", ExternalID: "OL1W"}
		dirty := MergeInto(&b, Candidate{CoverImage: "https://covers.example/1.jpg", CoverID: 42}, "OL1W")
		assert.True(t, dirty)
		assert.Equal(t, "https://covers.example/1.jpg", b.CoverImage)
		assert.Equal(t, 42, b.CoverID)

		dirty = MergeInto(&b, Candidate{CoverImage: "https://covers.example/2.jpg", CoverID: 99}, "OL1W")
		assert.False(t, dirty)
		assert.Equal(t, "https://covers.example/1.jpg", b.CoverImage)
		assert.Equal(t, 42, b.CoverID)
	})

	t.Run("subtitle and release date fill when missing", func(t *testing.T) {
		b := Book{ID: "b1", ExternalID: "OL1W"}
		dirty := MergeInto(&b, Candidate{Subtitle: "A Novel", ReleaseDate: "1965"}, "OL1W")
		assert.True(t, dirty)
		assert.Equal(t, "A Novel", b.Subtitle)
		assert.Equal(t, "1965", b.ReleaseDate)
	})

	t.Run("authors and genres union merge", func(t *testing.T) {
		b := Book{
			ID:         "b1",
			ExternalID: "OL1W",
			Authors:    []string{"Terry Pratchett"},
			Genres:     []string{"Fantasy"},
		}
		dirty := MergeInto(&b, Candidate{
			Authors: []string{"Neil Gaiman", "terry pratchett"},
			Genres:  []string{"fantasy", "Humor"},
		}, "OL1W")
		assert.True(t, dirty)
		assert.Equal(t, []string{"Terry Pratchett", "Neil Gaiman"}, b.Authors)
		assert.Equal(t, []string{"Fantasy", "Humor"}, b.Genres)
	})

	t.Run("unknown identifier is linked as alternative", func(t *testing.T) {
		b := Book{ID: "b1", ExternalID: "OL1W"}
		dirty := MergeInto(&b, Candidate{}, "OL2W")
		assert.True(t, dirty)
		assert.Equal(t, []string{"OL2W"}, b.AlternativeIDs)
	})

	t.Run("already-linked identifier leaves record clean", func(t *testing.T) {
		b := Book{ID: "b1", ExternalID: "OL1W", AlternativeIDs: []string{"OL2W"}}
		dirty := MergeInto(&b, Candidate{}, "OL2W")
		assert.False(t, dirty)
		assert.Equal(t, []string{"OL2W"}, b.AlternativeIDs)
	})

	t.Run("merge never removes data", func(t *testing.T) {
		b := Book{
			ID:          "b1",
			ExternalID:  "OL1W",
			Title:       "Dune",
			Subtitle:    "First in the Chronicles",
			Authors:     []string{"Frank Herbert"},
			Genres:      []string{"Science Fiction"},
			Description: "a long established description of the work",
			CoverImage:  "https://covers.example/1.jpg",
			CoverID:     42,
			ReleaseDate: "1965",
		}
		before := b
		dirty := MergeInto(&b, Candidate{}, "OL1W")
		assert.False(t, dirty)
		assert.Equal(t, before, b)
	})
}

func TestNewFromCandidate(t *testing.T) {
	t.Run("queried id matching canonical id has no alternatives", func(t *testing.T) {
		b := NewFromCandidate(Candidate{ExternalID: "OL1W", Title: "Dune"}, "OL1W")
		assert.Equal(t, "OL1W", b.ExternalID)
		assert.Empty(t, b.AlternativeIDs)
	})

	t.Run("diverging canonical id links the queried one", func(t *testing.T) {
		b := NewFromCandidate(Candidate{ExternalID: "OL1W", Title: "Dune"}, "OL2W")
		assert.Equal(t, "OL1W", b.ExternalID)
		assert.Equal(t, []string{"OL2W"}, b.AlternativeIDs)
	})

	t.Run("missing canonical id falls back to the queried one", func(t *testing.T) {
		b := NewFromCandidate(Candidate{Title: "Dune"}, "OL2W")
		assert.Equal(t, "OL2W", b.ExternalID)
		assert.Empty(t, b.AlternativeIDs)
	})
}
