package book

// MergeInto applies field-level enrichment rules from candidate onto target
// and reports whether anything changed. Every rule only improves: a merge
// replaces an empty or shorter value with a present or longer one, never the
// reverse, and list fields are union-merged.
func MergeInto(target *Book, candidate Candidate, externalID string) (dirty bool) {
	// Description: longer wins.
	if candidate.Description != "" && len(candidate.Description) > len(target.Description) {
		target.Description = candidate.Description
		dirty = true
	}

	// Cover: fill only if missing, carrying the paired numeric id.
	if target.CoverImage == "" && candidate.CoverImage != "" {
		target.CoverImage = candidate.CoverImage
		target.CoverID = candidate.CoverID
		dirty = true
	}

	if target.Subtitle == "" && candidate.Subtitle != "" {
		target.Subtitle = candidate.Subtitle
		dirty = true
	}

	if target.ReleaseDate == "" && candidate.ReleaseDate != "" {
		target.ReleaseDate = candidate.ReleaseDate
		dirty = true
	}

	if len(candidate.Authors) > 0 {
		merged := mergeAuthors(target.Authors, candidate.Authors)
		if len(merged) > len(target.Authors) {
			target.Authors = merged
			dirty = true
		}
	}

	if len(candidate.Genres) > 0 {
		merged := mergeGenres(target.Genres, candidate.Genres)
		if len(merged) > len(target.Genres) {
			target.Genres = merged
			dirty = true
		}
	}

	// Link the queried identifier so the next lookup hits directly.
	if !target.HasIdentifier(externalID) {
		target.AlternativeIDs = append(target.AlternativeIDs, externalID)
		dirty = true
	}

	return dirty
}

// NewFromCandidate turns a candidate into a fresh Book. When the catalog's
// own canonical id differs from the queried one, the queried id is linked as
// an alternative from the start.
func NewFromCandidate(candidate Candidate, externalID string) *Book {
	b := &Book{
		ExternalID:  candidate.ExternalID,
		Title:       candidate.Title,
		Subtitle:    candidate.Subtitle,
		Authors:     candidate.Authors,
		Genres:      candidate.Genres,
		Description: candidate.Description,
		CoverImage:  candidate.CoverImage,
		CoverID:     candidate.CoverID,
		ReleaseDate: candidate.ReleaseDate,
	}
	if b.ExternalID == "" {
		b.ExternalID = externalID
	}
	if b.ExternalID != externalID {
		b.AlternativeIDs = []string{externalID}
	}
	return b
}
