package book

import (
	"fmt"
	"strings"

	"recto/internal/platform/openlibrary"
)

// Normalize maps one raw catalog work to the canonical attribute set,
// filling gaps from caller-supplied hints. Pure function, no I/O.
func Normalize(work *openlibrary.Work, hints Hints) Candidate {
	c := Candidate{
		ExternalID:  strings.TrimPrefix(work.Key, "/works/"),
		Title:       work.Title,
		Subtitle:    work.Subtitle,
		Description: work.DescriptionText(),
		Genres:      normalizeSubjects(work.Subjects),
		ReleaseDate: work.FirstPublishDate,
	}

	if len(work.Covers) > 0 && work.Covers[0] > 0 {
		c.CoverID = work.Covers[0]
		c.CoverImage = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", work.Covers[0])
	}

	// The works API returns author keys without names; the caller's hints are
	// the only name source on this path.
	c.Authors = trimAll(hints.Authors)

	if c.Title == "" {
		c.Title = hints.Title
	}
	if c.CoverImage == "" && hints.CoverImage != "" {
		c.CoverImage = hints.CoverImage
		c.CoverID = hints.CoverID
	}
	if c.ReleaseDate == "" {
		c.ReleaseDate = hints.ReleaseDate
	}

	return c
}

func normalizeSubjects(subjects []string) []string {
	// Open Library subject lists run into the hundreds; keep the leading ones.
	const maxGenres = 10
	out := trimAll(subjects)
	if len(out) > maxGenres {
		out = out[:maxGenres]
	}
	return out
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
