package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recto/internal/platform/openlibrary"
)

// staleAfter is the staleness window: records older than this are eligible
// for a catalog re-fetch.
const staleAfter = 7 * 24 * time.Hour

// Service resolves external identifiers to canonical book records, fetching
// and merging catalog data when the local copy is missing, stale, or queried
// through an identifier it has not seen yet.
type Service struct {
	repo    Repository
	catalog CatalogClient
	now     func() time.Time
}

func NewService(repo Repository, catalog CatalogClient) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// needsRefresh decides whether a catalog fetch is required. A nil book
// always requires one. An existing book requires one when it is older than
// the staleness window, or when the queried identifier is a new alias that
// should be linked even though the data itself is fresh.
func needsRefresh(b *Book, externalID string, now time.Time) bool {
	if b == nil {
		return true
	}
	if now.Sub(b.UpdatedAt) > staleAfter {
		return true
	}
	return !b.HasIdentifier(externalID)
}

// Resolve returns the canonical book for externalID, creating it from the
// external catalog if absent. Title and authors enable the fuzzy fallback
// and fill gaps the catalog record leaves open. Never returns (nil, nil).
func (s *Service) Resolve(ctx context.Context, externalID string, hints Hints) (*Book, error) {
	target, err := s.repo.FindByIdentifier(ctx, externalID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if target == nil && hints.Title != "" && len(hints.Authors) > 0 {
		target, err = s.findByTitleAndAuthors(ctx, hints.Title, hints.Authors)
		if err != nil {
			return nil, err
		}
	}

	if !needsRefresh(target, externalID, s.now()) {
		return target, nil
	}

	work, err := s.catalog.GetWork(ctx, externalID)
	if err != nil {
		// Degrade to the stale local record rather than failing the request.
		// The queried alias is still linked, so the next lookup by this id
		// hits directly instead of re-attempting a fetch mid-outage.
		if target != nil {
			if !target.HasIdentifier(externalID) {
				target.AlternativeIDs = append(target.AlternativeIDs, externalID)
				if uerr := s.repo.Update(ctx, target); uerr != nil {
					if errors.Is(uerr, ErrConflict) {
						return s.repo.FindByIdentifier(ctx, externalID)
					}
					return nil, uerr
				}
			}
			return target, nil
		}
		if errors.Is(err, openlibrary.ErrNotFound) {
			return nil, fmt.Errorf("%w: external id %s", ErrNotFound, externalID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	candidate := Normalize(work, hints)

	if target != nil {
		if dirty := MergeInto(target, candidate, externalID); dirty {
			if err := s.repo.Update(ctx, target); err != nil {
				return nil, err
			}
		} else if err := s.repo.TouchUpdatedAt(ctx, target.ID); err != nil {
			return nil, err
		}
		return target, nil
	}

	created := NewFromCandidate(candidate, externalID)
	if err := s.repo.Create(ctx, created); err != nil {
		if errors.Is(err, ErrConflict) {
			// A concurrent resolution created the record first; its
			// identifier rows won, so re-read the winner.
			return s.repo.FindByIdentifier(ctx, externalID)
		}
		return nil, err
	}
	return created, nil
}

// GetByID returns one book by its local id.
func (s *Service) GetByID(ctx context.Context, id string) (*Book, error) {
	return s.repo.GetByID(ctx, id)
}

// findByTitleAndAuthors is the multi-tier fuzzy fallback used when the
// identifier lookup misses. Tiers are tried in order; the first hit wins.
func (s *Service) findByTitleAndAuthors(ctx context.Context, title string, authors []string) (*Book, error) {
	sameTitle, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	// Tier 1: exact title and every supplied author represented.
	for i := range sameTitle {
		b := &sameTitle[i]
		all := true
		for _, a := range authors {
			if !containsAuthor(b.Authors, a) {
				all = false
				break
			}
		}
		if all {
			return b, nil
		}
	}

	// Tier 2: exact title and at least one overlapping author. Catches
	// editions listing extra editors or translators.
	for i := range sameTitle {
		if hasCommonAuthors(sameTitle[i].Authors, authors) {
			return &sameTitle[i], nil
		}
	}

	// Tier 3: normalized-title substring match among books sharing an
	// author. Handles retitled and bundled editions.
	candidates, err := s.repo.ListByAuthor(ctx, authors)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		c := &candidates[i]
		if titlesMatch(c.Title, title) && hasCommonAuthors(c.Authors, authors) {
			return c, nil
		}
	}

	return nil, nil
}
