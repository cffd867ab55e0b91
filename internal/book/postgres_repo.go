package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresRepo persists books. Identifier uniqueness across records is
// enforced by the book_identifiers table: one row per primary or
// alternative id, PRIMARY KEY on the identifier itself.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const bookColumns = `
	b.id, b.external_id, b.alternative_ids, b.title, b.subtitle, b.authors,
	b.genres, b.description, b.cover_image, b.cover_id, b.release_date,
	b.average_rating, b.ratings_count, b.created_at, b.updated_at`

func scanBook(row pgx.Row) (*Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.ExternalID, &b.AlternativeIDs, &b.Title, &b.Subtitle, &b.Authors,
		&b.Genres, &b.Description, &b.CoverImage, &b.CoverID, &b.ReleaseDate,
		&b.AverageRating, &b.RatingsCount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostgresRepo) FindByIdentifier(ctx context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		JOIN book_identifiers i ON i.book_id = b.id
		WHERE i.identifier = $1
		LIMIT 1`, bookColumns)

	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books b WHERE b.id = $1`, bookColumns)
	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PostgresRepo) FindByTitle(ctx context.Context, title string) ([]Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books b WHERE lower(b.title) = lower($1)`, bookColumns)
	return r.queryBooks(ctx, query, title)
}

func (r *PostgresRepo) ListByAuthor(ctx context.Context, authors []string) ([]Book, error) {
	lowered := make([]string, len(authors))
	for i, a := range authors {
		lowered[i] = strings.ToLower(a)
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		WHERE EXISTS (
			SELECT 1 FROM unnest(b.authors) AS a WHERE lower(a) = ANY($1)
		)`, bookColumns)
	return r.queryBooks(ctx, query, lowered)
}

func (r *PostgresRepo) queryBooks(ctx context.Context, query string, args ...any) ([]Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// Create inserts the book and one identifier row per id it claims. Two
// concurrent creates for the same identifier cannot both succeed: the loser
// gets a unique violation, surfaced as ErrConflict so the caller can
// re-read the winner's record.
func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertSQL = `
		INSERT INTO books (external_id, alternative_ids, title, subtitle, authors, genres,
			description, cover_image, cover_id, release_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, insertSQL,
		b.ExternalID, b.AlternativeIDs, b.Title, b.Subtitle, b.Authors, b.Genres,
		b.Description, b.CoverImage, b.CoverID, b.ReleaseDate,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	for _, id := range append([]string{b.ExternalID}, b.AlternativeIDs...) {
		if _, err := tx.Exec(ctx,
			`INSERT INTO book_identifiers (identifier, book_id) VALUES ($1, $2)`, id, b.ID,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrConflict, id)
			}
			return fmt.Errorf("link identifier: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Update rewrites the full record and links any newly observed identifiers.
// Concurrent enrichment writes race benignly (each only improves fields), so
// already-claimed identifier rows are left alone.
func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const updateSQL = `
		UPDATE books SET
			alternative_ids = $2, title = $3, subtitle = $4, authors = $5,
			genres = $6, description = $7, cover_image = $8, cover_id = $9,
			release_date = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err = tx.QueryRow(ctx, updateSQL,
		b.ID, b.AlternativeIDs, b.Title, b.Subtitle, b.Authors,
		b.Genres, b.Description, b.CoverImage, b.CoverID, b.ReleaseDate,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update book: %w", err)
	}

	for _, id := range b.AlternativeIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO book_identifiers (identifier, book_id)
			VALUES ($1, $2)
			ON CONFLICT (identifier) DO NOTHING`, id, b.ID,
		); err != nil {
			return fmt.Errorf("link identifier: %w", err)
		}
	}

	// DO NOTHING leaves identifiers claimed by another record with that
	// record; drop them from the array so it never overstates the rows this
	// book actually owns.
	owned, err := ownedIdentifiers(ctx, tx, b.ID)
	if err != nil {
		return err
	}
	if kept, changed := reconcileAlternativeIDs(b.AlternativeIDs, owned); changed {
		b.AlternativeIDs = kept
		if _, err := tx.Exec(ctx,
			`UPDATE books SET alternative_ids = $2 WHERE id = $1`, b.ID, kept,
		); err != nil {
			return fmt.Errorf("reconcile identifiers: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func ownedIdentifiers(ctx context.Context, tx pgx.Tx, bookID string) (map[string]bool, error) {
	rows, err := tx.Query(ctx,
		`SELECT identifier FROM book_identifiers WHERE book_id = $1`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	defer rows.Close()

	owned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

// reconcileAlternativeIDs filters the array down to identifiers backed by an
// owned row, preserving order, and reports whether anything was dropped.
func reconcileAlternativeIDs(altIDs []string, owned map[string]bool) ([]string, bool) {
	kept := make([]string, 0, len(altIDs))
	for _, id := range altIDs {
		if owned[id] {
			kept = append(kept, id)
		}
	}
	return kept, len(kept) != len(altIDs)
}

// TouchUpdatedAt resets the staleness clock after a refresh fetch that
// produced no semantic change, avoiding a full-row rewrite.
func (r *PostgresRepo) TouchUpdatedAt(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE books SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
