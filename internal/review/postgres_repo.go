package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresRepo persists reviews. Aggregate updates lock the book row with
// SELECT ... FOR UPDATE before touching the pair, so concurrent operations
// on the same book serialize instead of both reading pre-update values.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (repo *PostgresRepo) GetByID(ctx context.Context, reviewID string) (*Review, error) {
	const query = `
		SELECT id, user_id, book_id, content, rating, created_at, updated_at
		FROM reviews
		WHERE id = $1`

	var r Review
	err := repo.db.QueryRow(ctx, query, reviewID).Scan(
		&r.ID, &r.UserID, &r.BookID, &r.Content, &r.Rating, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (repo *PostgresRepo) ListForBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error) {
	var total int
	if err := repo.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE book_id = $1`, bookID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT id, user_id, book_id, content, rating, created_at, updated_at
		FROM reviews
		WHERE book_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := repo.db.Query(ctx, query, bookID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.BookID, &r.Content, &r.Rating, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, r)
	}
	return reviews, total, rows.Err()
}

func (repo *PostgresRepo) CreateWithAggregate(ctx context.Context, r *Review) error {
	tx, err := repo.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	avg, count, err := lockBookAggregate(ctx, tx, r.BookID)
	if err != nil {
		return err
	}

	const insertSQL = `
		INSERT INTO reviews (user_id, book_id, content, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, insertSQL, r.UserID, r.BookID, r.Content, r.Rating).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s, book %s", ErrConflict, r.UserID, r.BookID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	newAvg, newCount := aggregateOnCreate(avg, count, r.Rating)
	if err := writeBookAggregate(ctx, tx, r.BookID, newAvg, newCount); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (repo *PostgresRepo) UpdateWithAggregate(ctx context.Context, r *Review, oldRating int) error {
	tx, err := repo.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ratingChanged := r.Rating != oldRating
	if ratingChanged {
		avg, count, err := lockBookAggregate(ctx, tx, r.BookID)
		if err != nil {
			return err
		}
		newAvg := aggregateOnChange(avg, count, oldRating, r.Rating)
		if err := writeBookAggregate(ctx, tx, r.BookID, newAvg, count); err != nil {
			return err
		}
	}

	const updateSQL = `
		UPDATE reviews SET content = $2, rating = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	if err := tx.QueryRow(ctx, updateSQL, r.ID, r.Content, r.Rating).Scan(&r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update review: %w", err)
	}

	return tx.Commit(ctx)
}

func (repo *PostgresRepo) DeleteWithAggregate(ctx context.Context, reviewID string) error {
	tx, err := repo.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Re-read inside the transaction: the rating subtracted must be the one
	// actually deleted.
	var bookID string
	var rating int
	err = tx.QueryRow(ctx,
		`SELECT book_id, rating FROM reviews WHERE id = $1 FOR UPDATE`, reviewID,
	).Scan(&bookID, &rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	avg, count, err := lockBookAggregate(ctx, tx, bookID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	newAvg, newCount := aggregateOnDelete(avg, count, rating)
	if err := writeBookAggregate(ctx, tx, bookID, newAvg, newCount); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func lockBookAggregate(ctx context.Context, tx pgx.Tx, bookID string) (float64, int, error) {
	var avg float64
	var count int
	err := tx.QueryRow(ctx,
		`SELECT average_rating, ratings_count FROM books WHERE id = $1 FOR UPDATE`, bookID,
	).Scan(&avg, &count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, fmt.Errorf("%w: book %s", ErrNotFound, bookID)
		}
		return 0, 0, err
	}
	return avg, count, nil
}

func writeBookAggregate(ctx context.Context, tx pgx.Tx, bookID string, avg float64, count int) error {
	_, err := tx.Exec(ctx,
		`UPDATE books SET average_rating = $2, ratings_count = $3 WHERE id = $1`,
		bookID, avg, count,
	)
	if err != nil {
		return fmt.Errorf("update book aggregate: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
