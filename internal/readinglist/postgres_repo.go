package readinglist

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Upsert(ctx context.Context, item *Item) error {
	const query = `
		INSERT INTO reading_list (user_id, book_id, status, started_at, finished_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			started_at = COALESCE(EXCLUDED.started_at, reading_list.started_at),
			finished_at = COALESCE(EXCLUDED.finished_at, reading_list.finished_at),
			updated_at = now()
		RETURNING created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		item.UserID, item.BookID, item.Status, item.StartedAt, item.FinishedAt,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *PostgresRepo) Remove(ctx context.Context, userID, bookID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM reading_list WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ListByStatus(ctx context.Context, userID, status string) ([]Item, error) {
	const query = `
		SELECT user_id, book_id, status, started_at, finished_at, created_at, updated_at
		FROM reading_list
		WHERE user_id = $1 AND status = $2
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.UserID, &it.BookID, &it.Status, &it.StartedAt, &it.FinishedAt, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
