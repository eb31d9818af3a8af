package repository

import (
	"context"
	"database/sql"
	"errors"

	"news-aggregator/backend/internal/tag/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a tag repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tagColumns = "id, name, created_at"

// GetByID returns the tag for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE id = $1", id)
	return scanTag(row)
}

// GetByName returns the tag with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE name = $1", name)
	return scanTag(row)
}

// List returns all tags ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+tagColumns+" FROM tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create persists the tag. The caller assigns the ID.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Tag) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)",
		t.ID, t.Name, t.CreatedAt)
	return err
}

// Update rewrites the tag name.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Tag) error {
	_, err := r.db.ExecContext(ctx, "UPDATE tags SET name = $2 WHERE id = $1", t.ID, t.Name)
	return err
}

// Delete removes the tag. Deleting a missing tag is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = $1", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTag(row rowScanner) (*domain.Tag, error) {
	var t domain.Tag
	err := row.Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
