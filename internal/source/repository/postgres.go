package repository

import (
	"context"
	"database/sql"
	"errors"

	"news-aggregator/backend/internal/source/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a source repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sourceColumns = "id, name, url, description, created_at, updated_at"

// GetByID returns the source for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Source, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE id = $1", id)
	return scanSource(row)
}

// ArticlesCount returns the number of articles attached to the source.
func (r *PostgresRepository) ArticlesCount(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM articles WHERE source_id = $1", id).Scan(&n)
	return n, err
}

// List returns all sources ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Source, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+sourceColumns+" FROM sources ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create persists the source. The caller assigns the ID.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Source) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sources (id, name, url, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.URL, nullString(s.Description), s.CreatedAt, s.UpdatedAt)
	return err
}

// Update rewrites name, url, description and updated_at.
func (r *PostgresRepository) Update(ctx context.Context, s *domain.Source) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sources SET name = $2, url = $3, description = $4, updated_at = $5 WHERE id = $1`,
		s.ID, s.Name, s.URL, nullString(s.Description), s.UpdatedAt)
	return err
}

// Delete removes the source. Deleting a missing source is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sources WHERE id = $1", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var s domain.Source
	var desc sql.NullString
	err := row.Scan(&s.ID, &s.Name, &s.URL, &desc, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.Description = desc.String
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
