package repository

import (
	"context"
	"database/sql"
	"errors"

	"news-aggregator/backend/internal/report/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a report repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const reportColumns = "id, user_id, article_id, reason, status, created_at, updated_at"

// GetByID returns the report for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM reports WHERE id = $1", id)
	return scanReport(row)
}

// GetOpenByUserAndArticle returns the user's open report for the article, or nil.
func (r *PostgresRepository) GetOpenByUserAndArticle(ctx context.Context, userID, articleID string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+` FROM reports
		 WHERE user_id = $1 AND article_id = $2 AND status IN ('new', 'reviewed')
		 LIMIT 1`, userID, articleID)
	return scanReport(row)
}

// List returns reports newest first, optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, status domain.Status) ([]*domain.Report, error) {
	query := "SELECT " + reportColumns + " FROM reports"
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Create persists the report. The caller assigns the ID.
func (r *PostgresRepository) Create(ctx context.Context, rep *domain.Report) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, user_id, article_id, reason, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rep.ID, rep.UserID, rep.ArticleID, rep.Reason, string(rep.Status), rep.CreatedAt, rep.UpdatedAt)
	return err
}

// UpdateStatus sets the status and bumps updated_at.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE reports SET status = $2, updated_at = now() WHERE id = $1", id, string(status))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var rep domain.Report
	var status string
	err := row.Scan(&rep.ID, &rep.UserID, &rep.ArticleID, &rep.Reason, &status, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rep.Status = domain.Status(status)
	return &rep, nil
}
