package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"news-aggregator/backend/internal/article/domain"
	sourcedomain "news-aggregator/backend/internal/source/domain"
	tagdomain "news-aggregator/backend/internal/tag/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an article repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const articleSelect = `
SELECT a.id, a.source_id, a.title, a.content, a.url, a.published_at, a.created_at,
       s.id, s.name, s.url, s.description, s.created_at, s.updated_at,
       (SELECT count(*) FROM favorites f WHERE f.article_id = a.id),
       (SELECT count(*) FROM reports rp WHERE rp.article_id = a.id)
FROM articles a
JOIN sources s ON s.id = a.source_id`

// Feed returns one page of articles, newest publication first, with the total
// count matching the filter.
func (r *PostgresRepository) Feed(ctx context.Context, filter domain.FeedFilter) ([]*domain.Article, int, error) {
	var conds []string
	var args []any
	if filter.SourceID != "" {
		args = append(args, filter.SourceID)
		conds = append(conds, fmt.Sprintf("a.source_id = $%d", len(args)))
	}
	if filter.TagID != "" {
		args = append(args, filter.TagID)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM article_tags at WHERE at.article_id = a.id AND at.tag_id = $%d)", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM articles a"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf("%s%s ORDER BY a.published_at DESC LIMIT $%d OFFSET $%d",
		articleSelect, where, len(args)-1, len(args))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, a := range out {
		if err := r.loadTags(ctx, a); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// GetByID returns the article with source, tags and counters, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	row := r.db.QueryRowContext(ctx, articleSelect+" WHERE a.id = $1", id)
	a, err := scanArticle(row)
	if err != nil || a == nil {
		return nil, err
	}
	if err := r.loadTags(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Exists reports whether an article row exists.
func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// Create persists the article row. Tags are attached separately via SetTags.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Article) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (id, source_id, title, content, url, published_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.SourceID, a.Title, a.Content, a.URL, a.PublishedAt, a.CreatedAt)
	return err
}

// SetTags replaces the article's tag set inside one transaction.
func (r *PostgresRepository) SetTags(ctx context.Context, articleID string, tagIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM article_tags WHERE article_id = $1", articleID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)", articleID, tagID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) loadTags(ctx context.Context, a *domain.Article) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_at FROM tags t
		 JOIN article_tags at ON at.tag_id = t.id
		 WHERE at.article_id = $1 ORDER BY t.name`, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	a.Tags = []*tagdomain.Tag{}
	for rows.Next() {
		var t tagdomain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return err
		}
		a.Tags = append(a.Tags, &t)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var a domain.Article
	var s sourcedomain.Source
	var desc sql.NullString
	err := row.Scan(
		&a.ID, &a.SourceID, &a.Title, &a.Content, &a.URL, &a.PublishedAt, &a.CreatedAt,
		&s.ID, &s.Name, &s.URL, &desc, &s.CreatedAt, &s.UpdatedAt,
		&a.FavoritesCount, &a.ReportsCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.Description = desc.String
	a.Source = &s
	return &a, nil
}
