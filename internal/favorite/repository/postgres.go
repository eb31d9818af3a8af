package repository

import (
	"context"
	"database/sql"
	"errors"

	articlerepo "news-aggregator/backend/internal/article/repository"
	"news-aggregator/backend/internal/favorite/domain"
)

type PostgresRepository struct {
	db       *sql.DB
	articles articlerepo.Repository
}

// NewPostgresRepository returns a favorite repository backed by db. The article
// repository is used to embed articles when listing.
func NewPostgresRepository(db *sql.DB, articles articlerepo.Repository) *PostgresRepository {
	return &PostgresRepository{db: db, articles: articles}
}

const favoriteColumns = "id, user_id, article_id, created_at"

// GetByID returns the favorite for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Favorite, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+favoriteColumns+" FROM favorites WHERE id = $1", id)
	return scanFavorite(row)
}

// GetByUserAndArticle returns the user's favorite of the article, or nil.
func (r *PostgresRepository) GetByUserAndArticle(ctx context.Context, userID, articleID string) (*domain.Favorite, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+favoriteColumns+" FROM favorites WHERE user_id = $1 AND article_id = $2", userID, articleID)
	return scanFavorite(row)
}

// ListByUser returns the user's favorites, newest first, with articles embedded.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+favoriteColumns+" FROM favorites WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Favorite
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, f := range out {
		article, err := r.articles.GetByID(ctx, f.ArticleID)
		if err != nil {
			return nil, err
		}
		f.Article = article
	}
	return out, nil
}

// Create persists the favorite. The caller assigns the ID and checks for
// duplicates first; the unique constraint is the backstop.
func (r *PostgresRepository) Create(ctx context.Context, f *domain.Favorite) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO favorites (id, user_id, article_id, created_at) VALUES ($1, $2, $3, $4)",
		f.ID, f.UserID, f.ArticleID, f.CreatedAt)
	return err
}

// Delete removes the favorite. Deleting a missing favorite is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM favorites WHERE id = $1", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFavorite(row rowScanner) (*domain.Favorite, error) {
	var f domain.Favorite
	err := row.Scan(&f.ID, &f.UserID, &f.ArticleID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}
