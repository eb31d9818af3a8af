// seed inserts development sample data for local testing. Idempotent: skips
// inserts if the admin user already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	articledomain "news-aggregator/backend/internal/article/domain"
	articlerepo "news-aggregator/backend/internal/article/repository"
	"news-aggregator/backend/internal/config"
	"news-aggregator/backend/internal/db"
	"news-aggregator/backend/internal/security"
	sourcedomain "news-aggregator/backend/internal/source/domain"
	sourcerepo "news-aggregator/backend/internal/source/repository"
	tagdomain "news-aggregator/backend/internal/tag/domain"
	tagrepo "news-aggregator/backend/internal/tag/repository"
	userdomain "news-aggregator/backend/internal/user/domain"
	userrepo "news-aggregator/backend/internal/user/repository"
)

const seedPassword = "password123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	sources := sourcerepo.NewPostgresRepository(conn)
	tags := tagrepo.NewPostgresRepository(conn)
	articles := articlerepo.NewPostgresRepository(conn)

	existing, err := users.GetByUsername(ctx, "admin")
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (admin exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	accounts := []struct {
		username string
		role     userdomain.Role
	}{
		{"admin", userdomain.RoleAdmin},
		{"moderator", userdomain.RoleModerator},
		{"reader", userdomain.RoleUser},
	}
	for _, a := range accounts {
		u := &userdomain.User{
			ID:           uuid.New().String(),
			Username:     a.username,
			PasswordHash: passwordHash,
			Role:         a.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create user %s: %v", a.username, err)
		}
	}

	sourceSpecs := []struct {
		name, url, description string
	}{
		{"The Daily Chronicle", "https://chronicle.example.com", "General interest daily"},
		{"TechWire", "https://techwire.example.com", "Technology news"},
		{"World Report", "https://worldreport.example.com", "International coverage"},
	}
	var sourceIDs []string
	for _, s := range sourceSpecs {
		src := &sourcedomain.Source{
			ID:          uuid.New().String(),
			Name:        s.name,
			URL:         s.url,
			Description: s.description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := sources.Create(ctx, src); err != nil {
			log.Fatalf("create source %s: %v", s.name, err)
		}
		sourceIDs = append(sourceIDs, src.ID)
	}

	tagNames := []string{"politics", "technology", "science", "sports", "culture", "economy"}
	var tagIDs []string
	for _, name := range tagNames {
		tg := &tagdomain.Tag{ID: uuid.New().String(), Name: name, CreatedAt: now}
		if err := tags.Create(ctx, tg); err != nil {
			log.Fatalf("create tag %s: %v", name, err)
		}
		tagIDs = append(tagIDs, tg.ID)
	}

	articleSpecs := []struct {
		title   string
		source  int
		tags    []int
		ageDays int
	}{
		{"Parliament passes budget amendments", 0, []int{0, 5}, 1},
		{"New chip architecture doubles battery life", 1, []int{1, 2}, 2},
		{"Ocean survey finds unknown deep-sea species", 2, []int{2}, 3},
		{"League final draws record audience", 0, []int{3, 4}, 4},
		{"Markets react to central bank announcement", 2, []int{5}, 5},
		{"Open source project reaches version 10", 1, []int{1}, 6},
	}
	for _, a := range articleSpecs {
		art := &articledomain.Article{
			ID:          uuid.New().String(),
			SourceID:    sourceIDs[a.source],
			Title:       a.title,
			Content:     "Sample article body for " + a.title + ".",
			URL:         sourceSpecs[a.source].url + "/articles/" + uuid.New().String(),
			PublishedAt: now.AddDate(0, 0, -a.ageDays),
			CreatedAt:   now,
		}
		if err := articles.Create(ctx, art); err != nil {
			log.Fatalf("create article %q: %v", a.title, err)
		}
		ids := make([]string, 0, len(a.tags))
		for _, ti := range a.tags {
			ids = append(ids, tagIDs[ti])
		}
		if err := articles.SetTags(ctx, art.ID, ids); err != nil {
			log.Fatalf("tag article %q: %v", a.title, err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Logins: admin / %s, moderator / %s, reader / %s\n", seedPassword, seedPassword, seedPassword)
}
