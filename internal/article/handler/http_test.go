package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"news-aggregator/backend/internal/article/domain"
)

type memRepo struct {
	articles []*domain.Article
	lastFeed domain.FeedFilter
}

func (r *memRepo) Feed(ctx context.Context, filter domain.FeedFilter) ([]*domain.Article, int, error) {
	r.lastFeed = filter
	var out []*domain.Article
	for _, a := range r.articles {
		if filter.SourceID != "" && a.SourceID != filter.SourceID {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	for _, a := range r.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Exists(ctx context.Context, id string) (bool, error) {
	a, _ := r.GetByID(ctx, id)
	return a != nil, nil
}

func (r *memRepo) Create(ctx context.Context, a *domain.Article) error {
	r.articles = append(r.articles, a)
	return nil
}

func (r *memRepo) SetTags(ctx context.Context, articleID string, tagIDs []string) error {
	return nil
}

func TestFeed_Defaults(t *testing.T) {
	repo := &memRepo{}
	h := New(repo, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Feed(rec, httptest.NewRequest("GET", "/api/feed", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if repo.lastFeed.Limit != 50 || repo.lastFeed.Offset != 0 {
		t.Errorf("filter = %+v, want limit 50 offset 0", repo.lastFeed)
	}

	var body struct {
		Data struct {
			Articles   []any          `json:"articles"`
			Pagination map[string]int `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Data.Articles == nil {
		t.Error("articles should be an empty array, not null")
	}
	if body.Data.Pagination["limit"] != 50 {
		t.Errorf("pagination = %v", body.Data.Pagination)
	}
}

func TestFeed_LimitCap(t *testing.T) {
	repo := &memRepo{}
	h := New(repo, zap.NewNop())

	tests := []struct {
		query     string
		wantLimit int
	}{
		{"limit=10", 10},
		{"limit=500", 100},
		{"limit=abc", 50},
		{"limit=-3", 50},
		{"limit=0", 50},
	}
	for _, tt := range tests {
		h.Feed(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/feed?"+tt.query, nil))
		if repo.lastFeed.Limit != tt.wantLimit {
			t.Errorf("%s: limit = %d, want %d", tt.query, repo.lastFeed.Limit, tt.wantLimit)
		}
	}
}

func TestFeed_Filters(t *testing.T) {
	repo := &memRepo{}
	h := New(repo, zap.NewNop())

	h.Feed(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/feed?tagId=t1&sourceId=s1", nil))

	if repo.lastFeed.TagID != "t1" || repo.lastFeed.SourceID != "s1" {
		t.Errorf("filter = %+v", repo.lastFeed)
	}
}

func TestGet(t *testing.T) {
	repo := &memRepo{articles: []*domain.Article{{
		ID:          "a1",
		SourceID:    "s1",
		Title:       "Hello",
		PublishedAt: time.Now(),
	}}}
	h := New(repo, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/feed/a1", nil)
	req.SetPathValue("id", "a1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"title":"Hello"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"data":{"id":"a1"`) {
		t.Errorf("article fields should sit directly in data: %s", rec.Body.String())
	}
}

func TestGet_NotFound(t *testing.T) {
	h := New(&memRepo{}, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/feed/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
