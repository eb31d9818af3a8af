package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"news-aggregator/backend/internal/tag/domain"
)

type memRepo struct {
	byID map[string]*domain.Tag
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*domain.Tag{}}
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	return r.byID[id], nil
}

func (r *memRepo) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	for _, t := range r.byID {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memRepo) List(ctx context.Context) ([]*domain.Tag, error) {
	var out []*domain.Tag
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out, nil
}

func (r *memRepo) Create(ctx context.Context, t *domain.Tag) error {
	r.byID[t.ID] = t
	return nil
}

func (r *memRepo) Update(ctx context.Context, t *domain.Tag) error {
	r.byID[t.ID] = t
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func TestCreate(t *testing.T) {
	repo := newMemRepo()
	h := New(repo, nil, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/tags", strings.NewReader(`{"name":"politics"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.byID) != 1 {
		t.Errorf("stored tags = %d, want 1", len(repo.byID))
	}
	if !strings.Contains(rec.Body.String(), `"data":{"id":`) {
		t.Errorf("tag fields should sit directly in data: %s", rec.Body.String())
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo := newMemRepo()
	repo.byID["t1"] = &domain.Tag{ID: "t1", Name: "politics"}
	h := New(repo, nil, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/tags", strings.NewReader(`{"name":"politics"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUpdate_NotFound(t *testing.T) {
	h := New(newMemRepo(), nil, zap.NewNop())

	req := httptest.NewRequest("PUT", "/api/tags/missing", strings.NewReader(`{"name":"x"}`))
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
