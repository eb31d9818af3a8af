package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	articledomain "news-aggregator/backend/internal/article/domain"
	"news-aggregator/backend/internal/auth/service"
	"news-aggregator/backend/internal/policy/engine"
	"news-aggregator/backend/internal/report/domain"
	"news-aggregator/backend/internal/server/middleware"
	userdomain "news-aggregator/backend/internal/user/domain"
)

type memArticles struct {
	ids map[string]bool
}

func (r *memArticles) Feed(ctx context.Context, f articledomain.FeedFilter) ([]*articledomain.Article, int, error) {
	return nil, 0, nil
}

func (r *memArticles) GetByID(ctx context.Context, id string) (*articledomain.Article, error) {
	if r.ids[id] {
		return &articledomain.Article{ID: id}, nil
	}
	return nil, nil
}

func (r *memArticles) Exists(ctx context.Context, id string) (bool, error) {
	return r.ids[id], nil
}

func (r *memArticles) Create(ctx context.Context, a *articledomain.Article) error { return nil }

func (r *memArticles) SetTags(ctx context.Context, articleID string, tagIDs []string) error {
	return nil
}

type memRepo struct {
	byID map[string]*domain.Report
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*domain.Report{}}
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	return r.byID[id], nil
}

func (r *memRepo) GetOpenByUserAndArticle(ctx context.Context, userID, articleID string) (*domain.Report, error) {
	for _, rep := range r.byID {
		if rep.UserID == userID && rep.ArticleID == articleID && rep.Status.Open() {
			return rep, nil
		}
	}
	return nil, nil
}

func (r *memRepo) List(ctx context.Context, status domain.Status) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, rep := range r.byID {
		if status == "" || rep.Status == status {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *memRepo) Create(ctx context.Context, rep *domain.Report) error {
	r.byID[rep.ID] = rep
	return nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if rep, ok := r.byID[id]; ok {
		rep.Status = status
	}
	return nil
}

const articleID = "5b2f19a0-90f4-4f1a-9fd2-54a4a5e7c001"

func authedRequest(method, target, body string, role userdomain.Role) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ident := &service.Identity{UserID: "u1", Username: "alice", Role: role}
	return req.WithContext(middleware.WithIdentity(req.Context(), ident))
}

func newTestHandler(t *testing.T) (*Handler, *memRepo) {
	t.Helper()
	policy, err := engine.NewOPAEvaluator("")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	repo := newMemRepo()
	articles := &memArticles{ids: map[string]bool{articleID: true}}
	return New(repo, articles, policy, nil, zap.NewNop()), repo
}

func TestCreate(t *testing.T) {
	h, repo := newTestHandler(t)

	body := `{"articleId":"` + articleID + `","reason":"misleading headline and content"}`
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/reports", body, userdomain.RoleUser))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	for _, rep := range repo.byID {
		if rep.Status != domain.StatusNew {
			t.Errorf("new report status = %q, want new", rep.Status)
		}
	}
}

func TestCreate_ShortReason(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"articleId":"` + articleID + `","reason":"bad"}`
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/reports", body, userdomain.RoleUser))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "reason") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreate_DuplicateOpenReport(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.byID["r1"] = &domain.Report{
		ID: "r1", UserID: "u1", ArticleID: articleID, Status: domain.StatusReviewed,
	}

	body := `{"articleId":"` + articleID + `","reason":"misleading headline and content"}`
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/reports", body, userdomain.RoleUser))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already_reported") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreate_ClosedReportDoesNotBlock(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.byID["r1"] = &domain.Report{
		ID: "r1", UserID: "u1", ArticleID: articleID, Status: domain.StatusClosed,
	}

	body := `{"articleId":"` + articleID + `","reason":"misleading headline and content"}`
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/reports", body, userdomain.RoleUser))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateStatus(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.byID["r1"] = &domain.Report{
		ID: "r1", UserID: "u2", ArticleID: articleID, Status: domain.StatusNew,
	}

	req := authedRequest("PUT", "/api/reports/r1", `{"status":"reviewed"}`, userdomain.RoleModerator)
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if repo.byID["r1"].Status != domain.StatusReviewed {
		t.Errorf("report status = %q, want reviewed", repo.byID["r1"].Status)
	}
	if !strings.Contains(rec.Body.String(), `"data":{"id":"r1"`) {
		t.Errorf("report fields should sit directly in data: %s", rec.Body.String())
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.byID["r1"] = &domain.Report{
		ID: "r1", UserID: "u2", ArticleID: articleID, Status: domain.StatusNew,
	}

	req := authedRequest("PUT", "/api/reports/r1", `{"status":"archived"}`, userdomain.RoleAdmin)
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateStatus_PolicyDenies(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.byID["r1"] = &domain.Report{
		ID: "r1", UserID: "u2", ArticleID: articleID, Status: domain.StatusNew,
	}

	// Plain users never pass the moderation policy.
	req := authedRequest("PUT", "/api/reports/r1", `{"status":"closed"}`, userdomain.RoleUser)
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestList_StatusFilter(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.byID["r1"] = &domain.Report{ID: "r1", Status: domain.StatusNew}
	repo.byID["r2"] = &domain.Report{ID: "r2", Status: domain.StatusClosed}

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest("GET", "/api/reports?status=closed", "", userdomain.RoleAdmin))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"r1"`) {
		t.Error("filtered list should not include r1")
	}

	rec = httptest.NewRecorder()
	h.List(rec, authedRequest("GET", "/api/reports?status=bogus", "", userdomain.RoleAdmin))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus filter status = %d, want 400", rec.Code)
	}
}
