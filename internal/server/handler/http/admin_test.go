package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/avoronov/bankadmin/internal/middleware"
	"github.com/avoronov/bankadmin/internal/models"
	"github.com/avoronov/bankadmin/internal/service"
)

type fakeAdminService struct {
	overviewFn  func(ctx context.Context) (service.Overview, error)
	listFn      func(ctx context.Context) ([]models.User, error)
	setActiveFn func(ctx context.Context, id int64, active bool) error
}

func (f *fakeAdminService) Overview(ctx context.Context) (service.Overview, error) {
	return f.overviewFn(ctx)
}

func (f *fakeAdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return f.listFn(ctx)
}

func (f *fakeAdminService) SetUserActive(ctx context.Context, id int64, active bool) error {
	return f.setActiveFn(ctx, id, active)
}

type fakeActivityService struct {
	recentFn func(ctx context.Context, limit int) ([]models.Transaction, error)
}

func (f *fakeActivityService) RecentActivity(ctx context.Context, limit int) ([]models.Transaction, error) {
	return f.recentFn(ctx, limit)
}

func newAdminHandler(admin *fakeAdminService, activity *fakeActivityService) *AdminHandler {
	sessions := testSessions()
	return &AdminHandler{
		Admin:    admin,
		Activity: activity,
		Sessions: sessions,
		Renderer: NewRenderer(testTemplateDir, sessions),
	}
}

func asAdmin(req *http.Request) *http.Request {
	admin := &models.Admin{ID: 1, Username: "admin"}
	return req.WithContext(middleware.WithPrincipal(req.Context(), admin))
}

func TestAdminDashboard(t *testing.T) {
	admin := &fakeAdminService{
		overviewFn: func(ctx context.Context) (service.Overview, error) {
			return service.Overview{Users: 3, Accounts: 4, BalanceCents: 250000}, nil
		},
	}
	activity := &fakeActivityService{
		recentFn: func(ctx context.Context, limit int) ([]models.Transaction, error) {
			if limit != 20 {
				t.Errorf("expected recent-activity limit 20, got %d", limit)
			}
			return []models.Transaction{{Reference: "ref-9", Kind: models.KindTransfer, AmountCents: 1200}}, nil
		},
	}
	h := newAdminHandler(admin, activity)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "2500.00") {
		t.Error("expected formatted total balance on the dashboard")
	}
	if !strings.Contains(body, "ref-9") {
		t.Error("expected recent activity on the dashboard")
	}
}

func TestAdminUsersList(t *testing.T) {
	admin := &fakeAdminService{
		listFn: func(ctx context.Context) ([]models.User, error) {
			return []models.User{
				{ID: 1, Username: "bob", Email: "bob@example.com", Active: true},
				{ID: 2, Username: "eve", Email: "eve@example.com", Active: false},
			}, nil
		},
	}
	h := newAdminHandler(admin, &fakeActivityService{})

	rec := httptest.NewRecorder()
	h.Users(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/admin/users", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "bob") || !strings.Contains(body, "eve") {
		t.Error("expected both users in the listing")
	}
	if !strings.Contains(body, "Deactivate") || !strings.Contains(body, "Activate") {
		t.Error("expected toggle buttons for both states")
	}
}

func TestSetUserActive(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		active     string
		wantID     int64
		wantActive bool
		wantCode   int
	}{
		{"deactivate", "7", "0", 7, false, http.StatusFound},
		{"activate", "7", "1", 7, true, http.StatusFound},
		{"malformed id", "x", "1", 0, false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID int64
			var gotActive bool
			admin := &fakeAdminService{
				setActiveFn: func(ctx context.Context, id int64, active bool) error {
					gotID, gotActive = id, active
					return nil
				},
			}
			h := newAdminHandler(admin, &fakeActivityService{})

			r := chi.NewRouter()
			r.Post("/admin/users/{id}/active", h.SetUserActive)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, asAdmin(postForm("/admin/users/"+tt.id+"/active", url.Values{
				"active": {tt.active},
			})))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode != http.StatusFound {
				return
			}
			if loc := rec.Header().Get("Location"); loc != "/admin/users" {
				t.Errorf("expected redirect to /admin/users, got %q", loc)
			}
			if gotID != tt.wantID || gotActive != tt.wantActive {
				t.Errorf("expected SetUserActive(%d, %v), got (%d, %v)", tt.wantID, tt.wantActive, gotID, gotActive)
			}
		})
	}
}

func TestAdminTransactions(t *testing.T) {
	activity := &fakeActivityService{
		recentFn: func(ctx context.Context, limit int) ([]models.Transaction, error) {
			if limit != 100 {
				t.Errorf("expected limit 100, got %d", limit)
			}
			return []models.Transaction{{Reference: "ref-3", Kind: models.KindWithdrawal, AmountCents: 700}}, nil
		},
	}
	h := newAdminHandler(&fakeAdminService{}, activity)

	rec := httptest.NewRecorder()
	h.Transactions(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/admin/transactions", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ref-3") {
		t.Error("expected transaction reference in the listing")
	}
}
