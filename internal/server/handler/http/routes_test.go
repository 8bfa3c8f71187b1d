package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/avoronov/bankadmin/internal/middleware"
	"github.com/avoronov/bankadmin/internal/models"
	"github.com/avoronov/bankadmin/internal/session"
)

type routeLoader struct {
	principals map[string]models.Principal
}

func (l *routeLoader) LoadPrincipal(ctx context.Context, sessionID string) (models.Principal, error) {
	if p, ok := l.principals[sessionID]; ok {
		return p, nil
	}
	return nil, context.Canceled
}

func newTestRouter(t *testing.T, loader middleware.PrincipalLoader) (http.Handler, *session.Manager) {
	t.Helper()
	sessions := testSessions()
	renderer := NewRenderer(testTemplateDir, sessions)

	bank := &fakeBankService{
		accountsFn: func(ctx context.Context, userID int64) ([]models.Account, error) {
			return []models.Account{{ID: 1, UserID: userID, Number: "ACC-AAA", BalanceCents: 100}}, nil
		},
	}
	admin := &fakeAdminService{}
	activity := &fakeActivityService{}

	handler := NewRouter(RouterDeps{
		Auth:      &AuthHandler{Auth: &fakeAuthService{}, Sessions: sessions, Renderer: renderer},
		User:      &UserHandler{Bank: bank, Sessions: sessions, Renderer: renderer},
		Admin:     &AdminHandler{Admin: admin, Activity: activity, Sessions: sessions, Renderer: renderer},
		Renderer:  renderer,
		Sessions:  sessions,
		Loader:    loader,
		Logger:    zap.NewNop(),
		StaticDir: "../../../../web/static",
	})
	return handler, sessions
}

func TestRootRedirectsToChooser(t *testing.T) {
	router, _ := newTestRouter(t, &routeLoader{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/choose" {
		t.Errorf("expected redirect to /auth/choose, got %q", loc)
	}
}

func TestStaticAssetsServed(t *testing.T) {
	router, _ := newTestRouter(t, &routeLoader{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "font-family") {
		t.Error("expected the stylesheet body")
	}
}

func TestUnknownPathRendersNotFoundPage(t *testing.T) {
	router, _ := newTestRouter(t, &routeLoader{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Page not found") {
		t.Error("expected the dedicated not-found page body")
	}
}

func TestProtectedRoutesRedirectWithoutSession(t *testing.T) {
	router, _ := newTestRouter(t, &routeLoader{})

	paths := []string{"/user/dashboard", "/user/transfer", "/user/transactions", "/admin/dashboard", "/admin/users"}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusFound {
			t.Errorf("%s: expected status 302, got %d", path, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != "/auth/choose" {
			t.Errorf("%s: expected redirect to /auth/choose, got %q", path, loc)
		}
	}
}

func TestUserSessionReachesDashboard(t *testing.T) {
	loader := &routeLoader{principals: map[string]models.Principal{
		"42": &models.User{ID: 42, Username: "bob", Active: true},
	}}
	router, sessions := newTestRouter(t, loader)

	rec := httptest.NewRecorder()
	if err := sessions.SetPrincipal(rec, httptest.NewRequest(http.MethodGet, "/", nil), "42"); err != nil {
		t.Fatalf("SetPrincipal returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/user/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)

	if out.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", out.Code)
	}
	if !strings.Contains(out.Body.String(), "ACC-AAA") {
		t.Error("expected the user's account on the dashboard")
	}
}

func TestUserSessionRejectedOnAdminPages(t *testing.T) {
	loader := &routeLoader{principals: map[string]models.Principal{
		"42": &models.User{ID: 42, Username: "bob", Active: true},
	}}
	router, sessions := newTestRouter(t, loader)

	rec := httptest.NewRecorder()
	if err := sessions.SetPrincipal(rec, httptest.NewRequest(http.MethodGet, "/", nil), "42"); err != nil {
		t.Fatalf("SetPrincipal returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)

	if out.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", out.Code)
	}
	if loc := out.Header().Get("Location"); loc != "/auth/choose" {
		t.Errorf("expected redirect to /auth/choose, got %q", loc)
	}
}
