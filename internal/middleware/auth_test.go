package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avoronov/bankadmin/internal/models"
	"github.com/avoronov/bankadmin/internal/session"
)

type fakeLoader struct {
	principal models.Principal
	err       error
}

func (f *fakeLoader) LoadPrincipal(ctx context.Context, sessionID string) (models.Principal, error) {
	return f.principal, f.err
}

func testSessions() *session.Manager {
	return session.NewManager("test-secret", time.Hour, true, false, http.SameSiteLaxMode)
}

// loginAs issues a request carrying a session cookie for the given id.
func loginAs(t *testing.T, m *session.Manager, id string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := m.SetPrincipal(rec, httptest.NewRequest("GET", "/", nil), id); err != nil {
		t.Fatalf("SetPrincipal returned error: %v", err)
	}
	req := httptest.NewRequest("GET", "/protected", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func okHandler(t *testing.T, wantPrincipal bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPrincipal && PrincipalFromContext(r.Context()) == nil {
			t.Error("expected principal in context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUser(t *testing.T) {
	sessions := testSessions()

	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		loader   *fakeLoader
		wantCode int
	}{
		{
			name:     "no session",
			req:      func(t *testing.T) *http.Request { return httptest.NewRequest("GET", "/protected", nil) },
			loader:   &fakeLoader{},
			wantCode: http.StatusFound,
		},
		{
			name:     "active user admitted",
			req:      func(t *testing.T) *http.Request { return loginAs(t, sessions, "42") },
			loader:   &fakeLoader{principal: &models.User{ID: 42, Active: true}},
			wantCode: http.StatusOK,
		},
		{
			name:     "deactivated user rejected",
			req:      func(t *testing.T) *http.Request { return loginAs(t, sessions, "42") },
			loader:   &fakeLoader{principal: &models.User{ID: 42, Active: false}},
			wantCode: http.StatusFound,
		},
		{
			name:     "admin session rejected on user pages",
			req:      func(t *testing.T) *http.Request { return loginAs(t, sessions, "admin_1") },
			loader:   &fakeLoader{principal: &models.Admin{ID: 1}},
			wantCode: http.StatusFound,
		},
		{
			name:     "loader error treated as logged out",
			req:      func(t *testing.T) *http.Request { return loginAs(t, sessions, "admin_x") },
			loader:   &fakeLoader{err: errors.New("strconv failure")},
			wantCode: http.StatusFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mw := RequireUser(sessions, tt.loader)
			mw(okHandler(t, tt.wantCode == http.StatusOK)).ServeHTTP(rec, tt.req(t))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode == http.StatusFound {
				if loc := rec.Header().Get("Location"); loc != "/auth/choose" {
					t.Errorf("expected redirect to /auth/choose, got %q", loc)
				}
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	sessions := testSessions()

	tests := []struct {
		name     string
		id       string
		loader   *fakeLoader
		wantCode int
	}{
		{"admin admitted", "admin_1", &fakeLoader{principal: &models.Admin{ID: 1}}, http.StatusOK},
		{"user rejected on admin pages", "42", &fakeLoader{principal: &models.User{ID: 42, Active: true}}, http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mw := RequireAdmin(sessions, tt.loader)
			mw(okHandler(t, tt.wantCode == http.StatusOK)).ServeHTTP(rec, loginAs(t, sessions, tt.id))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	if PrincipalFromContext(context.Background()) != nil {
		t.Error("expected nil principal on empty context")
	}
	if UserFromContext(context.Background()) != nil {
		t.Error("expected nil user on empty context")
	}
}
