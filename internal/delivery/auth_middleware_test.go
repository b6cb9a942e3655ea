package delivery

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vovarama1992/voxstudio/internal/domain"
	"github.com/Vovarama1992/voxstudio/internal/models"
)

func TestAuthMiddleware(t *testing.T) {
	auth := domain.NewAuthService(nil, "pw", "secret")
	h := newTestRouter(&fakeStudio{drafted: &models.VideoPlan{}}, auth)

	rec, out := do(t, h, http.MethodPost, "/api/scenes", `{"prompt":"x"}`)
	if rec.Code != http.StatusUnauthorized || out["error"] != "missing token" {
		t.Fatalf("code=%d body=%v", rec.Code, out)
	}

	rec, out = do(t, h, http.MethodPost, "/api/login", `{"password":"bad"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: code=%d body=%v", rec.Code, out)
	}

	rec, out = do(t, h, http.MethodPost, "/api/login", `{"password":"pw"}`)
	token, _ := out["token"].(string)
	if rec.Code != http.StatusOK || token == "" {
		t.Fatalf("login: code=%d body=%v", rec.Code, out)
	}

	for name, tc := range map[string]struct {
		token string
		code  int
	}{
		"valid":   {token, http.StatusOK},
		"invalid": {"nope", http.StatusUnauthorized},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/scenes", strings.NewReader(`{"prompt":"x"}`))
		req.Header.Set("X-Auth", tc.token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.code {
			t.Errorf("%s: code = %d, want %d", name, rec.Code, tc.code)
		}
	}
}

func TestAuthMiddlewareLeavesNonAPIOpen(t *testing.T) {
	auth := domain.NewAuthService(nil, "pw", "secret")
	called := false
	h := AuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/videos/video-1.mp4", nil))
	if !called {
		t.Error("static path was blocked")
	}
}
