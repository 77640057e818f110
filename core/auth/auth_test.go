package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	authEntity "fbadash/model/entity/auth"
	"fbadash/model/modeltest"
	authRepo "fbadash/model/repository/auth"
)

func TestTokenAuthPinsTenant(t *testing.T) {
	t.Setenv("AUTH_TYPE", "token")
	t.Setenv("API_KEY", "")
	db := modeltest.NewDB(t)
	repo := authRepo.NewAuthRepository(db)
	if err := repo.CreateToken(context.Background(), &authEntity.APIToken{UserID: "user-7", Token: "secret-token"}); err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	e.Use(Middleware(db))
	e.GET("/api/me", func(c echo.Context) error { return c.String(http.StatusOK, UserID(c)) })
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	call := func(path, token, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		if user != "" {
			req.Header.Set("X-User-ID", user)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	if rec := call("/api/me", "secret-token", "someone-else"); rec.Code != http.StatusOK || rec.Body.String() != "user-7" {
		t.Errorf("token request = %d %q, want 200 user-7", rec.Code, rec.Body.String())
	}
	if rec := call("/api/me", "wrong", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", rec.Code)
	}
	if rec := call("/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("/health = %d, want 200 without auth", rec.Code)
	}

	if err := repo.RevokeToken(context.Background(), "secret-token"); err != nil {
		t.Fatal(err)
	}
	if rec := call("/api/me", "secret-token", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token = %d, want 401", rec.Code)
	}
}

func TestUserIDFallsBackToHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "user-3")
	c := e.NewContext(req, httptest.NewRecorder())
	if got := UserID(c); got != "user-3" {
		t.Errorf("UserID = %q, want user-3", got)
	}
}
