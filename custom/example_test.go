package custom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"fbadash/api"
	gqlregistry "fbadash/graphql/registry"
	"fbadash/model/modeltest"
)

func TestCustomRoutes(t *testing.T) {
	e := echo.New()
	api.ApplyRoutes(e, modeltest.NewDB(t))

	for path, want := range map[string]string{"/custom/ping": `"pong":"ok"`, "/health": `"status":"ok"`} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("%s body = %s, want %s", path, rec.Body.String(), want)
		}
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/custom/ping", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pong":"hi"`) {
		t.Errorf("POST /custom/ping = %d %s, want 200 pong hi", rec.Code, rec.Body.String())
	}
}

func TestPingExtension(t *testing.T) {
	got, err := gqlregistry.Resolve(context.Background(), "ping", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m, ok := got.(map[string]string); !ok || m["pong"] != "ok" {
		t.Errorf("ping = %v", got)
	}
}
