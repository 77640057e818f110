package catalog

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	catalogEntity "fbadash/model/entity/catalog"
	"fbadash/model/modeltest"
)

func TestCatalogRoutes(t *testing.T) {
	db := modeltest.NewDB(t)
	e := echo.New()
	RegisterCatalogRoutes(e.Group("/api"), db)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", "asins.csv")
	part.Write([]byte("asin,title,weight,weight unit\nB00TEST,Widget,250,g\n"))
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/asins/import", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"created":1`) {
		t.Fatalf("import = %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/asins", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var list struct {
		ASINs []catalogEntity.ASIN `json:"asins"`
	}
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.ASINs) != 1 {
		t.Fatalf("asins = %s", rec.Body.String())
	}
	id := list.ASINs[0].ID

	put := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/asins/"+id, strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
	if rec := put(`{"weight":1.2,"weight_unit":"KG"}`); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"weight_unit":"kg"`) {
		t.Errorf("update = %d %s", rec.Code, rec.Body.String())
	}
	if rec := put(`{"weight_unit":"lb"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad unit = %d, want 400", rec.Code)
	}
	if rec := put(`{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty patch = %d, want 400", rec.Code)
	}

	// another tenant cannot see or edit it
	req = httptest.NewRequest(http.MethodPut, "/api/asins/"+id, strings.NewReader(`{"title":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-User-ID", "user-2")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign update = %d, want 404", rec.Code)
	}
}
