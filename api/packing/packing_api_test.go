package packing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"fbadash/model/modeltest"
	packingService "fbadash/service/packing"
)

const sheet = `Pack group name,Pack Group 1
Number of boxes,2

ASIN,FNSKU,Merchant SKU,Title,Prep type,Expected quantity,Box 1 quantity,Box 2 quantity
B00TEST,X00FN1,SKU-1,Widget,None,10,,
`

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	RegisterPackingRoutes(e.Group("/api"), modeltest.NewDB(t))
	return e
}

func multipartBody(t *testing.T, name string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if name != "" {
		w.WriteField("name", name)
	}
	for fileName, content := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, fileName))
		h.Set("Content-Type", "text/csv")
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write([]byte(content))
	}
	w.Close()
	return &body, w.FormDataContentType()
}

func do(e *echo.Echo, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestShipmentLifecycle(t *testing.T) {
	e := newServer(t)

	body, ct := multipartBody(t, "Spring restock", map[string]string{"pg1.csv": sheet})
	rec := do(e, http.MethodPost, "/api/shipments", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ShipmentID string `json:"shipment_id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ShipmentID == "" {
		t.Fatal("shipment_id missing")
	}
	base := "/api/shipments/" + created.ShipmentID

	rec = do(e, http.MethodGet, base, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var sum packingService.ShipmentSummary
	json.Unmarshal(rec.Body.Bytes(), &sum)
	if len(sum.PackGroups) != 1 || len(sum.PackGroups[0].Boxes) != 2 || len(sum.PackGroups[0].Items) != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	grp := sum.PackGroups[0]
	itemID := grp.Items[0].ID

	// not exportable yet
	rec = do(e, http.MethodGet, base+"/export", nil, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("export before allocation = %d, want 422", rec.Code)
	}

	changes := fmt.Sprintf(`{"changes":{%q:{%q:6,%q:4}}}`, itemID, grp.Boxes[0].ID, grp.Boxes[1].ID)
	rec = do(e, http.MethodPut, base+"/allocations", bytes.NewBufferString(changes), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("allocations status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Duration-ms") == "" {
		t.Error("duration header missing")
	}

	for _, b := range grp.Boxes {
		rec = do(e, http.MethodPut, "/api/boxes/"+b.ID, bytes.NewBufferString(`{"weight":5,"width":30,"length":40,"height":20}`), echo.MIMEApplicationJSON)
		if rec.Code != http.StatusOK {
			t.Fatalf("box status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec = do(e, http.MethodGet, base+"/validate", nil, "")
	if !strings.Contains(rec.Body.String(), `"valid":true`) {
		t.Errorf("validate = %s", rec.Body.String())
	}

	rec = do(e, http.MethodGet, base+"/export", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "box-contents.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "B00TEST") {
		t.Errorf("export body missing ASIN: %s", rec.Body.String())
	}

	rec = do(e, http.MethodDelete, base, nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(e, http.MethodGet, base, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestCreateRejectsNonCSV(t *testing.T) {
	e := newServer(t)
	body, ct := multipartBody(t, "Bad", map[string]string{"notes.txt": "hello"})
	rec := do(e, http.MethodPost, "/api/shipments", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "notes.txt") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAllocationsValidation(t *testing.T) {
	e := newServer(t)
	rec := do(e, http.MethodPut, "/api/shipments/missing/allocations", bytes.NewBufferString(`{"changes":{}}`), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty changes = %d, want 400", rec.Code)
	}
	rec = do(e, http.MethodPut, "/api/boxes/x", bytes.NewBufferString(`{"weight":-1}`), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative weight = %d, want 400", rec.Code)
	}
	rec = do(e, http.MethodGet, "/api/shipments/missing", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing shipment = %d, want 404", rec.Code)
	}
}
