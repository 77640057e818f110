package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	packingEntity "fbadash/model/entity/packing"
	"fbadash/model/modeltest"
	packingRepo "fbadash/model/repository/packing"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func query(t *testing.T, e *echo.Echo, q string, vars map[string]interface{}) gqlResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{"query": q, "variables": vars})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var out gqlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Errors) > 0 {
		t.Fatalf("errors: %+v", out.Errors)
	}
	return out
}

func TestShipmentQueries(t *testing.T) {
	db := modeltest.NewDB(t)
	ctx := context.Background()
	repo := packingRepo.NewPackingRepository(db)
	s := &packingEntity.Shipment{UserID: "user-1", Name: "Spring restock"}
	if err := repo.CreateShipment(ctx, s); err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	g := &packingEntity.PackGroup{
		UserID: "user-1", ShipmentID: s.ID, Name: "Pack Group 1",
		Boxes: []packingEntity.Box{{UserID: "user-1", Name: "P1-B1", Position: 1}},
		Items: []packingEntity.PackGroupItem{{UserID: "user-1", ASIN: "B00TEST", ExpectedQuantity: 2}},
	}
	g.Items[0].SetBoxed(nil)
	if err := repo.CreatePackGroup(ctx, g); err != nil {
		t.Fatalf("create pack group: %v", err)
	}

	e := echo.New()
	RegisterGraphQLRoutes(e, db)

	out := query(t, e, `{ shipments { id name } }`, nil)
	var list []struct{ ID, Name string }
	json.Unmarshal(out.Data["shipments"], &list)
	if len(list) != 1 || list[0].Name != "Spring restock" {
		t.Errorf("shipments = %+v", list)
	}

	out = query(t, e, `query($id: ID!) { shipment(id: $id) { name packGroups { name boxes { name } items { asin remaining allocations { quantity } } } } }`,
		map[string]interface{}{"id": s.ID})
	var detail struct {
		Name       string
		PackGroups []struct {
			Name  string
			Boxes []struct{ Name string }
			Items []struct {
				Asin        string
				Remaining   int
				Allocations []struct{ Quantity int }
			}
		}
	}
	json.Unmarshal(out.Data["shipment"], &detail)
	if len(detail.PackGroups) != 1 || len(detail.PackGroups[0].Items) != 1 {
		t.Fatalf("shipment = %+v", detail)
	}
	if it := detail.PackGroups[0].Items[0]; it.Asin != "B00TEST" || it.Remaining != 2 || len(it.Allocations) != 0 {
		t.Errorf("item = %+v", it)
	}

	out = query(t, e, `query($id: ID!) { exportValidation(id: $id) { valid errors { message } } }`,
		map[string]interface{}{"id": s.ID})
	var v struct {
		Valid  bool
		Errors []struct{ Message string }
	}
	json.Unmarshal(out.Data["exportValidation"], &v)
	if v.Valid || len(v.Errors) == 0 {
		t.Errorf("exportValidation = %+v, want invalid", v)
	}

	out = query(t, e, `{ shipment(id: "missing") { id } }`, nil)
	if string(out.Data["shipment"]) != "null" {
		t.Errorf("missing shipment = %s, want null", out.Data["shipment"])
	}
}
