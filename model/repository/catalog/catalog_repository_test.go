package catalog

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	catalogEntity "fbadash/model/entity/catalog"
	"fbadash/model/modeltest"
)

func TestUpdateASINWithSameValues(t *testing.T) {
	repo := NewCatalogRepository(modeltest.NewDB(t))
	ctx := context.Background()
	a, created, err := repo.FindOrCreateASIN(ctx, "user-1", "B00TEST", catalogEntity.ASIN{FNSKU: "X00FN1", Weight: 250})
	if err != nil || !created {
		t.Fatalf("FindOrCreateASIN = %v, %v", created, err)
	}

	fields := map[string]interface{}{"fnsku": "X00FN1", "weight": 250.0}
	for i := 0; i < 2; i++ {
		got, err := repo.UpdateASIN(ctx, "user-1", a.ID, fields)
		if err != nil {
			t.Fatalf("UpdateASIN #%d: %v", i+1, err)
		}
		if got.FNSKU != "X00FN1" || got.Weight != 250 {
			t.Errorf("UpdateASIN #%d = %+v", i+1, got)
		}
	}

	if _, err := repo.UpdateASIN(ctx, "user-1", "missing", fields); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("UpdateASIN(missing) = %v, want ErrRecordNotFound", err)
	}
	if _, err := repo.UpdateASIN(ctx, "user-2", a.ID, fields); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("UpdateASIN(other tenant) = %v, want ErrRecordNotFound", err)
	}
}
