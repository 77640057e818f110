package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	catalogEntity "fbadash/model/entity/catalog"
	catalogRepo "fbadash/model/repository/catalog"
)

// ImportOptions configures a catalog import run.
type ImportOptions struct {
	BatchSize int
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows int           `json:"total_rows"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Warnings  []string      `json:"warnings"`
	TotalTime time.Duration `json:"total_time"`
}

// Invalidator forgets cached per-user ASIN data.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// header → asins column
var catalogColumns = map[string]string{
	"asin":        "code",
	"fnsku":       "fnsku",
	"title":       "title",
	"weight":      "weight",
	"weight_unit": "weight_unit",
	"cost_price":  "cost_price",
	"sell_price":  "sell_price",
}

var numericColumns = map[string]bool{"weight": true, "cost_price": true, "sell_price": true}

type catalogRow struct {
	code   string
	fields map[string]interface{}
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// ImportCatalog upserts ASINs from CSV. Only columns present in the file are
// written, so a weights-only sheet leaves titles and prices alone.
func ImportCatalog(ctx context.Context, db *gorm.DB, userID string, r io.Reader, opts ImportOptions, inv Invalidator) (*ImportResult, error) {
	start := time.Now()
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	result := &ImportResult{Warnings: []string{}}
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		name := normalizeHeader(h)
		if _, ok := catalogColumns[name]; !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
			continue
		}
		colIndex[name] = i
	}
	if _, ok := colIndex["asin"]; !ok {
		return nil, fmt.Errorf("CSV must contain an 'asin' column")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	result.TotalRows = len(records)

	rows, order := collectRows(records, colIndex, result)
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := lookupCodes(tx, userID, order, opts.BatchSize)
		repo := catalogRepo.NewCatalogRepository(tx)

		var fresh []catalogEntity.ASIN
		for _, code := range order {
			row := rows[code]
			if id, ok := existing[code]; ok {
				if len(row.fields) == 0 {
					continue
				}
				if _, err := repo.UpdateASIN(ctx, userID, id, row.fields); err != nil {
					return fmt.Errorf("update %s: %w", code, err)
				}
				result.Updated++
				continue
			}
			fresh = append(fresh, newASIN(userID, row))
		}
		if len(fresh) > 0 {
			if err := tx.CreateInBatches(&fresh, opts.BatchSize).Error; err != nil {
				return fmt.Errorf("create ASINs: %w", err)
			}
			result.Created = len(fresh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if inv != nil {
		inv.Invalidate(ctx, userID)
	}
	result.TotalTime = time.Since(start)
	log.WithFields(log.Fields{
		"user": userID, "rows": result.TotalRows, "created": result.Created,
		"updated": result.Updated, "skipped": result.Skipped,
	}).Info("catalog import finished")
	return result, nil
}

// collectRows validates records. A code appearing twice keeps its last row.
func collectRows(records [][]string, colIndex map[string]int, result *ImportResult) (map[string]*catalogRow, []string) {
	rows := make(map[string]*catalogRow, len(records))
	var order []string
	for ri, rec := range records {
		cell := func(col string) (string, bool) {
			ci, ok := colIndex[col]
			if !ok || ci >= len(rec) {
				return "", false
			}
			v := strings.TrimSpace(rec[ci])
			return v, v != ""
		}
		code, _ := cell("asin")
		code = strings.ToUpper(code)
		if code == "" {
			result.Skipped++
			continue
		}

		row := &catalogRow{code: code, fields: map[string]interface{}{}}
		valid := true
		for col, dbCol := range catalogColumns {
			if col == "asin" {
				continue
			}
			v, ok := cell(col)
			if !ok {
				continue
			}
			switch {
			case numericColumns[col]:
				f, err := strconv.ParseFloat(v, 64)
				if err != nil || f < 0 {
					result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: asin=%s: invalid %s %q", ri+2, code, col, v))
					valid = false
					continue
				}
				row.fields[dbCol] = f
			case col == "weight_unit":
				u := strings.ToLower(v)
				if u != catalogEntity.WeightUnitGram && u != catalogEntity.WeightUnitKilogram {
					result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: asin=%s: weight unit %q is not g or kg", ri+2, code, v))
					valid = false
					continue
				}
				row.fields[dbCol] = u
			default:
				row.fields[dbCol] = v
			}
		}
		if !valid {
			result.Skipped++
			continue
		}
		if _, dup := rows[code]; dup {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: asin=%s: duplicate, last row wins", ri+2, code))
			result.Skipped++
		} else {
			order = append(order, code)
		}
		rows[code] = row
	}
	return rows, order
}

// lookupCodes batch-queries existing codes and returns code->id.
func lookupCodes(db *gorm.DB, userID string, codes []string, batchSize int) map[string]string {
	type codeRow struct {
		ID   string `gorm:"column:id"`
		Code string `gorm:"column:code"`
	}
	m := make(map[string]string, len(codes))
	for i := 0; i < len(codes); i += batchSize {
		end := i + batchSize
		if end > len(codes) {
			end = len(codes)
		}
		var chunk []codeRow
		db.Table("asins").Select("id, code").Where("user_id = ? AND code IN ?", userID, codes[i:end]).Find(&chunk)
		for _, c := range chunk {
			m[c.Code] = c.ID
		}
	}
	return m
}

func newASIN(userID string, row *catalogRow) catalogEntity.ASIN {
	a := catalogEntity.ASIN{UserID: userID, Code: row.code, WeightUnit: catalogEntity.WeightUnitGram}
	if v, ok := row.fields["fnsku"].(string); ok {
		a.FNSKU = v
	}
	if v, ok := row.fields["title"].(string); ok {
		a.Title = v
	}
	if v, ok := row.fields["weight"].(float64); ok {
		a.Weight = v
	}
	if v, ok := row.fields["weight_unit"].(string); ok {
		a.WeightUnit = v
	}
	if v, ok := row.fields["cost_price"].(float64); ok {
		a.CostPrice = v
	}
	if v, ok := row.fields["sell_price"].(float64); ok {
		a.SellPrice = v
	}
	return a
}
