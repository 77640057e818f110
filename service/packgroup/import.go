package packgroup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fbadash/core/validate"
	packingEntity "fbadash/model/entity/packing"
	catalogRepo "fbadash/model/repository/catalog"
	packingRepo "fbadash/model/repository/packing"
	"fbadash/service/packing"
)

var ErrUnsupportedFile = errors.New("packgroup: only CSV files are accepted")

var csvContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
}

// UploadedFile is one file of an import batch. ContentType may be empty.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// GroupSummary describes one imported pack group.
type GroupSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	File  string `json:"file"`
	Boxes int    `json:"boxes"`
	Items int    `json:"items"`
	Units int    `json:"units"`
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	ShipmentID    string         `json:"shipment_id"`
	PackGroups    []GroupSummary `json:"pack_groups"`
	FilesImported int            `json:"files_imported"`
	FilesSkipped  int            `json:"files_skipped"`
	FNSKUUpdated  int            `json:"fnsku_updated"`
	Errors        []string       `json:"errors"`
	Duration      time.Duration  `json:"duration"`
}

// Importer turns pack group sheets into pack groups, boxes and items of one user.
type Importer struct {
	packing *packingRepo.PackingRepository
	catalog *catalogRepo.CatalogRepository
	weights *packing.WeightResolver
	userID  string
}

func NewImporter(db *gorm.DB, weights *packing.WeightResolver, userID string) *Importer {
	return &Importer{
		packing: packingRepo.NewPackingRepository(db),
		catalog: catalogRepo.NewCatalogRepository(db),
		weights: weights,
		userID:  userID,
	}
}

// checkFiles rejects the batch when any file is not a CSV.
func checkFiles(files []UploadedFile) error {
	if len(files) == 0 {
		return validate.New(nil, "no files uploaded")
	}
	var problems []string
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			problems = append(problems, fmt.Sprintf("%s: not a .csv file", f.Name))
			continue
		}
		if ct := mediaType(f.ContentType); ct != "" && !csvContentTypes[ct] {
			problems = append(problems, fmt.Sprintf("%s: content type %s is not CSV", f.Name, ct))
		}
	}
	if len(problems) > 0 {
		return validate.New(ErrUnsupportedFile, problems...)
	}
	return nil
}

func mediaType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

type parsedFile struct {
	name  string
	group *ParsedGroup
}

// parseAll parses every file; unparsable files are recorded and skipped.
func parseAll(files []UploadedFile, result *ImportResult) []parsedFile {
	var out []parsedFile
	for _, f := range files {
		g, err := ParsePackGroupCSV(f.Name, f.Data)
		if err != nil {
			result.FilesSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			log.WithFields(log.Fields{"file": f.Name, "error": err}).Warn("pack group import: file skipped")
			continue
		}
		out = append(out, parsedFile{name: f.Name, group: g})
	}
	return out
}

// ImportPackGroupCSVs adds the sheets as pack groups of an existing shipment.
func (im *Importer) ImportPackGroupCSVs(ctx context.Context, shipmentID string, files []UploadedFile) (*ImportResult, error) {
	start := time.Now()
	if err := checkFiles(files); err != nil {
		return nil, err
	}
	existing, err := im.packing.LoadShipmentGraph(ctx, im.userID, shipmentID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{ShipmentID: shipmentID}
	parsed := parseAll(files, result)
	if len(parsed) > 0 {
		// allocated groups already in the shipment keep their weight
		weights, err := im.resolveWeights(ctx, existing, parsed)
		if err != nil {
			return nil, err
		}
		err = im.packing.Transaction(ctx, func(tx *packingRepo.PackingRepository) error {
			return im.persist(ctx, tx, shipmentID, len(existing.PackGroups), parsed, weights, result)
		})
		if err != nil {
			return nil, err
		}
		im.afterCommit(ctx, result)
	}
	result.Duration = time.Since(start)
	return result, nil
}

// CreateShipmentFromCSVs creates a shipment named name holding the sheets. The
// shipment is only created when at least one sheet parses.
func (im *Importer) CreateShipmentFromCSVs(ctx context.Context, name string, files []UploadedFile) (*ImportResult, error) {
	start := time.Now()
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validate.New(nil, "shipment name is required")
	}
	if err := checkFiles(files); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	parsed := parseAll(files, result)
	if len(parsed) == 0 {
		return nil, validate.New(nil, result.Errors...)
	}

	weights, err := im.resolveWeights(ctx, nil, parsed)
	if err != nil {
		return nil, err
	}
	err = im.packing.Transaction(ctx, func(tx *packingRepo.PackingRepository) error {
		s := &packingEntity.Shipment{UserID: im.userID, Name: name}
		if err := tx.CreateShipment(ctx, s); err != nil {
			return fmt.Errorf("create shipment: %w", err)
		}
		result.ShipmentID = s.ID
		return im.persist(ctx, tx, s.ID, 0, parsed, weights, result)
	})
	if err != nil {
		return nil, err
	}
	im.afterCommit(ctx, result)
	result.Duration = time.Since(start)
	return result, nil
}

// resolveWeights looks up the unit weight of every ASIN the shipment will hold
// once parsed is stored. It runs before the import transaction opens.
func (im *Importer) resolveWeights(ctx context.Context, existing *packingEntity.Shipment, parsed []parsedFile) (map[string]float64, error) {
	if im.weights == nil {
		return nil, nil
	}
	var codes []string
	if existing != nil {
		for _, g := range existing.PackGroups {
			for _, it := range g.Items {
				codes = append(codes, it.ASIN)
			}
		}
	}
	for _, pf := range parsed {
		for _, it := range pf.group.Items {
			codes = append(codes, it.ASIN)
		}
	}
	weights, err := im.weights.Weights(ctx, im.userID, codes)
	if err != nil {
		return nil, fmt.Errorf("resolve ASIN weights: %w", err)
	}
	return weights, nil
}

// persist stores the parsed groups after the first offset groups of the
// shipment and recomputes the shipment totals with weights.
func (im *Importer) persist(ctx context.Context, tx *packingRepo.PackingRepository, shipmentID string, offset int, parsed []parsedFile, weights map[string]float64, result *ImportResult) error {
	catalog := im.catalog.WithDB(tx.DB())
	fnskus := map[string]string{}

	for i, pf := range parsed {
		g := buildGroup(im.userID, shipmentID, offset+i+1, pf.group)
		if err := tx.CreatePackGroup(ctx, g); err != nil {
			return fmt.Errorf("%s: save pack group: %w", pf.name, err)
		}
		units := 0
		for _, it := range pf.group.Items {
			units += it.ExpectedQuantity
			if it.FNSKU != "" {
				fnskus[it.ASIN] = it.FNSKU
			}
		}
		result.FilesImported++
		result.PackGroups = append(result.PackGroups, GroupSummary{
			ID: g.ID, Name: g.Name, File: pf.name, Boxes: len(g.Boxes), Items: len(g.Items), Units: units,
		})
	}

	for code, fnsku := range fnskus {
		a, err := catalog.GetASINByCode(ctx, im.userID, code)
		if err != nil {
			return fmt.Errorf("look up ASIN %s: %w", code, err)
		}
		if a == nil || a.FNSKU == fnsku {
			continue
		}
		if _, err := catalog.UpdateASIN(ctx, im.userID, a.ID, map[string]interface{}{"fnsku": fnsku}); err != nil {
			return fmt.Errorf("update FNSKU of %s: %w", code, err)
		}
		result.FNSKUUpdated++
	}

	return packing.RecomputeTotals(ctx, tx, im.userID, shipmentID, weights)
}

func (im *Importer) afterCommit(ctx context.Context, result *ImportResult) {
	if result.FNSKUUpdated > 0 && im.weights != nil {
		im.weights.Invalidate(ctx, im.userID)
	}
	log.WithFields(log.Fields{
		"shipment_id": result.ShipmentID,
		"imported":    result.FilesImported,
		"skipped":     result.FilesSkipped,
		"fnsku":       result.FNSKUUpdated,
	}).Info("pack group import finished")
}

func buildGroup(userID, shipmentID string, position int, pg *ParsedGroup) *packingEntity.PackGroup {
	g := &packingEntity.PackGroup{UserID: userID, ShipmentID: shipmentID, Name: pg.Name, Position: position}
	for i, name := range BoxNames(pg.Name, pg.BoxCount) {
		g.Boxes = append(g.Boxes, packingEntity.Box{UserID: userID, Name: name, Position: i + 1})
	}
	for i, it := range pg.Items {
		item := packingEntity.PackGroupItem{
			UserID:           userID,
			ASIN:             it.ASIN,
			SKU:              it.SKU,
			Title:            it.Title,
			PrepType:         it.PrepType,
			FNSKU:            it.FNSKU,
			ExpectedQuantity: it.ExpectedQuantity,
			OrderIndex:       i,
		}
		item.SetBoxed(nil)
		g.Items = append(g.Items, item)
	}
	return g
}
