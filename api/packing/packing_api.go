package packing

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"fbadash/api"
	"fbadash/config"
	"fbadash/core/auth"
	"fbadash/core/validate"
	catalogRepo "fbadash/model/repository/catalog"
	packingRepo "fbadash/model/repository/packing"
	"fbadash/service/packgroup"
	packingService "fbadash/service/packing"
	"fbadash/service/shipment"
)

const maxUploadBytes = 10 << 20

func init() {
	api.RegisterModule(RegisterPackingRoutes)
}

type handler struct {
	db      *gorm.DB
	repo    *packingRepo.PackingRepository
	weights *packingService.WeightResolver
}

// RegisterPackingRoutes sets up shipment import, allocation and export under /api.
func RegisterPackingRoutes(apiGroup *echo.Group, db *gorm.DB) {
	h := &handler{
		db:      db,
		repo:    packingRepo.NewPackingRepository(db),
		weights: packingService.NewWeightResolver(catalogRepo.NewCatalogRepository(db), nil, config.RedisClient),
	}

	g := apiGroup.Group("/shipments")
	g.GET("", h.list)
	// POST /api/shipments – multipart name + files[]
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.remove)
	g.POST("/:id/pack-groups", h.importGroups)
	// PUT /api/shipments/:id/allocations – {"changes":{itemID:{boxID:qty}}}
	g.PUT("/:id/allocations", h.saveAllocations)
	g.GET("/:id/validate", h.checkExport)
	g.GET("/:id/export", h.export)

	apiGroup.PUT("/boxes/:id", h.updateBox)
}

func durationHeader(c echo.Context, start time.Time) int64 {
	d := time.Since(start).Milliseconds()
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(d, 10))
	return d
}

// uploadedFiles reads every file sent as files, files[] or file.
func uploadedFiles(c echo.Context) ([]packgroup.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, validate.New(nil, "multipart form expected: "+err.Error())
	}
	var headers []*multipart.FileHeader
	for _, key := range []string{"files", "files[]", "file"} {
		headers = append(headers, form.File[key]...)
	}
	out := make([]packgroup.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxUploadBytes {
			return nil, validate.New(nil, fh.Filename+": file too large")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, packgroup.UploadedFile{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data})
	}
	return out, nil
}

func (h *handler) importer(c echo.Context) *packgroup.Importer {
	return packgroup.NewImporter(h.db, h.weights, auth.UserID(c))
}

func (h *handler) list(c echo.Context) error {
	list, err := h.repo.ListShipments(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shipments": list})
}

func (h *handler) create(c echo.Context) error {
	start := time.Now()
	files, err := uploadedFiles(c)
	if err != nil {
		return api.Error(c, err)
	}
	res, err := h.importer(c).CreateShipmentFromCSVs(c.Request().Context(), c.FormValue("name"), files)
	if err != nil {
		return api.Error(c, err)
	}
	durationHeader(c, start)
	return c.JSON(http.StatusCreated, res)
}

func (h *handler) importGroups(c echo.Context) error {
	start := time.Now()
	files, err := uploadedFiles(c)
	if err != nil {
		return api.Error(c, err)
	}
	res, err := h.importer(c).ImportPackGroupCSVs(c.Request().Context(), c.Param("id"), files)
	if err != nil {
		return api.Error(c, err)
	}
	durationHeader(c, start)
	return c.JSON(http.StatusOK, res)
}

func (h *handler) get(c echo.Context) error {
	g, err := packingService.LoadGraph(c.Request().Context(), h.repo, h.weights, auth.UserID(c), c.Param("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(http.StatusOK, g.Summary())
}

func (h *handler) remove(c echo.Context) error {
	if err := h.repo.DeleteShipment(c.Request().Context(), auth.UserID(c), c.Param("id")); err != nil {
		return api.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) saveAllocations(c echo.Context) error {
	start := time.Now()
	var body struct {
		Changes map[string]map[string]int `json:"changes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if len(body.Changes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "changes object is required and must not be empty"})
	}
	res, err := packingService.SaveChanges(c.Request().Context(), h.repo, h.weights, auth.UserID(c), c.Param("id"), body.Changes)
	if err != nil {
		return api.Error(c, err)
	}
	durationHeader(c, start)
	return c.JSON(http.StatusOK, res)
}

func (h *handler) updateBox(c echo.Context) error {
	var dims packingRepo.BoxDimensions
	if err := c.Bind(&dims); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if dims.Weight < 0 || dims.Width < 0 || dims.Length < 0 || dims.Height < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dimensions must not be negative"})
	}
	box, err := h.repo.UpdateBoxDimensions(c.Request().Context(), auth.UserID(c), c.Param("id"), dims)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(http.StatusOK, box)
}

func (h *handler) checkExport(c echo.Context) error {
	g, err := packingService.LoadGraph(c.Request().Context(), h.repo, h.weights, auth.UserID(c), c.Param("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(http.StatusOK, shipment.ValidateShipmentForExport(g.Shipment))
}

func (h *handler) export(c echo.Context) error {
	g, err := packingService.LoadGraph(c.Request().Context(), h.repo, h.weights, auth.UserID(c), c.Param("id"))
	if err != nil {
		return api.Error(c, err)
	}
	var buf bytes.Buffer
	if err := shipment.ExportShipment(&buf, g.Shipment); err != nil {
		return api.Error(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+shipment.ExportFileName(g.Shipment)+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
