package catalog

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"fbadash/api"
	"fbadash/config"
	"fbadash/core/auth"
	catalogEntity "fbadash/model/entity/catalog"
	catalogRepo "fbadash/model/repository/catalog"
	catalogService "fbadash/service/catalog"
	"fbadash/service/packing"
)

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
}

// asinPatch holds the editable ASIN fields; nil means unchanged.
type asinPatch struct {
	FNSKU      *string  `json:"fnsku"`
	Title      *string  `json:"title"`
	Weight     *float64 `json:"weight"`
	WeightUnit *string  `json:"weight_unit"`
	CostPrice  *float64 `json:"cost_price"`
	SellPrice  *float64 `json:"sell_price"`
}

func (p asinPatch) fields() (map[string]interface{}, []string) {
	m := map[string]interface{}{}
	var problems []string
	if p.FNSKU != nil {
		m["fnsku"] = strings.TrimSpace(*p.FNSKU)
	}
	if p.Title != nil {
		m["title"] = strings.TrimSpace(*p.Title)
	}
	for name, v := range map[string]*float64{"weight": p.Weight, "cost_price": p.CostPrice, "sell_price": p.SellPrice} {
		if v == nil {
			continue
		}
		if *v < 0 {
			problems = append(problems, name+" must not be negative")
			continue
		}
		m[name] = *v
	}
	if p.WeightUnit != nil {
		u := strings.ToLower(strings.TrimSpace(*p.WeightUnit))
		if u != catalogEntity.WeightUnitGram && u != catalogEntity.WeightUnitKilogram {
			problems = append(problems, "weight_unit must be g or kg")
		} else {
			m["weight_unit"] = u
		}
	}
	return m, problems
}

// RegisterCatalogRoutes exposes the ASIN catalog that feeds packing weights.
func RegisterCatalogRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo := catalogRepo.NewCatalogRepository(db)
	weights := packing.NewWeightResolver(repo, nil, config.RedisClient)
	g := apiGroup.Group("/asins")

	g.GET("", func(c echo.Context) error {
		list, err := repo.ListASINs(c.Request().Context(), auth.UserID(c))
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"asins": list})
	})

	// PUT /api/asins/:id – partial update, cached weights dropped
	g.PUT("/:id", func(c echo.Context) error {
		var patch asinPatch
		if err := c.Bind(&patch); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		fields, problems := patch.fields()
		if len(problems) > 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "problems": problems})
		}
		if len(fields) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
		}
		ctx, userID := c.Request().Context(), auth.UserID(c)
		a, err := repo.UpdateASIN(ctx, userID, c.Param("id"), fields)
		if err != nil {
			return api.Error(c, err)
		}
		weights.Invalidate(ctx, userID)
		return c.JSON(http.StatusOK, a)
	})

	// POST /api/asins/import – multipart file
	g.POST("/import", func(c echo.Context) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
		}
		f, err := fh.Open()
		if err != nil {
			return api.Error(c, err)
		}
		defer f.Close()
		res, err := catalogService.ImportCatalog(c.Request().Context(), db, auth.UserID(c), f, catalogService.ImportOptions{}, weights)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, res)
	})
}
