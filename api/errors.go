package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fbadash/core/validate"
	"fbadash/service/packing"
	"fbadash/service/shipment"
)

// Error writes err as JSON with a status derived from its kind.
func Error(c echo.Context, err error) error {
	var ve *validate.Error
	var se *shipment.ValidationError
	switch {
	case errors.As(err, &se):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "shipment not ready for export", "errors": se.Result.Errors})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "problems": ve.Problems})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, packing.ErrUnknownItem), errors.Is(err, packing.ErrUnknownBox):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}
