package handler // handler defines http handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/repository"
)

// PublicHandler serves the unauthenticated portal: the property catalogue
// and the inquiry submission form.
type PublicHandler struct {
	Properties *repository.PropertyRepo
	Inquiries  *repository.InquiryRepo
	Activity   *repository.ActivityRepo
}

func NewPublicHandler(p *repository.PropertyRepo, i *repository.InquiryRepo, a *repository.ActivityRepo) *PublicHandler {
	return &PublicHandler{Properties: p, Inquiries: i, Activity: a}
}

// ListProperties returns the public catalogue, optionally narrowed by query
// parameters. Draft and delisted properties never appear here.
func (h *PublicHandler) ListProperties(c echo.Context) error {
	f := repository.PropertyFilter{
		Type:     c.QueryParam("type"),
		Location: c.QueryParam("location"),
	}
	if v := c.QueryParam("min_price"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_price"})
		}
		f.MinPrice = n
	}
	if v := c.QueryParam("max_price"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price"})
		}
		f.MaxPrice = n
	}
	if f.MinPrice > 0 && f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_price exceeds max_price"})
	}
	if v := c.QueryParam("bedrooms"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bedrooms"})
		}
		f.Bedrooms = uint8(n)
	}
	if v := c.QueryParam("status"); v != "" {
		if !publiclyVisible(v) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		f.Statuses = []string{v}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	props, err := h.Properties.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"properties": props, "count": len(props)})
}

// GetProperty returns one public listing with its full detail and bumps the
// view counter. The counter write is best effort.
func (h *PublicHandler) GetProperty(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !publiclyVisible(p.Status) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}
	if err := h.Properties.RecordView(ctx, id, c.RealIP()); err == nil {
		p.ViewCount++
	}
	return c.JSON(http.StatusOK, p)
}

// publiclyVisible reports whether a listing in this status belongs on the
// portal. Drafts and delisted properties are staff only.
func publiclyVisible(status string) bool {
	switch status {
	case model.PropertyAvailable, model.PropertyReserved, model.PropertyUnderContract, model.PropertySold:
		return true
	}
	return false
}
