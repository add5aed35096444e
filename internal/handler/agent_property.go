package handler // handler defines http handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/repository"
)

// PropertyHandler serves listing management for staff. Agents may create
// listings and place reservations; the admin-only transitions live in
// AdminHandler.
type PropertyHandler struct {
	Properties *repository.PropertyRepo
	Activity   *repository.ActivityRepo
}

func NewPropertyHandler(p *repository.PropertyRepo, a *repository.ActivityRepo) *PropertyHandler {
	return &PropertyHandler{Properties: p, Activity: a}
}

type createPropertyReq struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Price       float64  `json:"price"`
	Location    string   `json:"location"`
	Bedrooms    uint8    `json:"bedrooms"`
	Bathrooms   uint8    `json:"bathrooms"`
	AreaSqm     float64  `json:"area_sqm"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Images      []string `json:"images"`
	Publish     bool     `json:"publish"` // false keeps the listing in draft
}

func (r *createPropertyReq) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	r.Type = strings.TrimSpace(strings.ToLower(r.Type))
	r.Location = strings.TrimSpace(r.Location)
	if r.Title == "" {
		return "title required"
	}
	if r.Type == "" {
		return "type required"
	}
	if r.Price <= 0 {
		return "price must be positive"
	}
	if r.Location == "" {
		return "location required"
	}
	return ""
}

// CreateProperty adds a listing. Agents typically start in draft and let an
// admin publish; publish=true goes straight to available.
func (h *PropertyHandler) CreateProperty(c echo.Context) error {
	return h.create(c, false)
}

// CreatePublishedProperty is the admin create: listings go straight to
// available without the draft step.
func (h *PropertyHandler) CreatePublishedProperty(c echo.Context) error {
	return h.create(c, true)
}

func (h *PropertyHandler) create(c echo.Context, forcePublish bool) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPropertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	status := model.PropertyDraft
	if req.Publish || forcePublish {
		status = model.PropertyAvailable
	}
	p := &model.Property{
		Title:       req.Title,
		Type:        req.Type,
		Price:       req.Price,
		Location:    req.Location,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		AreaSqm:     req.AreaSqm,
		Description: req.Description,
		Status:      status,
		CreatedBy:   uid,
		Features:    req.Features,
		Images:      req.Images,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Properties.Create(ctx, p, getUserName(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	logActivity(ctx, h.Activity, "property_created",
		fmt.Sprintf("property #%d (%s) created as %s", p.ID, p.Title, p.Status), actorTag(c))
	return c.JSON(http.StatusCreated, p)
}

type reserveReq struct {
	Hours int `json:"hours"` // 0 means the default hold duration
}

// ReserveProperty places a time-boxed hold on an available listing on
// behalf of a customer. A listing that is anything but available answers
// 409 and is left untouched.
func (h *PropertyHandler) ReserveProperty(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reserveReq
	_ = c.Bind(&req)
	if req.Hours < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hours must be positive"})
	}
	if req.Hours == 0 {
		req.Hours = model.DefaultReservationHours
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Properties.Reserve(ctx, id, uid, getUserName(c), req.Hours)
	if err != nil {
		switch {
		case err == repository.ErrPropertyNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		case err == repository.ErrNotAvailable:
			return c.JSON(http.StatusConflict, echo.Map{"error": "property is not available"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
		}
	}

	logActivity(ctx, h.Activity, "property_reserved",
		fmt.Sprintf("property #%d (%s) reserved for %d hours", p.ID, p.Title, req.Hours), actorTag(c))
	return c.JSON(http.StatusOK, p)
}
