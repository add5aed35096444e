package handler // handler defines http handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/queue"
	"github.com/casavia/brokerage-api/internal/repository"
	queuepub "github.com/casavia/brokerage-api/internal/service"
)

type propertyStatusReq struct {
	Status string `json:"status"`
	Reason string `json:"reason"`

	// Sale fields, read only when status is "sold".
	AgentID   uint64  `json:"agent_id"`
	SalePrice float64 `json:"sale_price"`
	Rate      float64 `json:"commission_rate"`
}

// UpdatePropertyStatus drives the listing lifecycle. Marking a property
// sold runs the sale path: the selling agent is credited, the commission is
// computed and a property.sold event is published.
func (h *AdminHandler) UpdatePropertyStatus(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req propertyStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Status = strings.TrimSpace(req.Status)
	if !model.IsPropertyStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.Status == model.PropertySold {
		return h.sellProperty(ctx, c, id, req)
	}

	p, err := h.Properties.UpdateStatus(ctx, id, req.Status, actorID, getUserName(c), req.Reason)
	if err != nil {
		return propertyErrResponse(c, err)
	}

	logActivity(ctx, h.Activity, "property_status_changed",
		fmt.Sprintf("property #%d (%s) moved to %s", p.ID, p.Title, p.Status), actorTag(c))
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) sellProperty(ctx context.Context, c echo.Context, id uint64, req propertyStatusReq) error {
	if req.AgentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent_id required to record a sale"})
	}
	if req.SalePrice < 0 || req.Rate < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sale_price and commission_rate must be positive"})
	}
	agent, err := h.Users.GetByID(ctx, req.AgentID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent not found"})
	}
	if agent.Role != model.RoleAgent {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent_id must reference an agent account"})
	}

	p, err := h.Properties.Sell(ctx, id, repository.SaleInput{
		AgentID:   agent.ID,
		AgentName: agent.Name,
		SalePrice: req.SalePrice,
		Rate:      req.Rate,
	})
	if err != nil {
		return propertyErrResponse(c, err)
	}

	logActivity(ctx, h.Activity, "property_sold",
		fmt.Sprintf("property #%d (%s) sold by %s for %.2f", p.ID, p.Title, agent.Name, p.Sale.Price), actorTag(c))

	event := queue.PropertySoldEvent{
		PropertyID:       p.ID,
		Title:            p.Title,
		AgentID:          agent.ID,
		AgentName:        agent.Name,
		SalePrice:        p.Sale.Price,
		CommissionRate:   p.Commission.Rate,
		CommissionAmount: p.Commission.Amount,
		SoldAt:           p.Sale.At.UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		if err := queuepub.PublishPropertySold(pctx, event); err != nil {
			log.Printf("queue: publish property.sold for #%d failed: %v", event.PropertyID, err)
		}
	}()

	return c.JSON(http.StatusOK, p)
}

// PayCommission marks a sold property's commission as paid. The transition
// happens at most once; repeats answer 409.
func (h *AdminHandler) PayCommission(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Properties.MarkCommissionPaid(ctx, id, adminID)
	if err != nil {
		switch {
		case err == repository.ErrPropertyNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		case err == repository.ErrNoCommission:
			return c.JSON(http.StatusConflict, echo.Map{"error": "property has no commission"})
		case err == repository.ErrCommissionPaid:
			return c.JSON(http.StatusConflict, echo.Map{"error": "commission already paid"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
		}
	}

	logActivity(ctx, h.Activity, "commission_paid",
		fmt.Sprintf("commission of %.2f on property #%d paid", p.Commission.Amount, p.ID), actorTag(c))
	return c.JSON(http.StatusOK, p)
}

// DeleteProperty hard-deletes a listing and its child rows.
func (h *AdminHandler) DeleteProperty(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Properties.Delete(ctx, id); err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	logActivity(ctx, h.Activity, "property_deleted", fmt.Sprintf("property #%d removed", id), actorTag(c))
	return c.NoContent(http.StatusNoContent)
}

func propertyErrResponse(c echo.Context, err error) error {
	switch {
	case err == repository.ErrPropertyNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	case errors.Is(err, repository.ErrIllegalTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal status transition"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
}
