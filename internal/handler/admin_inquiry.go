package handler // handler defines http handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/repository"
)

// ListAllInquiries returns every inquiry regardless of assignment.
func (h *AdminHandler) ListAllInquiries(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Inquiries.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"inquiries": list, "count": len(list)})
}

type assignReq struct {
	AgentID uint64 `json:"agent_id"`
}

// AssignInquiry places an inquiry on a specific agent, overriding any prior
// claim or assignment. Terminal inquiries refuse reassignment.
func (h *AdminHandler) AssignInquiry(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignReq
	if err := c.Bind(&req); err != nil || req.AgentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	agent, err := h.Users.GetByID(ctx, req.AgentID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent not found"})
	}
	if agent.Role != model.RoleAgent {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "assignee must be an agent"})
	}

	inq, err := h.Inquiries.Assign(ctx, id, req.AgentID, adminID)
	if err != nil {
		switch {
		case err == repository.ErrInquiryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inquiry not found"})
		case err == repository.ErrIllegalTransition:
			return c.JSON(http.StatusConflict, echo.Map{"error": "inquiry is closed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign failed"})
		}
	}

	logActivity(ctx, h.Activity, "inquiry_assigned",
		fmt.Sprintf("ticket %s assigned to %s (#%d)", inq.TicketNumber, agent.Name, agent.ID), actorTag(c))
	return c.JSON(http.StatusOK, inq)
}

// DeleteInquiry hard-deletes an inquiry and its notes.
func (h *AdminHandler) DeleteInquiry(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Inquiries.Delete(ctx, id); err != nil {
		if err == repository.ErrInquiryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inquiry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	logActivity(ctx, h.Activity, "inquiry_deleted", fmt.Sprintf("inquiry #%d removed", id), actorTag(c))
	return c.NoContent(http.StatusNoContent)
}
