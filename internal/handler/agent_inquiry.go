package handler // handler defines http handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/repository"
)

// AgentHandler serves the agent workspace: the inquiry pool, claiming,
// follow-up status updates and notes.
type AgentHandler struct {
	Inquiries *repository.InquiryRepo
	Activity  *repository.ActivityRepo
}

func NewAgentHandler(i *repository.InquiryRepo, a *repository.ActivityRepo) *AgentHandler {
	return &AgentHandler{Inquiries: i, Activity: a}
}

// ListInquiries returns the pool visible to the calling agent: everything
// unassigned plus everything assigned to them.
func (h *AgentHandler) ListInquiries(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Inquiries.ListForAgent(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"inquiries": list, "count": len(list)})
}

// GetInquiry returns one inquiry with notes, subject to the pool rule. An
// inquiry assigned to another agent answers 403 so the caller can tell it
// exists but is off limits.
func (h *AgentHandler) GetInquiry(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	inq, err := h.Inquiries.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrInquiryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inquiry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !inq.VisibleToAgent(uid) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "inquiry is assigned to another agent"})
	}
	return c.JSON(http.StatusOK, inq)
}

// ClaimInquiry takes ownership of an unassigned inquiry. Concurrent claims
// are arbitrated by the database; the loser gets a 409.
func (h *AgentHandler) ClaimInquiry(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	inq, err := h.Inquiries.Claim(ctx, id, uid)
	if err != nil {
		switch {
		case err == repository.ErrInquiryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inquiry not found"})
		case err == repository.ErrAlreadyClaimed:
			return c.JSON(http.StatusConflict, echo.Map{"error": "already claimed by another agent"})
		case err == repository.ErrIllegalTransition:
			return c.JSON(http.StatusConflict, echo.Map{"error": "inquiry is not claimable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "claim failed"})
		}
	}

	logActivity(ctx, h.Activity, "inquiry_claimed",
		fmt.Sprintf("ticket %s claimed", inq.TicketNumber), actorTag(c))
	return c.JSON(http.StatusOK, inq)
}

type updateInquiryStatusReq struct {
	Status         string  `json:"status"`
	Note           string  `json:"note"`
	NextFollowUpAt *string `json:"next_follow_up_at"`
}

// UpdateInquiryStatus moves an inquiry along its lifecycle. Agents may only
// update inquiries assigned to them; admins may update any.
func (h *AgentHandler) UpdateInquiryStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateInquiryStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Status = strings.TrimSpace(req.Status)
	if !model.IsInquiryStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	var nextFollowUp *time.Time
	if req.NextFollowUpAt != nil && strings.TrimSpace(*req.NextFollowUpAt) != "" {
		t, err := time.Parse(time.RFC3339, *req.NextFollowUpAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "next_follow_up_at must be RFC3339"})
		}
		nextFollowUp = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, _ := c.Get("role").(string)
	if err := requireInquiryOwnership(ctx, h.Inquiries, role, id, uid); err != nil {
		return ownershipResponse(c, err)
	}

	inq, err := h.Inquiries.UpdateStatus(ctx, id, req.Status, uid, getUserName(c), req.Note, nextFollowUp)
	if err != nil {
		switch {
		case err == repository.ErrInquiryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inquiry not found"})
		case errors.Is(err, repository.ErrIllegalTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "illegal status transition"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	logActivity(ctx, h.Activity, "inquiry_status_changed",
		fmt.Sprintf("ticket %s moved to %s", inq.TicketNumber, inq.Status), actorTag(c))
	return c.JSON(http.StatusOK, inq)
}

type addNoteReq struct {
	Note string `json:"note"`
}

// AddNote appends a follow-up note to an inquiry the agent owns.
func (h *AgentHandler) AddNote(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req addNoteReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Note) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "note required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, _ := c.Get("role").(string)
	if err := requireInquiryOwnership(ctx, h.Inquiries, role, id, uid); err != nil {
		return ownershipResponse(c, err)
	}

	note, err := h.Inquiries.AddNote(ctx, id, uid, getUserName(c), strings.TrimSpace(req.Note))
	if err != nil {
		if err == repository.ErrInquiryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inquiry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add note failed"})
	}
	return c.JSON(http.StatusCreated, note)
}

// ownershipResponse translates a requireInquiryOwnership failure into the
// JSON response for it.
func ownershipResponse(c echo.Context, err error) error {
	switch {
	case err == repository.ErrInquiryNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "inquiry not found"})
	case err == repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "inquiry is not assigned to you"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
}

// requireInquiryOwnership enforces that a writing agent is assigned to the
// inquiry. Admin roles pass through. It reports repository sentinels so
// callers map them to responses: ErrForbidden covers both inquiries owned by
// another agent and inquiries merely unassigned to the caller.
func requireInquiryOwnership(ctx context.Context, inquiries *repository.InquiryRepo, role string, inquiryID, uid uint64) error {
	if role == model.RoleAdmin || role == model.RoleSuperAdmin {
		return nil
	}
	inq, err := inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		return err
	}
	if inq.AssignedTo == nil || *inq.AssignedTo != uid {
		return repository.ErrForbidden
	}
	return nil
}
