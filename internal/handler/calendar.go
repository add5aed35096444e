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

// CalendarHandler serves each agent's private schedule. Events of other
// agents are never visible and never conflict.
type CalendarHandler struct {
	Events    *repository.CalendarRepo
	Inquiries *repository.InquiryRepo
	Activity  *repository.ActivityRepo
}

func NewCalendarHandler(e *repository.CalendarRepo, i *repository.InquiryRepo, a *repository.ActivityRepo) *CalendarHandler {
	return &CalendarHandler{Events: e, Inquiries: i, Activity: a}
}

type eventReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      string  `json:"ends_at"`
	InquiryID   *uint64 `json:"inquiry_id"`
	Type        string  `json:"type"`
}

// parse validates the request and returns the interval. The message is
// empty when the request is well formed.
func (r *eventReq) parse() (start, end time.Time, msg string) {
	r.Title = strings.TrimSpace(r.Title)
	r.Type = strings.TrimSpace(strings.ToLower(r.Type))
	if r.Title == "" {
		return start, end, "title required"
	}
	if r.Type == "" {
		r.Type = model.EventOther
	}
	if !model.IsEventType(r.Type) {
		return start, end, "unknown event type"
	}
	var err error
	start, err = time.Parse(time.RFC3339, r.StartsAt)
	if err != nil {
		return start, end, "starts_at must be RFC3339"
	}
	end, err = time.Parse(time.RFC3339, r.EndsAt)
	if err != nil {
		return start, end, "ends_at must be RFC3339"
	}
	if !end.After(start) {
		return start, end, "ends_at must be after starts_at"
	}
	if start.Before(time.Now()) {
		return start, end, "event must be in the future"
	}
	if !model.WithinBusinessHours(start, end) {
		return start, end, fmt.Sprintf("events must fall between %02d:00 and %02d:00", model.BusinessOpenHour, model.BusinessCloseHour)
	}
	return start, end, ""
}

func conflictResponse(c echo.Context, other *model.CalendarEvent) error {
	return c.JSON(http.StatusConflict, echo.Map{
		"error": fmt.Sprintf("conflicts with %q (%s - %s, including the %d minute buffer)",
			other.Title,
			other.StartsAt.Format(time.RFC3339),
			other.EndsAt.Format(time.RFC3339),
			int(model.ConflictBuffer.Minutes())),
		"conflicting_event": other,
	})
}

// CreateEvent schedules an event on the calling agent's calendar after the
// conflict check. Linking an inquiry requires owning it, the same rule as
// the direct status route. A viewing tied to an inquiry also tries to
// advance that inquiry to viewing-scheduled; if the lifecycle does not
// allow it the event is still created.
func (h *CalendarHandler) CreateEvent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, end, msg := req.parse()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.InquiryID != nil {
		role, _ := c.Get("role").(string)
		if err := requireInquiryOwnership(ctx, h.Inquiries, role, *req.InquiryID, uid); err != nil {
			return ownershipResponse(c, err)
		}
	}

	other, err := h.Events.FindConflict(ctx, uid, start, end, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conflict check failed"})
	}
	if other != nil {
		return conflictResponse(c, other)
	}

	ev := &model.CalendarEvent{
		AgentID:     uid,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    start,
		EndsAt:      end,
		InquiryID:   req.InquiryID,
		Type:        req.Type,
	}
	if err := h.Events.Create(ctx, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	if ev.Type == model.EventViewing && ev.InquiryID != nil {
		_, err := h.Inquiries.UpdateStatus(ctx, *ev.InquiryID, model.InquiryViewingScheduled,
			uid, getUserName(c), fmt.Sprintf("viewing scheduled for %s", start.Format(time.RFC3339)), nil)
		if err != nil && err != repository.ErrIllegalTransition && err != repository.ErrInquiryNotFound {
			c.Logger().Warnf("calendar: inquiry %d not moved to viewing-scheduled: %v", *ev.InquiryID, err)
		}
	}

	logActivity(ctx, h.Activity, "event_created",
		fmt.Sprintf("%s %q at %s", ev.Type, ev.Title, ev.StartsAt.Format(time.RFC3339)), actorTag(c))
	return c.JSON(http.StatusCreated, ev)
}

// ListEvents returns the agent's own events, optionally bounded by from/to
// query parameters.
func (h *CalendarHandler) ListEvents(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var from, to time.Time
	if v := c.QueryParam("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC3339"})
		}
	}
	if v := c.QueryParam("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be RFC3339"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListByAgent(ctx, uid, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events, "count": len(events)})
}

// GetEvent returns one event owned by the calling agent.
func (h *CalendarHandler) GetEvent(c echo.Context) error {
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

	ev, err := h.Events.GetByID(ctx, id, uid)
	if err != nil {
		return eventErrResponse(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// UpdateEvent reschedules or edits an event. The conflict check runs again
// against the new interval, excluding the event itself.
func (h *CalendarHandler) UpdateEvent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, end, msg := req.parse()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id, uid)
	if err != nil {
		return eventErrResponse(c, err)
	}

	if req.InquiryID != nil {
		role, _ := c.Get("role").(string)
		if err := requireInquiryOwnership(ctx, h.Inquiries, role, *req.InquiryID, uid); err != nil {
			return ownershipResponse(c, err)
		}
	}

	other, err := h.Events.FindConflict(ctx, uid, start, end, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conflict check failed"})
	}
	if other != nil {
		return conflictResponse(c, other)
	}

	ev.Title = req.Title
	ev.Description = req.Description
	ev.StartsAt = start
	ev.EndsAt = end
	ev.InquiryID = req.InquiryID
	ev.Type = req.Type
	if err := h.Events.Update(ctx, ev); err != nil {
		return eventErrResponse(c, err)
	}

	logActivity(ctx, h.Activity, "event_updated",
		fmt.Sprintf("%s %q moved to %s", ev.Type, ev.Title, ev.StartsAt.Format(time.RFC3339)), actorTag(c))
	return c.JSON(http.StatusOK, ev)
}

// DeleteEvent removes an event owned by the calling agent.
func (h *CalendarHandler) DeleteEvent(c echo.Context) error {
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

	if err := h.Events.Delete(ctx, id, uid); err != nil {
		return eventErrResponse(c, err)
	}
	logActivity(ctx, h.Activity, "event_deleted", fmt.Sprintf("event #%d removed", id), actorTag(c))
	return c.NoContent(http.StatusNoContent)
}

func eventErrResponse(c echo.Context, err error) error {
	switch {
	case err == repository.ErrEventNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case err == repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "calendar operation failed"})
	}
}
