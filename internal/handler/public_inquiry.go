package handler // handler defines http handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/queue"
	"github.com/casavia/brokerage-api/internal/repository"
	queuepub "github.com/casavia/brokerage-api/internal/service"
	"github.com/casavia/brokerage-api/internal/utils"
)

type submitInquiryReq struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	PropertyID uint64 `json:"property_id"`
}

// SubmitInquiry accepts the public inquiry form. On success the customer
// gets back a ticket number; a repeat submission for the same property
// inside the duplicate window gets a 409 pointing at the existing ticket.
func (h *PublicHandler) SubmitInquiry(c echo.Context) error {
	var req submitInquiryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = utils.NormalizePhone(req.Phone)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if !utils.ValidPhone(req.Phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone"})
	}
	if !utils.ValidMessage(req.Message) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("message must be at least %d characters", utils.MinMessageLen)})
	}
	if req.PropertyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !publiclyVisible(p.Status) || p.Status == model.PropertySold {
		return c.JSON(http.StatusConflict, echo.Map{"error": "property is not accepting inquiries"})
	}

	inq := &model.Inquiry{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,

		// Snapshot the listing terms the customer saw.
		PropertyID:       p.ID,
		PropertyTitle:    p.Title,
		PropertyPrice:    p.Price,
		PropertyLocation: p.Location,
	}
	if err := h.Inquiries.Create(ctx, inq); err != nil {
		var dup *repository.DuplicateInquiryError
		if errors.As(err, &dup) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":           "an open inquiry for this property already exists",
				"existing_ticket": dup.Ticket,
				"submitted_at":    dup.SubmittedAt,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
	}

	logActivity(ctx, h.Activity, "inquiry_submitted",
		fmt.Sprintf("ticket %s for property #%d (%s)", inq.TicketNumber, p.ID, p.Title), "public")

	event := queue.InquiryReceivedEvent{
		InquiryID:     inq.ID,
		TicketNumber:  inq.TicketNumber,
		CustomerName:  inq.Name,
		CustomerEmail: inq.Email,
		PropertyID:    p.ID,
		PropertyTitle: p.Title,
		PropertyPrice: p.Price,
		SubmittedAt:   inq.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		if err := queuepub.PublishInquiryReceived(pctx, event); err != nil {
			log.Printf("queue: publish inquiry.received for %s failed: %v", event.TicketNumber, err)
		}
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"ticket_number": inq.TicketNumber,
		"status":        inq.Status,
		"inquiry":       inq,
	})
}
