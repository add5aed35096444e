package handler // handler defines http handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/config"
	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/repository"
)

// AdminHandler serves the back-office surface: staff accounts, the full
// inquiry list, listing lifecycle decisions and the audit trail.
type AdminHandler struct {
	Cfg        config.Config
	Users      *repository.UserRepo
	Inquiries  *repository.InquiryRepo
	Properties *repository.PropertyRepo
	Activity   *repository.ActivityRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, i *repository.InquiryRepo, p *repository.PropertyRepo, a *repository.ActivityRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Inquiries: i, Properties: p, Activity: a}
}

// staffPart is the user shape returned to admins; the password hash never
// leaves the repository layer.
type staffPart struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	HiredAt   *time.Time `json:"hired_at,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

func toStaffPart(u model.User) staffPart {
	return staffPart{
		ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name,
		Phone: u.Phone, HiredAt: u.HiredAt, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
	}
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	HiredAt  string `json:"hired_at"` // RFC3339, optional
}

// CreateUser provisions a staff account. Only superadmins may mint other
// admins.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and name required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	if role == "" {
		role = model.RoleAgent
	}
	if !model.IsRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	callerRole, _ := c.Get("role").(string)
	if role != model.RoleAgent && callerRole != model.RoleSuperAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only a superadmin may create admin accounts"})
	}
	var hiredAt *time.Time
	if strings.TrimSpace(req.HiredAt) != "" {
		t, err := time.Parse(time.RFC3339, req.HiredAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hired_at must be RFC3339"})
		}
		hiredAt = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, role, req.Name, strings.TrimSpace(req.Phone), hiredAt, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	logActivity(ctx, h.Activity, "user_created",
		fmt.Sprintf("%s account #%d (%s) created", role, uid, req.Email), actorTag(c))

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusCreated, echo.Map{"id": uid, "email": req.Email, "role": role})
	}
	return c.JSON(http.StatusCreated, toStaffPart(u))
}

// ListUsers returns all staff accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]staffPart, 0, len(users))
	for _, u := range users {
		out = append(out, toStaffPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out, "count": len(out)})
}

// DeleteUser removes a staff account. Self-deletion is refused.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == uid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	logActivity(ctx, h.Activity, "user_deleted", fmt.Sprintf("account #%d removed", id), actorTag(c))
	return c.NoContent(http.StatusNoContent)
}
