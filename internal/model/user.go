package model

import "time"

// Roles recognized by the authorization middleware. Users are created by
// admins (there is no self-registration); the seed admin comes from a
// provisioning script outside this service.
const (
	RoleAdmin      = "ADMIN"
	RoleAgent      = "AGENT"
	RoleSuperAdmin = "SUPERADMIN"
)

// User mirrors the `users` table. PasswordHash holds a bcrypt digest; the
// plain password never leaves the create/login handlers. HiredAt is optional
// employment data captured when HR provisions an agent.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email (unique, stored lowercase)
	PasswordHash string     // users.password_hash
	Role         string     // users.role (ADMIN | AGENT | SUPERADMIN)
	Name         string     // users.name
	Phone        string     // users.phone
	HiredAt      *time.Time // users.hired_at (nullable)
	IsActive     bool       // users.is_active
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// IsRole reports whether s is one of the declared roles.
func IsRole(s string) bool {
	return s == RoleAdmin || s == RoleAgent || s == RoleSuperAdmin
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
