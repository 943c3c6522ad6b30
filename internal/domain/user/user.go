package user

import (
	"fmt"
	"time"

	"github.com/geocoder89/secondserve/internal/apperr"
)

type Role string

const (
	RoleDonor     Role = "donor"
	RoleRecipient Role = "recipient"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleRecipient, RoleDriver, RoleAdmin:
		return true
	default:
		return false
	}
}

// SelfRegistrable reports whether the role may be chosen at sign up.
// Admin accounts are only provisioned at startup.
func (r Role) SelfRegistrable() bool {
	switch r {
	case RoleDonor, RoleRecipient, RoleDriver:
		return true
	case RoleAdmin:
		return false
	default:
		return false
	}
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q: %w", s, apperr.ErrInvalidState)
	}
	return r, nil
}

// Location is the free-form place attached to users, donations and orders.
type Location struct {
	Address string  `json:"address,omitempty"`
	City    string  `json:"city,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // never expose hash in JSON
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Location     *Location `json:"location,omitempty" db:"location"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

var (
	ErrNotFound   = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrEmailTaken = fmt.Errorf("email already registered: %w", apperr.ErrConflict)
)

type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6,max=72"`
	Name     string  `json:"name" binding:"required,min=1,max=120"`
	Role     string  `json:"role" binding:"required,oneof=donor recipient driver"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
