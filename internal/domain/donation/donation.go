package donation

import (
	"fmt"
	"time"

	"github.com/geocoder89/secondserve/internal/apperr"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusClaimed   Status = "claimed"
	StatusPickedUp  Status = "picked_up"
	StatusDelivered Status = "delivered"
)

var Statuses = []Status{StatusAvailable, StatusClaimed, StatusPickedUp, StatusDelivered}

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusClaimed, StatusPickedUp, StatusDelivered:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown donation status %q: %w", s, apperr.ErrInvalidState)
	}
	return st, nil
}

type Donation struct {
	ID          string        `json:"id" db:"id"`
	DonorID     string        `json:"donor_id" db:"donor_id"`
	DonorName   string        `json:"donor_name" db:"donor_name"`
	FoodType    string        `json:"food_type" db:"food_type"`
	Quantity    string        `json:"quantity" db:"quantity"`
	PreparedAt  *string       `json:"prepared_at,omitempty" db:"prepared_at"`
	ExpiryDate  string        `json:"expiry_date" db:"expiry_date"`
	Description *string       `json:"description,omitempty" db:"description"`
	PhotoURL    *string       `json:"photo_url,omitempty" db:"photo_url"`
	Location    user.Location `json:"location" db:"location"`
	Status      Status        `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

var (
	ErrNotFound     = fmt.Errorf("donation %w", apperr.ErrNotFound)
	ErrNotAvailable = fmt.Errorf("donation is not available: %w", apperr.ErrInvalidState)
	ErrNoLocation   = fmt.Errorf("pickup location is required: %w", apperr.ErrInvalidState)
)

// prepared_at and expiry_date stay as the client-supplied strings; clients
// send local date-times without a zone.
type CreateRequest struct {
	FoodType    string         `json:"food_type" binding:"required,max=120"`
	Quantity    string         `json:"quantity" binding:"required,max=120"`
	PreparedAt  *string        `json:"prepared_at" binding:"omitempty,max=64"`
	ExpiryDate  string         `json:"expiry_date" binding:"required,max=64"`
	Description *string        `json:"description" binding:"omitempty,max=2000"`
	PhotoURL    *string        `json:"photo_url" binding:"omitempty,url"`
	Location    *user.Location `json:"location" binding:"required"`
}

// ListFilter narrows a donation listing. Nil fields match everything.
type ListFilter struct {
	DonorID *string
	Status  *Status
	Limit   int
}

// NewFromCreateRequest expects req.Location to be set.
func NewFromCreateRequest(donor user.User, req CreateRequest) Donation {
	return Donation{
		ID:          uuid.NewString(),
		DonorID:     donor.ID,
		DonorName:   donor.Name,
		FoodType:    req.FoodType,
		Quantity:    req.Quantity,
		PreparedAt:  req.PreparedAt,
		ExpiryDate:  req.ExpiryDate,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		Location:    *req.Location,
		Status:      StatusAvailable,
		CreatedAt:   time.Now().UTC(),
	}
}
