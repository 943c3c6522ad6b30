package order

import (
	"fmt"
	"time"

	"github.com/geocoder89/secondserve/internal/apperr"
	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled:
		return true
	case StatusPending, StatusAssigned, StatusInTransit:
		return false
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q: %w", s, apperr.ErrInvalidState)
	}
	return st, nil
}

type Order struct {
	ID                 string        `json:"id" db:"id"`
	DonationID         string        `json:"donation_id" db:"donation_id"`
	RecipientID        string        `json:"recipient_id" db:"recipient_id"`
	RecipientName      string        `json:"recipient_name" db:"recipient_name"`
	DonorID            string        `json:"donor_id" db:"donor_id"`
	DriverID           *string       `json:"driver_id" db:"driver_id"`
	DriverName         *string       `json:"driver_name" db:"driver_name"`
	Status             Status        `json:"status" db:"status"`
	DietaryPreferences []string      `json:"dietary_preferences" db:"dietary_preferences"`
	PickupLocation     user.Location `json:"pickup_location" db:"pickup_location"`
	DeliveryLocation   user.Location `json:"delivery_location" db:"delivery_location"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	EstimatedDelivery  *string       `json:"estimated_delivery" db:"estimated_delivery"`
}

var (
	ErrNotFound           = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrNotPending         = fmt.Errorf("order is not available: %w", apperr.ErrInvalidState)
	ErrInvalidTransition  = fmt.Errorf("order status transition not allowed: %w", apperr.ErrInvalidState)
	ErrNoDeliveryLocation = fmt.Errorf("delivery location is required: %w", apperr.ErrInvalidState)
)

type CreateRequest struct {
	DonationID         string         `json:"donation_id" binding:"required"`
	DietaryPreferences []string       `json:"dietary_preferences" binding:"omitempty,max=20,dive,max=60"`
	DeliveryLocation   *user.Location `json:"delivery_location" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListFilter narrows an order listing. Nil fields match everything;
// Unassigned restricts to orders without a driver.
type ListFilter struct {
	RecipientID *string
	DonorID     *string
	DriverID    *string
	Status      *Status
	Unassigned  bool
	Limit       int
}

// NewForDonation builds a pending order claiming d on behalf of recipient.
// req.DeliveryLocation must be set.
func NewForDonation(d donation.Donation, recipient user.User, req CreateRequest) Order {
	return Order{
		ID:                 uuid.NewString(),
		DonationID:         d.ID,
		RecipientID:        recipient.ID,
		RecipientName:      recipient.Name,
		DonorID:            d.DonorID,
		Status:             StatusPending,
		DietaryPreferences: req.DietaryPreferences,
		PickupLocation:     d.Location,
		DeliveryLocation:   *req.DeliveryLocation,
		CreatedAt:          time.Now().UTC(),
	}
}
