// Package service holds the account, donation, order and statistics
// workflows. Workflows talk to storage only through the interfaces below, so
// the Postgres and in-memory stores are interchangeable.
package service

import (
	"context"

	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/domain/user"
)

const (
	// ListCap bounds every per-role listing.
	ListCap = 100
	// AdminListCap bounds the admin-wide listings.
	AdminListCap = 1000
)

type UserStore interface {
	// Create returns user.ErrEmailTaken when the email is already used.
	Create(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Count(ctx context.Context, role *user.Role) (int, error)
}

type DonationStore interface {
	Create(ctx context.Context, d donation.Donation) error
	GetByID(ctx context.Context, id string) (donation.Donation, error)
	// List returns matches newest first, at most f.Limit of them.
	List(ctx context.Context, f donation.ListFilter) ([]donation.Donation, error)
	Count(ctx context.Context, status *donation.Status) (int, error)
}

type OrderStore interface {
	// Claim moves the order's donation from available to claimed and inserts
	// o as one atomic step. It fails with donation.ErrNotAvailable when the
	// donation is no longer available and donation.ErrNotFound when missing.
	Claim(ctx context.Context, o order.Order) error
	GetByID(ctx context.Context, id string) (order.Order, error)
	List(ctx context.Context, f order.ListFilter) ([]order.Order, error)
	// Assign sets the driver and moves the order from pending to assigned.
	// It fails with order.ErrNotPending if the order left pending.
	Assign(ctx context.Context, orderID, driverID, driverName string) error
	// Transition moves the order from its current status to `to`, failing
	// with order.ErrInvalidTransition if the status changed underneath. When
	// donationStatus is non-nil the linked donation is set to it in the same
	// atomic step.
	Transition(ctx context.Context, o order.Order, to order.Status, donationStatus *donation.Status) error
	Count(ctx context.Context, status *order.Status) (int, error)
	// DeliveryCities returns the delivery city of every order in status.
	DeliveryCities(ctx context.Context, status order.Status) ([]string, error)
}
