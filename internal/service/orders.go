package service

import (
	"context"
	"log/slog"

	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/domain/user"
)

type Orders struct {
	orders    OrderStore
	donations DonationStore
	policy    order.Policy
}

// NewOrders wires the order workflow. A nil policy means permissive.
func NewOrders(orders OrderStore, donations DonationStore, policy order.Policy) *Orders {
	if policy == nil {
		policy = order.PermissivePolicy{}
	}
	return &Orders{orders: orders, donations: donations, policy: policy}
}

// Create claims a donation for the recipient. The store performs the claim
// as a conditional update, so two concurrent claims cannot both succeed.
func (s *Orders) Create(ctx context.Context, recipient user.User, req order.CreateRequest) (order.Order, error) {
	if err := RequireRole(recipient, user.RoleRecipient); err != nil {
		return order.Order{}, err
	}
	if req.DeliveryLocation == nil {
		return order.Order{}, order.ErrNoDeliveryLocation
	}

	d, err := s.donations.GetByID(ctx, req.DonationID)
	if err != nil {
		return order.Order{}, err
	}

	if d.Status != donation.StatusAvailable {
		return order.Order{}, donation.ErrNotAvailable
	}

	o := order.NewForDonation(d, recipient, req)

	if err := s.orders.Claim(ctx, o); err != nil {
		return order.Order{}, err
	}

	slog.InfoContext(ctx, "donation_claimed", "order_id", o.ID, "donation_id", d.ID, "recipient_id", recipient.ID)

	return o, nil
}

// List scopes orders to the requester's side of them. Admins get nothing
// here; they use ListAll.
func (s *Orders) List(ctx context.Context, requester user.User) ([]order.Order, error) {
	id := requester.ID
	f := order.ListFilter{Limit: ListCap}

	switch requester.Role {
	case user.RoleRecipient:
		f.RecipientID = &id
	case user.RoleDonor:
		f.DonorID = &id
	case user.RoleDriver:
		f.DriverID = &id
	case user.RoleAdmin:
		return []order.Order{}, nil
	default:
		return nil, RequireRole(requester, user.RoleRecipient, user.RoleDonor, user.RoleDriver, user.RoleAdmin)
	}

	return s.orders.List(ctx, f)
}

// ListAvailable returns pending orders no driver has taken yet.
func (s *Orders) ListAvailable(ctx context.Context, driver user.User) ([]order.Order, error) {
	if err := RequireRole(driver, user.RoleDriver); err != nil {
		return nil, err
	}

	pending := order.StatusPending
	return s.orders.List(ctx, order.ListFilter{Status: &pending, Unassigned: true, Limit: ListCap})
}

func (s *Orders) Assign(ctx context.Context, driver user.User, orderID string) error {
	if err := RequireRole(driver, user.RoleDriver); err != nil {
		return err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if o.Status != order.StatusPending {
		return order.ErrNotPending
	}

	if err := s.orders.Assign(ctx, o.ID, driver.ID, driver.Name); err != nil {
		return err
	}

	slog.InfoContext(ctx, "order_assigned", "order_id", o.ID, "driver_id", driver.ID)

	return nil
}

// UpdateStatus moves an order to newStatus under the configured policy.
// Delivering an order also marks its donation delivered; no other status
// touches the donation. Any authenticated role may call it.
func (s *Orders) UpdateStatus(ctx context.Context, orderID, newStatus string) error {
	to, err := order.ParseStatus(newStatus)
	if err != nil {
		return err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.policy.Allow(o.Status, to); err != nil {
		return err
	}

	var donationStatus *donation.Status
	switch to {
	case order.StatusDelivered:
		delivered := donation.StatusDelivered
		donationStatus = &delivered
	case order.StatusPending, order.StatusAssigned, order.StatusInTransit, order.StatusCancelled:
	}

	if err := s.orders.Transition(ctx, o, to, donationStatus); err != nil {
		return err
	}

	slog.InfoContext(ctx, "order_status_updated", "order_id", o.ID, "from", o.Status, "to", to)

	return nil
}

func (s *Orders) ListAll(ctx context.Context, admin user.User) ([]order.Order, error) {
	if err := RequireRole(admin, user.RoleAdmin); err != nil {
		return nil, err
	}
	return s.orders.List(ctx, order.ListFilter{Limit: AdminListCap})
}
