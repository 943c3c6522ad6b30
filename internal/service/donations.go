package service

import (
	"context"
	"log/slog"

	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/user"
)

type Donations struct {
	store DonationStore
}

func NewDonations(store DonationStore) *Donations {
	return &Donations{store: store}
}

func (s *Donations) Create(ctx context.Context, donor user.User, req donation.CreateRequest) (donation.Donation, error) {
	if err := RequireRole(donor, user.RoleDonor); err != nil {
		return donation.Donation{}, err
	}
	if req.Location == nil {
		return donation.Donation{}, donation.ErrNoLocation
	}

	d := donation.NewFromCreateRequest(donor, req)

	if err := s.store.Create(ctx, d); err != nil {
		return donation.Donation{}, err
	}

	slog.InfoContext(ctx, "donation_created", "donation_id", d.ID, "donor_id", d.DonorID)

	return d, nil
}

// List scopes donors to their own listings; every other role sees all
// donations, optionally narrowed by status.
func (s *Donations) List(ctx context.Context, requester user.User, status *donation.Status) ([]donation.Donation, error) {
	f := donation.ListFilter{Status: status, Limit: ListCap}

	switch requester.Role {
	case user.RoleDonor:
		id := requester.ID
		f.DonorID = &id
	case user.RoleRecipient, user.RoleDriver, user.RoleAdmin:
	default:
		return nil, RequireRole(requester, user.RoleDonor, user.RoleRecipient, user.RoleDriver, user.RoleAdmin)
	}

	return s.store.List(ctx, f)
}

// Get fetches any donation by id. There is no ownership check: every
// authenticated role can read every donation.
func (s *Donations) Get(ctx context.Context, id string) (donation.Donation, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Donations) ListAll(ctx context.Context, admin user.User) ([]donation.Donation, error) {
	if err := RequireRole(admin, user.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.List(ctx, donation.ListFilter{Limit: AdminListCap})
}
