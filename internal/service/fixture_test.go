package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/geocoder89/secondserve/internal/auth"
	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/repo/memory"
	"github.com/geocoder89/secondserve/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users     *memory.UsersRepo
	donations *memory.DonationsRepo
	orders    *memory.OrdersRepo
	tokens    *auth.Manager

	accounts     *service.Accounts
	gate         *service.Gate
	donationsSvc *service.Donations
	ordersSvc    *service.Orders
	stats        *service.Stats
}

func newFixture(t *testing.T, policy order.Policy) *fixture {
	t.Helper()

	mem := memory.NewDB()
	f := &fixture{
		users:     memory.NewUsersRepo(mem),
		donations: memory.NewDonationsRepo(mem),
		orders:    memory.NewOrdersRepo(mem),
		tokens:    auth.NewManager("test-secret", auth.DefaultTTL),
	}

	f.accounts = service.NewAccounts(f.users, f.tokens)
	f.gate = service.NewGate(f.users, f.tokens)
	f.donationsSvc = service.NewDonations(f.donations)
	f.ordersSvc = service.NewOrders(f.orders, f.donations, policy)
	f.stats = service.NewStats(f.users, f.donations, f.orders)

	return f
}

// seedUser stores a user directly, skipping bcrypt.
func (f *fixture) seedUser(t *testing.T, role user.Role, name string) user.User {
	t.Helper()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		PasswordHash: "unused",
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) seedDonation(t *testing.T, donor user.User, city string) donation.Donation {
	t.Helper()

	d, err := f.donationsSvc.Create(context.Background(), donor, donation.CreateRequest{
		FoodType:   "Bread",
		Quantity:   "10 loaves",
		ExpiryDate: "2026-10-21T09:00",
		Location:   &user.Location{Address: "1 Bakery Ln", City: city},
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) seedOrder(t *testing.T, recipient user.User, d donation.Donation, city string) order.Order {
	t.Helper()

	o, err := f.ordersSvc.Create(context.Background(), recipient, order.CreateRequest{
		DonationID:       d.ID,
		DeliveryLocation: &user.Location{City: city},
	})
	require.NoError(t, err)
	return o
}

func claimReq(donationID string) order.CreateRequest {
	return order.CreateRequest{DonationID: donationID, DeliveryLocation: &user.Location{City: "Ikeja"}}
}
