package service

import (
	"context"
	"math"

	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/domain/stats"
	"github.com/geocoder89/secondserve/internal/domain/user"
)

const unknownCity = "Unknown"

type Stats struct {
	users     UserStore
	donations DonationStore
	orders    OrderStore
}

func NewStats(users UserStore, donations DonationStore, orders OrderStore) *Stats {
	return &Stats{users: users, donations: donations, orders: orders}
}

// Impact is the public counter set. communities_served never drops below 1.
func (s *Stats) Impact(ctx context.Context) (stats.Impact, error) {
	delivered := donation.StatusDelivered
	meals, err := s.donations.Count(ctx, &delivered)
	if err != nil {
		return stats.Impact{}, err
	}

	donor := user.RoleDonor
	donors, err := s.users.Count(ctx, &donor)
	if err != nil {
		return stats.Impact{}, err
	}

	cities, err := s.orders.DeliveryCities(ctx, order.StatusDelivered)
	if err != nil {
		return stats.Impact{}, err
	}

	distinct := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		if c == "" {
			c = unknownCity
		}
		distinct[c] = struct{}{}
	}

	return stats.Impact{
		TotalMeals:        meals,
		ActiveDonors:      donors,
		CommunitiesServed: max(len(distinct), 1),
		CO2Saved:          math.Round(float64(meals)*stats.CO2KgPerMeal*100) / 100,
	}, nil
}

func (s *Stats) Admin(ctx context.Context, admin user.User) (stats.Admin, error) {
	if err := RequireRole(admin, user.RoleAdmin); err != nil {
		return stats.Admin{}, err
	}

	var out stats.Admin
	var err error

	donationCount := func(st *donation.Status) int {
		if err != nil {
			return 0
		}
		var n int
		n, err = s.donations.Count(ctx, st)
		return n
	}
	orderCount := func(st *order.Status) int {
		if err != nil {
			return 0
		}
		var n int
		n, err = s.orders.Count(ctx, st)
		return n
	}
	userCount := func(r *user.Role) int {
		if err != nil {
			return 0
		}
		var n int
		n, err = s.users.Count(ctx, r)
		return n
	}

	out.Donations = stats.DonationCounts{
		Total:     donationCount(nil),
		Available: donationCount(ptr(donation.StatusAvailable)),
		Claimed:   donationCount(ptr(donation.StatusClaimed)),
		Delivered: donationCount(ptr(donation.StatusDelivered)),
	}
	out.Orders = stats.OrderCounts{
		Total:     orderCount(nil),
		Pending:   orderCount(ptr(order.StatusPending)),
		Assigned:  orderCount(ptr(order.StatusAssigned)),
		InTransit: orderCount(ptr(order.StatusInTransit)),
		Delivered: orderCount(ptr(order.StatusDelivered)),
	}
	out.Users = stats.UserCounts{
		Total:      userCount(nil),
		Donors:     userCount(ptr(user.RoleDonor)),
		Recipients: userCount(ptr(user.RoleRecipient)),
		Drivers:    userCount(ptr(user.RoleDriver)),
	}

	if err != nil {
		return stats.Admin{}, err
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }
