package memory

import (
	"context"

	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
)

type OrdersRepo struct {
	db *DB
}

func NewOrdersRepo(db *DB) *OrdersRepo {
	return &OrdersRepo{db: db}
}

func (r *OrdersRepo) Claim(_ context.Context, o order.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	d, ok := r.db.donations[o.DonationID]
	if !ok {
		return donation.ErrNotFound
	}
	if d.Status != donation.StatusAvailable {
		return donation.ErrNotAvailable
	}

	d.Status = donation.StatusClaimed
	r.db.donations[d.ID] = d
	r.db.orders[o.ID] = o
	return nil
}

func (r *OrdersRepo) GetByID(_ context.Context, id string) (order.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	o, ok := r.db.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (r *OrdersRepo) List(_ context.Context, f order.ListFilter) ([]order.Order, error) {
	r.db.mu.RLock()
	out := make([]order.Order, 0)
	for _, o := range r.db.orders {
		if !matches(o, f) {
			continue
		}
		out = append(out, o)
	}
	r.db.mu.RUnlock()

	newestFirst(out,
		func(o order.Order) int64 { return o.CreatedAt.UnixNano() },
		func(o order.Order) string { return o.ID },
	)
	return capped(out, f.Limit), nil
}

func matches(o order.Order, f order.ListFilter) bool {
	switch {
	case f.RecipientID != nil && o.RecipientID != *f.RecipientID:
		return false
	case f.DonorID != nil && o.DonorID != *f.DonorID:
		return false
	case f.DriverID != nil && (o.DriverID == nil || *o.DriverID != *f.DriverID):
		return false
	case f.Status != nil && o.Status != *f.Status:
		return false
	case f.Unassigned && o.DriverID != nil:
		return false
	}
	return true
}

func (r *OrdersRepo) Assign(_ context.Context, orderID, driverID, driverName string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	o, ok := r.db.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status != order.StatusPending {
		return order.ErrNotPending
	}

	o.DriverID = &driverID
	o.DriverName = &driverName
	o.Status = order.StatusAssigned
	r.db.orders[orderID] = o
	return nil
}

func (r *OrdersRepo) Transition(_ context.Context, o order.Order, to order.Status, donationStatus *donation.Status) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cur, ok := r.db.orders[o.ID]
	if !ok {
		return order.ErrNotFound
	}
	if cur.Status != o.Status {
		return order.ErrInvalidTransition
	}

	cur.Status = to
	r.db.orders[o.ID] = cur

	if donationStatus != nil {
		// a missing donation is not an error, matching the Postgres update
		if d, ok := r.db.donations[cur.DonationID]; ok {
			d.Status = *donationStatus
			r.db.donations[d.ID] = d
		}
	}
	return nil
}

func (r *OrdersRepo) Count(_ context.Context, status *order.Status) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, o := range r.db.orders {
		if status == nil || o.Status == *status {
			n++
		}
	}
	return n, nil
}

func (r *OrdersRepo) DeliveryCities(_ context.Context, status order.Status) ([]string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]string, 0)
	for _, o := range r.db.orders {
		if o.Status == status {
			out = append(out, o.DeliveryLocation.City)
		}
	}
	return out, nil
}
