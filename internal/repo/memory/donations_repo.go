package memory

import (
	"context"

	"github.com/geocoder89/secondserve/internal/domain/donation"
)

type DonationsRepo struct {
	db *DB
}

func NewDonationsRepo(db *DB) *DonationsRepo {
	return &DonationsRepo{db: db}
}

func (r *DonationsRepo) Create(_ context.Context, d donation.Donation) error {
	r.db.mu.Lock()
	r.db.donations[d.ID] = d
	r.db.mu.Unlock()

	return nil
}

func (r *DonationsRepo) GetByID(_ context.Context, id string) (donation.Donation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	d, ok := r.db.donations[id]
	if !ok {
		return donation.Donation{}, donation.ErrNotFound
	}
	return d, nil
}

func (r *DonationsRepo) List(_ context.Context, f donation.ListFilter) ([]donation.Donation, error) {
	r.db.mu.RLock()
	out := make([]donation.Donation, 0)
	for _, d := range r.db.donations {
		if f.DonorID != nil && d.DonorID != *f.DonorID {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		out = append(out, d)
	}
	r.db.mu.RUnlock()

	newestFirst(out,
		func(d donation.Donation) int64 { return d.CreatedAt.UnixNano() },
		func(d donation.Donation) string { return d.ID },
	)
	return capped(out, f.Limit), nil
}

func (r *DonationsRepo) Count(_ context.Context, status *donation.Status) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, d := range r.db.donations {
		if status == nil || d.Status == *status {
			n++
		}
	}
	return n, nil
}
