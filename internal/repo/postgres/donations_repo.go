package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/observability"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

var donationColumns = []string{
	"id", "donor_id", "donor_name", "food_type", "quantity", "prepared_at",
	"expiry_date", "description", "photo_url", "location", "status", "created_at",
}

type DonationsRepo struct {
	base
}

func NewDonationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *DonationsRepo {
	return &DonationsRepo{base{pool: pool, prom: prom}}
}

func (r *DonationsRepo) Create(ctx context.Context, d donation.Donation) error {
	query, args, err := psql.Insert(donationsTable).
		Columns(donationColumns...).
		Values(d.ID, d.DonorID, d.DonorName, d.FoodType, d.Quantity, d.PreparedAt,
			d.ExpiryDate, d.Description, d.PhotoURL, d.Location, d.Status, d.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert donation query: %w", err)
	}

	return r.prom.ObserveDB("donations.create", func() error {
		_, e := r.pool.Exec(ctx, query, args...)
		return e
	})
}

func (r *DonationsRepo) GetByID(ctx context.Context, id string) (donation.Donation, error) {
	query, args, err := psql.Select(donationColumns...).From(donationsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return donation.Donation{}, fmt.Errorf("build donation query: %w", err)
	}

	var d donation.Donation
	err = r.prom.ObserveDB("donations.get_by_id", func() error {
		return pgxscan.Get(ctx, r.pool, &d, query, args...)
	})

	if err != nil {
		if pgxscan.NotFound(err) {
			return donation.Donation{}, donation.ErrNotFound
		}
		return donation.Donation{}, err
	}
	return d, nil
}

func (r *DonationsRepo) List(ctx context.Context, f donation.ListFilter) ([]donation.Donation, error) {
	where := sq.Eq{}
	if f.DonorID != nil {
		where["donor_id"] = *f.DonorID
	}
	if f.Status != nil {
		where["status"] = *f.Status
	}

	q := psql.Select(donationColumns...).From(donationsTable).OrderBy("created_at DESC", "id DESC")
	if len(where) > 0 {
		q = q.Where(where)
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list donations query: %w", err)
	}

	out := make([]donation.Donation, 0)
	err = r.prom.ObserveDB("donations.list", func() error {
		return pgxscan.Select(ctx, r.pool, &out, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DonationsRepo) Count(ctx context.Context, status *donation.Status) (int, error) {
	var where sq.Sqlizer
	if status != nil {
		where = sq.Eq{"status": *status}
	}
	return r.count(ctx, "donations.count", donationsTable, where)
}
