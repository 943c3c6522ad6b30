package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/observability"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var orderColumns = []string{
	"id", "donation_id", "recipient_id", "recipient_name", "donor_id",
	"driver_id", "driver_name", "status", "dietary_preferences",
	"pickup_location", "delivery_location", "created_at", "estimated_delivery",
}

type OrdersRepo struct {
	base
}

func NewOrdersRepo(pool *pgxpool.Pool, prom *observability.Prom) *OrdersRepo {
	return &OrdersRepo{base{pool: pool, prom: prom}}
}

// Claim flips the donation to claimed only if it is still available and
// inserts the order in the same transaction.
func (r *OrdersRepo) Claim(ctx context.Context, o order.Order) error {
	insert, insertArgs, err := psql.Insert(ordersTable).
		Columns(orderColumns...).
		Values(o.ID, o.DonationID, o.RecipientID, o.RecipientName, o.DonorID,
			o.DriverID, o.DriverName, o.Status, o.DietaryPreferences,
			o.PickupLocation, o.DeliveryLocation, o.CreatedAt, o.EstimatedDelivery).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order query: %w", err)
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		var claimed int64
		err := r.prom.ObserveDB("orders.claim.donation_cas", func() error {
			tag, e := tx.Exec(ctx,
				`UPDATE donations SET status = $2 WHERE id = $1 AND status = $3`,
				o.DonationID, donation.StatusClaimed, donation.StatusAvailable,
			)
			claimed = tag.RowsAffected()
			return e
		})
		if err != nil {
			return err
		}

		if claimed == 0 {
			found, err := r.exists(ctx, tx, donationsTable, o.DonationID)
			if err != nil {
				return err
			}
			if !found {
				return donation.ErrNotFound
			}
			return donation.ErrNotAvailable
		}

		return r.prom.ObserveDB("orders.claim.insert", func() error {
			_, e := tx.Exec(ctx, insert, insertArgs...)
			return e
		})
	})
}

func (r *OrdersRepo) GetByID(ctx context.Context, id string) (order.Order, error) {
	query, args, err := psql.Select(orderColumns...).From(ordersTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("build order query: %w", err)
	}

	var o order.Order
	err = r.prom.ObserveDB("orders.get_by_id", func() error {
		return pgxscan.Get(ctx, r.pool, &o, query, args...)
	})

	if err != nil {
		if pgxscan.NotFound(err) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}

func (r *OrdersRepo) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	conds := sq.And{}
	if f.RecipientID != nil {
		conds = append(conds, sq.Eq{"recipient_id": *f.RecipientID})
	}
	if f.DonorID != nil {
		conds = append(conds, sq.Eq{"donor_id": *f.DonorID})
	}
	if f.DriverID != nil {
		conds = append(conds, sq.Eq{"driver_id": *f.DriverID})
	}
	if f.Status != nil {
		conds = append(conds, sq.Eq{"status": *f.Status})
	}
	if f.Unassigned {
		conds = append(conds, sq.Eq{"driver_id": nil})
	}

	q := psql.Select(orderColumns...).From(ordersTable).OrderBy("created_at DESC", "id DESC")
	if len(conds) > 0 {
		q = q.Where(conds)
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders query: %w", err)
	}

	out := make([]order.Order, 0)
	err = r.prom.ObserveDB("orders.list", func() error {
		return pgxscan.Select(ctx, r.pool, &out, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Assign only succeeds while the order is still pending, so two drivers
// racing for one order cannot both win.
func (r *OrdersRepo) Assign(ctx context.Context, orderID, driverID, driverName string) error {
	query, args, err := psql.Update(ordersTable).
		Set("driver_id", driverID).
		Set("driver_name", driverName).
		Set("status", order.StatusAssigned).
		Where(sq.Eq{"id": orderID, "status": order.StatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build assign order query: %w", err)
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		var affected int64
		err := r.prom.ObserveDB("orders.assign", func() error {
			tag, e := tx.Exec(ctx, query, args...)
			affected = tag.RowsAffected()
			return e
		})
		if err != nil {
			return err
		}

		if affected == 0 {
			found, err := r.exists(ctx, tx, ordersTable, orderID)
			if err != nil {
				return err
			}
			if !found {
				return order.ErrNotFound
			}
			return order.ErrNotPending
		}
		return nil
	})
}

func (r *OrdersRepo) Transition(ctx context.Context, o order.Order, to order.Status, donationStatus *donation.Status) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var affected int64
		err := r.prom.ObserveDB("orders.transition", func() error {
			tag, e := tx.Exec(ctx,
				`UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
				o.ID, to, o.Status,
			)
			affected = tag.RowsAffected()
			return e
		})
		if err != nil {
			return err
		}

		if affected == 0 {
			found, err := r.exists(ctx, tx, ordersTable, o.ID)
			if err != nil {
				return err
			}
			if !found {
				return order.ErrNotFound
			}
			return order.ErrInvalidTransition
		}

		if donationStatus == nil {
			return nil
		}

		return r.prom.ObserveDB("orders.transition.donation", func() error {
			_, e := tx.Exec(ctx,
				`UPDATE donations SET status = $2 WHERE id = $1`,
				o.DonationID, *donationStatus,
			)
			return e
		})
	})
}

func (r *OrdersRepo) Count(ctx context.Context, status *order.Status) (int, error) {
	var where sq.Sqlizer
	if status != nil {
		where = sq.Eq{"status": *status}
	}
	return r.count(ctx, "orders.count", ordersTable, where)
}

func (r *OrdersRepo) DeliveryCities(ctx context.Context, status order.Status) ([]string, error) {
	query, args, err := psql.Select("COALESCE(delivery_location->>'city', '')").
		From(ordersTable).
		Where(sq.Eq{"status": status}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delivery cities query: %w", err)
	}

	out := make([]string, 0)
	err = r.prom.ObserveDB("orders.delivery_cities", func() error {
		return pgxscan.Select(ctx, r.pool, &out, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
