package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/geocoder89/secondserve/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	usersTable     = "users"
	donationsTable = "donations"
	ordersTable    = "orders"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// base carries what every repo shares: the pool and DB metrics, which may
// be nil.
type base struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func (b base) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (b base) count(ctx context.Context, op, table string, where sq.Sqlizer) (int, error) {
	q := psql.Select("COUNT(*)").From(table)
	if where != nil {
		q = q.Where(where)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	err = b.prom.ObserveDB(op, func() error {
		return b.pool.QueryRow(ctx, query, args...).Scan(&n)
	})
	return n, err
}

func (b base) exists(ctx context.Context, q pgx.Tx, table, id string) (bool, error) {
	var found bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&found)
	return found, err
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
