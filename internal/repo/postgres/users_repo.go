package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/observability"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

var userColumns = []string{"id", "email", "password_hash", "name", "role", "phone", "location", "created_at"}

type UsersRepo struct {
	base
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{base{pool: pool, prom: prom}}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	query, args, err := psql.Insert(usersTable).
		Columns(userColumns...).
		Values(u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Phone, u.Location, u.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user query: %w", err)
	}

	err = r.prom.ObserveDB("users.create", func() error {
		_, e := r.pool.Exec(ctx, query, args...)
		return e
	})

	if IsUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", sq.Eq{"id": id})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", sq.Eq{"email": email})
}

func (r *UsersRepo) getOne(ctx context.Context, op string, where sq.Eq) (user.User, error) {
	query, args, err := psql.Select(userColumns...).From(usersTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return user.User{}, fmt.Errorf("build user query: %w", err)
	}

	var u user.User
	err = r.prom.ObserveDB(op, func() error {
		return pgxscan.Get(ctx, r.pool, &u, query, args...)
	})

	if err != nil {
		if pgxscan.NotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Count(ctx context.Context, role *user.Role) (int, error) {
	var where sq.Sqlizer
	if role != nil {
		where = sq.Eq{"role": *role}
	}
	return r.count(ctx, "users.count", usersTable, where)
}
