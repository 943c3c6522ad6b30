package memory

import (
	"context"

	"github.com/geocoder89/secondserve/internal/domain/user"
)

type UsersRepo struct {
	db *DB
}

func NewUsersRepo(db *DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, taken := r.db.emails[u.Email]; taken {
		return user.ErrEmailTaken
	}

	r.db.users[u.ID] = u
	r.db.emails[u.Email] = u.ID
	return nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.emails[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.db.users[id], nil
}

func (r *UsersRepo) Count(_ context.Context, role *user.Role) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, u := range r.db.users {
		if role == nil || u.Role == *role {
			n++
		}
	}
	return n, nil
}
