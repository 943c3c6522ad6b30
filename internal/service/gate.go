package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/secondserve/internal/apperr"
	"github.com/geocoder89/secondserve/internal/auth"
	"github.com/geocoder89/secondserve/internal/domain/user"
)

// TokenVerifier is the small slice of auth.Manager the gate needs.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Gate resolves bearer tokens to users and enforces role checks.
type Gate struct {
	users  UserStore
	tokens TokenVerifier
}

func NewGate(users UserStore, tokens TokenVerifier) *Gate {
	return &Gate{users: users, tokens: tokens}
}

// Authenticate verifies the token and loads its subject. Every failure is
// reported as apperr.ErrUnauthorized; the cause stays in the chain.
func (g *Gate) Authenticate(ctx context.Context, token string) (user.User, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return user.User{}, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, err)
	}

	u, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, fmt.Errorf("%w: user no longer exists", apperr.ErrUnauthorized)
		}
		return user.User{}, err
	}

	return u, nil
}

// RequireRole fails with apperr.ErrForbidden unless u holds one of roles.
func RequireRole(u user.User, roles ...user.Role) error {
	for _, r := range roles {
		if u.Role == r {
			return nil
		}
	}
	return fmt.Errorf("role %q not permitted: %w", u.Role, apperr.ErrForbidden)
}
