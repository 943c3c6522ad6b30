package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/secondserve/internal/apperr"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/security"
	"github.com/google/uuid"
)

type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
}

var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthorized)

type Accounts struct {
	users  UserStore
	tokens TokenIssuer
}

func NewAccounts(users UserStore, tokens TokenIssuer) *Accounts {
	return &Accounts{users: users, tokens: tokens}
}

// Session is what a successful register or login hands back.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        user.User `json:"user"`
}

func (a *Accounts) Register(ctx context.Context, req user.RegisterRequest) (Session, error) {
	role, err := user.ParseRole(req.Role)
	if err != nil {
		return Session{}, err
	}
	if !role.SelfRegistrable() {
		return Session{}, fmt.Errorf("role %q cannot self-register: %w", role, apperr.ErrForbidden)
	}

	email := normalizeEmail(req.Email)

	_, err = a.users.GetByEmail(ctx, email)
	if err == nil {
		return Session{}, user.ErrEmailTaken
	}
	if !errors.Is(err, user.ErrNotFound) {
		return Session{}, err
	}

	// validator counts runes; bcrypt's limit is in bytes
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		Phone:        req.Phone,
		CreatedAt:    time.Now().UTC(),
	}

	// the store's unique index still backs the pre-check above
	if err := a.users.Create(ctx, u); err != nil {
		return Session{}, err
	}

	slog.InfoContext(ctx, "user_registered", "user_id", u.ID, "role", u.Role)

	return a.session(u)
}

func (a *Accounts) Login(ctx context.Context, req user.LoginRequest) (Session, error) {
	u, err := a.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if !security.VerifyPassword(u.PasswordHash, req.Password) {
		return Session{}, ErrInvalidCredentials
	}

	return a.session(u)
}

// EnsureAdmin creates the admin account when no user holds the email yet.
func (a *Accounts) EnsureAdmin(ctx context.Context, email, password, name string) (created bool, err error) {
	if email == "" || password == "" {
		return false, nil
	}

	email = normalizeEmail(email)

	_, err = a.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return false, err
	}

	err = a.users.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         user.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, user.ErrEmailTaken) {
		// another instance won the race
		return false, nil
	}
	return err == nil, err
}

func (a *Accounts) session(u user.User) (Session, error) {
	token, err := a.tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}

	return Session{AccessToken: token, TokenType: "bearer", User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
