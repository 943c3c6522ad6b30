package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/secondserve/internal/apperr"
	"github.com/geocoder89/secondserve/internal/auth"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Authenticate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	donor := f.seedUser(t, user.RoleDonor, "Dana")

	token, err := f.tokens.Issue(donor.ID, donor.Email, string(donor.Role))
	require.NoError(t, err)

	got, err := f.gate.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, donor.ID, got.ID)
	assert.Equal(t, user.RoleDonor, got.Role)
}

func TestGate_AuthenticateFailures(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	donor := f.seedUser(t, user.RoleDonor, "Dana")

	past := time.Now().Add(-8 * 24 * time.Hour)
	stale := auth.NewManager("test-secret", auth.DefaultTTL, auth.WithClock(func() time.Time { return past }))
	expired, err := stale.Issue(donor.ID, donor.Email, string(donor.Role))
	require.NoError(t, err)

	ghost, err := f.tokens.Issue(uuid.NewString(), "ghost@example.com", "donor")
	require.NoError(t, err)

	forged, err := auth.NewManager("other-secret", auth.DefaultTTL).Issue(donor.ID, donor.Email, string(donor.Role))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"unknown user": ghost,
		"bad secret":   forged,
		"garbage":      "a.b.c",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.gate.Authenticate(ctx, token)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		})
	}
}

func TestRequireRole(t *testing.T) {
	driver := user.User{ID: "d1", Role: user.RoleDriver}

	assert.NoError(t, service.RequireRole(driver, user.RoleDriver))
	assert.NoError(t, service.RequireRole(driver, user.RoleAdmin, user.RoleDriver))
	assert.ErrorIs(t, service.RequireRole(driver, user.RoleDonor), apperr.ErrForbidden)
	assert.ErrorIs(t, service.RequireRole(driver), apperr.ErrForbidden)
}
