package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/secondserve/internal/apperr"
)

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if a == b {
		t.Fatalf("expected different hashes for the same input")
	}
	if !VerifyPassword(a, "password123") || !VerifyPassword(b, "password123") {
		t.Fatalf("expected both hashes to verify")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name  string
		hash  string
		plain string
		want  bool
	}{
		{name: "match", hash: hash, plain: "s3cret!", want: true},
		{name: "wrong_password", hash: hash, plain: "s3cret", want: false},
		{name: "malformed_hash", hash: "not-a-bcrypt-hash", plain: "s3cret!", want: false},
		{name: "empty_hash", hash: "", plain: "s3cret!", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.hash, tt.plain); got != tt.want {
				t.Fatalf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashPassword_RejectsOverlongInput(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("expected %d bytes to hash, got %v", MaxPasswordBytes, err)
	}

	// 40 runes, 80 bytes
	_, err := HashPassword(strings.Repeat("é", 40))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected the error to classify as invalid state, got %v", err)
	}
}
