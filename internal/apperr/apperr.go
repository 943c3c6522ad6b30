// Package apperr holds the error classes every workflow reports through.
// Domain packages wrap these with their own sentinels so handlers only need
// errors.Is against the five classes below.
package apperr

import "errors"

var (
	// missing/invalid/expired token, or a token for a user that no longer exists
	ErrUnauthorized = errors.New("unauthorized")
	// authenticated but the role is not permitted
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	// operation not legal for the entity's current status, or malformed input
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)
