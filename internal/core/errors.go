package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Sentinel errors returned by the services. Handlers pick the HTTP status
// with errors.Is; MapError picks the user-facing text.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInUse       = errors.New("account session already in use")
	ErrInactiveUser       = errors.New("user not found or inactive")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrCodeExhausted      = errors.New("could not generate a valid code")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidInput       = errors.New("invalid input")
)

// Specific variants keep errors.Is working against the generic sentinel.
var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrCompanyNotFound  = fmt.Errorf("company %w", ErrNotFound)
	ErrContractNotFound = fmt.Errorf("contract %w", ErrNotFound)
	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrIPTaken          = fmt.Errorf("%w: ip address already registered", ErrConflict)
)

// notFound translates pgx.ErrNoRows into target and wraps everything else.
func notFound(err error, target error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return fmt.Errorf("%s: %w", op, err)
}
