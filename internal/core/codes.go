package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	db "github.com/JonMunkholm/ncmlookup/internal/database"
	"github.com/JonMunkholm/ncmlookup/internal/logging"
)

// Code range and retry budget for IssueCode.
const (
	codeMin         = 1000
	codeMax         = 9999
	maxCodeAttempts = 10
	msgCodeValid    = "Código válido"
	msgCodeInvalid  = "Código inválido"
	msgCodeAttached = "Código vinculado ao usuário com sucesso"
)

// CodeCheck is the result of validating or attaching a code. Code and
// UserID are only set by a successful attach.
type CodeCheck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    int32  `json:"code,omitempty"`
	UserID  int64  `json:"user_id,omitempty"`
}

// IssueCode hands out a four-digit code that has not been used yet. A drawn
// number that already exists unused is handed out again.
func (s *Service) IssueCode(ctx context.Context) (int32, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		n, err := s.drawCode()
		if err != nil {
			return 0, fmt.Errorf("draw code: %w", err)
		}

		existing, err := s.store.GetCode(ctx, n)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			created, err := s.store.CreateCode(ctx, n)
			if err != nil {
				if uniqueViolation(err) != nil {
					// Inserted concurrently; draw again.
					continue
				}
				return 0, fmt.Errorf("create code: %w", err)
			}
			return created.Code, nil
		case err != nil:
			return 0, fmt.Errorf("get code: %w", err)
		case !existing.IsCodeUsed:
			return existing.Code, nil
		}
	}

	logging.FromContext(ctx).Warn("code pool exhausted", "attempts", maxCodeAttempts)
	return 0, ErrCodeExhausted
}

// ValidateCode reports whether code exists and is unused.
func (s *Service) ValidateCode(ctx context.Context, code int32) (CodeCheck, error) {
	c, err := s.store.GetCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return CodeCheck{Message: msgCodeInvalid}, nil
	}
	if err != nil {
		return CodeCheck{}, fmt.Errorf("get code: %w", err)
	}
	if c.IsCodeUsed {
		return CodeCheck{Message: msgCodeInvalid}, nil
	}
	return CodeCheck{Success: true, Message: msgCodeValid}, nil
}

// AttachCode marks an unused code as used by userID. Unknown and already
// used codes are reported in the result rather than as errors.
func (s *Service) AttachCode(ctx context.Context, userID int64, code int32) (CodeCheck, error) {
	c, err := s.store.AttachCode(ctx, db.AttachCodeParams{Code: code, UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return CodeCheck{Message: msgCodeInvalid}, nil
	}
	if err != nil {
		if uniqueViolation(err) != nil {
			return CodeCheck{}, fmt.Errorf("user %d already has a code: %w", userID, ErrConflict)
		}
		return CodeCheck{}, fmt.Errorf("attach code: %w", err)
	}

	logging.FromContext(ctx).Info("code attached", "user_id", userID)
	return CodeCheck{
		Success: true,
		Message: msgCodeAttached,
		Code:    c.Code,
		UserID:  userID,
	}, nil
}
