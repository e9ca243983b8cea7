package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	db "github.com/JonMunkholm/ncmlookup/internal/database"
	"github.com/JonMunkholm/ncmlookup/internal/logging"
	"github.com/JonMunkholm/ncmlookup/internal/mail"
)

// RequestPasswordReset mails a single-use reset link. Unknown addresses get
// the same silent success so the endpoint cannot be used to probe accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	logger := logging.FromContext(ctx)

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Debug("password reset for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	id := uuid.New()
	expires := s.now().Add(s.resetTTL)
	if _, err := s.store.CreatePasswordReset(ctx, db.CreatePasswordResetParams{
		ID:        ToPgUUID(id.String()),
		UserID:    user.ID,
		ExpiresAt: ToPgTimestamptz(&expires),
	}); err != nil {
		return fmt.Errorf("create password reset: %w", err)
	}

	link, err := resetLink(s.resetURL, id.String())
	if err != nil {
		return err
	}

	name := user.FullName.String
	html, err := mail.Render(ctx, mail.ResetPasswordEmail(link, name, s.resetTTL))
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	msg := mail.Message{
		To:      user.Email,
		Subject: mail.ResetPasswordSubject,
		HTML:    html,
		Text:    mail.ResetPasswordText(link, name, s.resetTTL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	logger.Info("password reset requested", "user_id", user.ID, "expires_at", expires)
	return nil
}

// ResetPassword consumes token and replaces the user's password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return invalidInput(fmt.Sprintf("password must have at least %d characters", MinPasswordLength))
	}
	id := ToPgUUID(token)
	if !id.Valid {
		return ErrInvalidResetToken
	}

	hash, err := s.hash(ctx, newPassword)
	if err != nil {
		return err
	}

	var userID int64
	err = s.store.InTx(ctx, func(tx Store) error {
		reset, err := tx.GetPasswordReset(ctx, id)
		if err != nil {
			return notFound(err, ErrInvalidResetToken, "get password reset")
		}
		if reset.UsedAt.Valid || !reset.ExpiresAt.Time.After(s.now()) {
			return ErrInvalidResetToken
		}

		n, err := tx.MarkPasswordResetUsed(ctx, id)
		if err != nil {
			return fmt.Errorf("mark reset used: %w", err)
		}
		if n == 0 {
			return ErrInvalidResetToken
		}

		n, err = tx.SetUserPassword(ctx, db.SetUserPasswordParams{ID: reset.UserID, HashedPassword: hash})
		if err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		if n == 0 {
			return ErrUserNotFound
		}
		userID = reset.UserID
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("password reset", "user_id", userID)
	return nil
}

// PurgePasswordResets deletes used tokens and tokens that expired before now.
func (s *Service) PurgePasswordResets(ctx context.Context) (int64, error) {
	now := s.now()
	n, err := s.store.PurgePasswordResets(ctx, ToPgTimestamptz(&now))
	if err != nil {
		return 0, fmt.Errorf("purge password resets: %w", err)
	}
	return n, nil
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
