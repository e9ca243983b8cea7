package core

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// tokenFromMail pulls the token query parameter out of the plain-text link.
func tokenFromMail(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "https://") {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(line))
		if err != nil {
			t.Fatalf("parse link: %v", err)
		}
		return u.Query().Get("token")
	}
	t.Fatalf("no link in mail body:\n%s", body)
	return ""
}

func TestRequestPasswordReset(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, svc, "ana@example.com")

	if err := svc.RequestPasswordReset(ctx, "ana@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.To != "ana@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if !strings.Contains(msg.HTML, "https://app.example.com/reset-password?token=") {
		t.Errorf("HTML missing reset link:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "15 minutos") {
		t.Errorf("HTML missing link lifetime:\n%s", msg.HTML)
	}

	token := tokenFromMail(t, msg.Text)
	reset, ok := store.resets[[16]byte(uuid.MustParse(token))]
	if !ok {
		t.Fatalf("no reset row for token %s", token)
	}
	if reset.UserID != u.ID {
		t.Errorf("reset.UserID = %d, want %d", reset.UserID, u.ID)
	}
	if want := testNow.Add(15 * time.Minute); !reset.ExpiresAt.Time.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", reset.ExpiresAt.Time, want)
	}
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc, store, mailer := newTestService(t)

	if err := svc.RequestPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Errorf("RequestPasswordReset() error = %v, want nil", err)
	}
	if len(mailer.sent) != 0 || len(store.resets) != 0 {
		t.Errorf("unknown email produced %d mails and %d resets", len(mailer.sent), len(store.resets))
	}
}

func TestRequestPasswordReset_SendFailure(t *testing.T) {
	svc, _, mailer := newTestService(t)
	registerUser(t, svc, "ana@example.com")
	mailer.err = errors.New("smtp down")

	err := svc.RequestPasswordReset(context.Background(), "ana@example.com")
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Errorf("RequestPasswordReset() error = %v, want send failure", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "ana@example.com")

	if err := svc.RequestPasswordReset(ctx, "ana@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	token := tokenFromMail(t, mailer.sent[0].Text)

	if err := svc.ResetPassword(ctx, token, "new-password"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "new-password"); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}

	if err := svc.ResetPassword(ctx, token, "another-password"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("reusing token error = %v, want ErrInvalidResetToken", err)
	}
}

func TestResetPassword_Rejects(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "ana@example.com")
	if err := svc.RequestPasswordReset(ctx, "ana@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	token := tokenFromMail(t, mailer.sent[0].Text)

	tests := []struct {
		name     string
		token    string
		password string
		wantErr  error
	}{
		{"short password", token, "short", ErrInvalidInput},
		{"malformed token", "not-a-uuid", "new-password", ErrInvalidResetToken},
		{"unknown token", uuid.NewString(), "new-password", ErrInvalidResetToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.ResetPassword(ctx, tt.token, tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("ResetPassword() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResetPassword_Expired(t *testing.T) {
	now := testNow
	svc, _, mailer := newTestService(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	registerUser(t, svc, "ana@example.com")
	if err := svc.RequestPasswordReset(ctx, "ana@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	token := tokenFromMail(t, mailer.sent[0].Text)

	now = testNow.Add(16 * time.Minute)
	if err := svc.ResetPassword(ctx, token, "new-password"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("ResetPassword() error = %v, want ErrInvalidResetToken", err)
	}

	n, err := svc.PurgePasswordResets(ctx)
	if err != nil {
		t.Fatalf("PurgePasswordResets() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PurgePasswordResets() = %d, want 1", n)
	}
}

func TestResetLink(t *testing.T) {
	got, err := resetLink("https://app.example.com/reset?lang=pt", "abc")
	if err != nil {
		t.Fatalf("resetLink() error = %v", err)
	}
	if want := "https://app.example.com/reset?lang=pt&token=abc"; got != want {
		t.Errorf("resetLink() = %q, want %q", got, want)
	}
}
