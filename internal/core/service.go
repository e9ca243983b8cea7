package core

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	"github.com/JonMunkholm/ncmlookup/internal/mail"
)

// Service holds the account, company, contract and code workflows.
type Service struct {
	store   Store
	hasher  auth.Hasher
	issuer  *auth.Issuer
	mailer  mail.Sender
	limiter *HashLimiter

	resetURL string
	resetTTL time.Duration

	now      func() time.Time
	drawCode func() (int32, error)
}

// Option configures a Service.
type Option func(*Service)

// WithMailer sets the sender used for password reset mail.
func WithMailer(m mail.Sender) Option {
	return func(s *Service) { s.mailer = m }
}

// WithResetLink sets the frontend page that receives reset tokens and how
// long a token stays valid.
func WithResetLink(url string, ttl time.Duration) Option {
	return func(s *Service) {
		s.resetURL = url
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithHashLimiter replaces the default bcrypt concurrency limit.
func WithHashLimiter(l *HashLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeSource overrides the random draw used by IssueCode.
func WithCodeSource(draw func() (int32, error)) Option {
	return func(s *Service) { s.drawCode = draw }
}

// NewService creates a Service backed by store.
func NewService(store Store, hasher auth.Hasher, issuer *auth.Issuer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		hasher:   hasher,
		issuer:   issuer,
		mailer:   mail.NopSender{},
		limiter:  NewHashLimiter(0, 0),
		resetTTL: 15 * time.Minute,
		now:      time.Now,
		drawCode: randomCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashLimiter exposes the bcrypt limiter for health reporting.
func (s *Service) HashLimiter() *HashLimiter {
	return s.limiter
}

// Issuer exposes the token issuer so the HTTP layer can verify tokens.
func (s *Service) Issuer() *auth.Issuer {
	return s.issuer
}

// randomCode draws uniformly from [1000, 9999].
func randomCode() (int32, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return 0, err
	}
	return int32(n.Int64()) + codeMin, nil
}
