package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	db "github.com/JonMunkholm/ncmlookup/internal/database"
	"github.com/JonMunkholm/ncmlookup/internal/logging"
)

// MinPasswordLength is enforced on registration and password reset.
const MinPasswordLength = 8

// TokenTypeBearer is the token_type reported by Login.
const TokenTypeBearer = "bearer"

// User is the public view of an account. The password hash never leaves core.
type User struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	CnpjCpf         string     `json:"cnpj_cpf"`
	IPAddress       *string    `json:"ip_address"`
	FullName        *string    `json:"full_name"`
	Role            string     `json:"role"`
	IsActive        bool       `json:"is_active"`
	IsAuthenticated bool       `json:"is_authenticated"`
	StatusChangedAt *time.Time `json:"status_changed_at"`
	CompanyID       *int64     `json:"company_id"`
}

func newUser(u db.User) User {
	return User{
		ID:              u.ID,
		Email:           u.Email,
		CnpjCpf:         u.CnpjCpf,
		IPAddress:       TextPtr(u.IpAddress),
		FullName:        TextPtr(u.FullName),
		Role:            u.Role,
		IsActive:        u.IsActive,
		IsAuthenticated: u.IsAuthenticated,
		StatusChangedAt: TimePtr(u.StatusChangedAt),
		CompanyID:       Int8Ptr(u.CompanyID),
	}
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Email     string
	CnpjCpf   string
	IPAddress *string
	Password  string
	FullName  *string
	Role      string // defaults to client
	CompanyID *int64
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	ID          int64     `json:"id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register creates an active account. An IP address already bound to another
// user and a duplicate email are both conflicts.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return User{}, invalidInput("email is required")
	}
	if len(in.Password) < MinPasswordLength {
		return User{}, invalidInput(fmt.Sprintf("password must have at least %d characters", MinPasswordLength))
	}
	role := in.Role
	if role == "" {
		role = auth.RoleClient
	}
	if !auth.ValidRole(role) {
		return User{}, invalidInput("role must be administrator or client")
	}

	ip := ToPgTextPtr(in.IPAddress)
	if ip.Valid {
		if _, err := s.store.GetUserByIPAddress(ctx, ip.String); err == nil {
			return User{}, ErrIPTaken
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("lookup ip address: %w", err)
		}
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hash(ctx, in.Password)
	if err != nil {
		return User{}, err
	}

	created, err := s.store.CreateUser(ctx, db.CreateUserParams{
		Email:          email,
		CnpjCpf:        strings.TrimSpace(in.CnpjCpf),
		IpAddress:      ip,
		HashedPassword: hash,
		FullName:       ToPgTextPtr(in.FullName),
		Role:           role,
		CompanyID:      ToPgInt8(in.CompanyID),
	})
	if err != nil {
		// Lost a race with a concurrent registration.
		if conflict := uniqueViolation(err); conflict != nil {
			return User{}, conflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	logging.WithFields(ctx, eventAttrs(ctx)...).Info("user registered",
		"user_id", created.ID,
		"role", created.Role,
	)
	return newUser(created), nil
}

// Login enforces one active session per account. The session flag is claimed
// before the password is judged, so a failed attempt on an idle account
// still marks it in use. That mirrors the legacy service and is what the
// frontend expects; administrators clear the flag through SetAuthenticated.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	claimed, err := s.store.ClaimSession(ctx, email)
	if err != nil {
		return LoginResult{}, fmt.Errorf("claim session: %w", err)
	}

	ok, err := s.checkPassword(ctx, user.HashedPassword, password)
	if err != nil {
		return LoginResult{}, err
	}

	logger := logging.WithFields(ctx, eventAttrs(ctx)...).With("user_id", user.ID)
	if !ok {
		logger.Warn("login rejected", "reason", "invalid credentials")
		return LoginResult{}, ErrInvalidCredentials
	}
	if !claimed {
		logger.Warn("login rejected", "reason", "session in use")
		return LoginResult{}, ErrSessionInUse
	}

	token, expires, err := s.issuer.Issue(user.Email, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	logger.Info("login succeeded")
	return LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		Role:        user.Role,
		IsActive:    user.IsActive,
		ID:          user.ID,
		ExpiresAt:   expires,
	}, nil
}

// Logout releases the caller's session flag.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	_, err := s.store.SetUserAuthenticated(ctx, db.SetUserAuthenticatedParams{
		ID:              userID,
		IsAuthenticated: false,
	})
	if err != nil {
		return notFound(err, ErrUserNotFound, "logout")
	}
	logging.FromContext(ctx).Info("logout", "user_id", userID)
	return nil
}

// CurrentUser resolves the subject of a verified token. Missing and inactive
// accounts are indistinguishable to the caller.
func (s *Service) CurrentUser(ctx context.Context, email string) (User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrInactiveUser
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return User{}, ErrInactiveUser
	}
	return newUser(user), nil
}

// Authenticate verifies a bearer token and loads its user.
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return User{}, err
	}
	return s.CurrentUser(ctx, claims.Email())
}

// SetActive toggles is_active. status_changed_at moves only when the value
// actually changes.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (User, error) {
	user, err := s.store.SetUserActive(ctx, db.SetUserActiveParams{ID: id, IsActive: active})
	if err != nil {
		return User{}, notFound(err, ErrUserNotFound, "set active")
	}
	logging.FromContext(ctx).Info("user status changed", "user_id", id, "is_active", active)
	return newUser(user), nil
}

// SetAuthenticated sets the single-session flag directly.
func (s *Service) SetAuthenticated(ctx context.Context, id int64, authenticated bool) (User, error) {
	user, err := s.store.SetUserAuthenticated(ctx, db.SetUserAuthenticatedParams{
		ID:              id,
		IsAuthenticated: authenticated,
	})
	if err != nil {
		return User{}, notFound(err, ErrUserNotFound, "set authenticated")
	}
	return newUser(user), nil
}

// ListUsers returns every account ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]User, len(rows))
	for i, u := range rows {
		users[i] = newUser(u)
	}
	return users, nil
}

// AssignCompany links a user to a company.
func (s *Service) AssignCompany(ctx context.Context, userID, companyID int64) (User, error) {
	var updated db.User
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.GetCompanyByID(ctx, companyID); err != nil {
			return notFound(err, ErrCompanyNotFound, "get company")
		}
		u, err := tx.SetUserCompany(ctx, db.SetUserCompanyParams{
			ID:        userID,
			CompanyID: ToPgInt8(&companyID),
		})
		if err != nil {
			return notFound(err, ErrUserNotFound, "set company")
		}
		updated = u
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return newUser(updated), nil
}

// ResetSessions clears every session flag and reports how many were set.
func (s *Service) ResetSessions(ctx context.Context) (int64, error) {
	n, err := s.store.ResetAllSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset sessions: %w", err)
	}
	logging.FromContext(ctx).Info("sessions reset", "count", n)
	return n, nil
}

func (s *Service) hash(ctx context.Context, raw string) (string, error) {
	var (
		hash string
		err  error
	)
	if lerr := s.limiter.Do(ctx, func() { hash, err = s.hasher.Hash(raw) }); lerr != nil {
		return "", lerr
	}
	return hash, err
}

func (s *Service) checkPassword(ctx context.Context, hash, raw string) (bool, error) {
	var ok bool
	if err := s.limiter.Do(ctx, func() { ok = s.hasher.Check(hash, raw) }); err != nil {
		return false, err
	}
	return ok, nil
}

// uniqueViolation maps a users unique-constraint failure to its sentinel.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "ip_address"):
		return ErrIPTaken
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrEmailTaken
	default:
		return ErrConflict
	}
}
