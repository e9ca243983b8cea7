package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	db "github.com/JonMunkholm/ncmlookup/internal/database"
)

// Store is the persistence surface used by Service. *PgStore is the
// production implementation.
type Store interface {
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
	GetUserByID(ctx context.Context, id int64) (db.User, error)
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	GetUserByIPAddress(ctx context.Context, ipAddress string) (db.User, error)
	ListUsers(ctx context.Context) ([]db.User, error)
	SetUserActive(ctx context.Context, arg db.SetUserActiveParams) (db.User, error)
	SetUserAuthenticated(ctx context.Context, arg db.SetUserAuthenticatedParams) (db.User, error)
	ClaimSession(ctx context.Context, email string) (bool, error)
	ResetAllSessions(ctx context.Context) (int64, error)
	SetUserCompany(ctx context.Context, arg db.SetUserCompanyParams) (db.User, error)
	SetUserPassword(ctx context.Context, arg db.SetUserPasswordParams) (int64, error)

	CreateCompany(ctx context.Context, arg db.CreateCompanyParams) (db.Company, error)
	GetCompanyByID(ctx context.Context, id int64) (db.Company, error)
	ListCompanies(ctx context.Context) ([]db.Company, error)

	CreateContract(ctx context.Context, arg db.CreateContractParams) (db.Contract, error)
	GetContractSignature(ctx context.Context, arg db.GetContractSignatureParams) (bool, error)

	GetCode(ctx context.Context, code int32) (db.Code, error)
	CreateCode(ctx context.Context, code int32) (db.Code, error)
	AttachCode(ctx context.Context, arg db.AttachCodeParams) (db.Code, error)

	CreatePasswordReset(ctx context.Context, arg db.CreatePasswordResetParams) (db.PasswordReset, error)
	GetPasswordReset(ctx context.Context, id pgtype.UUID) (db.PasswordReset, error)
	MarkPasswordResetUsed(ctx context.Context, id pgtype.UUID) (int64, error)
	PurgePasswordResets(ctx context.Context, cutoff pgtype.Timestamptz) (int64, error)

	// InTx runs fn against a Store bound to a single transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}

// PgStore runs queries against a pgx pool.
type PgStore struct {
	*db.Queries
	pool *pgxpool.Pool
}

// NewPgStore wraps pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{Queries: db.New(pool), pool: pool}
}

// InTx commits when fn returns nil and rolls back otherwise.
func (s *PgStore) InTx(ctx context.Context, fn func(Store) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&txStore{Queries: s.Queries.WithTx(tx)})
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

// txStore is a Store already inside a transaction; nested InTx reuses it.
type txStore struct {
	*db.Queries
}

func (s *txStore) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}
