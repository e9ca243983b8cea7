package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, cnpj_cpf, ip_address, hashed_password, full_name, role,
    is_active, is_authenticated, status_changed_at, company_id, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.CnpjCpf,
		&i.IpAddress,
		&i.HashedPassword,
		&i.FullName,
		&i.Role,
		&i.IsActive,
		&i.IsAuthenticated,
		&i.StatusChangedAt,
		&i.CompanyID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, cnpj_cpf, ip_address, hashed_password, full_name, role, company_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

type CreateUserParams struct {
	Email          string
	CnpjCpf        string
	IpAddress      pgtype.Text
	HashedPassword string
	FullName       pgtype.Text
	Role           string
	CompanyID      pgtype.Int8
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Email,
		arg.CnpjCpf,
		arg.IpAddress,
		arg.HashedPassword,
		arg.FullName,
		arg.Role,
		arg.CompanyID,
	)
	return scanUser(row)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByIPAddress = `-- name: GetUserByIPAddress :one
SELECT ` + userColumns + ` FROM users WHERE ip_address = $1 LIMIT 1`

func (q *Queries) GetUserByIPAddress(ctx context.Context, ipAddress string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByIPAddress, ipAddress))
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY id`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// status_changed_at only moves when is_active actually flips.
const setUserActive = `-- name: SetUserActive :one
UPDATE users
SET is_active = $2,
    status_changed_at = CASE WHEN is_active IS DISTINCT FROM $2 THEN now() ELSE status_changed_at END,
    updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

type SetUserActiveParams struct {
	ID       int64
	IsActive bool
}

func (q *Queries) SetUserActive(ctx context.Context, arg SetUserActiveParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, setUserActive, arg.ID, arg.IsActive))
}

const setUserAuthenticated = `-- name: SetUserAuthenticated :one
UPDATE users
SET is_authenticated = $2, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

type SetUserAuthenticatedParams struct {
	ID              int64
	IsAuthenticated bool
}

func (q *Queries) SetUserAuthenticated(ctx context.Context, arg SetUserAuthenticatedParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, setUserAuthenticated, arg.ID, arg.IsAuthenticated))
}

// ClaimSession flips is_authenticated from false to true and reports
// whether this call did the flip.
const claimSession = `-- name: ClaimSession :execrows
UPDATE users
SET is_authenticated = TRUE, updated_at = now()
WHERE email = $1 AND is_authenticated = FALSE`

func (q *Queries) ClaimSession(ctx context.Context, email string) (bool, error) {
	result, err := q.db.Exec(ctx, claimSession, email)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

const resetAllSessions = `-- name: ResetAllSessions :execrows
UPDATE users SET is_authenticated = FALSE, updated_at = now()
WHERE is_authenticated = TRUE`

func (q *Queries) ResetAllSessions(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, resetAllSessions)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setUserCompany = `-- name: SetUserCompany :one
UPDATE users SET company_id = $2, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

type SetUserCompanyParams struct {
	ID        int64
	CompanyID pgtype.Int8
}

func (q *Queries) SetUserCompany(ctx context.Context, arg SetUserCompanyParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, setUserCompany, arg.ID, arg.CompanyID))
}

const setUserPassword = `-- name: SetUserPassword :execrows
UPDATE users SET hashed_password = $2, updated_at = now()
WHERE id = $1`

type SetUserPasswordParams struct {
	ID             int64
	HashedPassword string
}

func (q *Queries) SetUserPassword(ctx context.Context, arg SetUserPasswordParams) (int64, error) {
	result, err := q.db.Exec(ctx, setUserPassword, arg.ID, arg.HashedPassword)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
