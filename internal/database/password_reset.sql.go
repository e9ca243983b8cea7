package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const passwordResetColumns = `id, user_id, expires_at, used_at, created_at`

func scanPasswordReset(row interface{ Scan(...any) error }) (PasswordReset, error) {
	var i PasswordReset
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ExpiresAt,
		&i.UsedAt,
		&i.CreatedAt,
	)
	return i, err
}

const createPasswordReset = `-- name: CreatePasswordReset :one
INSERT INTO password_reset (id, user_id, expires_at) VALUES ($1, $2, $3)
RETURNING ` + passwordResetColumns

type CreatePasswordResetParams struct {
	ID        pgtype.UUID
	UserID    int64
	ExpiresAt pgtype.Timestamptz
}

func (q *Queries) CreatePasswordReset(ctx context.Context, arg CreatePasswordResetParams) (PasswordReset, error) {
	return scanPasswordReset(q.db.QueryRow(ctx, createPasswordReset, arg.ID, arg.UserID, arg.ExpiresAt))
}

const getPasswordReset = `-- name: GetPasswordReset :one
SELECT ` + passwordResetColumns + ` FROM password_reset WHERE id = $1`

func (q *Queries) GetPasswordReset(ctx context.Context, id pgtype.UUID) (PasswordReset, error) {
	return scanPasswordReset(q.db.QueryRow(ctx, getPasswordReset, id))
}

// Guarded on used_at so a token is consumed at most once.
const markPasswordResetUsed = `-- name: MarkPasswordResetUsed :execrows
UPDATE password_reset SET used_at = now()
WHERE id = $1 AND used_at IS NULL`

func (q *Queries) MarkPasswordResetUsed(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, markPasswordResetUsed, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const purgePasswordResets = `-- name: PurgePasswordResets :execrows
DELETE FROM password_reset
WHERE expires_at < $1 OR used_at IS NOT NULL`

// PurgePasswordResets removes consumed tokens and tokens expired before cutoff.
func (q *Queries) PurgePasswordResets(ctx context.Context, cutoff pgtype.Timestamptz) (int64, error) {
	result, err := q.db.Exec(ctx, purgePasswordResets, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
