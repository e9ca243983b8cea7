package database

import (
	"context"
)

const codeColumns = `id, code, is_code_used, user_id, created_at`

func scanCode(row interface{ Scan(...any) error }) (Code, error) {
	var i Code
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.IsCodeUsed,
		&i.UserID,
		&i.CreatedAt,
	)
	return i, err
}

const getCode = `-- name: GetCode :one
SELECT ` + codeColumns + ` FROM code WHERE code = $1`

func (q *Queries) GetCode(ctx context.Context, code int32) (Code, error) {
	return scanCode(q.db.QueryRow(ctx, getCode, code))
}

const createCode = `-- name: CreateCode :one
INSERT INTO code (code, is_code_used) VALUES ($1, FALSE)
RETURNING ` + codeColumns

func (q *Queries) CreateCode(ctx context.Context, code int32) (Code, error) {
	return scanCode(q.db.QueryRow(ctx, createCode, code))
}

// AttachCode only succeeds on an unused code.
const attachCode = `-- name: AttachCode :one
UPDATE code SET is_code_used = TRUE, user_id = $2
WHERE code = $1 AND is_code_used = FALSE
RETURNING ` + codeColumns

type AttachCodeParams struct {
	Code   int32
	UserID int64
}

func (q *Queries) AttachCode(ctx context.Context, arg AttachCodeParams) (Code, error) {
	return scanCode(q.db.QueryRow(ctx, attachCode, arg.Code, arg.UserID))
}
