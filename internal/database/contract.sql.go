package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createContract = `-- name: CreateContract :one
INSERT INTO contract (type_of_contract, date_time_accepted, is_signature_accepted, term_content, ip_address, user_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, type_of_contract, date_time_accepted, is_signature_accepted, term_content, ip_address, user_id, created_at`

type CreateContractParams struct {
	TypeOfContract      string
	DateTimeAccepted    pgtype.Timestamptz
	IsSignatureAccepted bool
	TermContent         pgtype.Text
	IpAddress           pgtype.Text
	UserID              pgtype.Int8
}

func (q *Queries) CreateContract(ctx context.Context, arg CreateContractParams) (Contract, error) {
	row := q.db.QueryRow(ctx, createContract,
		arg.TypeOfContract,
		arg.DateTimeAccepted,
		arg.IsSignatureAccepted,
		arg.TermContent,
		arg.IpAddress,
		arg.UserID,
	)
	var i Contract
	err := row.Scan(
		&i.ID,
		&i.TypeOfContract,
		&i.DateTimeAccepted,
		&i.IsSignatureAccepted,
		&i.TermContent,
		&i.IpAddress,
		&i.UserID,
		&i.CreatedAt,
	)
	return i, err
}

const getContractSignature = `-- name: GetContractSignature :one
SELECT is_signature_accepted FROM contract
WHERE user_id = $1 AND type_of_contract = $2
ORDER BY id
LIMIT 1`

type GetContractSignatureParams struct {
	UserID         int64
	TypeOfContract string
}

func (q *Queries) GetContractSignature(ctx context.Context, arg GetContractSignatureParams) (bool, error) {
	row := q.db.QueryRow(ctx, getContractSignature, arg.UserID, arg.TypeOfContract)
	var accepted bool
	err := row.Scan(&accepted)
	return accepted, err
}
