package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const companyColumns = `id, customer_name, role, company_name, cnpj, phone_number, address,
    contract_start_date, contract_end_date, cnae_company, cnae_description, tax_regime,
    erp_code, monthly_value, email, cpf, created_at`

func scanCompany(row interface{ Scan(...any) error }) (Company, error) {
	var i Company
	err := row.Scan(
		&i.ID,
		&i.CustomerName,
		&i.Role,
		&i.CompanyName,
		&i.Cnpj,
		&i.PhoneNumber,
		&i.Address,
		&i.ContractStartDate,
		&i.ContractEndDate,
		&i.CnaeCompany,
		&i.CnaeDescription,
		&i.TaxRegime,
		&i.ErpCode,
		&i.MonthlyValue,
		&i.Email,
		&i.Cpf,
		&i.CreatedAt,
	)
	return i, err
}

const createCompany = `-- name: CreateCompany :one
INSERT INTO company (
    customer_name, role, company_name, cnpj, phone_number, address,
    contract_start_date, contract_end_date, cnae_company, cnae_description,
    tax_regime, erp_code, monthly_value, email, cpf
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + companyColumns

type CreateCompanyParams struct {
	CustomerName      pgtype.Text
	Role              string
	CompanyName       pgtype.Text
	Cnpj              string
	PhoneNumber       pgtype.Text
	Address           pgtype.Text
	ContractStartDate pgtype.Timestamptz
	ContractEndDate   pgtype.Timestamptz
	CnaeCompany       pgtype.Text
	CnaeDescription   pgtype.Text
	TaxRegime         pgtype.Text
	ErpCode           pgtype.Text
	MonthlyValue      pgtype.Float8
	Email             pgtype.Text
	Cpf               pgtype.Text
}

func (q *Queries) CreateCompany(ctx context.Context, arg CreateCompanyParams) (Company, error) {
	row := q.db.QueryRow(ctx, createCompany,
		arg.CustomerName,
		arg.Role,
		arg.CompanyName,
		arg.Cnpj,
		arg.PhoneNumber,
		arg.Address,
		arg.ContractStartDate,
		arg.ContractEndDate,
		arg.CnaeCompany,
		arg.CnaeDescription,
		arg.TaxRegime,
		arg.ErpCode,
		arg.MonthlyValue,
		arg.Email,
		arg.Cpf,
	)
	return scanCompany(row)
}

const getCompanyByID = `-- name: GetCompanyByID :one
SELECT ` + companyColumns + ` FROM company WHERE id = $1`

func (q *Queries) GetCompanyByID(ctx context.Context, id int64) (Company, error) {
	return scanCompany(q.db.QueryRow(ctx, getCompanyByID, id))
}

const listCompanies = `-- name: ListCompanies :many
SELECT ` + companyColumns + ` FROM company ORDER BY id`

func (q *Queries) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := q.db.Query(ctx, listCompanies)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Company
	for rows.Next() {
		i, err := scanCompany(rows)
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
