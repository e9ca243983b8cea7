package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Company plan tiers.
const (
	CompanyRoleBasic   = "basic"
	CompanyRolePro     = "pro"
	CompanyRoleSpecial = "special"
)

type Company struct {
	ID                int64
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
	CreatedAt         pgtype.Timestamptz
}

type User struct {
	ID              int64
	Email           string
	CnpjCpf         string
	IpAddress       pgtype.Text
	HashedPassword  string
	FullName        pgtype.Text
	Role            string
	IsActive        bool
	IsAuthenticated bool
	StatusChangedAt pgtype.Timestamptz
	CompanyID       pgtype.Int8
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

type Contract struct {
	ID                  int64
	TypeOfContract      string
	DateTimeAccepted    pgtype.Timestamptz
	IsSignatureAccepted bool
	TermContent         pgtype.Text
	IpAddress           pgtype.Text
	UserID              pgtype.Int8
	CreatedAt           pgtype.Timestamptz
}

type Code struct {
	ID         int64
	Code       int32
	IsCodeUsed bool
	UserID     pgtype.Int8
	CreatedAt  pgtype.Timestamptz
}

type PasswordReset struct {
	ID        pgtype.UUID
	UserID    int64
	ExpiresAt pgtype.Timestamptz
	UsedAt    pgtype.Timestamptz
	CreatedAt pgtype.Timestamptz
}
