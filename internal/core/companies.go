package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	db "github.com/JonMunkholm/ncmlookup/internal/database"
	"github.com/JonMunkholm/ncmlookup/internal/logging"
)

// Company is a customer record.
type Company struct {
	ID                int64      `json:"id"`
	CustomerName      *string    `json:"customer_name"`
	Role              string     `json:"role"`
	CompanyName       *string    `json:"company_name"`
	Cnpj              string     `json:"cnpj"`
	PhoneNumber       *string    `json:"phone_number"`
	Address           *string    `json:"address"`
	ContractStartDate *time.Time `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date"`
	CnaeCompany       *string    `json:"cnae_company"`
	CnaeDescription   *string    `json:"cnae_description"`
	TaxRegime         *string    `json:"tax_regime"`
	ErpCode           *string    `json:"erp_code"`
	MonthlyValue      *float64   `json:"monthly_value"`
	Email             *string    `json:"email"`
	Cpf               *string    `json:"cpf"`
}

func newCompany(c db.Company) Company {
	return Company{
		ID:                c.ID,
		CustomerName:      TextPtr(c.CustomerName),
		Role:              c.Role,
		CompanyName:       TextPtr(c.CompanyName),
		Cnpj:              c.Cnpj,
		PhoneNumber:       TextPtr(c.PhoneNumber),
		Address:           TextPtr(c.Address),
		ContractStartDate: TimePtr(c.ContractStartDate),
		ContractEndDate:   TimePtr(c.ContractEndDate),
		CnaeCompany:       TextPtr(c.CnaeCompany),
		CnaeDescription:   TextPtr(c.CnaeDescription),
		TaxRegime:         TextPtr(c.TaxRegime),
		ErpCode:           TextPtr(c.ErpCode),
		MonthlyValue:      Float8Ptr(c.MonthlyValue),
		Email:             TextPtr(c.Email),
		Cpf:               TextPtr(c.Cpf),
	}
}

// CompanyInput is a new company request. Role defaults to basic.
type CompanyInput struct {
	CustomerName      *string
	Role              string
	CompanyName       *string
	Cnpj              string
	PhoneNumber       *string
	Address           *string
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	CnaeCompany       *string
	CnaeDescription   *string
	TaxRegime         *string
	ErpCode           *string
	MonthlyValue      *float64
	Email             *string
	Cpf               *string
}

// ValidCompanyRole reports whether role is a known company plan.
func ValidCompanyRole(role string) bool {
	switch role {
	case db.CompanyRoleBasic, db.CompanyRolePro, db.CompanyRoleSpecial:
		return true
	}
	return false
}

// RegisterCompany stores a new company.
func (s *Service) RegisterCompany(ctx context.Context, in CompanyInput) (Company, error) {
	cnpj := strings.TrimSpace(in.Cnpj)
	if cnpj == "" {
		return Company{}, invalidInput("cnpj is required")
	}
	role := in.Role
	if role == "" {
		role = db.CompanyRoleBasic
	}
	if !ValidCompanyRole(role) {
		return Company{}, invalidInput("role must be basic, pro or special")
	}
	if in.ContractStartDate != nil && in.ContractEndDate != nil && in.ContractEndDate.Before(*in.ContractStartDate) {
		return Company{}, invalidInput("contract_end_date is before contract_start_date")
	}

	created, err := s.store.CreateCompany(ctx, db.CreateCompanyParams{
		CustomerName:      ToPgTextPtr(in.CustomerName),
		Role:              role,
		CompanyName:       ToPgTextPtr(in.CompanyName),
		Cnpj:              cnpj,
		PhoneNumber:       ToPgTextPtr(in.PhoneNumber),
		Address:           ToPgTextPtr(in.Address),
		ContractStartDate: ToPgTimestamptz(in.ContractStartDate),
		ContractEndDate:   ToPgTimestamptz(in.ContractEndDate),
		CnaeCompany:       ToPgTextPtr(in.CnaeCompany),
		CnaeDescription:   ToPgTextPtr(in.CnaeDescription),
		TaxRegime:         ToPgTextPtr(in.TaxRegime),
		ErpCode:           ToPgTextPtr(in.ErpCode),
		MonthlyValue:      ToPgFloat8(in.MonthlyValue),
		Email:             ToPgTextPtr(in.Email),
		Cpf:               ToPgTextPtr(in.Cpf),
	})
	if err != nil {
		return Company{}, fmt.Errorf("create company: %w", err)
	}

	logging.FromContext(ctx).Info("company registered", "company_id", created.ID, "role", created.Role)
	return newCompany(created), nil
}

// ListCompanies returns every company ordered by id.
func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	out := make([]Company, len(rows))
	for i, c := range rows {
		out[i] = newCompany(c)
	}
	return out, nil
}

// GetCompany returns one company or ErrCompanyNotFound.
func (s *Service) GetCompany(ctx context.Context, id int64) (Company, error) {
	c, err := s.store.GetCompanyByID(ctx, id)
	if err != nil {
		return Company{}, notFound(err, ErrCompanyNotFound, "get company")
	}
	return newCompany(c), nil
}
