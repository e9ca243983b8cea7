package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/ncmlookup/internal/core"
)

type companyRequest struct {
	CustomerName      *string    `json:"customer_name"`
	Role              string     `json:"role" validate:"omitempty,oneof=basic pro special"`
	CompanyName       *string    `json:"company_name"`
	Cnpj              string     `json:"cnpj" validate:"required"`
	PhoneNumber       *string    `json:"phone_number"`
	Address           *string    `json:"address"`
	ContractStartDate *time.Time `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date"`
	CnaeCompany       *string    `json:"cnae_company"`
	CnaeDescription   *string    `json:"cnae_description"`
	TaxRegime         *string    `json:"tax_regime"`
	ErpCode           *string    `json:"erp_code"`
	MonthlyValue      *float64   `json:"monthly_value" validate:"omitempty,gte=0"`
	Email             *string    `json:"email" validate:"omitempty,email"`
	Cpf               *string    `json:"cpf"`
}

func (s *Server) handleRegisterCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	company, err := s.service.RegisterCompany(r.Context(), core.CompanyInput{
		CustomerName:      req.CustomerName,
		Role:              req.Role,
		CompanyName:       req.CompanyName,
		Cnpj:              req.Cnpj,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		ContractStartDate: req.ContractStartDate,
		ContractEndDate:   req.ContractEndDate,
		CnaeCompany:       req.CnaeCompany,
		CnaeDescription:   req.CnaeDescription,
		TaxRegime:         req.TaxRegime,
		ErpCode:           req.ErpCode,
		MonthlyValue:      req.MonthlyValue,
		Email:             req.Email,
		Cpf:               req.Cpf,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, company)
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.service.ListCompanies(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if companies == nil {
		companies = []core.Company{}
	}
	writeJSON(w, companies)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	company, err := s.service.GetCompany(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, company)
}
