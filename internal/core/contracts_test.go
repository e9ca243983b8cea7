package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSignContract(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, svc, "ana@example.com")

	c, err := svc.SignContract(ctx, ContractInput{
		UserID:              u.ID,
		TypeOfContract:      "termos_de_uso",
		IsSignatureAccepted: true,
		TermContent:         strPtr("v1"),
	}, "203.0.113.7")
	if err != nil {
		t.Fatalf("SignContract() error = %v", err)
	}

	if c.IPAddress == nil || *c.IPAddress != "203.0.113.7" {
		t.Errorf("IPAddress = %v, want 203.0.113.7", c.IPAddress)
	}
	if c.DateTimeAccepted == nil {
		t.Fatal("DateTimeAccepted = nil, want acceptance time")
	}
	if !c.DateTimeAccepted.Equal(testNow) {
		t.Errorf("DateTimeAccepted = %v, want %v", c.DateTimeAccepted, testNow)
	}
	if got := c.DateTimeAccepted.Location().String(); got != "America/Sao_Paulo" {
		t.Errorf("DateTimeAccepted zone = %q, want America/Sao_Paulo", got)
	}
	if got := c.DateTimeAccepted.Format(time.TimeOnly); got != "12:04:05" {
		t.Errorf("local acceptance time = %q, want 12:04:05", got)
	}
}

func TestSignContract_Declined(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, svc, "ana@example.com")

	c, err := svc.SignContract(ctx, ContractInput{UserID: u.ID, TypeOfContract: "termos_de_uso"}, "")
	if err != nil {
		t.Fatalf("SignContract() error = %v", err)
	}
	if c.DateTimeAccepted != nil {
		t.Errorf("DateTimeAccepted = %v, want nil for a declined signature", c.DateTimeAccepted)
	}
	if c.IPAddress != nil {
		t.Errorf("IPAddress = %v, want nil for a blank client ip", *c.IPAddress)
	}

	if _, err := svc.SignContract(ctx, ContractInput{UserID: u.ID}, "10.0.0.1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SignContract(no type) error = %v, want ErrInvalidInput", err)
	}
}

func TestIsSignedContract(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, svc, "ana@example.com")

	if _, err := svc.IsSignedContract(ctx, u.ID, "termos_de_uso"); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("IsSignedContract() before signing error = %v, want ErrContractNotFound", err)
	}

	// The first matching row wins.
	for _, accepted := range []bool{true, false} {
		if _, err := svc.SignContract(ctx, ContractInput{
			UserID: u.ID, TypeOfContract: "termos_de_uso", IsSignatureAccepted: accepted,
		}, "10.0.0.1"); err != nil {
			t.Fatalf("SignContract() error = %v", err)
		}
	}

	signed, err := svc.IsSignedContract(ctx, u.ID, "termos_de_uso")
	if err != nil {
		t.Fatalf("IsSignedContract() error = %v", err)
	}
	if !signed {
		t.Error("IsSignedContract() = false, want true")
	}

	if _, err := svc.IsSignedContract(ctx, u.ID, "outro"); !errors.Is(err, ErrNotFound) {
		t.Errorf("IsSignedContract(other type) error = %v, want ErrNotFound", err)
	}
}

func TestRegisterCompany(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	value := 499.9

	c, err := svc.RegisterCompany(ctx, CompanyInput{
		CompanyName:       strPtr("Acme Ltda"),
		Cnpj:              " 12345678000190 ",
		ContractStartDate: &start,
		ContractEndDate:   &end,
		MonthlyValue:      &value,
		TaxRegime:         strPtr(""),
	})
	if err != nil {
		t.Fatalf("RegisterCompany() error = %v", err)
	}
	if c.Role != "basic" {
		t.Errorf("Role = %q, want basic", c.Role)
	}
	if c.Cnpj != "12345678000190" {
		t.Errorf("Cnpj = %q, want trimmed", c.Cnpj)
	}
	if c.TaxRegime != nil {
		t.Errorf("TaxRegime = %q, want nil for blank input", *c.TaxRegime)
	}
	if c.MonthlyValue == nil || *c.MonthlyValue != value {
		t.Errorf("MonthlyValue = %v, want %v", c.MonthlyValue, value)
	}

	got, err := svc.GetCompany(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCompany() error = %v", err)
	}
	if got.CompanyName == nil || *got.CompanyName != "Acme Ltda" {
		t.Errorf("CompanyName = %v", got.CompanyName)
	}

	all, err := svc.ListCompanies(ctx)
	if err != nil {
		t.Fatalf("ListCompanies() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(ListCompanies()) = %d, want 1", len(all))
	}

	if _, err := svc.GetCompany(ctx, 999); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("GetCompany(missing) error = %v, want ErrCompanyNotFound", err)
	}
}

func TestRegisterCompany_Rejects(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, -1, 0)

	tests := []struct {
		name string
		in   CompanyInput
	}{
		{"missing cnpj", CompanyInput{}},
		{"unknown role", CompanyInput{Cnpj: "1", Role: "gold"}},
		{"end before start", CompanyInput{Cnpj: "1", ContractStartDate: &start, ContractEndDate: &before}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RegisterCompany(ctx, tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("RegisterCompany() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
