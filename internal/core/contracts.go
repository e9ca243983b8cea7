package core

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // acceptance times are recorded in Brazil local time

	db "github.com/JonMunkholm/ncmlookup/internal/database"
	"github.com/JonMunkholm/ncmlookup/internal/logging"
)

// ContractLocation is the zone acceptance timestamps are taken in.
var ContractLocation = mustLoadLocation("America/Sao_Paulo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// Contract is a stored acceptance of terms.
type Contract struct {
	ID                  int64      `json:"id"`
	UserID              *int64     `json:"user_id"`
	TypeOfContract      string     `json:"type_of_contract"`
	DateTimeAccepted    *time.Time `json:"date_time_accepted"`
	IsSignatureAccepted bool       `json:"is_signature_accepted"`
	TermContent         *string    `json:"term_content"`
	IPAddress           *string    `json:"ip_address"`
}

func newContract(c db.Contract) Contract {
	out := Contract{
		ID:                  c.ID,
		UserID:              Int8Ptr(c.UserID),
		TypeOfContract:      c.TypeOfContract,
		DateTimeAccepted:    TimePtr(c.DateTimeAccepted),
		IsSignatureAccepted: c.IsSignatureAccepted,
		TermContent:         TextPtr(c.TermContent),
		IPAddress:           TextPtr(c.IpAddress),
	}
	if out.DateTimeAccepted != nil {
		local := out.DateTimeAccepted.In(ContractLocation)
		out.DateTimeAccepted = &local
	}
	return out
}

// ContractInput is a signature submitted by a user.
type ContractInput struct {
	UserID              int64
	TypeOfContract      string
	IsSignatureAccepted bool
	TermContent         *string
}

// SignContract records the signature with the caller's IP. The acceptance
// time is only set when the signature was accepted.
func (s *Service) SignContract(ctx context.Context, in ContractInput, clientIP string) (Contract, error) {
	kind := strings.TrimSpace(in.TypeOfContract)
	if kind == "" {
		return Contract{}, invalidInput("type_of_contract is required")
	}

	params := db.CreateContractParams{
		TypeOfContract:      kind,
		IsSignatureAccepted: in.IsSignatureAccepted,
		TermContent:         ToPgTextPtr(in.TermContent),
		IpAddress:           ToPgText(clientIP),
		UserID:              ToPgInt8(&in.UserID),
	}
	if in.IsSignatureAccepted {
		accepted := s.now().In(ContractLocation)
		params.DateTimeAccepted = ToPgTimestamptz(&accepted)
	}

	created, err := s.store.CreateContract(ctx, params)
	if err != nil {
		return Contract{}, fmt.Errorf("create contract: %w", err)
	}

	logging.FromContext(ctx).Info("contract signed",
		"contract_id", created.ID,
		"user_id", in.UserID,
		"type", kind,
		"accepted", in.IsSignatureAccepted,
		"ip", clientIP,
	)
	return newContract(created), nil
}

// IsSignedContract reports the accepted flag of the user's first contract of
// the given type, or ErrContractNotFound.
func (s *Service) IsSignedContract(ctx context.Context, userID int64, kind string) (bool, error) {
	accepted, err := s.store.GetContractSignature(ctx, db.GetContractSignatureParams{
		UserID:         userID,
		TypeOfContract: strings.TrimSpace(kind),
	})
	if err != nil {
		return false, notFound(err, ErrContractNotFound, "get contract")
	}
	return accepted, nil
}
