package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	"github.com/JonMunkholm/ncmlookup/internal/core"
	"github.com/JonMunkholm/ncmlookup/internal/web/middleware"
)

type signContractRequest struct {
	UserID              int64   `json:"user_id" validate:"omitempty,gte=1"`
	TypeOfContract      string  `json:"type_of_contract" validate:"required"`
	IsSignatureAccepted bool    `json:"is_signature_accepted"`
	TermContent         *string `json:"term_content"`
}

type isSignedResponse struct {
	IsSigned bool `json:"is_signed"`
}

// subjectID resolves the user an operation applies to. Omitted means the
// caller; only administrators may act for someone else.
func subjectID(caller core.User, requested int64) (int64, error) {
	if requested == 0 || requested == caller.ID {
		return caller.ID, nil
	}
	if caller.Role != auth.RoleAdministrator {
		return 0, core.ErrForbidden
	}
	return requested, nil
}

// handleSignContract records a signature along with the caller's address.
func (s *Server) handleSignContract(w http.ResponseWriter, r *http.Request) {
	var req signContractRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	caller, _ := middleware.UserFromContext(r.Context())
	userID, err := subjectID(caller, req.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	contract, err := s.service.SignContract(r.Context(), core.ContractInput{
		UserID:              userID,
		TypeOfContract:      req.TypeOfContract,
		IsSignatureAccepted: req.IsSignatureAccepted,
		TermContent:         req.TermContent,
	}, middleware.ClientIP(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, contract)
}

func (s *Server) handleIsSigned(w http.ResponseWriter, r *http.Request) {
	kind := strings.TrimSpace(r.URL.Query().Get("type"))
	if kind == "" {
		respondError(w, r, validationFailed(errMissingParam("type")))
		return
	}
	requested, err := queryInt(r, "user_id", 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	caller, _ := middleware.UserFromContext(r.Context())
	userID, err := subjectID(caller, int64(requested))
	if err != nil {
		respondError(w, r, err)
		return
	}

	signed, err := s.service.IsSignedContract(r.Context(), userID, kind)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, isSignedResponse{IsSigned: signed})
}

type errMissingParam string

func (e errMissingParam) Error() string {
	return "field '" + string(e) + "' is required"
}
