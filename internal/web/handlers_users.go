package web

import (
	"net/http"

	"github.com/JonMunkholm/ncmlookup/internal/core"
)

// The status bodies use pointers so a missing field can be told apart from
// an explicit false.
type userStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

type userAuthenticatedRequest struct {
	IsAuthenticated *bool `json:"is_authenticated"`
}

type userCompanyRequest struct {
	CompanyID int64 `json:"company_id" validate:"required,gte=1"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.service.ListUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if users == nil {
		users = []core.User{}
	}
	writeJSON(w, users)
}

// handleUserStatus activates or deactivates an account.
func (s *Server) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req userStatusRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.IsActive == nil {
		respondError(w, r, badRequest(nil, "Missing field 'is_active'"))
		return
	}

	user, err := s.service.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, user)
}

// handleUserAuthenticatedStatus sets the single-session flag. Clearing it
// lets a locked-out account log in again.
func (s *Server) handleUserAuthenticatedStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req userAuthenticatedRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.IsAuthenticated == nil {
		respondError(w, r, badRequest(nil, "Missing field 'is_authenticated'"))
		return
	}

	user, err := s.service.SetAuthenticated(r.Context(), id, *req.IsAuthenticated)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, user)
}

func (s *Server) handleUserCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req userCompanyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := s.service.AssignCompany(r.Context(), id, req.CompanyID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, user)
}
