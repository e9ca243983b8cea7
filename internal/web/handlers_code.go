package web

import (
	"net/http"

	"github.com/JonMunkholm/ncmlookup/internal/web/middleware"
)

type codeRequest struct {
	Code int32 `json:"code" validate:"required"`
}

type attachCodeRequest struct {
	Code   int32 `json:"code" validate:"required"`
	UserID int64 `json:"user_id" validate:"omitempty,gte=1"`
}

type generatedCode struct {
	Code int32 `json:"code"`
}

func (s *Server) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.service.IssueCode(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, generatedCode{Code: code})
}

// handleValidateCode always answers 200; the body says whether the code can
// still be used.
func (s *Server) handleValidateCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	check, err := s.service.ValidateCode(r.Context(), req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, check)
}

// handleAttachCode binds a code to the caller, or to user_id when an
// administrator asks.
func (s *Server) handleAttachCode(w http.ResponseWriter, r *http.Request) {
	var req attachCodeRequest
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

	check, err := s.service.AttachCode(r.Context(), userID, req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !check.Success {
		writeJSONStatus(w, http.StatusBadRequest, check)
		return
	}
	writeJSON(w, check)
}
