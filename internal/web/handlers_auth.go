package web

import (
	"net/http"

	"github.com/JonMunkholm/ncmlookup/internal/core"
	"github.com/JonMunkholm/ncmlookup/internal/web/middleware"
)

type registerRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	CnpjCpf   string  `json:"cnpj_cpf" validate:"required"`
	IPAddress *string `json:"ip_address" validate:"omitempty,ip"`
	Password  string  `json:"password" validate:"required,min=8"`
	FullName  *string `json:"full_name"`
	Role      string  `json:"role" validate:"omitempty,oneof=administrator client"`
	CompanyID *int64  `json:"company_id" validate:"omitempty,gte=1"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// handleRegister creates an account. The IP address comes from the body;
// the caller's own address is not bound to the account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := s.service.Register(r.Context(), core.RegisterInput{
		Email:     req.Email,
		CnpjCpf:   req.CnpjCpf,
		IPAddress: req.IPAddress,
		Password:  req.Password,
		FullName:  req.FullName,
		Role:      req.Role,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleLogout releases the caller's single-session flag.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	if err := s.service.Logout(r.Context(), user.ID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	writeJSON(w, user)
}

func (s *Server) handleAdminOnly(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, messageResponse{Message: "You are an administrator."})
}

// handleForgotPassword always answers the same way so the endpoint cannot be
// used to probe which emails are registered.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusAccepted, messageResponse{
		Message: "Se o email estiver cadastrado, enviaremos um link para redefinir a senha.",
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, messageResponse{Message: "Senha redefinida com sucesso."})
}
