package web

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	"github.com/JonMunkholm/ncmlookup/internal/core"
)

func TestRegister(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, http.MethodPost, "/auth/register", map[string]any{
		"email":      "ana@example.com",
		"cnpj_cpf":   "12345678000190",
		"password":   "correct-horse",
		"ip_address": "203.0.113.7",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decodeBody[core.User](t, w)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, auth.RoleClient, user.Role)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.IPAddress)
	assert.Equal(t, "203.0.113.7", *user.IPAddress)
	assert.NotContains(t, w.Body.String(), "hashed_password")
}

func TestRegister_Conflicts(t *testing.T) {
	env := setupTestServer(t, nil)
	register := func(email, ip string) *ErrorResponse {
		w := env.do(t, http.MethodPost, "/auth/register", map[string]any{
			"email":      email,
			"cnpj_cpf":   "12345678000190",
			"password":   "correct-horse",
			"ip_address": ip,
		}, "")
		if w.Code == http.StatusCreated {
			return nil
		}
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		body := decodeBody[ErrorResponse](t, w)
		return &body
	}

	require.Nil(t, register("ana@example.com", "203.0.113.7"))

	got := register("bia@example.com", "203.0.113.7")
	require.NotNil(t, got)
	assert.Equal(t, "IP já cadastrado para outro usuário.", got.Detail)

	got = register("ana@example.com", "203.0.113.8")
	require.NotNil(t, got)
	assert.Equal(t, "Email already registered", got.Detail)
}

func TestRegister_Validation(t *testing.T) {
	env := setupTestServer(t, nil)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"short password", map[string]any{"email": "ana@example.com", "cnpj_cpf": "1", "password": "short"}},
		{"bad email", map[string]any{"email": "not-an-email", "cnpj_cpf": "1", "password": "correct-horse"}},
		{"missing cnpj", map[string]any{"email": "ana@example.com", "password": "correct-horse"}},
		{"unknown role", map[string]any{"email": "ana@example.com", "cnpj_cpf": "1", "password": "correct-horse", "role": "root"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/auth/register", tt.body, "")
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			assert.Equal(t, "VAL002", decodeBody[ErrorResponse](t, w).Code)
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, http.MethodPost, "/auth/register", "not an object", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", decodeBody[ErrorResponse](t, w).Detail)
}

func TestLogin_SingleSession(t *testing.T) {
	env := setupTestServer(t, nil)
	env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)
	creds := map[string]string{"email": "ana@example.com", "password": "correct-horse"}

	w := env.do(t, http.MethodPost, "/auth/login", creds, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[core.LoginResult](t, w)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "bearer", result.TokenType)
	assert.Equal(t, auth.RoleClient, result.Role)

	w = env.do(t, http.MethodPost, "/auth/login", creds, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Conta já está sendo utilizada no momento.", decodeBody[ErrorResponse](t, w).Detail)

	// Logging out frees the session.
	w = env.do(t, http.MethodPost, "/auth/logout", nil, result.AccessToken)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", creds, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := setupTestServer(t, nil)
	env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)

	for _, creds := range []map[string]string{
		{"email": "ana@example.com", "password": "wrong-horse"},
		{"email": "nobody@example.com", "password": "correct-horse"},
	} {
		w := env.do(t, http.MethodPost, "/auth/login", creds, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Credenciais Inválidas.", decodeBody[ErrorResponse](t, w).Detail)
	}
}

func TestMe(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)

	w := env.do(t, http.MethodGet, "/auth/me", nil, token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@example.com", decodeBody[core.User](t, w).Email)
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t, nil)
	u, token := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)

	tests := []struct {
		name       string
		token      string
		wantDetail string
	}{
		{"missing token", "", "Not authenticated"},
		{"garbage token", "not-a-jwt", "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/auth/me", nil, tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.Equal(t, tt.wantDetail, decodeBody[ErrorResponse](t, w).Detail)
		})
	}

	t.Run("inactive user", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/users/"+itoa(u.ID)+"/status", map[string]bool{"is_active": false}, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/auth/me", nil, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User not found or inactive", decodeBody[ErrorResponse](t, w).Detail)
	})
}

func TestAdminOnly(t *testing.T) {
	env := setupTestServer(t, nil)
	_, clientToken := env.store.seedUser(t, env.issuer, "ana@example.com", auth.RoleClient)
	_, adminToken := env.store.seedUser(t, env.issuer, "root@example.com", auth.RoleAdministrator)

	w := env.do(t, http.MethodGet, "/auth/admin-only", nil, clientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Insufficient permissions", decodeBody[ErrorResponse](t, w).Detail)

	w = env.do(t, http.MethodGet, "/auth/admin-only", nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"You are an administrator."}`, w.Body.String())
}

func TestForgotPassword_UnknownEmailIsAccepted(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, http.MethodPost, "/auth/forgot-password", map[string]string{"email": "nobody@example.com"}, "")

	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
}

func TestResetPassword_Validation(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, http.MethodPost, "/auth/reset-password", map[string]string{"token": "abc", "new_password": "short"}, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
