package core

// error_messages.go maps technical errors to the messages shown to API
// clients. Each message carries a stable code that support can search for.
//
// Codes are grouped by area:
//
//	AUTH001-AUTH099  login, tokens, roles, password reset
//	USR001-USR099    user records
//	CMP001-CMP099    companies
//	CTR001-CTR099    contracts
//	CODE001-CODE099  one-time codes
//	NCM001-NCM099    spreadsheet lookup
//	DB001-DB099      database failures
//	RATE001          throttling
//	ERR000           anything else
//
// Domain sentinels are matched first with errors.Is; the substring patterns
// only cover errors that arrive from drivers as plain text.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	"github.com/JonMunkholm/ncmlookup/internal/ncm"
)

// UserMessage is a client-safe description of a failure.
type UserMessage struct {
	Message string // What went wrong, in user terms
	Action  string // What the user can do about it
	Code    string // Reference code for support
}

type errorSentinel struct {
	err error
	msg UserMessage
}

// Ordered from most to least specific: ErrEmailTaken must win over ErrConflict.
var errorSentinels = []errorSentinel{
	// ==========================================================================
	// Authentication
	// ==========================================================================
	{ErrInvalidCredentials, UserMessage{
		Message: "Credenciais Inválidas.",
		Action:  "Verifique o email e a senha e tente novamente",
		Code:    "AUTH001",
	}},
	{ErrSessionInUse, UserMessage{
		Message: "Conta já está sendo utilizada no momento.",
		Action:  "Encerre a outra sessão ou peça a liberação a um administrador",
		Code:    "AUTH002",
	}},
	{ErrInactiveUser, UserMessage{
		Message: "User not found or inactive",
		Action:  "Sign in again or contact an administrator",
		Code:    "AUTH003",
	}},
	{auth.ErrInvalidToken, UserMessage{
		Message: "Invalid or expired token",
		Action:  "Sign in again",
		Code:    "AUTH004",
	}},
	{ErrForbidden, UserMessage{
		Message: "Insufficient permissions",
		Action:  "Ask an administrator for access",
		Code:    "AUTH005",
	}},
	{ErrInvalidResetToken, UserMessage{
		Message: "Link de redefinição inválido ou expirado.",
		Action:  "Solicite um novo link de redefinição de senha",
		Code:    "AUTH006",
	}},

	// ==========================================================================
	// Users
	// ==========================================================================
	{ErrEmailTaken, UserMessage{
		Message: "Email already registered",
		Action:  "Sign in or use a different email",
		Code:    "USR001",
	}},
	{ErrIPTaken, UserMessage{
		Message: "IP já cadastrado para outro usuário.",
		Action:  "Entre em contato com o suporte",
		Code:    "USR002",
	}},
	{ErrUserNotFound, UserMessage{
		Message: "User not found",
		Action:  "Check the user id",
		Code:    "USR003",
	}},

	// ==========================================================================
	// Companies and contracts
	// ==========================================================================
	{ErrCompanyNotFound, UserMessage{
		Message: "Company not found",
		Action:  "Check the company id",
		Code:    "CMP001",
	}},
	{ErrContractNotFound, UserMessage{
		Message: "Contrato não encontrado para este usuário e tipo de contrato.",
		Action:  "Assine o contrato antes de continuar",
		Code:    "CTR001",
	}},

	// ==========================================================================
	// One-time codes
	// ==========================================================================
	{ErrCodeExhausted, UserMessage{
		Message: "Não foi possível gerar um código válido",
		Action:  "Tente novamente em alguns instantes",
		Code:    "CODE001",
	}},

	// ==========================================================================
	// Spreadsheet lookup
	// ==========================================================================
	{ncm.ErrResourceNotFound, UserMessage{
		Message: "Excel file not found in package.",
		Action:  "Check NCM_SPREADSHEET_PATH and NCM_RESOURCE_DIR",
		Code:    "NCM001",
	}},
	{ncm.ErrMissingDetailKey, UserMessage{
		Message: "Provide 'ncm' or 'item'",
		Action:  "Add an ncm or item query parameter",
		Code:    "NCM002",
	}},

	// Generic fallbacks for sentinels without a specific variant.
	{ErrNotFound, UserMessage{
		Message: "Record not found",
		Action:  "Check the id and try again",
		Code:    "DB008",
	}},
	{ErrConflict, UserMessage{
		Message: "This record already exists",
		Action:  "Review the values and try again",
		Code:    "DB002",
	}},
	{ErrInvalidInput, UserMessage{
		Message: "Invalid request",
		Action:  "Review the submitted fields",
		Code:    "VAL001",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// ==========================================================================
	// Database errors
	// ==========================================================================
	{"duplicate key", UserMessage{
		Message: "A record with this value already exists",
		Action:  "Review the values and try again",
		Code:    "DB001",
	}},
	{"violates unique", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Review the values and try again",
		Code:    "DB002",
	}},
	{"violates foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Check the referenced id",
		Code:    "DB003",
	}},
	{"violates check constraint", UserMessage{
		Message: "A value is outside the allowed range",
		Action:  "Review the values and try again",
		Code:    "DB007",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Please try again later",
		Code:    "DB006",
	}},
	{"deadline exceeded", UserMessage{
		Message: "Operation timed out",
		Action:  "Please try again later",
		Code:    "DB006",
	}},

	// ==========================================================================
	// Throttling
	// ==========================================================================
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
	{"too many concurrent", UserMessage{
		Message: "The server is busy",
		Action:  "Please try again in a few seconds",
		Code:    "RATE002",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinels are matched first, then case-insensitive substrings of
// the error text. Unknown errors get the ERR000 fallback.
//
// Example:
//
//	msg := MapError(fmt.Errorf("login: %w", ErrSessionInUse))
//	// msg.Code == "AUTH002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, es := range errorSentinels {
		if errors.Is(err, es.err) {
			return es.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: X). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown to users.
type UserError struct {
	Technical error       // Original error, for logs
	User      UserMessage // Client-safe message
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err and keeps it reachable through Unwrap.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

// invalidInput builds a validation failure with a custom message.
func invalidInput(message string) error {
	return &UserError{
		Technical: fmt.Errorf("%w: %s", ErrInvalidInput, message),
		User: UserMessage{
			Message: message,
			Action:  "Review the submitted fields",
			Code:    "VAL001",
		},
	}
}
