package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/ncmlookup/internal/core"
	"github.com/JonMunkholm/ncmlookup/internal/ncm"
)

// MaxBodySize caps JSON request bodies (1MB).
const MaxBodySize = 1 << 20

// searchFields are the values accepted by the field and field2 parameters.
var searchFields = ncm.SearchFieldNames()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	// oneof splits on spaces, and several column names contain them.
	_ = v.RegisterValidation("searchfield", func(fl validator.FieldLevel) bool {
		for _, f := range searchFields {
			if fl.Field().String() == f {
				return true
			}
		}
		return false
	})
	return v
}

// decodeJSON reads a JSON body into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest(err, "Request body is empty")
		}
		return badRequest(err, "Invalid JSON body")
	}
	return s.validateStruct(dst)
}

// validateStruct runs the validate tags of v.
func (s *Server) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return validationFailed(err)
	}
	return nil
}

// validationFailed wraps a validator failure as a 422.
func validationFailed(err error) error {
	return &core.UserError{
		Technical: fmt.Errorf("%w: %w", errUnprocessable, err),
		User: core.UserMessage{
			Message: describeValidation(err),
			Action:  "Review the submitted fields",
			Code:    "VAL002",
		},
	}
}

// badRequest wraps a malformed request as a 400 with a fixed message.
func badRequest(err error, msg string) error {
	if err == nil {
		err = errors.New(strings.ToLower(msg))
	}
	return &core.UserError{
		Technical: fmt.Errorf("%w: %w", core.ErrInvalidInput, err),
		User: core.UserMessage{
			Message: msg,
			Action:  "Review the submitted fields",
			Code:    "VAL001",
		},
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("field '%s' is required", fe.Field()))
		case "searchfield":
			parts = append(parts, fmt.Sprintf("field '%s' must be one of %s", fe.Field(), strings.Join(searchFields, ", ")))
		case "email":
			parts = append(parts, fmt.Sprintf("field '%s' must be a valid email", fe.Field()))
		case "min", "max", "gte", "lte", "oneof":
			parts = append(parts, fmt.Sprintf("field '%s' failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("field '%s' is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

// pathID parses a positive integer URL parameter. Anything else is a 422,
// like any other malformed field.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &core.UserError{
			Technical: fmt.Errorf("%w: path parameter %s=%q", errUnprocessable, name, raw),
			User: core.UserMessage{
				Message: fmt.Sprintf("field '%s' must be a positive integer", name),
				Action:  "Check the id in the URL",
				Code:    "VAL002",
			},
		}
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &core.UserError{
			Technical: fmt.Errorf("%w: query parameter %s=%q", errUnprocessable, name, raw),
			User: core.UserMessage{
				Message: fmt.Sprintf("field '%s' must be an integer", name),
				Action:  "Review the query parameters",
				Code:    "VAL002",
			},
		}
	}
	return n, nil
}
