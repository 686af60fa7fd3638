package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marisol/atelier/internal/types"
)

// errorBody is the uniform error envelope returned to callers.
type errorBody struct {
	Code    types.ErrorCode `json:"code"`
	Message string          `json:"message"`
}

// codeOf extracts the caller-facing error code, defaulting to
// UNEXPECTED_ERROR for anything untyped.
func codeOf(err error) types.ErrorCode {
	var coded *types.CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return types.CodeUnexpectedError
}

// httpStatus maps an error code to its HTTP status.
func httpStatus(code types.ErrorCode) int {
	switch code {
	case types.CodeInvalidInput, types.CodeImageProcessing:
		return http.StatusBadRequest
	case types.CodeUnauthorized:
		return http.StatusUnauthorized
	case types.CodeProviderUnavailable:
		return http.StatusBadGateway
	case types.CodeDatabaseError, types.CodeAccessibilityError, types.CodeUnexpectedError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// jsonResponse writes a JSON body with the given status.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

// errorResponse writes the uniform error envelope for an error value.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	code := codeOf(err)
	s.jsonResponse(w, httpStatus(code), errorBody{Code: code, Message: err.Error()})
}

// errorResponseCode writes the envelope for an explicit code and message.
func (s *Server) errorResponseCode(w http.ResponseWriter, code types.ErrorCode, message string) {
	s.jsonResponse(w, httpStatus(code), errorBody{Code: code, Message: message})
}
