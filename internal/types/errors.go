package types

// ErrorCode is a stable machine-readable code surfaced to API callers.
type ErrorCode string

// Error codes surfaced at the service boundary.
const (
	CodeInvalidInput        ErrorCode = "INVALID_INPUT"
	CodeDatabaseError       ErrorCode = "DATABASE_ERROR"
	CodeAccessibilityError  ErrorCode = "ACCESSIBILITY_ERROR"
	CodeImageProcessing     ErrorCode = "IMAGE_PROCESSING_ERROR"
	CodeUnexpectedError     ErrorCode = "UNEXPECTED_ERROR"
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
)

// CodedError pairs an error code with a human-readable message. Packages that
// need to surface a specific code to the caller return a *CodedError; everything
// else maps to CodeUnexpectedError at the boundary.
type CodedError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// NewCodedError builds a CodedError with an optional cause.
func NewCodedError(code ErrorCode, message string, cause error) *CodedError {
	return &CodedError{Code: code, Message: message, Cause: cause}
}
