package usecase

import "fmt"

type ErrorCode string

const (
	ErrorConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrorProvider      ErrorCode = "PROVIDER_ERROR"
	ErrorInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorInternal      ErrorCode = "INTERNAL_ERROR"
)

const (
	MessageAPIKeyMissing  = "API key not configured"
	MessageInvalidBody    = "invalid request body"
	MessageInternalServer = "Internal Server Error"
)

// Error is a classified endpoint failure. Message is safe to return to the
// caller; Reason and Err are for logs only.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PublicMessage is the text placed in the {"error": ...} response body.
func (e *Error) PublicMessage() string {
	if e == nil || e.Message == "" {
		return MessageInternalServer
	}
	return e.Message
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

// InvalidInput reports a request body that could not be decoded.
func InvalidInput(err error) *Error {
	return newError(ErrorInvalidInput, "malformed_body", MessageInvalidBody, err)
}
