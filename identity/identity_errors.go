package identity

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code identifies a provider-native failure class. Concrete providers map
// their SDK or HTTP errors onto these codes so the session core never needs
// provider-specific constants.
type Code int

const (
	// CodeUnknown covers any provider failure without a more specific class.
	CodeUnknown Code = iota

	// CodeNoStoredCredential means the provider found no previously saved
	// credential (secure-storage miss) when restoring a sign-in.
	CodeNoStoredCredential

	// CodeCanceled means the user dismissed the interactive flow.
	CodeCanceled

	// CodeScopesAlreadyGranted means every requested scope was already held.
	CodeScopesAlreadyGranted
)

func (c Code) String() string {
	switch c {
	case CodeNoStoredCredential:
		return "no_stored_credential"
	case CodeCanceled:
		return "canceled"
	case CodeScopesAlreadyGranted:
		return "scopes_already_granted"
	default:
		return "unknown"
	}
}

// Error is a provider-reported failure carrying its native code.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity provider: %s (%s)", e.Message, e.Code)
}

// NewError builds a provider error with the given code.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the provider code from err. Errors that are not provider
// errors report CodeUnknown.
func CodeOf(err error) Code {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Code
	}
	return CodeUnknown
}
