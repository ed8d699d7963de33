package session

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidState is returned when an operation is attempted from a lifecycle
// state that does not permit it, e.g. signing in without a presentation
// context or while another interactive flow is outstanding.
var ErrInvalidState = errors.New("invalid session state")

// Kind classifies a sign-in failure delivered on the login stream.
type Kind int

const (
	// KindUnauthenticated means no stored or returned credential exists.
	KindUnauthenticated Kind = iota + 1

	// KindProviderError means the provider reported a failure.
	KindProviderError

	// KindPermissionDenied means the granted scopes do not satisfy the
	// required scopes.
	KindPermissionDenied

	// KindInvalidAccountData means the account store rejected the identity's
	// profile data.
	KindInvalidAccountData
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindProviderError:
		return "provider_error"
	case KindPermissionDenied:
		return "permission_denied"
	case KindInvalidAccountData:
		return "invalid_account_data"
	default:
		return "unknown"
	}
}

// Status codes surfaced with certain failure kinds.
const (
	StatusUnauthenticated  = 401
	StatusPermissionDenied = 501
)

// Error is a typed sign-in failure. All failures published on the login
// stream are of this type; callers can recover from every one of them.
type Error struct {
	Kind   Kind
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("sign-in failed: %s (%d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("sign-in failed: %s: %s", e.Kind, e.Detail)
}

func errUnauthenticated(detail string) *Error {
	return &Error{Kind: KindUnauthenticated, Status: StatusUnauthenticated, Detail: detail}
}

func errProvider(detail string) *Error {
	return &Error{Kind: KindProviderError, Detail: detail}
}

func errPermissionDenied(detail string) *Error {
	return &Error{Kind: KindPermissionDenied, Status: StatusPermissionDenied, Detail: detail}
}

func errInvalidAccountData(detail string) *Error {
	return &Error{Kind: KindInvalidAccountData, Detail: detail}
}
