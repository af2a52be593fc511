// Package common defines shared constants and sentinel errors used across
// the user service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Input errors.
	ErrIncompleteInput = errors.New("incomplete input")

	// Captcha errors.
	ErrUnsupportedVerificationKind = errors.New("unsupported verification kind")
	ErrMalformedChallenge          = errors.New("malformed challenge")
	ErrNonNumericOperand           = errors.New("non-numeric operand")
	ErrUnsupportedOperator         = errors.New("unsupported operator")
	ErrInvalidEvidence             = errors.New("invalid evidence")

	// Registration collisions.
	ErrCredentialsInUse           = errors.New("credentials in use")
	ErrAccountPendingVerification = errors.New("account pending verification")

	// Email confirmation errors.
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrAlreadyVerified = errors.New("already verified")

	// Login errors.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrRegistrationExpired = errors.New("registration expired")

	// Email / captcha I/O failures.
	ErrTransport = errors.New("transport error")
)

// Error pairs a failure kind (one of the sentinels above) with the message
// shown to the caller. The kind stays reachable through errors.Is.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError builds an Error of the given kind with a caller-facing message.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError is NewError with an underlying cause attached.
func WrapError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the caller-facing message of err. Errors that are not
// *Error are reported as a generic internal failure so infrastructure
// details never leak to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	for _, kind := range kinds {
		if errors.Is(err, kind.err) {
			return kind.err.Error()
		}
	}
	return "internal error"
}
