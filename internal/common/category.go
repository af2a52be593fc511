package common

import "errors"

// ErrorCategory groups failure kinds by how the boundary should report them.
type ErrorCategory int

const (
	CategoryInternal ErrorCategory = iota
	CategoryValidation
	CategoryNotFound
	CategoryConflict
	CategoryUnauthorized
	CategoryUpstream
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNotFound:
		return "not_found"
	case CategoryConflict:
		return "conflict"
	case CategoryUnauthorized:
		return "unauthorized"
	case CategoryUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

var kinds = []struct {
	err      error
	category ErrorCategory
}{
	{ErrIncompleteInput, CategoryValidation},
	{ErrUnsupportedVerificationKind, CategoryValidation},
	{ErrMalformedChallenge, CategoryValidation},
	{ErrNonNumericOperand, CategoryValidation},
	{ErrUnsupportedOperator, CategoryValidation},
	{ErrInvalidEvidence, CategoryValidation},
	{ErrInvalidToken, CategoryValidation},
	{ErrTokenExpired, CategoryValidation},
	{ErrAccountNotFound, CategoryNotFound},
	{ErrCredentialsInUse, CategoryConflict},
	{ErrAccountPendingVerification, CategoryConflict},
	{ErrAlreadyVerified, CategoryConflict},
	{ErrInvalidCredentials, CategoryUnauthorized},
	{ErrEmailNotVerified, CategoryUnauthorized},
	{ErrRegistrationExpired, CategoryUnauthorized},
	{ErrTransport, CategoryUpstream},
}

// Category classifies err. Anything that is not one of the known kinds is
// CategoryInternal.
func Category(err error) ErrorCategory {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.category
		}
	}
	return CategoryInternal
}
