// Package captcha verifies the human-proof attached to a registration.
package captcha

import (
	"fmt"

	"github.com/dmitrijs2005/userservice/internal/common"
)

// Kind is the wire name of a verification variant.
type Kind string

const (
	KindExternal   Kind = "recaptcha"
	KindArithmetic Kind = "math"
)

// Challenge is one of ExternalChallenge or ArithmeticChallenge.
type Challenge interface {
	Kind() Kind
	Evidence() string
	challenge()
}

// ExternalChallenge carries an opaque token adjudicated by the reCAPTCHA
// endpoint.
type ExternalChallenge struct {
	Token string
}

func (c ExternalChallenge) Kind() Kind       { return KindExternal }
func (c ExternalChallenge) Evidence() string { return c.Token }
func (ExternalChallenge) challenge()         {}

// ArithmeticChallenge carries "<a> <op> <b> = <answer>".
type ArithmeticChallenge struct {
	Expression string
}

func (c ArithmeticChallenge) Kind() Kind       { return KindArithmetic }
func (c ArithmeticChallenge) Evidence() string { return c.Expression }
func (ArithmeticChallenge) challenge()         {}

// NewChallenge maps a wire kind and its evidence onto a Challenge. Any kind
// other than "recaptcha" or "math" fails with ErrUnsupportedVerificationKind.
func NewChallenge(kind, evidence string) (Challenge, error) {
	switch Kind(kind) {
	case KindExternal:
		return ExternalChallenge{Token: evidence}, nil
	case KindArithmetic:
		return ArithmeticChallenge{Expression: evidence}, nil
	default:
		return nil, common.NewError(common.ErrUnsupportedVerificationKind,
			fmt.Sprintf("Unsupported verification type: %q", kind))
	}
}
