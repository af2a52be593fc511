package httpapi

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/userservice/internal/cryptox"
	"github.com/dmitrijs2005/userservice/internal/server/services"
)

// Format rules only. Missing fields are left to the account service so the
// captcha is still checked first.

type RegisterRequest struct {
	RequestID        string `json:"rqid"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	VerificationType string `json:"verificationType"`
	RecaptchaToken   string `json:"recaptchaToken"`
	MathToken        string `json:"mathToken"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(2, 20)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Length(5, 20), validation.By(maxBytes(cryptox.MaxPasswordBytes))),
	)
}

// maxBytes limits the encoded length of a string; Length counts runes.
func maxBytes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if len(s) > n {
			return fmt.Errorf("must be no more than %d bytes long", n)
		}
		return nil
	}
}

// Evidence picks the captcha field matching VerificationType.
func (r RegisterRequest) Evidence() string {
	if r.VerificationType == "math" {
		return r.MathToken
	}
	return r.RecaptchaToken
}

func (r RegisterRequest) Input() services.RegisterInput {
	return services.RegisterInput{
		Username:         r.Username,
		Email:            r.Email,
		Password:         r.Password,
		VerificationKind: r.VerificationType,
		Evidence:         r.Evidence(),
	}
}

// Masked returns a copy safe to persist.
func (r RegisterRequest) Masked() RegisterRequest {
	if r.Password != "" {
		r.Password = services.MaskedSecret
	}
	return r
}

type VerifyEmailRequest struct {
	RequestID string `json:"rqid"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	)
}

type LoginRequest struct {
	RequestID string `json:"rqid"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	)
}

func (r LoginRequest) Masked() LoginRequest {
	if r.Password != "" {
		r.Password = services.MaskedSecret
	}
	return r
}
