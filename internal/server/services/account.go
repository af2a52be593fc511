// Package services contains server-side business logic. This file implements
// AccountService, which drives the account lifecycle: registration with
// captcha, email confirmation and login.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/cryptox"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
	"github.com/dmitrijs2005/userservice/internal/server/metrics"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userservice/internal/timex"
)

// RegistrationGrace is how long an unverified account blocks its username
// and email for new registrations.
const RegistrationGrace = 24 * time.Hour

const accountComponent = "AccountService"

// Operation names used for metrics.
const (
	OpRegister    = "register"
	OpVerifyEmail = "verify_email"
	OpLogin       = "login"
)

// CaptchaVerifier checks the human-proof of a registration.
type CaptchaVerifier interface {
	VerifyKind(ctx context.Context, rqid, kind, evidence string) error
}

// Notifier sends account emails.
type Notifier interface {
	SendVerification(ctx context.Context, rqid, to, token string, expiresAt time.Time) error
	SendLoginNotification(ctx context.Context, rqid, to, username string) error
}

// RegisterInput is what a registration request carries.
type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	VerificationKind string
	Evidence         string
}

// Result is returned by every successful lifecycle operation.
type Result struct {
	Message string
	Account models.AccountView
}

// AccountDeps bundles AccountService collaborators.
type AccountDeps struct {
	Repos    repomanager.RepositoryManager
	Captcha  CaptchaVerifier
	Notifier Notifier
	Hasher   cryptox.Hasher
	Audit    *audit.Logger
	Metrics  *metrics.Metrics
	Clock    timex.Clock
}

// AccountService is the only writer of account state besides the sweeper's
// deletes. Each store call is atomic on its own; the collision pre-check and
// the insert are not, so uniqueness races are settled by the store.
type AccountService struct {
	repomanager repomanager.RepositoryManager
	captcha     CaptchaVerifier
	notifier    Notifier
	hasher      cryptox.Hasher
	audit       *audit.ComponentLogger
	metrics     *metrics.Metrics
	clock       timex.Clock
	window      time.Duration
}

// NewAccountService builds the service; window is the lifetime of a
// confirmation token.
func NewAccountService(d AccountDeps, window time.Duration) *AccountService {
	clock := d.Clock
	if clock == nil {
		clock = timex.SystemClock
	}
	return &AccountService{
		repomanager: d.Repos,
		captcha:     d.Captcha,
		notifier:    d.Notifier,
		hasher:      d.Hasher,
		audit:       d.Audit.Component(accountComponent),
		metrics:     d.Metrics,
		clock:       clock,
		window:      window,
	}
}

func (s *AccountService) accounts() accounts.Repository {
	return s.repomanager.Accounts(s.repomanager.Conn())
}

// fail writes the single error-level audit entry of a failed operation and
// hands the error back.
func (s *AccountService) fail(ctx context.Context, rqid, msg string, err error) error {
	s.audit.Error(ctx, rqid, msg, "error", err)
	return err
}

func (s *AccountService) internal(ctx context.Context, rqid, msg string, err error) error {
	return s.fail(ctx, rqid, msg, common.WrapError(common.ErrorInternal, "Internal server error", err))
}

// succeed writes the closing audit entry of a successful operation. A
// success that could not be recorded is reported as an internal failure.
func (s *AccountService) succeed(ctx context.Context, rqid, msg string) error {
	if err := s.audit.Info(ctx, rqid, msg); err != nil {
		return s.internal(ctx, rqid, "Audit record could not be stored", err)
	}
	return nil
}

// Register creates an unverified account and mails its confirmation link.
// The captcha is checked first, then input completeness.
func (s *AccountService) Register(ctx context.Context, rqid string, in RegisterInput) (res *Result, err error) {
	defer func() { s.metrics.ObserveOperation(OpRegister, err) }()

	s.audit.Info(ctx, rqid, "Starting registration process for user: "+in.Username)

	// The verifier has already written the error entry for a rejection.
	if err := s.captcha.VerifyKind(ctx, rqid, in.VerificationKind, in.Evidence); err != nil {
		s.audit.Debug(ctx, rqid, "Registration rejected by captcha for user: "+in.Username)
		return nil, err
	}

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, s.fail(ctx, rqid, "Incomplete registration data",
			common.NewError(common.ErrIncompleteInput, "Registration data is incorrect"))
	}

	repo := s.accounts()
	now := s.clock()

	if err := s.resolveCollisions(ctx, rqid, repo, in, now); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return nil, s.fail(ctx, rqid, "Password too long for user: "+in.Username,
			common.WrapError(common.ErrIncompleteInput, "Registration data is incorrect", err))
	}
	if err != nil {
		return nil, s.internal(ctx, rqid, "Password hashing failed", err)
	}

	token, err := common.NewConfirmationToken(now)
	if err != nil {
		return nil, s.internal(ctx, rqid, "Token generation failed", err)
	}
	expiresAt := now.Add(s.window)

	created, err := repo.Create(ctx, &models.Account{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   hash,
		CreatedAt:      now,
		Token:          &token,
		TokenExpiresAt: &expiresAt,
	})
	if err != nil {
		return nil, s.internal(ctx, rqid, "Account creation failed", err)
	}

	switch created.Status {
	case models.UsernameTaken:
		return nil, s.fail(ctx, rqid, "Registration lost a race on username: "+in.Username,
			common.NewError(common.ErrCredentialsInUse, "Username already exists"))
	case models.EmailTaken:
		return nil, s.fail(ctx, rqid, "Registration lost a race on email: "+in.Email,
			common.NewError(common.ErrCredentialsInUse, "Email already registered"))
	}

	if err := s.notifier.SendVerification(ctx, rqid, in.Email, token, expiresAt); err != nil {
		return nil, s.fail(ctx, rqid, "Verification email could not be sent for user: "+in.Username, err)
	}

	if err := s.succeed(ctx, rqid, "User "+in.Username+" registered successfully"); err != nil {
		return nil, err
	}

	return &Result{Message: "Registration successful", Account: created.Account.View()}, nil
}

// resolveCollisions applies the registration collision rule. A verified
// match on either field wins, username first. Otherwise any unverified match
// younger than RegistrationGrace blocks; older ones are deleted.
func (s *AccountService) resolveCollisions(ctx context.Context, rqid string, repo accounts.Repository, in RegisterInput, now time.Time) error {
	byName, err := lookup(ctx, repo.GetByUsername, in.Username)
	if err != nil {
		return s.internal(ctx, rqid, "Username lookup failed", err)
	}
	byEmail, err := lookup(ctx, repo.GetByEmail, in.Email)
	if err != nil {
		return s.internal(ctx, rqid, "Email lookup failed", err)
	}

	if byName != nil && byName.EmailVerified {
		return s.fail(ctx, rqid, "Registration attempt with existing verified credentials: Username already exists",
			common.NewError(common.ErrCredentialsInUse, "Username already exists"))
	}
	if byEmail != nil && byEmail.EmailVerified {
		return s.fail(ctx, rqid, "Registration attempt with existing verified credentials: Email already registered",
			common.NewError(common.ErrCredentialsInUse, "Email already registered"))
	}

	matches := make([]*models.Account, 0, 2)
	if byName != nil {
		matches = append(matches, byName)
	}
	if byEmail != nil && (byName == nil || byEmail.ID != byName.ID) {
		matches = append(matches, byEmail)
	}

	for _, a := range matches {
		if !a.StaleAt(now, RegistrationGrace) {
			return s.fail(ctx, rqid, "Registration attempt with existing unverified credentials",
				common.NewError(common.ErrAccountPendingVerification, "Account not verified. Check your email or try again later"))
		}
	}

	for _, a := range matches {
		if _, err := repo.DeleteUnverified(ctx, a.ID); err != nil {
			return s.internal(ctx, rqid, "Stale account removal failed", err)
		}
		s.audit.Info(ctx, rqid, "Deleting expired unverified user: "+a.Email)
	}

	return nil
}

// lookup turns common.ErrorNotFound into a nil account.
func lookup(ctx context.Context, find func(context.Context, string) (*models.Account, error), key string) (*models.Account, error) {
	a, err := find(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return a, err
}

// VerifyEmail redeems a confirmation token. A verified account has no token
// left to compare, so it reports AlreadyVerified; otherwise the token is
// checked before its expiry.
func (s *AccountService) VerifyEmail(ctx context.Context, rqid, email, token string) (res *Result, err error) {
	defer func() { s.metrics.ObserveOperation(OpVerifyEmail, err) }()

	s.audit.Info(ctx, rqid, "Starting email verification for: "+email)

	repo := s.accounts()

	a, err := lookup(ctx, repo.GetByEmail, email)
	if err != nil {
		return nil, s.internal(ctx, rqid, "Account lookup failed", err)
	}
	if a == nil {
		return nil, s.fail(ctx, rqid, "User not found for email: "+email,
			common.NewError(common.ErrAccountNotFound, "User not found"))
	}

	if a.EmailVerified {
		return nil, s.alreadyVerified(ctx, rqid, email)
	}

	if a.Token == nil || subtle.ConstantTimeCompare([]byte(*a.Token), []byte(token)) != 1 {
		return nil, s.fail(ctx, rqid, "Invalid verification token for email: "+email,
			common.NewError(common.ErrInvalidToken, "Invalid verification token"))
	}

	if a.TokenExpired(s.clock()) {
		return nil, s.fail(ctx, rqid, "Expired verification token for email: "+email,
			common.NewError(common.ErrTokenExpired, "Verification token has expired"))
	}

	ok, err := repo.MarkVerified(ctx, a.ID)
	if err != nil {
		return nil, s.internal(ctx, rqid, "Account update failed", err)
	}
	if !ok {
		// Lost to a concurrent verify or sweep.
		current, err := lookup(ctx, repo.GetByEmail, email)
		if err != nil {
			return nil, s.internal(ctx, rqid, "Account lookup failed", err)
		}
		if current == nil || current.ID != a.ID {
			return nil, s.fail(ctx, rqid, "User not found for email: "+email,
				common.NewError(common.ErrAccountNotFound, "User not found"))
		}
		return nil, s.alreadyVerified(ctx, rqid, email)
	}

	a.MarkVerified()
	if err := s.succeed(ctx, rqid, "Email verified successfully for: "+email); err != nil {
		return nil, err
	}

	return &Result{Message: "Email successfully verified", Account: a.View()}, nil
}

func (s *AccountService) alreadyVerified(ctx context.Context, rqid, email string) error {
	return s.fail(ctx, rqid, "Email already verified: "+email,
		common.NewError(common.ErrAlreadyVerified, "Email already verified"))
}

// Login authenticates by email and password. Account state is gated before
// the password is compared. A failed sign-in notice is logged and does not
// fail the login.
func (s *AccountService) Login(ctx context.Context, rqid, email, password string) (res *Result, err error) {
	defer func() { s.metrics.ObserveOperation(OpLogin, err) }()

	s.audit.Info(ctx, rqid, "Login attempt processing for: "+email)

	if email == "" || password == "" {
		return nil, s.fail(ctx, rqid, "Incomplete login data provided for: "+email,
			common.NewError(common.ErrIncompleteInput, "Login information is incorrect"))
	}

	repo := s.accounts()

	a, err := lookup(ctx, repo.GetByEmail, email)
	if err != nil {
		return nil, s.internal(ctx, rqid, "Account lookup failed", err)
	}
	if a == nil {
		return nil, s.fail(ctx, rqid, "Login attempt for non-existent user: "+email,
			common.NewError(common.ErrInvalidCredentials, "Invalid username or password"))
	}

	if !a.EmailVerified {
		if a.TokenExpired(s.clock()) {
			if _, err := repo.DeleteUnverified(ctx, a.ID); err != nil {
				return nil, s.internal(ctx, rqid, "Expired account removal failed", err)
			}
			return nil, s.fail(ctx, rqid, fmt.Sprintf("Registration expired for user %s, account deleted", a.Username),
				common.NewError(common.ErrRegistrationExpired, "Registration expired. Please register again"))
		}
		return nil, s.fail(ctx, rqid, "Email not verified for user: "+a.Username,
			common.NewError(common.ErrEmailNotVerified, "Email not verified. Check your inbox"))
	}

	match, err := s.hasher.Verify(a.PasswordHash, password)
	if err != nil {
		return nil, s.internal(ctx, rqid, "Password verification failed", err)
	}
	if !match {
		return nil, s.fail(ctx, rqid, "Invalid password attempt for user: "+a.Username,
			common.NewError(common.ErrInvalidCredentials, "Invalid username or password"))
	}

	if err := s.notifier.SendLoginNotification(ctx, rqid, a.Email, a.Username); err != nil {
		s.audit.Error(ctx, rqid, "Login notification failed for user: "+a.Username, "error", err)
	}

	if err := s.succeed(ctx, rqid, "User "+a.Username+" logged in successfully"); err != nil {
		return nil, err
	}

	return &Result{Message: "Login successful", Account: a.View()}, nil
}
