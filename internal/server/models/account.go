package models

import "time"

// Account is a user identity with credentials and email verification state.
//
// An unverified account always carries a confirmation token and its expiry;
// a verified one carries neither.
type Account struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	CreatedAt      time.Time
	EmailVerified  bool
	Token          *string
	TokenExpiresAt *time.Time
}

// TokenExpired reports whether the confirmation deadline has passed at now.
// An expiry equal to now counts as expired.
func (a *Account) TokenExpired(now time.Time) bool {
	if a.TokenExpiresAt == nil {
		return false
	}
	return !now.Before(*a.TokenExpiresAt)
}

// StaleAt reports whether the account was created at least grace before now.
func (a *Account) StaleAt(now time.Time, grace time.Duration) bool {
	return now.Sub(a.CreatedAt) >= grace
}

// MarkVerified moves the account into the verified state and drops the
// consumed token.
func (a *Account) MarkVerified() {
	a.EmailVerified = true
	a.Token = nil
	a.TokenExpiresAt = nil
}

// View returns the redacted form of the account: no password hash, no token.
func (a *Account) View() AccountView {
	return AccountView{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		CreatedAt:     a.CreatedAt,
		EmailVerified: a.EmailVerified,
	}
}

// AccountView is what callers get back from lifecycle operations.
type AccountView struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"createdAt"`
	EmailVerified bool      `json:"emailVerified"`
}

// CreateStatus tags the outcome of inserting an account. Uniqueness
// violations are reported here instead of as errors so callers can map them
// onto the same branch as their own pre-check.
type CreateStatus int

const (
	Created CreateStatus = iota
	UsernameTaken
	EmailTaken
)

// CreateResult is returned by account repositories on insert.
type CreateResult struct {
	Status  CreateStatus
	Account *Account
}
