// Package accounts persists user accounts.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

// Repository is the account store used by the lifecycle service and the
// sweeper. Every call is atomic on its own; username and email are unique at
// the storage level.
//
// Lookups return common.ErrorNotFound when no row matches.
type Repository interface {
	// Create inserts a new account. A uniqueness violation is reported through
	// the result status, not as an error.
	Create(ctx context.Context, account *models.Account) (models.CreateResult, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// MarkVerified flips an unverified account to verified and clears its
	// token. It reports false when no unverified row with that id exists.
	MarkVerified(ctx context.Context, id int64) (bool, error)
	// DeleteUnverified removes the account if it is still unverified. Deleting
	// a row that is already gone is not an error; it reports false.
	DeleteUnverified(ctx context.Context, id int64) (bool, error)
	// FindExpiredUnverified lists unverified accounts whose token expiry is at
	// or before the given instant.
	FindExpiredUnverified(ctx context.Context, before time.Time) ([]*models.Account, error)
}
