// Package integrationlogs stores one request/response envelope per externally
// facing operation.
package integrationlogs

import (
	"context"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, r *models.IntegrationRecord) error
}
