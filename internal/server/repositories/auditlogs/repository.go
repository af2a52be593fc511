// Package auditlogs stores application log records (level, message, rqid).
package auditlogs

import (
	"context"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, r *models.AuditRecord) error
}
