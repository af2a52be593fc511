package auditlogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.AuditRecord) error {

	query :=
		`INSERT INTO application_logs (level, message, rqid, logged_at, logger)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		string(rec.Level), rec.Message, rec.RequestID, rec.Timestamp, rec.Component).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
