package integrationlogs

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

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.IntegrationRecord) error {

	query :=
		`INSERT INTO integration_logs (rqid, rsid, request_time, response_time, status_code, request_data, response_data)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.RequestID, rec.ResponseID, rec.RequestTime, rec.ResponseTime, rec.StatusCode, rec.RequestData, rec.ResponseData).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
