package integrationlogs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertQ = `(?s)^INSERT\s+INTO\s+integration_logs\s*\(rqid,\s*rsid,\s*request_time,\s*response_time,\s*status_code,\s*request_data,\s*response_data\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id\s*$`

func TestInsert(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	req := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	resp := req.Add(30 * time.Millisecond)
	mock.ExpectQuery(insertQ).
		WithArgs("rq-1", "01HZX", req, resp, 201, `{"username":"alice"}`, `{"rqid":"rq-1"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	rec := &models.IntegrationRecord{
		RequestID: "rq-1", ResponseID: "01HZX",
		RequestTime: req, ResponseTime: resp, StatusCode: 201,
		RequestData: `{"username":"alice"}`, ResponseData: `{"rqid":"rq-1"}`,
	}
	require.NoError(t, NewPostgresRepository(db).Insert(context.Background(), rec))
	assert.Equal(t, int64(11), rec.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("duplicate rsid"))

	err = NewPostgresRepository(db).Insert(context.Background(), &models.IntegrationRecord{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: duplicate rsid")
}

func TestMemoryRepository(t *testing.T) {
	r := NewMemoryRepository()
	require.NoError(t, r.Insert(context.Background(), &models.IntegrationRecord{RequestID: "a"}))

	got := r.List()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].RequestID)
	assert.Equal(t, int64(1), got[0].ID)
}
