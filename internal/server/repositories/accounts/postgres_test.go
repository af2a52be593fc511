package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertQ   = `(?s)^INSERT\s+INTO\s+accounts\s*\(username,\s*email,\s*password_hash,\s*created_at,\s*email_verified,\s*confirmation_token,\s*token_expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id\s*$`
	byNameQ   = `(?s)^SELECT\s+id,\s*username,\s*email,.*FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1\s*$`
	byEmailQ  = `(?s)^SELECT\s+id,\s*username,\s*email,.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`
	verifyQ   = `(?s)^UPDATE\s+accounts\s+SET\s+email_verified\s*=\s*TRUE,.*WHERE\s+id\s*=\s*\$1\s+AND\s+email_verified\s*=\s*FALSE\s*$`
	deleteQ   = `(?s)^DELETE\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+email_verified\s*=\s*FALSE\s*$`
	expiredQ  = `(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+email_verified\s*=\s*FALSE\s+AND\s+token_expires_at\s*<=\s*\$1\s+ORDER\s+BY\s+id\s*$`
	dbErrExpr = `db error: .*db down`
)

var columns = []string{"id", "username", "email", "password_hash", "created_at", "email_verified", "confirmation_token", "token_expires_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func pendingAccount(now time.Time) *models.Account {
	token := "tok"
	exp := now.Add(24 * time.Hour)
	return &models.Account{
		Username:       "alice",
		Email:          "alice@example.com",
		PasswordHash:   "hash",
		CreatedAt:      now,
		Token:          &token,
		TokenExpiresAt: &exp,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	a := pendingAccount(now)

	mock.ExpectQuery(insertQ).
		WithArgs("alice", "alice@example.com", "hash", now, false, a.Token, a.TokenExpiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.Status != models.Created || got.Account.ID != 42 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       models.CreateStatus
	}{
		{usernameConstraint, models.UsernameTaken},
		{emailConstraint, models.EmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(insertQ).
				WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: tt.constraint})

			got, err := repo.Create(context.Background(), pendingAccount(time.Now()))
			if err != nil {
				t.Fatalf("Create error: %v", err)
			}
			if got.Status != tt.want || got.Account != nil {
				t.Fatalf("unexpected result: %+v", got)
			}
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), pendingAccount(time.Now()))
	if err == nil || !regexp.MustCompile(dbErrExpr).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	exp := now.Add(time.Hour)
	mock.ExpectQuery(byNameQ).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(7), "alice", "alice@example.com", "hash", now, false, "tok", exp))

	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != 7 || got.Email != "alice@example.com" || got.Token == nil || *got.Token != "tok" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.TokenExpiresAt == nil || !got.TokenExpiresAt.Equal(exp) {
		t.Fatalf("unexpected expiry: %v", got.TokenExpiresAt)
	}
}

func TestGetByEmail_VerifiedHasNoToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(7), "alice", "alice@example.com", "hash", time.Now(), true, nil, nil))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if !got.EmailVerified || got.Token != nil || got.TokenExpiresAt != nil {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByUsername_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byNameQ).WithArgs("alice").WillReturnError(errors.New("db down"))

	_, err := repo.GetByUsername(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(dbErrExpr).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestMarkVerified(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(verifyQ).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(verifyQ).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkVerified(context.Background(), 7)
	if err != nil || !ok {
		t.Fatalf("first MarkVerified: ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkVerified(context.Background(), 7)
	if err != nil || ok {
		t.Fatalf("second MarkVerified: ok=%v err=%v", ok, err)
	}
}

func TestDeleteUnverified(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteQ).WithArgs(int64(9)).WillReturnError(errors.New("db down"))

	ok, err := repo.DeleteUnverified(context.Background(), 9)
	if err != nil || !ok {
		t.Fatalf("first delete: ok=%v err=%v", ok, err)
	}
	ok, err = repo.DeleteUnverified(context.Background(), 9)
	if err != nil || ok {
		t.Fatalf("repeat delete: ok=%v err=%v", ok, err)
	}
	_, err = repo.DeleteUnverified(context.Background(), 9)
	if err == nil || !regexp.MustCompile(dbErrExpr).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindExpiredUnverified(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)
	mock.ExpectQuery(expiredQ).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "a", "a@example.com", "h", now.Add(-48*time.Hour), false, "t1", now.Add(-time.Hour)).
			AddRow(int64(2), "b", "b@example.com", "h", now.Add(-24*time.Hour), false, "t2", now))

	got, err := repo.FindExpiredUnverified(context.Background(), now)
	if err != nil {
		t.Fatalf("FindExpiredUnverified error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected accounts: %+v", got)
	}
}

func TestFindExpiredUnverified_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(expiredQ).WillReturnError(errors.New("db down"))

	_, err := repo.FindExpiredUnverified(context.Background(), time.Now())
	if err == nil || !regexp.MustCompile(dbErrExpr).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
