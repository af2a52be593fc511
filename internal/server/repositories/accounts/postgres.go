package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const (
	usernameConstraint = "accounts_username_key"
	emailConstraint    = "accounts_email_key"
)

const accountColumns = `id, username, email, password_hash, created_at, email_verified, confirmation_token, token_expires_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (models.CreateResult, error) {

	query :=
		`INSERT INTO accounts (username, email, password_hash, created_at, email_verified, confirmation_token, token_expires_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.Username, a.Email, a.PasswordHash, a.CreatedAt, a.EmailVerified, a.Token, a.TokenExpiresAt).Scan(&a.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case usernameConstraint:
				return models.CreateResult{Status: models.UsernameTaken}, nil
			case emailConstraint:
				return models.CreateResult{Status: models.EmailTaken}, nil
			}
		}
		return models.CreateResult{}, fmt.Errorf("db error: %w", err)
	}

	return models.CreateResult{Status: models.Created, Account: a}, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE username = $1
		 `
	return r.getOne(ctx, query, username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE email = $1
		 `
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id int64) (bool, error) {
	query :=
		`UPDATE accounts
		 SET email_verified = TRUE, confirmation_token = NULL, token_expires_at = NULL
		 WHERE id = $1 AND email_verified = FALSE
		 `
	return r.execAffected(ctx, query, id)
}

func (r *PostgresRepository) DeleteUnverified(ctx context.Context, id int64) (bool, error) {
	query :=
		`DELETE FROM accounts
		 WHERE id = $1 AND email_verified = FALSE
		 `
	return r.execAffected(ctx, query, id)
}

func (r *PostgresRepository) execAffected(ctx context.Context, query string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) FindExpiredUnverified(ctx context.Context, before time.Time) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE email_verified = FALSE AND token_expires_at <= $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	a := &models.Account{}
	var token sql.NullString
	var expires sql.NullTime
	if err := s.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.EmailVerified, &token, &expires); err != nil {
		return nil, err
	}
	if token.Valid {
		a.Token = &token.String
	}
	if expires.Valid {
		a.TokenExpiresAt = &expires.Time
	}
	return a, nil
}
