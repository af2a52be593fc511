package repomanager

import (
	"context"

	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/integrationlogs"
)

// RepositoryManager vends repositories bound to a connection or to a
// transaction handle obtained from InTx.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// InTx runs fn inside a single transaction. Repositories built from the
	// handle passed to fn take part in it.
	InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Conn() dbx.DBTX
	Accounts(db dbx.DBTX) accounts.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
	IntegrationLogs(db dbx.DBTX) integrationlogs.Repository
	Close() error
}
