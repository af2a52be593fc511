package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/integrationlogs"
)

// MemoryRepositoryManager hands out process-local repositories. The db
// argument of the factories is ignored and InTx only serializes callers.
type MemoryRepositoryManager struct {
	mu              sync.Mutex
	accounts        *accounts.MemoryRepository
	auditLogs       *auditlogs.MemoryRepository
	integrationLogs *integrationlogs.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		accounts:        accounts.NewMemoryRepository(),
		auditLogs:       auditlogs.NewMemoryRepository(),
		integrationLogs: integrationlogs.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

func (m *MemoryRepositoryManager) Conn() dbx.DBTX {
	return nil
}

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.accounts
}

func (m *MemoryRepositoryManager) AuditLogs(dbx.DBTX) auditlogs.Repository {
	return m.auditLogs
}

func (m *MemoryRepositoryManager) IntegrationLogs(dbx.DBTX) integrationlogs.Repository {
	return m.integrationLogs
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
