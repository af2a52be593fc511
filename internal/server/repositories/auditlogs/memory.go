package auditlogs

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.Mutex
	records []models.AuditRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(_ context.Context, rec *models.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *rec)
	return nil
}

// List returns a snapshot of everything written so far, oldest first.
func (r *MemoryRepository) List() []models.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditRecord, len(r.records))
	copy(out, r.records)
	return out
}
