package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. It enforces the same
// uniqueness rules as the Postgres schema and is used for local development
// and tests.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[int64]models.Account)}
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Account) (models.CreateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Username is checked across all rows before email, matching the order
	// of the unique constraints in the schema.
	for _, row := range r.rows {
		if row.Username == a.Username {
			return models.CreateResult{Status: models.UsernameTaken}, nil
		}
	}
	for _, row := range r.rows {
		if row.Email == a.Email {
			return models.CreateResult{Status: models.EmailTaken}, nil
		}
	}

	r.nextID++
	a.ID = r.nextID
	r.rows[a.ID] = clone(a)

	return models.CreateResult{Status: models.Created, Account: a}, nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool { return a.Username == username })
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool { return a.Email == email })
}

func (r *MemoryRepository) find(match func(*models.Account) bool) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if match(&row) {
			c := clone(&row)
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) MarkVerified(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.EmailVerified {
		return false, nil
	}
	row.MarkVerified()
	r.rows[id] = row
	return true, nil
}

func (r *MemoryRepository) DeleteUnverified(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.EmailVerified {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *MemoryRepository) FindExpiredUnverified(_ context.Context, before time.Time) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Account
	for _, row := range r.rows {
		if !row.EmailVerified && row.TokenExpired(before) {
			c := clone(&row)
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Len reports the number of stored accounts.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func clone(a *models.Account) models.Account {
	c := *a
	if a.Token != nil {
		t := *a.Token
		c.Token = &t
	}
	if a.TokenExpiresAt != nil {
		t := *a.TokenExpiresAt
		c.TokenExpiresAt = &t
	}
	return c
}
