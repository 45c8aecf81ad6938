package sessions

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/server/models"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]models.Session)}
}

func (r *MemoryRepository) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[s.Token]; ok {
		return common.ErrStore
	}
	r.rows[s.Token] = *s
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rows[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, token)
	return nil
}

// DeleteByUser drops every session of userID, mirroring the cascade on the
// users foreign key.
func (r *MemoryRepository) DeleteByUser(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.rows {
		if s.UserID == userID {
			delete(r.rows, token)
		}
	}
}
