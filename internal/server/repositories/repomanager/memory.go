package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/outreach/internal/dbx"
	"github.com/dmitrijs2005/outreach/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/outreach/internal/server/repositories/users"
)

// MemoryRepositoryManager serves process-local repositories; the DBTX
// arguments are ignored and may be nil.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	sessions *sessions.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Sessions(dbx.DBTX) sessions.Repository { return m.sessions }

// DeleteUser removes a user together with its sessions.
func (m *MemoryRepositoryManager) DeleteUser(ctx context.Context, id int64) error {
	if err := m.users.Delete(ctx, id); err != nil {
		return err
	}
	m.sessions.DeleteByUser(id)
	return nil
}
