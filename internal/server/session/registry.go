package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/outreach/internal/dbx"
	"github.com/dmitrijs2005/outreach/internal/server/models"
	"github.com/dmitrijs2005/outreach/internal/server/repositories/repomanager"
)

// Registry keeps a server-side record of issued sessions. With a registry
// a cookie is honoured only while its token is still recorded.
type Registry interface {
	Save(ctx context.Context, s *models.Session) error
	Lookup(ctx context.Context, token string) (*models.Session, error)
	Rotate(ctx context.Context, oldToken string, next *models.Session) error
	Remove(ctx context.Context, token string) error
}

// StoreRegistry implements Registry on the sessions repository. db may be
// nil for the in-memory repository manager.
type StoreRegistry struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewStoreRegistry(db *sql.DB, m repomanager.RepositoryManager) *StoreRegistry {
	return &StoreRegistry{db: db, repomanager: m}
}

func (r *StoreRegistry) Save(ctx context.Context, s *models.Session) error {
	return r.repomanager.Sessions(r.db).Create(ctx, s)
}

func (r *StoreRegistry) Lookup(ctx context.Context, token string) (*models.Session, error) {
	return r.repomanager.Sessions(r.db).Find(ctx, token)
}

func (r *StoreRegistry) Remove(ctx context.Context, token string) error {
	return r.repomanager.Sessions(r.db).Delete(ctx, token)
}

// Rotate replaces oldToken with next. On PostgreSQL both statements run in
// one transaction.
func (r *StoreRegistry) Rotate(ctx context.Context, oldToken string, next *models.Session) error {
	rotate := func(ctx context.Context, tx dbx.DBTX) error {
		repo := r.repomanager.Sessions(tx)
		if err := repo.Delete(ctx, oldToken); err != nil {
			return fmt.Errorf("error deleting session: %w", err)
		}
		if err := repo.Create(ctx, next); err != nil {
			return fmt.Errorf("error creating session: %w", err)
		}
		return nil
	}

	if r.db == nil {
		return rotate(ctx, nil)
	}
	return dbx.WithTx(ctx, r.db, nil, rotate)
}
