// Package sessions persists server-side session records for the database
// session mode. Rows are keyed by the opaque session token.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/outreach/internal/server/models"
)

// Repository stores session rows. Find returns common.ErrorNotFound for an
// unknown token; Delete of an unknown token is not an error.
type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	Find(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}
