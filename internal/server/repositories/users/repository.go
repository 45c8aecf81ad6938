// Package users is the credential store: persistence of user identity
// records keyed by a case-insensitively unique email.
package users

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/server/models"
)

// Repository persists users. Implementations lowercase emails before both
// comparison and insert, report a taken email as common.ErrDuplicateEmail and
// an unknown user as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// NormalizeEmail is the canonical form under which emails are stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateNew(user *models.User) error {
	return common.MissingFields(
		"name", user.Name,
		"email", user.Email,
		"password", user.PasswordHash,
	)
}
