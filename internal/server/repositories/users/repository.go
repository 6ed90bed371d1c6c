// Package users persists shop accounts, their permissions and password
// reset tokens.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

// Repository is the storage contract for users. Lookups that match nothing
// return common.ErrorNotFound; a taken email returns common.ErrorConflict.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error
	// FindByResetToken returns the user holding token whose expiry is not
	// before minExpiry.
	FindByResetToken(ctx context.Context, token string, minExpiry time.Time) (*models.User, error)
	// ConsumeResetToken sets passwordHash and clears both reset fields, but
	// only while the same conditions as FindByResetToken hold.
	ConsumeResetToken(ctx context.Context, token string, minExpiry time.Time, passwordHash string) (*models.User, error)
	UpdatePermissions(ctx context.Context, userID string, perms models.Permissions) (*models.User, error)
}
