// Package items persists catalog items.
package items

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	// List returns items newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit, offset int) ([]*models.Item, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, upd models.ItemUpdate) (*models.Item, error)
	Delete(ctx context.Context, id string) error
}
