// Package cartitems persists shopping cart lines.
package cartitems

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.CartItem, error)
	// Add inserts a line with quantity 1 or bumps the quantity of the user's
	// existing line for itemID, in one statement.
	Add(ctx context.Context, userID, itemID string) (*models.CartItem, error)
	Delete(ctx context.Context, id string) error
	// ListByUser returns the user's cart lines with Item populated.
	ListByUser(ctx context.Context, userID string) ([]*models.CartItem, error)
}
