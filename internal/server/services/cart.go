package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/permissions"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// CartService manages the acting user's cart.
type CartService struct {
	base
}

func NewCartService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *CartService {
	return &CartService{base: newBase(db, m, logger)}
}

// AddToCart puts one unit of itemID into the cart, bumping the quantity when
// the item is already there. Concurrent adds of the same item end up on one line.
func (s *CartService) AddToCart(ctx context.Context, id models.Identity, itemID string) (*models.CartItem, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}

	var ci *models.CartItem
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Items(tx).Get(ctx, itemID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrItemNotFound
			}
			return internal("error searching item", err)
		}

		ci, err = s.repomanager.CartItems(tx).Add(ctx, actor.ID, itemID)
		if err != nil {
			return internal("error adding cart item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ci, nil
}

// RemoveFromCart deletes a cart line owned by the acting user and returns it.
func (s *CartService) RemoveFromCart(ctx context.Context, id models.Identity, cartItemID string) (*models.CartItem, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}

	var removed *models.CartItem
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.CartItems(tx)
		ci, err := repo.Get(ctx, cartItemID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrCartItemNotFound
			}
			return internal("error searching cart item", err)
		}
		if err := permissions.CanMutateCartItem(actor, ci); err != nil {
			return err
		}
		if err := repo.Delete(ctx, cartItemID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrCartItemNotFound
			}
			return internal("error deleting cart item", err)
		}
		removed = ci
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// Cart lists the acting user's cart lines.
func (s *CartService) Cart(ctx context.Context, id models.Identity) ([]*models.CartItem, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.CartItems(s.db).ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, internal("error listing cart", err)
	}
	return list, nil
}
