package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/permissions"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// ItemInput is the payload of CreateItem.
type ItemInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	LargeImage  string `json:"largeImage"`
	Price       int64  `json:"price"`
}

func (in ItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Image, is.URL),
		validation.Field(&in.LargeImage, is.URL),
		validation.Field(&in.Price, validation.Min(int64(0))),
	)
}

// ImageUpload is a presigned upload target for an item image.
type ImageUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ItemService manages catalog items.
type ItemService struct {
	base
	presigner ImagePresigner
}

func NewItemService(db *sql.DB, m repomanager.RepositoryManager, presigner ImagePresigner, logger logging.Logger) *ItemService {
	return &ItemService{base: newBase(db, m, logger), presigner: presigner}
}

// CreateItem stores an item owned by the acting user.
func (s *ItemService) CreateItem(ctx context.Context, id models.Identity, in ItemInput) (*models.Item, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrorInvalidInput)
	}

	item, err := s.repomanager.Items(s.db).Create(ctx, &models.Item{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		LargeImage:  in.LargeImage,
		Price:       in.Price,
		UserID:      actor.ID,
	})
	if err != nil {
		return nil, internal("error creating item", err)
	}

	s.logger.Info(ctx, "item created", "item_id", item.ID, "user_id", actor.ID)
	return item, nil
}

// Item returns the item with itemID.
func (s *ItemService) Item(ctx context.Context, itemID string) (*models.Item, error) {
	item, err := s.repomanager.Items(s.db).Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrItemNotFound
		}
		return nil, internal("error searching item", err)
	}
	return item, nil
}

// Items returns a page of items, newest first.
func (s *ItemService) Items(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("negative paging: %w", common.ErrorInvalidInput)
	}
	list, err := s.repomanager.Items(s.db).List(ctx, limit, offset)
	if err != nil {
		return nil, internal("error listing items", err)
	}
	return list, nil
}

// ItemsCount returns the number of items.
func (s *ItemService) ItemsCount(ctx context.Context) (int, error) {
	n, err := s.repomanager.Items(s.db).Count(ctx)
	if err != nil {
		return 0, internal("error counting items", err)
	}
	return n, nil
}

// UpdateItem applies upd to the item. The owner or a holder of ADMIN or
// ITEMUPDATE may update.
func (s *ItemService) UpdateItem(ctx context.Context, id models.Identity, itemID string, upd models.ItemUpdate) (*models.Item, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, fmt.Errorf("price must not be negative: %w", common.ErrorInvalidInput)
	}
	if upd.Title != nil && *upd.Title == "" {
		return nil, fmt.Errorf("title must not be empty: %w", common.ErrorInvalidInput)
	}

	var updated *models.Item
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)
		item, err := repo.Get(ctx, itemID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrItemNotFound
			}
			return internal("error searching item", err)
		}
		if err := permissions.CanUpdateItem(actor, item); err != nil {
			return err
		}
		updated, err = repo.Update(ctx, itemID, upd)
		if err != nil {
			return internal("error updating item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "item updated", "item_id", itemID, "user_id", actor.ID)
	return updated, nil
}

// DeleteItem removes the item and returns it. The owner or a holder of ADMIN
// or ITEMDELETE may delete.
func (s *ItemService) DeleteItem(ctx context.Context, id models.Identity, itemID string) (*models.Item, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}

	var deleted *models.Item
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)
		item, err := repo.Get(ctx, itemID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrItemNotFound
			}
			return internal("error searching item", err)
		}
		if err := permissions.CanDeleteItem(actor, item); err != nil {
			return err
		}
		if err := repo.Delete(ctx, itemID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrItemNotFound
			}
			return internal("error deleting item", err)
		}
		deleted = item
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			s.logger.Warn(ctx, "item delete denied", "item_id", itemID, "user_id", actor.ID)
		}
		return nil, err
	}

	s.logger.Info(ctx, "item deleted", "item_id", itemID, "user_id", actor.ID)
	return deleted, nil
}

// ImageUploadURL returns a presigned URL a signed-in user can upload an item
// image to.
func (s *ItemService) ImageUploadURL(ctx context.Context, id models.Identity) (*ImageUpload, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("items", actor.ID, uuid.NewString())
	u, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		return nil, internal("presign image upload", err)
	}
	return &ImageUpload{Key: key, URL: u}, nil
}
