package cartitems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/google/uuid"
)

const cartItemColumns = `id, quantity, item_id, user_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// wrapRowErr maps a missing row, or an id that cannot be a uuid, to ErrorNotFound.
func wrapRowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.CartItem, error) {
	var ci models.CartItem
	if err := row.Scan(&ci.ID, &ci.Quantity, &ci.ItemID, &ci.UserID); err != nil {
		return nil, wrapRowErr(err)
	}
	return &ci, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Add(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	query :=
		`INSERT INTO cart_items (id, quantity, item_id, user_id)
		 VALUES ($1, 1, $2, $3)
		 ON CONFLICT ON CONSTRAINT cart_items_user_item_key
		 DO UPDATE SET quantity = cart_items.quantity + 1
		 RETURNING ` + cartItemColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query, uuid.NewString(), itemID, userID))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return wrapRowErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.CartItem, error) {
	query :=
		`SELECT c.id, c.quantity, c.item_id, c.user_id,
		        i.title, i.description, i.image, i.large_image, i.price, i.user_id, i.created_at
		 FROM cart_items c JOIN items i ON i.id = c.item_id
		 WHERE c.user_id = $1
		 ORDER BY i.title, c.id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.CartItem, 0)
	for rows.Next() {
		ci := &models.CartItem{Item: &models.Item{}}
		if err := rows.Scan(&ci.ID, &ci.Quantity, &ci.ItemID, &ci.UserID,
			&ci.Item.Title, &ci.Item.Description, &ci.Item.Image, &ci.Item.LargeImage,
			&ci.Item.Price, &ci.Item.UserID, &ci.Item.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ci.Item.ID = ci.ItemID
		result = append(result, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
