package items

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

const itemColumns = `id, title, description, image, large_image, price, user_id, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*models.Item, error) {
	var i models.Item
	if err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Image, &i.LargeImage, &i.Price, &i.UserID, &i.CreatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

// wrapRowErr maps a missing row, or an id that cannot be a uuid, to ErrorNotFound.
func wrapRowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO items (id, title, description, image, large_image, price, user_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.Title, item.Description, item.Image, item.LargeImage, item.Price, item.UserID).Scan(&item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	i, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapRowErr(err)
	}
	return i, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` OFFSET $1`
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Item, 0)
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.ItemUpdate) (*models.Item, error) {
	query :=
		`UPDATE items SET
		 title = COALESCE($2, title),
		 description = COALESCE($3, description),
		 image = COALESCE($4, image),
		 large_image = COALESCE($5, large_image),
		 price = COALESCE($6, price)
		 WHERE id = $1
		 RETURNING ` + itemColumns

	i, err := scanItem(r.db.QueryRowContext(ctx, query,
		id, upd.Title, upd.Description, upd.Image, upd.LargeImage, upd.Price))
	if err != nil {
		return nil, wrapRowErr(err)
	}
	return i, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
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
