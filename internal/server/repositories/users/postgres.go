package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/google/uuid"
)

const userColumns = `id, email, name, password, permissions, reset_token, reset_token_expiry, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u      models.User
		token  sql.NullString
		expiry sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Permissions, &token, &expiry, &u.CreatedAt); err != nil {
		return nil, err
	}
	if token.Valid {
		u.ResetToken = &token.String
	}
	if expiry.Valid {
		u.ResetTokenExpiry = &expiry.Time
	}
	return &u, nil
}

// wrapRowErr maps a missing row, or an id that cannot be a uuid, to ErrorNotFound.
func wrapRowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, email, name, password, permissions)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Permissions).Scan(&user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email %q: %w", user.Email, common.ErrorConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, wrapRowErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapRowErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, email`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	query :=
		`UPDATE users SET reset_token = $1, reset_token_expiry = $2
		 WHERE id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, token, expiry, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
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

func (r *PostgresRepository) FindByResetToken(ctx context.Context, token string, minExpiry time.Time) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE reset_token = $1 AND reset_token_expiry >= $2
		 `

	u, err := scanUser(r.db.QueryRowContext(ctx, query, token, minExpiry))
	if err != nil {
		return nil, wrapRowErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, token string, minExpiry time.Time, passwordHash string) (*models.User, error) {
	query :=
		`UPDATE users SET password = $1, reset_token = NULL, reset_token_expiry = NULL
		 WHERE reset_token = $2 AND reset_token_expiry >= $3
		 RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, passwordHash, token, minExpiry))
	if err != nil {
		return nil, wrapRowErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) UpdatePermissions(ctx context.Context, userID string, perms models.Permissions) (*models.User, error) {
	query :=
		`UPDATE users SET permissions = $1
		 WHERE id = $2
		 RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, perms, userID))
	if err != nil {
		return nil, wrapRowErr(err)
	}
	return u, nil
}
