package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "email", "name", "password", "permissions", "reset_token", "reset_token_expiry", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		db.Close()
	})
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*name,\s*password,\s*permissions\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at\s*$`
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "Alice", "hash", "USER").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &models.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "hash", Permissions: models.Permissions{models.PermissionUser}}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, created, got.CreatedAt)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*email,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	now := time.Now()

	mock.ExpectQuery(q).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "alice@example.com", "Alice", "hash", "USER,ADMIN", nil, nil, now))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, models.Permissions{"USER", "ADMIN"}, got.Permissions)
	assert.Nil(t, got.ResetToken)
	assert.Nil(t, got.ResetTokenExpiry)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs("u-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_WithResetFields(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "a@b.c", "A", "hash", "USER", "tok", exp, time.Now()))

	got, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, got.ResetToken)
	require.NotNil(t, got.ResetTokenExpiry)
	assert.Equal(t, "tok", *got.ResetToken)
	assert.True(t, exp.Equal(*got.ResetTokenExpiry))
	assert.NoError(t, got.CheckResetFields())
}

func TestList(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`FROM users ORDER BY`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "a@b.c", "A", "h", "USER", nil, nil, now).
			AddRow("u-2", "b@b.c", "B", "h", "ADMIN", nil, nil, now))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u-2", got[1].ID)
	assert.True(t, got[1].Permissions.Has(models.PermissionAdmin))
}

func TestList_Empty(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM users ORDER BY`).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSetResetToken(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+users\s+SET\s+reset_token\s*=\s*\$1,\s*reset_token_expiry\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s*$`
	exp := time.Now().Add(time.Hour)

	mock.ExpectExec(q).
		WithArgs("tok", exp, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetResetToken(context.Background(), "u-1", "tok", exp))

	mock.ExpectExec(q).
		WithArgs("tok", exp, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetResetToken(context.Background(), "ghost", "tok", exp), common.ErrorNotFound)
}

func TestFindByResetToken(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)FROM\s+users\s+WHERE\s+reset_token\s*=\s*\$1\s+AND\s+reset_token_expiry\s*>=\s*\$2`
	minExp := time.Now().Add(-time.Hour)
	exp := time.Now()

	mock.ExpectQuery(q).
		WithArgs("tok", minExp).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "a@b.c", "A", "h", "USER", "tok", exp, time.Now()))

	got, err := repo.FindByResetToken(context.Background(), "tok", minExp)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	mock.ExpectQuery(q).
		WithArgs("stale", minExp).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByResetToken(context.Background(), "stale", minExp)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestConsumeResetToken(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+users\s+SET\s+password\s*=\s*\$1,\s*reset_token\s*=\s*NULL,\s*reset_token_expiry\s*=\s*NULL\s+WHERE\s+reset_token\s*=\s*\$2\s+AND\s+reset_token_expiry\s*>=\s*\$3\s+RETURNING`
	minExp := time.Now().Add(-time.Hour)

	mock.ExpectQuery(q).
		WithArgs("newhash", "tok", minExp).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "a@b.c", "A", "newhash", "USER", nil, nil, time.Now()))

	got, err := repo.ConsumeResetToken(context.Background(), "tok", minExp, "newhash")
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
	assert.Nil(t, got.ResetToken)
	assert.Nil(t, got.ResetTokenExpiry)

	mock.ExpectQuery(q).
		WithArgs("newhash", "tok", minExp).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.ConsumeResetToken(context.Background(), "tok", minExp, "newhash")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdatePermissions(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+users\s+SET\s+permissions\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s+RETURNING`

	mock.ExpectQuery(q).
		WithArgs("ADMIN,USER", "u-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u-1", "a@b.c", "A", "h", "ADMIN,USER", nil, nil, time.Now()))

	got, err := repo.UpdatePermissions(context.Background(), "u-1", models.Permissions{"ADMIN", "USER"})
	require.NoError(t, err)
	assert.Equal(t, models.Permissions{"ADMIN", "USER"}, got.Permissions)

	mock.ExpectQuery(q).
		WithArgs("USER", "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.UpdatePermissions(context.Background(), "ghost", models.Permissions{"USER"})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(q).
		WithArgs("USER", "not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err = repo.UpdatePermissions(context.Background(), "not-a-uuid", models.Permissions{"USER"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
