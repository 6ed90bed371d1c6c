package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/auth"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/cartitems"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService([]byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// --- in-memory repositories ---

type fakeUsersRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	err     error
	setRuns int
}

func newFakeUsersRepo(us ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byID: map[string]*models.User{}}
	for _, u := range us {
		r.byID[u.ID] = u
	}
	return r
}

func clone(u *models.User) *models.User {
	c := *u
	c.Permissions = append(models.Permissions{}, u.Permissions...)
	return &c
}

func (r *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, ex := range r.byID {
		if ex.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	u.CreatedAt = time.Now()
	r.byID[u.ID] = clone(u)
	return u, nil
}

func (r *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.byID[id]; ok {
		return clone(u), nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUsersRepo) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setRuns++
	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.ResetToken, u.ResetTokenExpiry = &token, &expiry
	return nil
}

func (r *fakeUsersRepo) match(token string, minExpiry time.Time) *models.User {
	for _, u := range r.byID {
		if u.ResetToken != nil && *u.ResetToken == token && !u.ResetTokenExpiry.Before(minExpiry) {
			return u
		}
	}
	return nil
}

func (r *fakeUsersRepo) FindByResetToken(ctx context.Context, token string, minExpiry time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.match(token, minExpiry); u != nil {
		return clone(u), nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) ConsumeResetToken(ctx context.Context, token string, minExpiry time.Time, hash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.match(token, minExpiry)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	u.PasswordHash, u.ResetToken, u.ResetTokenExpiry = hash, nil, nil
	return clone(u), nil
}

func (r *fakeUsersRepo) UpdatePermissions(ctx context.Context, userID string, perms models.Permissions) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Permissions = perms
	return clone(u), nil
}

type fakeItemsRepo struct {
	byID    map[string]*models.Item
	deleted []string
	err     error
}

func newFakeItemsRepo(is ...*models.Item) *fakeItemsRepo {
	r := &fakeItemsRepo{byID: map[string]*models.Item{}}
	for _, i := range is {
		r.byID[i.ID] = i
	}
	return r
}

func (r *fakeItemsRepo) Create(ctx context.Context, i *models.Item) (*models.Item, error) {
	if r.err != nil {
		return nil, r.err
	}
	if i.ID == "" {
		i.ID = "i-" + i.Title
	}
	c := *i
	r.byID[i.ID] = &c
	return i, nil
}

func (r *fakeItemsRepo) Get(ctx context.Context, id string) (*models.Item, error) {
	if r.err != nil {
		return nil, r.err
	}
	if i, ok := r.byID[id]; ok {
		c := *i
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeItemsRepo) List(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []*models.Item{}
	for n, id := range ids {
		if n < offset || (limit > 0 && len(out) == limit) {
			continue
		}
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *fakeItemsRepo) Count(ctx context.Context) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return len(r.byID), nil
}

func (r *fakeItemsRepo) Update(ctx context.Context, id string, upd models.ItemUpdate) (*models.Item, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Title != nil {
		i.Title = *upd.Title
	}
	if upd.Description != nil {
		i.Description = *upd.Description
	}
	if upd.Price != nil {
		i.Price = *upd.Price
	}
	c := *i
	return &c, nil
}

func (r *fakeItemsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeCartRepo struct {
	byID map[string]*models.CartItem
	err  error
}

func newFakeCartRepo(cs ...*models.CartItem) *fakeCartRepo {
	r := &fakeCartRepo{byID: map[string]*models.CartItem{}}
	for _, c := range cs {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeCartRepo) Get(ctx context.Context, id string) (*models.CartItem, error) {
	if c, ok := r.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeCartRepo) Add(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, c := range r.byID {
		if c.UserID == userID && c.ItemID == itemID {
			c.Quantity++
			cp := *c
			return &cp, nil
		}
	}
	c := &models.CartItem{ID: "c-" + userID + "-" + itemID, Quantity: 1, ItemID: itemID, UserID: userID}
	r.byID[c.ID] = c
	cp := *c
	return &cp, nil
}

func (r *fakeCartRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeCartRepo) ListByUser(ctx context.Context, userID string) ([]*models.CartItem, error) {
	out := []*models.CartItem{}
	for _, c := range r.byID {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	i *fakeItemsRepo
	c *fakeCartRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Items(dbx.DBTX) items.Repository              { return m.i }
func (m *fakeRepoManager) CartItems(dbx.DBTX) cartitems.Repository      { return m.c }

// --- transport and notifier fakes ---

type cookie struct {
	value string
	opts  CookieOptions
}

type fakeJar struct {
	set     map[string]cookie
	cleared []string
}

func newFakeJar() *fakeJar { return &fakeJar{set: map[string]cookie{}} }

func (j *fakeJar) SetCookie(name, value string, opts CookieOptions) {
	j.set[name] = cookie{value: value, opts: opts}
}

func (j *fakeJar) ClearCookie(name string) {
	delete(j.set, name)
	j.cleared = append(j.cleared, name)
}

type sentMail struct {
	to, subject, body string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (n *fakeNotifier) SendMail(ctx context.Context, to, subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{to, subject, body})
	return nil
}

type fakeTokens struct{ err error }

func (f fakeTokens) Issue(string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "tok", nil
}

type fakePresigner struct {
	key string
	err error
}

func (p *fakePresigner) PresignPut(ctx context.Context, key string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.key = key
	return "https://s3.example.com/" + key + "?X-Amz-Signature=x", nil
}
