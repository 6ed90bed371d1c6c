package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/permissions"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// UserService exposes the current user and permission administration.
type UserService struct {
	base
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{base: newBase(db, m, logger)}
}

// Me returns the signed-in user, or nil for anonymous callers.
func (s *UserService) Me(ctx context.Context, id models.Identity) (*models.User, error) {
	if id.IsAnonymous() {
		return nil, nil
	}
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, internal("error searching user", err)
	}
	return u, nil
}

// Users lists every account. Requires ADMIN or PERMISSIONUPDATE.
func (s *UserService) Users(ctx context.Context, id models.Identity) ([]*models.User, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permissions.CanListUsers(actor); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, internal("error listing users", err)
	}
	return list, nil
}

// UpdatePermissions replaces the permission set of user userID.
func (s *UserService) UpdatePermissions(ctx context.Context, id models.Identity, userID string, labels []string) (*models.User, error) {
	actor, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permissions.CanUpdatePermissions(actor); err != nil {
		s.logger.Warn(ctx, "permission update denied", "actor_id", actor.ID, "target_id", userID)
		return nil, err
	}

	perms, err := permissions.Validate(labels)
	if err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).UpdatePermissions(ctx, userID, perms)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, internal("error updating permissions", err)
	}

	s.logger.Info(ctx, "permissions updated", "actor_id", actor.ID, "target_id", userID)
	return u, nil
}
