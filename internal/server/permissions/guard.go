package permissions

import (
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

// CanDeleteItem allows the owner of item or a holder of ADMIN or ITEMDELETE.
func CanDeleteItem(actor *models.User, item *models.Item) error {
	if actor != nil && item != nil && item.UserID == actor.ID {
		return nil
	}
	return Enforce(actor, models.PermissionAdmin, models.PermissionItemDelete)
}

// CanUpdateItem allows the owner of item or a holder of ADMIN or ITEMUPDATE.
func CanUpdateItem(actor *models.User, item *models.Item) error {
	if actor != nil && item != nil && item.UserID == actor.ID {
		return nil
	}
	return Enforce(actor, models.PermissionAdmin, models.PermissionItemUpdate)
}

// CanUpdatePermissions requires ADMIN or PERMISSIONUPDATE, also when the
// actor edits their own account.
func CanUpdatePermissions(actor *models.User) error {
	return Enforce(actor, models.PermissionAdmin, models.PermissionPermissionUpdate)
}

// CanListUsers requires ADMIN or PERMISSIONUPDATE.
func CanListUsers(actor *models.User) error {
	return Enforce(actor, models.PermissionAdmin, models.PermissionPermissionUpdate)
}

// CanMutateCartItem allows only the owner of the cart item.
func CanMutateCartItem(actor *models.User, ci *models.CartItem) error {
	if actor == nil || ci == nil || ci.UserID != actor.ID {
		return fmt.Errorf("you do not own this cart item: %w", common.ErrorForbidden)
	}
	return nil
}
