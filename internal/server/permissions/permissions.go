// Package permissions evaluates a user's permission labels against the
// labels an operation requires, and encodes the authorization rules guarding
// mutations.
package permissions

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

// Allows reports whether user holds at least one of required. An empty
// required set is never satisfied.
func Allows(user *models.User, required ...models.Permission) bool {
	if user == nil {
		return false
	}
	for _, r := range required {
		if user.Permissions.Has(r) {
			return true
		}
	}
	return false
}

// Enforce returns an error matching common.ErrorForbidden unless
// Allows(user, required...) holds.
func Enforce(user *models.User, required ...models.Permission) error {
	if Allows(user, required...) {
		return nil
	}
	var have models.Permissions
	if user != nil {
		have = user.Permissions
	}
	return fmt.Errorf("you do not have sufficient permissions: %s; you have %s: %w",
		strings.Join(required, ", "), strings.Join(have, ", "), common.ErrorForbidden)
}

// Validate checks that every label is known and returns the labels with
// duplicates removed, keeping first occurrence order.
func Validate(labels []string) (models.Permissions, error) {
	out := make(models.Permissions, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if !models.IsKnownPermission(l) {
			return nil, fmt.Errorf("%q: %w", l, common.ErrUnknownPermission)
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out, nil
}
