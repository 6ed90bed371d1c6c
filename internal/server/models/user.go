// Package models defines server-side data models persisted in the database.
package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Permission is a named capability. Authorization is intersection based:
// labels do not imply one another.
type Permission = string

const (
	PermissionAdmin            Permission = "ADMIN"
	PermissionUser             Permission = "USER"
	PermissionItemCreate       Permission = "ITEMCREATE"
	PermissionItemUpdate       Permission = "ITEMUPDATE"
	PermissionItemDelete       Permission = "ITEMDELETE"
	PermissionPermissionUpdate Permission = "PERMISSIONUPDATE"
)

// KnownPermissions lists every label a user may carry, in display order.
var KnownPermissions = []Permission{
	PermissionAdmin,
	PermissionUser,
	PermissionItemCreate,
	PermissionItemUpdate,
	PermissionItemDelete,
	PermissionPermissionUpdate,
}

// IsKnownPermission reports whether p is one of KnownPermissions.
func IsKnownPermission(p string) bool {
	for _, k := range KnownPermissions {
		if k == p {
			return true
		}
	}
	return false
}

// Permissions is an ordered set of labels. It is stored as a comma separated
// TEXT column.
type Permissions []Permission

// Value implements driver.Valuer.
func (p Permissions) Value() (driver.Value, error) {
	return strings.Join(p, ","), nil
}

// Scan implements sql.Scanner.
func (p *Permissions) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*p = Permissions{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Permissions", src)
	}

	out := Permissions{}
	for _, label := range strings.Split(s, ",") {
		if label = strings.TrimSpace(label); label != "" {
			out = append(out, label)
		}
	}
	*p = out
	return nil
}

// Has reports whether the set contains label.
func (p Permissions) Has(label Permission) bool {
	for _, l := range p {
		if l == label {
			return true
		}
	}
	return false
}

// User is a shop account. ResetToken and ResetTokenExpiry are either both
// set or both nil.
type User struct {
	ID               string      `json:"id"`
	Email            string      `json:"email"`
	Name             string      `json:"name"`
	PasswordHash     string      `json:"-"`
	Permissions      Permissions `json:"permissions"`
	ResetToken       *string     `json:"-"`
	ResetTokenExpiry *time.Time  `json:"-"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// ErrResetFieldsMismatch is returned by CheckResetFields.
var ErrResetFieldsMismatch = errors.New("reset token and expiry must be set together")

// CheckResetFields verifies the reset token pair invariant.
func (u *User) CheckResetFields() error {
	if (u.ResetToken == nil) != (u.ResetTokenExpiry == nil) {
		return ErrResetFieldsMismatch
	}
	return nil
}
