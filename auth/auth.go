// Package auth resolves moderation privileges. Config-defined owner/sudo
// accounts always win; the moderator role lives only in the account table.
package auth

import (
	"errors"

	"botlibrary/db"
	"botlibrary/errs"
	"botlibrary/model"
)

// Checker answers privilege questions against the startup configuration and
// the account store.
type Checker struct {
	ownerID int64
	sudo    map[int64]bool
	store   *db.Store
}

// NewChecker builds a checker from the config-defined owner/sudo set. The
// set is loaded once at startup; later promotions go through the account
// table.
func NewChecker(ownerID int64, sudo map[int64]bool, store *db.Store) *Checker {
	if sudo == nil {
		sudo = map[int64]bool{}
	}
	if ownerID != 0 {
		sudo[ownerID] = true
	}
	return &Checker{ownerID: ownerID, sudo: sudo, store: store}
}

// IsOwner reports whether the account is the configured owner.
func (c *Checker) IsOwner(userID int64) bool {
	return userID == c.ownerID
}

// IsPrivileged reports whether the account may perform moderation or
// administrative actions. The config set is checked first, then the stored
// role.
func (c *Checker) IsPrivileged(userID int64) (bool, error) {
	if c.sudo[userID] {
		return true, nil
	}
	acc, err := c.store.GetAccount(userID)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch acc.Role {
	case model.RoleOwner, model.RoleSudo, model.RoleModerator:
		return true, nil
	}
	return false, nil
}

// Require returns ErrUnauthorized unless the account is privileged.
func (c *Checker) Require(userID int64) error {
	ok, err := c.IsPrivileged(userID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrUnauthorized
	}
	return nil
}

// PrivilegedIDs returns the union of config-defined and role-bearing
// accounts, for notification fan-out.
func (c *Checker) PrivilegedIDs() ([]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for id := range c.sudo {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	fromDB, err := c.store.PrivilegedAccountIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range fromDB {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
