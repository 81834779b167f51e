package model

import "time"

// Role is the privilege level stored on an account.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleSudo      Role = "sudo"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Account represents a platform user. Created lazily on first interaction,
// never deleted.
type Account struct {
	ID       int64
	Username string
	Role     Role
	JoinedAt time.Time
}
