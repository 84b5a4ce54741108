package domain

import "time"

// Role names seeded at startup.
const (
	RoleAdministrator = "Administrator"
	RolePowerUser     = "PowerUser"
	RoleUser          = "User"
)

// User is an account in the back office. Accounts are hard-deleted; lockout
// and token invalidation are handled through AccessFailedCount, LockoutEnd and
// SecurityStamp rather than row removal.
type User struct {
	BaseEntity
	FirstName    string `gorm:"size:256;not null"`
	LastName     string `gorm:"size:256"`
	UserName     string `gorm:"size:256;not null;uniqueIndex:idx_users_user_name"`
	Email        string `gorm:"size:256;not null"`
	PasswordHash string `gorm:"size:256;not null"`

	// SecurityStamp rotates on every credential-affecting change (login,
	// password reset). Tokens embed the stamp, so rotation invalidates all
	// previously issued tokens.
	SecurityStamp string `gorm:"size:64;not null"`

	AccessFailedCount int        `gorm:"not null;default:0"`
	LockoutEnd        *time.Time

	// Password-reset token, stored as a SHA-256 hash with an expiry. Cleared
	// once consumed.
	ResetTokenHash   string `gorm:"size:64"`
	ResetTokenExpiry *time.Time

	Roles []Role `gorm:"many2many:user_roles"`
}

// Role is a named role membership. Seeded once, never mutated afterwards.
type Role struct {
	BaseEntity
	Name string `gorm:"size:256;not null;uniqueIndex:idx_roles_name"`
}

// IsLockedOut reports whether the account is locked out at the given instant.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
