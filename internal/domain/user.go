package domain

import "time"

// UserRole separates back-office administrators from mobile staff.
type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleMobile UserRole = "MOBILE"
)

// User is an authenticated member of a hotel group.
type User struct {
	ID           string
	HotelGroupID string
	UserName     string
	Token        string
	Role         UserRole
	IsActive     bool
	CreatedAt    time.Time
}

// IsAdmin returns true if the user may run administrative commands.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
