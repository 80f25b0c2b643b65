package domain

import "time"

// Role is the authorization level of a user. It is the sole authorization
// signal in the system and is mutated only by an approved admin-access
// request or a direct super-admin override.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsValid returns true if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin returns true for admin and super_admin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User is a chat platform identity. TelegramID is the immutable primary key;
// username and full name refresh on contact (upsert semantics).
type User struct {
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone,omitempty"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// Handle returns the username, falling back to the numeric ID when the
// platform account has no handle.
func (u *User) Handle() string {
	if u.Username != "" {
		return u.Username
	}
	return formatID(u.TelegramID)
}

// TableAccessGrant scopes an admin's free-text commands to a record category.
// Grants are append-only; duplicates are no-ops.
type TableAccessGrant struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	TableName string    `json:"table_name"`
	GrantedAt time.Time `json:"granted_at"`
}
