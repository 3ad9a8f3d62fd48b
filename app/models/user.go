package models

import "time"

// Role is the closed set of user roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is an account that owns orders and one notification preference row.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:50;not null;default:customer" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	Orders                 []Order                 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	NotificationPreference *NotificationPreference `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the user carries the admin role. Callers must
// check this on a freshly loaded row, never on token claims alone.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Public is the profile shape safe to return to clients.
type Public struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the user's public profile.
func (u *User) Public() Public {
	return Public{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}
