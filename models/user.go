package models

import (
	"time"
)

type AppRole string

const (
	RoleAdmin    AppRole = "admin"
	RoleCustomer AppRole = "customer"
	RoleWorker   AppRole = "worker"
)

// User represents an account. Role membership lives in user_roles;
// an account may hold more than one role (e.g. customer + worker).
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	Phone        string    `json:"phone" gorm:"size:20;uniqueIndex;not null"`
	Email        *string   `json:"email" gorm:"size:255"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	AvatarURL    *string   `json:"avatar_url" gorm:"size:500"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Roles     []UserRole `json:"roles,omitempty" gorm:"foreignKey:UserID"`
	Addresses []Address  `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// UserRole is one role membership row for an account.
type UserRole struct {
	ID     uint    `json:"id" gorm:"primaryKey"`
	UserID uint    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_roles_user_role"`
	Role   AppRole `json:"role" gorm:"type:varchar(20);not null;uniqueIndex:idx_user_roles_user_role;check:role IN ('admin','customer','worker')"`
}

// TableName specifies the table name for the UserRole model
func (UserRole) TableName() string {
	return "user_roles"
}

// IsValidRole checks if a role value is one of the fixed set
func IsValidRole(role AppRole) bool {
	switch role {
	case RoleAdmin, RoleCustomer, RoleWorker:
		return true
	default:
		return false
	}
}

// HasRole reports whether the user's loaded role rows include the given role
func (u *User) HasRole(role AppRole) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}
