package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleStaff  UserRole = "STAFF"
	UserRoleDriver UserRole = "DRIVER"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusBlocked  UserStatus = "BLOCKED"
)

type User struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email" gorm:"uniqueIndex"`
	Phone     string     `json:"phone,omitempty" gorm:"index"`
	Password  string     `json:"-"` // Hashed password
	Role      UserRole   `json:"role" gorm:"index"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsDriver reports whether the user holds the driver role.
func (u *User) IsDriver() bool {
	return u.Role == UserRoleDriver
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
