package model

import "time"

const (
	RoleAdmin          = "admin"
	RoleNetworkManager = "network_manager"
	RoleReadUser       = "read_user"
)

// ValidRole reports whether role is one of the three application roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleNetworkManager, RoleReadUser:
		return true
	}
	return false
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:255;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	Role      string    `json:"role" gorm:"size:20;default:read_user;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
