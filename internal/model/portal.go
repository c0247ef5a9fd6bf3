package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	LicenseActive  = "active"
	LicenseFree    = "free"
	LicenseRevoked = "revoked"
)

type Customer struct {
	gorm.Model
	Name     string   `json:"name"`
	Email    string   `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Profile  *Profile `json:"profile,omitempty"`
}

type Profile struct {
	gorm.Model
	CustomerID uint   `json:"customer_id" gorm:"uniqueIndex;not null"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	AvatarURL  string `json:"avatar_url"`
}

type Product struct {
	gorm.Model
	Name                string  `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Description         string  `json:"description" gorm:"type:text"`
	Price               float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	MaxDevices          int     `json:"max_devices"`
	LicenseDurationDays int     `json:"license_duration_days"`
	IsDemo              bool    `json:"is_demo" gorm:"default:false"`
}

type License struct {
	gorm.Model
	LicenseKey     string     `json:"license_key" gorm:"size:64;uniqueIndex;not null"`
	CustomerID     *uint      `json:"customer_id" gorm:"index"`
	ProductID      uint       `json:"product_id"`
	Status         string     `json:"status" gorm:"size:20;default:active"`
	MaxDevices     int        `json:"max_devices"`
	ExpiresAt      *time.Time `json:"expires_at"`
	InstallationID string     `json:"installation_id" gorm:"size:255"`
	CurrentDevices int        `json:"current_devices"`
	LastVerifiedAt *time.Time `json:"last_verified_at"`

	Product Product `json:"product" gorm:"foreignKey:ProductID"`
}
