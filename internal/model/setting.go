package model

import "time"

const (
	SettingLicenseKey     = "app_license_key"
	SettingInstallationID = "installation_id"
)

type AppSetting struct {
	SettingKey   string    `json:"setting_key" gorm:"primaryKey;size:255"`
	SettingValue string    `json:"setting_value" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
