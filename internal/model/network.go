package model

import "time"

type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
	DeviceUnknown DeviceStatus = "unknown"
)

// UnlimitedDevices is the max_devices value the license portal uses for
// licenses without a device cap.
const UnlimitedDevices = 99999

type NetworkMap struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type NetworkDevice struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	UserID         uint         `json:"user_id" gorm:"not null;index"`
	Name           string       `json:"name" gorm:"size:255;not null"`
	IPAddress      string       `json:"ip_address" gorm:"column:ip_address;size:255;not null"`
	Type           string       `json:"type" gorm:"size:100;default:server"`
	Description    string       `json:"description" gorm:"type:text"`
	Status         DeviceStatus `json:"status" gorm:"size:16;default:unknown;not null"`
	LastPing       *time.Time   `json:"last_ping"`
	LastPingResult *string      `json:"last_ping_result" gorm:"type:text"`
	LastPingOutput *string      `json:"last_ping_output" gorm:"type:text"`
	MapID          *uint        `json:"map_id" gorm:"index"`
	MapName        *string      `json:"map_name" gorm:"->;-:migration"` // filled by the maps LEFT JOIN
	PositionX      float64      `json:"position_x" gorm:"type:decimal(10,2);default:0"`
	PositionY      float64      `json:"position_y" gorm:"type:decimal(10,2);default:0"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	User *User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Map  *NetworkMap `json:"-" gorm:"foreignKey:MapID;constraint:OnDelete:SET NULL"`
}

// PingHistory only exists in the schema; nothing records pings yet.
type PingHistory struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	DeviceID     uint         `json:"device_id" gorm:"not null;index"`
	Timestamp    time.Time    `json:"timestamp" gorm:"autoCreateTime"`
	Status       DeviceStatus `json:"status" gorm:"size:16;not null"`
	LatencyMS    *int         `json:"latency_ms" gorm:"column:latency_ms"`
	ErrorMessage *string      `json:"error_message" gorm:"type:text"`

	Device *NetworkDevice `json:"-" gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
}

func (PingHistory) TableName() string {
	return "ping_history"
}
