package model

import "time"

// Session is the server-side half of a login; the browser only holds Token.
type Session struct {
	Token     string    `json:"token" gorm:"primaryKey;size:64"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
