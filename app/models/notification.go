package models

import "time"

// NotificationChannel is the closed set of delivery channels. Only the
// preference is stored here; delivery itself is out of scope.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelPush  NotificationChannel = "push"
)

// ValidChannel reports whether c is a known notification channel.
func ValidChannel(c NotificationChannel) bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

// NotificationPreference holds a user's notification settings, one row per
// user, created with defaults at signup.
type NotificationPreference struct {
	ID        uint                `gorm:"primaryKey" json:"-"`
	UserID    uint                `gorm:"uniqueIndex;not null" json:"-"`
	Enabled   bool                `gorm:"not null;default:true" json:"enabled"`
	Channel   NotificationChannel `gorm:"size:16;not null;default:email" json:"channel"`
	Email     *string             `gorm:"size:255" json:"email"`
	Phone     *string             `gorm:"size:32" json:"phone"`
	PushToken *string             `gorm:"size:512" json:"push_token"`
	UpdatedAt time.Time           `json:"updated_at"`
}
