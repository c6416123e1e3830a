package model

import "time"

// User is an account that owns tasks.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"uniqueIndex"`
	Email          string
	PasswordHash   string
	TelegramChatID int64 // 0 means the user never opted into digests
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
