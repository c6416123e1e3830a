package model

import "time"

// Session is a browser login for the server-rendered pages. The API uses
// bearer tokens instead and never touches this table.
type Session struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"uniqueIndex"`
	UserID    uint   `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}
