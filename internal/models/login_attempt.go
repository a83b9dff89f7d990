package models

import "time"

// LoginAttempt records a failed login from an address. Rows are
// append-only; the lockout check only ever counts them inside a sliding
// window, so no sweeper is needed.
type LoginAttempt struct {
	ID        uint      `gorm:"primarykey"`
	IPAddress string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null;index"`
}
