// Package lockout implements the sliding-window brute-force counter for
// login attempts. Failures are appended per address and counted inside the
// window on every check; the window query replaces any background sweep.
package lockout

import (
	"time"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
)

const (
	// MaxAttempts failures inside Window lock the address out.
	MaxAttempts = 5
	Window      = 5 * time.Minute
)

// RecordFailure appends a timestamped failure for the address. It is
// called on every failed login, including while a lockout is already
// active, so sustained attacks keep extending the window.
func RecordFailure(address string) error {
	attempt := models.LoginAttempt{IPAddress: address}
	return db.DB.Create(&attempt).Error
}

// IsLocked reports whether the address has reached MaxAttempts failures
// within the last Window. An address with no recorded failures is never
// locked. The check and a concurrent RecordFailure are not atomic with
// each other; the lockout is a brake, not a strict rate limiter.
func IsLocked(address string) (bool, error) {
	cutoff := time.Now().Add(-Window)

	var count int64
	err := db.DB.Model(&models.LoginAttempt{}).
		Where("ip_address = ? AND created_at > ?", address, cutoff).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count >= MaxAttempts, nil
}
