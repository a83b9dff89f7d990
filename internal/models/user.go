package models

import "gorm.io/gorm"

// User roles. New registrations start as RoleInactive and have to be
// promoted by an administrator before they can use the application.
const (
	RoleAdmin    = "admin"
	RoleUser     = "user"
	RoleInactive = "inactive"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleInactive:
		return true
	}
	return false
}

type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:inactive"`

	// Persona is the instruction text the AI bridge sends as the
	// system-level voice when drafting messages for this user.
	Persona string

	// Cumulative usage counters across all AI exchanges.
	TokensSent      int64   `gorm:"not null;default:0"`
	TokensGenerated int64   `gorm:"not null;default:0"`
	TokensCost      float64 `gorm:"not null;default:0"`

	// Relationships
	Persons      []Person      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Interactions []Interaction `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
