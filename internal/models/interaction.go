package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Interaction types.
const (
	InteractionCall       = "CALL"
	InteractionEmail      = "EMAIL"
	InteractionMessage    = "MESSAGE"
	InteractionMeeting    = "MEETING"
	InteractionMeal       = "MEAL"
	InteractionCoffee     = "COFFEE"
	InteractionConference = "CONFERENCE"
	InteractionOther      = "OTHER"
)

func ValidInteractionType(t string) bool {
	switch t {
	case InteractionCall, InteractionEmail, InteractionMessage, InteractionMeeting,
		InteractionMeal, InteractionCoffee, InteractionConference, InteractionOther:
		return true
	}
	return false
}

type Interaction struct {
	gorm.Model

	PersonID uint `gorm:"not null;index"`
	// UserID is the user who recorded the interaction. Authorization always
	// goes through the parent person's owner, never through this field.
	UserID          uint           `gorm:"not null;index"`
	InteractionDate datatypes.Date `gorm:"not null"`
	Type            string         `gorm:"not null"`
	Memo            string

	// Relationships
	Person Person `gorm:"foreignKey:PersonID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
