package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Person statuses.
const (
	PersonStatusNew      = "NEW"
	PersonStatusActive   = "ACTIVE"
	PersonStatusInactive = "INACTIVE"
)

// Person priorities.
const (
	PriorityTop10  = "TOP10"
	PriorityTop25  = "TOP25"
	PriorityTop50  = "TOP50"
	PriorityTop100 = "TOP100"
)

// Contact cycles. An empty cycle means the contact has no cadence
// configured and is never classified as overdue.
const (
	CycleWeekly       = "WEEKLY"
	CycleBiweekly     = "BIWEEKLY"
	CycleMonthly      = "MONTHLY"
	CycleQuarterly    = "QUARTERLY"
	CycleSemiAnnually = "SEMI_ANNUALLY"
	CycleAnnually     = "ANNUALLY"
)

func ValidPersonStatus(s string) bool {
	switch s {
	case PersonStatusNew, PersonStatusActive, PersonStatusInactive:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityTop10, PriorityTop25, PriorityTop50, PriorityTop100:
		return true
	}
	return false
}

func ValidContactCycle(c string) bool {
	switch c {
	case CycleWeekly, CycleBiweekly, CycleMonthly, CycleQuarterly, CycleSemiAnnually, CycleAnnually:
		return true
	}
	return false
}

type Person struct {
	gorm.Model

	// UserID is the owning user. Ownership is set at creation and never
	// changes; every mutation path checks it first.
	UserID uint `gorm:"not null;index"`

	FirstName       string
	LastName        string `gorm:"not null"`
	Email1          string
	Email2          string
	Phone1          string
	Phone2          string
	Company         string
	Position        string
	LinkedInProfile string `gorm:"column:linkedin_profile"`
	Website         string
	Birthday        *datatypes.Date
	Status          string `gorm:"not null;default:NEW"`
	Priority        *string
	ContactCycle    *string
	Notes           string

	// Circles is a comma-delimited tag list at rest. Handlers and the
	// contacts package only ever see it as a set of strings.
	Circles string

	// OpenAIResponseID resumes the provider-side conversation. Written at
	// most once per exchange, cleared only by an explicit reset.
	OpenAIResponseID *string `gorm:"column:openai_response_id"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Interactions []Interaction `gorm:"foreignKey:PersonID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
