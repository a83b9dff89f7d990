// Package staleness classifies how overdue a contact is, given its
// configured contact cycle and the date of the most recent interaction.
// The classification is pure; callers pass the reference day.
package staleness

import (
	"time"

	"github.com/solutor-dev/personalcrm/internal/models"
)

type State string

const (
	// Undefined: no contact cycle configured.
	Undefined State = "UNDEFINED"
	// OnTrack: last interaction is within the cycle; Days holds the days
	// remaining until the next contact is due.
	OnTrack State = "ON_TRACK"
	// Overdue: between one and two cycle lengths have elapsed; Days holds
	// the days past due.
	Overdue State = "OVERDUE"
	// SeverelyOverdue: two or more cycle lengths elapsed, or a cycle is
	// configured but no interaction was ever recorded.
	SeverelyOverdue State = "SEVERELY_OVERDUE"
)

type Classification struct {
	State State `json:"state"`
	// Days is the remaining days for OnTrack and the days past due for
	// Overdue. Zero otherwise.
	Days int `json:"days"`
}

// Fixed calendar approximations, matching the cycle selector.
var cycleDays = map[string]int{
	models.CycleWeekly:       7,
	models.CycleBiweekly:     14,
	models.CycleMonthly:      30,
	models.CycleQuarterly:    90,
	models.CycleSemiAnnually: 180,
	models.CycleAnnually:     365,
}

// Classify maps (last interaction date, cycle) to a traffic-light state.
// Elapsed time is counted in whole days between midnight-normalized
// calendar dates; time zones and partial days are deliberately ignored.
func Classify(lastInteraction *time.Time, cycle string, today time.Time) Classification {
	duration, ok := cycleDays[cycle]
	if !ok {
		return Classification{State: Undefined}
	}

	if lastInteraction == nil {
		// A cadence was configured but the first contact never happened.
		return Classification{State: SeverelyOverdue}
	}

	elapsed := int(truncateDay(today).Sub(truncateDay(*lastInteraction)).Hours() / 24)

	switch {
	case elapsed < duration:
		return Classification{State: OnTrack, Days: duration - elapsed}
	case elapsed < 2*duration:
		return Classification{State: Overdue, Days: elapsed - duration}
	default:
		return Classification{State: SeverelyOverdue}
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
