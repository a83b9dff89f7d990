package contacts

import (
	"sort"
	"strings"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
)

// Circles are stored as a comma-delimited string; the split/join pair is
// the only place the delimited form exists. Everywhere else circles are a
// set of labels.

func SplitCircles(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	circles := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			circles = append(circles, trimmed)
		}
	}

	return circles
}

func JoinCircles(circles []string) string {
	cleaned := make([]string, 0, len(circles))

	for _, circle := range circles {
		if trimmed := strings.TrimSpace(circle); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	return strings.Join(cleaned, ", ")
}

// UniqueCircles collects every circle label across the user's persons,
// deduplicated case-insensitively (first spelling wins) and sorted
// alphabetically without regard to case.
func UniqueCircles(userID uint) ([]string, error) {
	var stored []string

	err := db.DB.Model(&models.Person{}).
		Where("user_id = ? AND circles IS NOT NULL AND circles != ''", userID).
		Pluck("circles", &stored).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	unique := make([]string, 0)

	for _, circleString := range stored {
		for _, circle := range SplitCircles(circleString) {
			key := strings.ToLower(circle)
			if !seen[key] {
				seen[key] = true
				unique = append(unique, circle)
			}
		}
	}

	sort.Slice(unique, func(i, j int) bool {
		return strings.ToLower(unique[i]) < strings.ToLower(unique[j])
	})

	return unique, nil
}
