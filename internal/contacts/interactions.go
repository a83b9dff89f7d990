package contacts

import (
	"errors"
	"fmt"
	"time"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InteractionInput carries the mutable fields of an interaction. Date and
// type are required on both create and update.
type InteractionInput struct {
	Date string `json:"interaction_date"` // YYYY-MM-DD
	Type string `json:"interaction_type"`
	Memo string `json:"memo"`
}

func (in *InteractionInput) parse() (datatypes.Date, error) {
	if in.Date == "" {
		return datatypes.Date{}, validationErr("Interaction date is required")
	}

	parsed, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return datatypes.Date{}, validationErr("Interaction date must be formatted as YYYY-MM-DD")
	}

	if !models.ValidInteractionType(in.Type) {
		return datatypes.Date{}, validationErr(fmt.Sprintf("Invalid interaction type %q", in.Type))
	}

	return datatypes.Date(parsed), nil
}

// AddInteraction records a contact event for the person. userID is the
// recording user; the caller has already authorized against the person's
// owner.
func AddInteraction(personID uint, userID uint, input InteractionInput) (uint, error) {
	date, err := input.parse()
	if err != nil {
		return 0, err
	}

	interaction := models.Interaction{
		PersonID:        personID,
		UserID:          userID,
		InteractionDate: date,
		Type:            input.Type,
		Memo:            input.Memo,
	}

	if err := db.DB.Create(&interaction).Error; err != nil {
		return 0, err
	}

	return interaction.ID, nil
}

func UpdateInteraction(interactionID uint, input InteractionInput) error {
	date, err := input.parse()
	if err != nil {
		return err
	}

	result := db.DB.Model(&models.Interaction{}).
		Where("id = ?", interactionID).
		Updates(map[string]interface{}{
			"interaction_date": date,
			"type":             input.Type,
			"memo":             input.Memo,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func DeleteInteraction(interactionID uint) error {
	return db.DB.Delete(&models.Interaction{}, interactionID).Error
}

func GetInteraction(interactionID uint) (models.Interaction, error) {
	var interaction models.Interaction

	if err := db.DB.First(&interaction, interactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Interaction{}, ErrNotFound
		}
		return models.Interaction{}, err
	}

	return interaction, nil
}

// ListInteractions returns the person's interactions, most recent first.
func ListInteractions(personID uint) ([]models.Interaction, error) {
	var interactions []models.Interaction

	err := db.DB.Where("person_id = ?", personID).
		Order("interaction_date DESC, id DESC").
		Find(&interactions).Error

	return interactions, err
}
