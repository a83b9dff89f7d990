package contacts

import (
	"errors"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
	"gorm.io/gorm"
)

// AuthorizeOwner loads the person's owner and compares it against userID.
// Ownership is strictly per user: an admin role does not widen access to
// another user's contacts.
func AuthorizeOwner(userID uint, personID uint) error {
	var person models.Person

	if err := db.DB.Select("id", "user_id").First(&person, personID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if person.UserID != userID {
		return ErrForbidden
	}

	return nil
}

// AuthorizeInteractionOwner resolves the interaction's parent person and
// authorizes via its owner. The interaction's own recording user is never
// consulted.
func AuthorizeInteractionOwner(userID uint, interactionID uint) (models.Interaction, error) {
	var interaction models.Interaction

	if err := db.DB.First(&interaction, interactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Interaction{}, ErrNotFound
		}
		return models.Interaction{}, err
	}

	if err := AuthorizeOwner(userID, interaction.PersonID); err != nil {
		return models.Interaction{}, err
	}

	return interaction, nil
}
