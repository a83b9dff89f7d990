package contacts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PersonPatch carries the caller-supplied person fields. The struct is the
// mass-assignment whitelist: owner and id have no field here, so no update
// can ever touch them. Nil means "leave unchanged"; an empty birthday,
// priority or contact cycle clears the column.
type PersonPatch struct {
	FirstName       *string   `json:"first_name"`
	LastName        *string   `json:"last_name"`
	Email1          *string   `json:"email1"`
	Email2          *string   `json:"email2"`
	Phone1          *string   `json:"phone1"`
	Phone2          *string   `json:"phone2"`
	Company         *string   `json:"company"`
	Position        *string   `json:"position"`
	LinkedInProfile *string   `json:"linkedin_profile"`
	Website         *string   `json:"website"`
	Birthday        *string   `json:"birthday"` // YYYY-MM-DD
	Status          *string   `json:"status"`
	Priority        *string   `json:"priority"`
	ContactCycle    *string   `json:"contact_cycle"`
	Notes           *string   `json:"notes"`
	Circles         *[]string `json:"circles"`
}

const dateLayout = "2006-01-02"

// updates converts the patch into a column map, normalizing empty
// birthday/priority/cycle to NULL the way the storage schema expects.
func (p *PersonPatch) updates() (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}

	setString("first_name", p.FirstName)
	setString("last_name", p.LastName)
	setString("email1", p.Email1)
	setString("email2", p.Email2)
	setString("phone1", p.Phone1)
	setString("phone2", p.Phone2)
	setString("company", p.Company)
	setString("position", p.Position)
	setString("linkedin_profile", p.LinkedInProfile)
	setString("website", p.Website)
	setString("notes", p.Notes)

	if p.Birthday != nil {
		if *p.Birthday == "" {
			updates["birthday"] = nil
		} else {
			parsed, err := time.Parse(dateLayout, *p.Birthday)
			if err != nil {
				return nil, validationErr("Birthday must be formatted as YYYY-MM-DD")
			}
			updates["birthday"] = datatypes.Date(parsed)
		}
	}

	if p.Status != nil {
		if !models.ValidPersonStatus(*p.Status) {
			return nil, validationErr(fmt.Sprintf("Invalid status %q", *p.Status))
		}
		updates["status"] = *p.Status
	}

	if p.Priority != nil {
		if *p.Priority == "" {
			updates["priority"] = nil
		} else if !models.ValidPriority(*p.Priority) {
			return nil, validationErr(fmt.Sprintf("Invalid priority %q", *p.Priority))
		} else {
			updates["priority"] = *p.Priority
		}
	}

	if p.ContactCycle != nil {
		if *p.ContactCycle == "" {
			updates["contact_cycle"] = nil
		} else if !models.ValidContactCycle(*p.ContactCycle) {
			return nil, validationErr(fmt.Sprintf("Invalid contact cycle %q", *p.ContactCycle))
		} else {
			updates["contact_cycle"] = *p.ContactCycle
		}
	}

	if p.Circles != nil {
		updates["circles"] = JoinCircles(*p.Circles)
	}

	return updates, nil
}

// CreatePerson inserts a new person owned by userID and returns its id.
func CreatePerson(userID uint, patch PersonPatch) (uint, error) {
	if patch.LastName == nil || strings.TrimSpace(*patch.LastName) == "" {
		return 0, validationErr("Last name is required")
	}

	updates, err := patch.updates()
	if err != nil {
		return 0, err
	}

	person := models.Person{
		UserID: userID,
		Status: models.PersonStatusNew,
	}

	if err := applyToPerson(&person, updates); err != nil {
		return 0, err
	}

	if err := db.DB.Create(&person).Error; err != nil {
		return 0, err
	}

	return person.ID, nil
}

// UpdatePerson applies the whitelist-filtered patch. A patch with no set
// fields is a no-op success, not an error. Callers authorize ownership
// before getting here; the repository never re-derives identity.
func UpdatePerson(personID uint, patch PersonPatch) error {
	if patch.LastName != nil && strings.TrimSpace(*patch.LastName) == "" {
		return validationErr("Last name is required")
	}

	updates, err := patch.updates()
	if err != nil {
		return err
	}

	if len(updates) == 0 {
		return nil
	}

	return db.DB.Model(&models.Person{}).Where("id = ?", personID).Updates(updates).Error
}

func GetPerson(personID uint) (models.Person, error) {
	var person models.Person

	if err := db.DB.First(&person, personID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Person{}, ErrNotFound
		}
		return models.Person{}, err
	}

	return person, nil
}

// ListPersonsForUser returns all of a user's persons ordered by name.
func ListPersonsForUser(userID uint) ([]models.Person, error) {
	var persons []models.Person

	err := db.DB.Where("user_id = ?", userID).
		Order("last_name, first_name").
		Find(&persons).Error

	return persons, err
}

// DeletePerson removes the person and all of its interactions in one
// transaction: either both are gone or neither is.
func DeletePerson(personID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person_id = ?", personID).Delete(&models.Interaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Person{}, personID).Error
	})
}

// PersonWithLastInteraction is a person row joined with the date of its
// most recent interaction.
type PersonWithLastInteraction struct {
	models.Person
	LastInteraction NullDate `gorm:"column:last_interaction"`
}

// Sort fields a caller may request on the person list. Anything else
// silently falls back to last_name; the caller-supplied string never
// reaches the query builder uninterpreted.
var allowedSortFields = map[string]string{
	"first_name":       "persons.first_name",
	"last_name":        "persons.last_name",
	"company":          "persons.company",
	"position":         "persons.position",
	"birthday":         "persons.birthday",
	"status":           "persons.status",
	"priority":         "persons.priority",
	"contact_cycle":    "persons.contact_cycle",
	"last_interaction": "last_interaction",
}

// ListPersonsWithLastInteraction returns the user's persons plus the most
// recent interaction date per person, sorted by a validated field.
func ListPersonsWithLastInteraction(userID uint, sortField string, sortDir string) ([]PersonWithLastInteraction, error) {
	column, ok := allowedSortFields[strings.ToLower(sortField)]
	if !ok {
		column = "persons.last_name"
	}

	dir := "ASC"
	if strings.EqualFold(sortDir, "DESC") {
		dir = "DESC"
	}

	var rows []PersonWithLastInteraction

	err := db.DB.Model(&models.Person{}).
		Select("persons.*, MAX(interactions.interaction_date) AS last_interaction").
		Joins("LEFT JOIN interactions ON interactions.person_id = persons.id AND interactions.deleted_at IS NULL").
		Where("persons.user_id = ?", userID).
		Group("persons.id").
		Order(column + " " + dir).
		Find(&rows).Error

	return rows, err
}

func applyToPerson(person *models.Person, updates map[string]interface{}) error {
	for column, value := range updates {
		switch column {
		case "first_name":
			person.FirstName = value.(string)
		case "last_name":
			person.LastName = value.(string)
		case "email1":
			person.Email1 = value.(string)
		case "email2":
			person.Email2 = value.(string)
		case "phone1":
			person.Phone1 = value.(string)
		case "phone2":
			person.Phone2 = value.(string)
		case "company":
			person.Company = value.(string)
		case "position":
			person.Position = value.(string)
		case "linkedin_profile":
			person.LinkedInProfile = value.(string)
		case "website":
			person.Website = value.(string)
		case "notes":
			person.Notes = value.(string)
		case "circles":
			person.Circles = value.(string)
		case "status":
			person.Status = value.(string)
		case "birthday":
			if value == nil {
				person.Birthday = nil
			} else {
				date := value.(datatypes.Date)
				person.Birthday = &date
			}
		case "priority":
			if value == nil {
				person.Priority = nil
			} else {
				priority := value.(string)
				person.Priority = &priority
			}
		case "contact_cycle":
			if value == nil {
				person.ContactCycle = nil
			} else {
				cycle := value.(string)
				person.ContactCycle = &cycle
			}
		default:
			return fmt.Errorf("unexpected person column %q", column)
		}
	}
	return nil
}
