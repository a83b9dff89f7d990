package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solutor-dev/personalcrm/internal/contacts"
	"github.com/solutor-dev/personalcrm/internal/staleness"
	"github.com/solutor-dev/personalcrm/internal/utils"
)

// SavePersonRequest covers both create and update: a missing or zero
// person_id creates, anything else updates. The embedded patch is the
// field whitelist; owner and id cannot be smuggled through it.
type SavePersonRequest struct {
	PersonID *uint `json:"person_id"`
	contacts.PersonPatch
}

type PersonSummary struct {
	ID              uint                     `json:"id"`
	FirstName       string                   `json:"first_name"`
	LastName        string                   `json:"last_name"`
	Company         string                   `json:"company"`
	Position        string                   `json:"position"`
	Status          string                   `json:"status"`
	Priority        *string                  `json:"priority"`
	ContactCycle    *string                  `json:"contact_cycle"`
	Circles         []string                 `json:"circles"`
	LastInteraction *string                  `json:"last_interaction"`
	ContactStatus   staleness.Classification `json:"contact_status"`
}

type PersonDetail struct {
	ID              uint     `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email1          string   `json:"email1"`
	Email2          string   `json:"email2"`
	Phone1          string   `json:"phone1"`
	Phone2          string   `json:"phone2"`
	Company         string   `json:"company"`
	Position        string   `json:"position"`
	LinkedInProfile string   `json:"linkedin_profile"`
	Website         string   `json:"website"`
	Birthday        *string  `json:"birthday"`
	Status          string   `json:"status"`
	Priority        *string  `json:"priority"`
	ContactCycle    *string  `json:"contact_cycle"`
	Notes           string   `json:"notes"`
	Circles         []string `json:"circles"`
	HasConversation bool     `json:"has_conversation"`
}

const dateLayout = "2006-01-02"

// ListPersons returns the caller's contacts with last-interaction date
// and the staleness traffic light, sorted by a validated field.
func ListPersons(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sortField := ctx.DefaultQuery("sort", "last_name")
	sortDir := ctx.DefaultQuery("dir", "ASC")

	rows, err := contacts.ListPersonsWithLastInteraction(userID, sortField, sortDir)

	if err != nil {
		log.Printf("Failed to list persons for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contacts"})
		return
	}

	today := time.Now()
	response := make([]PersonSummary, 0, len(rows))

	for _, row := range rows {
		var lastInteraction *string
		var lastInteractionTime *time.Time

		if row.LastInteraction.Valid {
			t := row.LastInteraction.Time
			formatted := t.Format(dateLayout)
			lastInteraction = &formatted
			lastInteractionTime = &t
		}

		cycle := ""
		if row.ContactCycle != nil {
			cycle = *row.ContactCycle
		}

		response = append(response, PersonSummary{
			ID:              row.ID,
			FirstName:       row.FirstName,
			LastName:        row.LastName,
			Company:         row.Company,
			Position:        row.Position,
			Status:          row.Status,
			Priority:        row.Priority,
			ContactCycle:    row.ContactCycle,
			Circles:         contacts.SplitCircles(row.Circles),
			LastInteraction: lastInteraction,
			ContactStatus:   staleness.Classify(lastInteractionTime, cycle, today),
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func GetPerson(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	personID, ok := parseIDParam(ctx, "person_id")
	if !ok {
		return
	}

	if err := contacts.AuthorizeOwner(userID, personID); err != nil {
		respondContactsError(ctx, err)
		return
	}

	person, err := contacts.GetPerson(personID)

	if err != nil {
		respondContactsError(ctx, err)
		return
	}

	var birthday *string
	if person.Birthday != nil {
		formatted := time.Time(*person.Birthday).Format(dateLayout)
		birthday = &formatted
	}

	ctx.JSON(http.StatusOK, PersonDetail{
		ID:              person.ID,
		FirstName:       person.FirstName,
		LastName:        person.LastName,
		Email1:          person.Email1,
		Email2:          person.Email2,
		Phone1:          person.Phone1,
		Phone2:          person.Phone2,
		Company:         person.Company,
		Position:        person.Position,
		LinkedInProfile: person.LinkedInProfile,
		Website:         person.Website,
		Birthday:        birthday,
		Status:          person.Status,
		Priority:        person.Priority,
		ContactCycle:    person.ContactCycle,
		Notes:           person.Notes,
		Circles:         contacts.SplitCircles(person.Circles),
		HasConversation: person.OpenAIResponseID != nil,
	})
}

func SavePerson(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SavePersonRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.PersonID == nil || *req.PersonID == 0 {
		personID, err := contacts.CreatePerson(userID, req.PersonPatch)

		if err != nil {
			respondContactsError(ctx, err)
			return
		}

		ctx.JSON(http.StatusCreated, gin.H{"id": personID})
		return
	}

	if err := contacts.AuthorizeOwner(userID, *req.PersonID); err != nil {
		respondContactsError(ctx, err)
		return
	}

	if err := contacts.UpdatePerson(*req.PersonID, req.PersonPatch); err != nil {
		respondContactsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": *req.PersonID})
}

// DeletePerson removes the contact and its whole interaction history in
// one transaction.
func DeletePerson(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	personID, ok := parseIDParam(ctx, "person_id")
	if !ok {
		return
	}

	if err := contacts.AuthorizeOwner(userID, personID); err != nil {
		respondContactsError(ctx, err)
		return
	}

	if err := contacts.DeletePerson(personID); err != nil {
		log.Printf("Failed to delete person %d: %v", personID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListCircles(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	circles, err := contacts.UniqueCircles(userID)

	if err != nil {
		log.Printf("Failed to list circles for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve circles"})
		return
	}

	ctx.JSON(http.StatusOK, circles)
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}

	return uint(id), true
}

// respondContactsError maps repository errors onto the HTTP surface.
// Validation messages pass through; storage faults are logged and stay
// opaque to the caller.
func respondContactsError(ctx *gin.Context, err error) {
	var validationErr *contacts.ValidationError

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, contacts.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, contacts.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this contact"})
	default:
		log.Printf("Storage error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
