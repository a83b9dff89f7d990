package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solutor-dev/personalcrm/internal/contacts"
	"github.com/solutor-dev/personalcrm/internal/utils"
)

type InteractionResponse struct {
	ID              uint   `json:"id"`
	PersonID        uint   `json:"person_id"`
	InteractionDate string `json:"interaction_date"`
	Type            string `json:"interaction_type"`
	Memo            string `json:"memo"`
}

// ListInteractions returns a person's interactions, most recent first.
// Read access follows the same ownership rule as mutations.
func ListInteractions(ctx *gin.Context) {
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

	interactions, err := contacts.ListInteractions(personID)

	if err != nil {
		respondContactsError(ctx, err)
		return
	}

	response := make([]InteractionResponse, 0, len(interactions))

	for _, interaction := range interactions {
		response = append(response, InteractionResponse{
			ID:              interaction.ID,
			PersonID:        interaction.PersonID,
			InteractionDate: time.Time(interaction.InteractionDate).Format(dateLayout),
			Type:            interaction.Type,
			Memo:            interaction.Memo,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func AddInteraction(ctx *gin.Context) {
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

	var input contacts.InteractionInput

	if err := ctx.BindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	interactionID, err := contacts.AddInteraction(personID, userID, input)

	if err != nil {
		respondContactsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"id": interactionID})
}

// UpdateInteraction authorizes through the parent person's owner, never
// through the interaction's recording user.
func UpdateInteraction(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	interactionID, ok := parseIDParam(ctx, "interaction_id")
	if !ok {
		return
	}

	if _, err := contacts.AuthorizeInteractionOwner(userID, interactionID); err != nil {
		respondContactsError(ctx, err)
		return
	}

	var input contacts.InteractionInput

	if err := ctx.BindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := contacts.UpdateInteraction(interactionID, input); err != nil {
		respondContactsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": interactionID})
}

func DeleteInteraction(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	interactionID, ok := parseIDParam(ctx, "interaction_id")
	if !ok {
		return
	}

	if _, err := contacts.AuthorizeInteractionOwner(userID, interactionID); err != nil {
		respondContactsError(ctx, err)
		return
	}

	if err := contacts.DeleteInteraction(interactionID); err != nil {
		respondContactsError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
