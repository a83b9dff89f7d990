package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/solutor-dev/personalcrm/internal/ai"
	"github.com/solutor-dev/personalcrm/internal/contacts"
	"github.com/solutor-dev/personalcrm/internal/utils"
)

type ConverseRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// DraftOutreach asks the AI bridge for an outreach message built from the
// contact's profile and interaction history.
func DraftOutreach(ctx *gin.Context) {
	userID, personID, bridge, ok := prepareAIRequest(ctx)
	if !ok {
		return
	}

	reply, err := bridge.DraftOutreach(ctx.Request.Context(), userID, personID)

	if err != nil {
		respondAIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"reply": reply})
}

func Converse(ctx *gin.Context) {
	userID, personID, bridge, ok := prepareAIRequest(ctx)
	if !ok {
		return
	}

	var req ConverseRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	reply, err := bridge.Converse(ctx.Request.Context(), userID, personID, req.Prompt)

	if err != nil {
		respondAIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"reply": reply})
}

// ResetConversation drops the stored resume token so the next exchange
// starts a fresh provider-side dialogue.
func ResetConversation(ctx *gin.Context) {
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

	if err := ai.ResetConversation(personID); err != nil {
		log.Printf("Failed to reset conversation for person %d: %v", personID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// prepareAIRequest bundles the shared preamble of the AI endpoints:
// principal, person id, ownership and bridge construction.
func prepareAIRequest(ctx *gin.Context) (uint, uint, *ai.Bridge, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, 0, nil, false
	}

	personID, ok := parseIDParam(ctx, "person_id")
	if !ok {
		return 0, 0, nil, false
	}

	if err := contacts.AuthorizeOwner(userID, personID); err != nil {
		respondContactsError(ctx, err)
		return 0, 0, nil, false
	}

	bridge, err := ai.NewBridge()

	if err != nil {
		respondAIError(ctx, err)
		return 0, 0, nil, false
	}

	return userID, personID, bridge, true
}

// respondAIError maps the bridge's failure taxonomy onto the HTTP
// surface. Provider detail is passed along for retry decisions; raw
// payloads never are.
func respondAIError(ctx *gin.Context, err error) {
	var networkErr *ai.NetworkError
	var providerErr *ai.ProviderError
	var shapeErr *ai.UnexpectedResponseError

	switch {
	case errors.Is(err, ai.ErrMissingAPIKey):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service is not configured"})
	case errors.As(err, &networkErr):
		log.Printf("AI network error: %v", networkErr)
		ctx.JSON(http.StatusGatewayTimeout, gin.H{"error": "AI service is unreachable"})
	case errors.As(err, &providerErr):
		log.Printf("AI provider error: %v", providerErr)
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error": fmt.Sprintf("AI provider rejected the request (HTTP %d): %s", providerErr.StatusCode, providerErr.Message),
		})
	case errors.As(err, &shapeErr):
		log.Printf("AI response shape error: %v", shapeErr)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "AI provider returned an unexpected response"})
	default:
		respondContactsError(ctx, err)
	}
}
