package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/contacts"
	"github.com/solutor-dev/personalcrm/internal/models"
	"gorm.io/gorm"
)

// defaultInstructions is used when the caller has no persona configured.
const defaultInstructions = "Reply directly, in a friendly tone, and keep it concise."

const outreachHeader = "Write an outreach email without a subject line or follow-up questions. Consider the characteristics of the following recipient:\n"

// Published per-million-token prices for the default model; the cost
// accumulator on the user record is an estimate.
const (
	costPerMillionInput  = 0.05
	costPerMillionOutput = 0.40
)

// Bridge glues a person's stored conversation state to the provider.
type Bridge struct {
	Client *Client
}

func NewBridge() (*Bridge, error) {
	client, err := NewClientFromEnv()
	if err != nil {
		return nil, err
	}
	return &Bridge{Client: client}, nil
}

// Converse sends the caller's prompt about a person, resuming the stored
// conversation when a token exists.
func (b *Bridge) Converse(ctx context.Context, userID uint, personID uint, prompt string) (string, error) {
	person, err := contacts.GetPerson(personID)
	if err != nil {
		return "", err
	}

	return b.exchange(ctx, userID, person, prompt)
}

// DraftOutreach composes the outreach prompt from the person's profile and
// interaction history and runs one exchange.
func (b *Bridge) DraftOutreach(ctx context.Context, userID uint, personID uint) (string, error) {
	person, err := contacts.GetPerson(personID)
	if err != nil {
		return "", err
	}

	interactions, err := contacts.ListInteractions(personID)
	if err != nil {
		return "", err
	}

	return b.exchange(ctx, userID, person, buildOutreachPrompt(person, interactions))
}

// ResetConversation clears the stored resume token; the next exchange
// starts a fresh dialogue.
func ResetConversation(personID uint) error {
	return db.DB.Model(&models.Person{}).
		Where("id = ?", personID).
		Update("openai_response_id", nil).Error
}

// exchange performs one provider round trip: a stored resume token
// continues the dialogue, otherwise the caller's persona (or the default)
// initiates it, never both. On success the new response id is persisted
// write-once and the caller's usage counters are bumped.
func (b *Bridge) exchange(ctx context.Context, userID uint, person models.Person, prompt string) (string, error) {
	request := Request{
		Model: b.Client.Model(),
		Input: []Message{{Role: "user", Content: prompt}},
	}

	if person.OpenAIResponseID != nil && *person.OpenAIResponseID != "" {
		request.PreviousResponseID = *person.OpenAIResponseID
	} else {
		var user models.User
		if err := db.DB.First(&user, userID).Error; err != nil {
			return "", fmt.Errorf("failed to load user %d: %w", userID, err)
		}
		request.Instructions = user.Persona
		if strings.TrimSpace(request.Instructions) == "" {
			request.Instructions = defaultInstructions
		}
	}

	response, err := b.Client.CreateResponse(ctx, request)
	if err != nil {
		return "", err
	}

	text, err := FirstMessageText(response)
	if err != nil {
		return "", err
	}

	if response.ID != "" {
		// Conditional update keeps the write-once guarantee even under
		// concurrent exchanges for the same person.
		err := db.DB.Model(&models.Person{}).
			Where("id = ? AND openai_response_id IS NULL", person.ID).
			Update("openai_response_id", response.ID).Error
		if err != nil {
			return "", err
		}
	}

	if err := accumulateUsage(userID, response.Usage); err != nil {
		return "", err
	}

	return text, nil
}

func accumulateUsage(userID uint, usage Usage) error {
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return nil
	}

	cost := float64(usage.InputTokens)*costPerMillionInput/1e6 +
		float64(usage.OutputTokens)*costPerMillionOutput/1e6

	return db.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"tokens_sent":      gorm.Expr("tokens_sent + ?", usage.InputTokens),
			"tokens_generated": gorm.Expr("tokens_generated + ?", usage.OutputTokens),
			"tokens_cost":      gorm.Expr("tokens_cost + ?", cost),
		}).Error
}

// buildOutreachPrompt renders the allowlisted person fields (empty ones
// omitted) followed by the full interaction history. The history appears
// in the order the repository returns it: newest first.
func buildOutreachPrompt(person models.Person, interactions []models.Interaction) string {
	var sb strings.Builder
	sb.WriteString(outreachHeader)

	name := strings.TrimSpace(person.FirstName + " " + person.LastName)
	writeField(&sb, "Name", name)
	writeField(&sb, "Position", person.Position)
	writeField(&sb, "Company", person.Company)
	writeField(&sb, "Notes", person.Notes)
	if person.Priority != nil {
		writeField(&sb, "Priority", *person.Priority)
	}

	sb.WriteString("\nConsider the communication history with dates:\n")

	if len(interactions) == 0 {
		sb.WriteString("There is no communication history yet. This is the first contact.\n")
		return sb.String()
	}

	for _, interaction := range interactions {
		date := time.Time(interaction.InteractionDate).Format("2006-01-02")
		line := fmt.Sprintf("- Date: %s, Type: %s", date, interaction.Type)
		if interaction.Memo != "" {
			line += ", Memo: " + interaction.Memo
		}
		sb.WriteString(line + "\n")
	}

	return sb.String()
}

func writeField(sb *strings.Builder, label string, value string) {
	if value != "" {
		fmt.Fprintf(sb, "%s: %s\n", label, value)
	}
}
