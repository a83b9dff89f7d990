package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// A fresh :memory: database per connection; keep the pool at one.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Person{}, &models.Interaction{}))
	db.DB = gdb
}

// stubProvider records every request and answers with a scripted response
// id and fixed token usage.
type stubProvider struct {
	mu       sync.Mutex
	requests []Request
	nextID   string
}

func (s *stubProvider) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request Request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, request)
		id := s.nextID
		s.mu.Unlock()

		response := Response{
			ID: id,
			Output: []OutputItem{
				{Type: "message", Content: []ContentItem{{Type: "output_text", Text: "stub reply"}}},
			},
			Usage: Usage{InputTokens: 10, OutputTokens: 20},
		}
		json.NewEncoder(w).Encode(response)
	}
}

func (s *stubProvider) request(t *testing.T, i int) Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Greater(t, len(s.requests), i)
	return s.requests[i]
}

func newTestBridge(t *testing.T, stub *stubProvider) *Bridge {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)
	return &Bridge{Client: NewClient("test-key", "test-model", server.URL)}
}

func TestConverseStoresResumeTokenOnce(t *testing.T) {
	setupTestDB(t)

	user := models.User{Username: "alice", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.DB.Create(&user).Error)
	person := models.Person{UserID: user.ID, LastName: "Hopper", Status: models.PersonStatusNew}
	require.NoError(t, db.DB.Create(&person).Error)

	stub := &stubProvider{nextID: "resp_1"}
	bridge := newTestBridge(t, stub)

	reply, err := bridge.Converse(context.Background(), user.ID, person.ID, "who is this?")
	require.NoError(t, err)
	assert.Equal(t, "stub reply", reply)

	first := stub.request(t, 0)
	assert.Empty(t, first.PreviousResponseID)
	assert.Equal(t, defaultInstructions, first.Instructions, "no persona configured")
	require.Len(t, first.Input, 1)
	assert.Equal(t, "who is this?", first.Input[0].Content)

	require.NoError(t, db.DB.First(&person, person.ID).Error)
	require.NotNil(t, person.OpenAIResponseID)
	assert.Equal(t, "resp_1", *person.OpenAIResponseID)

	// The second exchange resumes via the token and must not overwrite it.
	stub.nextID = "resp_2"
	_, err = bridge.Converse(context.Background(), user.ID, person.ID, "and then?")
	require.NoError(t, err)

	second := stub.request(t, 1)
	assert.Equal(t, "resp_1", second.PreviousResponseID)
	assert.Empty(t, second.Instructions, "resumed conversations carry no instructions")

	require.NoError(t, db.DB.First(&person, person.ID).Error)
	require.NotNil(t, person.OpenAIResponseID)
	assert.Equal(t, "resp_1", *person.OpenAIResponseID)

	require.NoError(t, db.DB.First(&user, user.ID).Error)
	assert.EqualValues(t, 20, user.TokensSent)
	assert.EqualValues(t, 40, user.TokensGenerated)
	assert.InDelta(t, 2*(10*0.05+20*0.40)/1e6, user.TokensCost, 1e-12)
}

func TestConverseUsesPersonaForFreshConversation(t *testing.T) {
	setupTestDB(t)

	user := models.User{Username: "alice", PasswordHash: "x", Role: models.RoleUser, Persona: "Answer like a pirate."}
	require.NoError(t, db.DB.Create(&user).Error)
	person := models.Person{UserID: user.ID, LastName: "Hopper", Status: models.PersonStatusNew}
	require.NoError(t, db.DB.Create(&person).Error)

	stub := &stubProvider{nextID: "resp_1"}
	bridge := newTestBridge(t, stub)

	_, err := bridge.Converse(context.Background(), user.ID, person.ID, "ahoy")
	require.NoError(t, err)

	assert.Equal(t, "Answer like a pirate.", stub.request(t, 0).Instructions)
}

func TestResetConversation(t *testing.T) {
	setupTestDB(t)

	user := models.User{Username: "alice", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.DB.Create(&user).Error)
	token := "resp_old"
	person := models.Person{UserID: user.ID, LastName: "Hopper", Status: models.PersonStatusNew, OpenAIResponseID: &token}
	require.NoError(t, db.DB.Create(&person).Error)

	require.NoError(t, ResetConversation(person.ID))

	require.NoError(t, db.DB.First(&person, person.ID).Error)
	assert.Nil(t, person.OpenAIResponseID)

	// The next exchange starts fresh and stores the new token.
	stub := &stubProvider{nextID: "resp_new"}
	bridge := newTestBridge(t, stub)

	_, err := bridge.Converse(context.Background(), user.ID, person.ID, "again")
	require.NoError(t, err)

	assert.Empty(t, stub.request(t, 0).PreviousResponseID)
	require.NoError(t, db.DB.First(&person, person.ID).Error)
	require.NotNil(t, person.OpenAIResponseID)
	assert.Equal(t, "resp_new", *person.OpenAIResponseID)
}

func TestBuildOutreachPrompt(t *testing.T) {
	t.Parallel()

	priority := models.PriorityTop25
	person := models.Person{
		FirstName: "Grace",
		LastName:  "Hopper",
		Company:   "Navy",
		Notes:     "loves compilers",
		Priority:  &priority,
	}

	interactions := []models.Interaction{
		{InteractionDate: testDate(2025, 5, 10), Type: models.InteractionCall, Memo: "spoke about debugging"},
		{InteractionDate: testDate(2025, 3, 1), Type: models.InteractionEmail},
	}

	prompt := buildOutreachPrompt(person, interactions)

	assert.Contains(t, prompt, "Name: Grace Hopper")
	assert.Contains(t, prompt, "Company: Navy")
	assert.Contains(t, prompt, "Notes: loves compilers")
	assert.Contains(t, prompt, "Priority: TOP25")
	assert.NotContains(t, prompt, "Position:", "empty fields are omitted")

	assert.Contains(t, prompt, "- Date: 2025-05-10, Type: CALL, Memo: spoke about debugging")
	assert.Contains(t, prompt, "- Date: 2025-03-01, Type: EMAIL\n")
	assert.Less(t,
		strings.Index(prompt, "2025-05-10"),
		strings.Index(prompt, "2025-03-01"),
		"history is rendered newest first")
}

func TestBuildOutreachPromptFirstContact(t *testing.T) {
	t.Parallel()

	prompt := buildOutreachPrompt(models.Person{LastName: "Hopper"}, nil)
	assert.Contains(t, prompt, "This is the first contact.")
}

func testDate(year int, month int, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}
