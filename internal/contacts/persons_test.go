package contacts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePersonRequiresLastName(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")

	_, err := CreatePerson(user.ID, PersonPatch{FirstName: strPtr("No")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = CreatePerson(user.ID, PersonPatch{LastName: strPtr("   ")})
	require.ErrorAs(t, err, &verr)
}

func TestCreateAndGetPerson(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")

	id, err := CreatePerson(user.ID, PersonPatch{
		FirstName:    strPtr("Grace"),
		LastName:     strPtr("  Hopper "),
		Company:      strPtr("Navy"),
		Birthday:     strPtr("1906-12-09"),
		Priority:     strPtr(models.PriorityTop10),
		ContactCycle: strPtr(models.CycleMonthly),
		Circles:      &[]string{"Mentors", "Navy"},
	})
	require.NoError(t, err)

	person, err := GetPerson(id)
	require.NoError(t, err)

	assert.Equal(t, user.ID, person.UserID)
	assert.Equal(t, "Grace", person.FirstName)
	assert.Equal(t, "Hopper", person.LastName)
	assert.Equal(t, models.PersonStatusNew, person.Status)
	require.NotNil(t, person.Priority)
	assert.Equal(t, models.PriorityTop10, *person.Priority)
	require.NotNil(t, person.ContactCycle)
	assert.Equal(t, models.CycleMonthly, *person.ContactCycle)
	assert.Equal(t, []string{"Mentors", "Navy"}, SplitCircles(person.Circles))
	require.NotNil(t, person.Birthday)
	assert.Equal(t, 1906, time.Time(*person.Birthday).Year())
}

func TestCreatePersonRejectsInvalidValues(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")

	var verr *ValidationError

	_, err := CreatePerson(user.ID, PersonPatch{
		LastName: strPtr("Hopper"),
		Birthday: strPtr("09.12.1906"),
	})
	require.ErrorAs(t, err, &verr)

	_, err = CreatePerson(user.ID, PersonPatch{
		LastName: strPtr("Hopper"),
		Priority: strPtr("TOP9000"),
	})
	require.ErrorAs(t, err, &verr)

	_, err = CreatePerson(user.ID, PersonPatch{
		LastName:     strPtr("Hopper"),
		ContactCycle: strPtr("FORTNIGHTLY"),
	})
	require.ErrorAs(t, err, &verr)
}

func TestUpdatePersonAppliesPatch(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")

	id, err := CreatePerson(user.ID, PersonPatch{
		LastName: strPtr("Hopper"),
		Priority: strPtr(models.PriorityTop10),
		Notes:    strPtr("met at conference"),
	})
	require.NoError(t, err)

	// Untouched fields stay; an empty priority clears the column.
	err = UpdatePerson(id, PersonPatch{
		Notes:    strPtr("now a close contact"),
		Priority: strPtr(""),
	})
	require.NoError(t, err)

	person, err := GetPerson(id)
	require.NoError(t, err)
	assert.Equal(t, "Hopper", person.LastName)
	assert.Equal(t, "now a close contact", person.Notes)
	assert.Nil(t, person.Priority)
}

func TestUpdatePersonEmptyPatchIsNoOp(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	person := createTestPerson(t, user.ID, "Hopper")

	require.NoError(t, UpdatePerson(person.ID, PersonPatch{}))

	reloaded, err := GetPerson(person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hopper", reloaded.LastName)
}

func TestUpdatePersonIgnoresOwnerInPayload(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	person := createTestPerson(t, user.ID, "Hopper")

	// Owner and id fields in the request body fall outside the patch
	// struct and must never reach the row.
	var patch PersonPatch
	payload := []byte(`{"id": 4242, "user_id": 9999, "notes": "smuggled"}`)
	require.NoError(t, json.Unmarshal(payload, &patch))

	require.NoError(t, UpdatePerson(person.ID, patch))

	reloaded, err := GetPerson(person.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, reloaded.UserID)
	assert.Equal(t, person.ID, reloaded.ID)
	assert.Equal(t, "smuggled", reloaded.Notes)
}

func TestDeletePersonRemovesInteractions(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	person := createTestPerson(t, user.ID, "Hopper")

	for _, date := range []string{"2025-03-01", "2025-05-10"} {
		_, err := AddInteraction(person.ID, user.ID, InteractionInput{
			Date: date,
			Type: models.InteractionCall,
		})
		require.NoError(t, err)
	}

	require.NoError(t, DeletePerson(person.ID))

	_, err := GetPerson(person.ID)
	require.ErrorIs(t, err, ErrNotFound)

	interactions, err := ListInteractions(person.ID)
	require.NoError(t, err)
	assert.Empty(t, interactions)
}

func TestListPersonsWithLastInteraction(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	other := createTestUser(t, "bob")

	contacted := createTestPerson(t, user.ID, "Adams")
	createTestPerson(t, user.ID, "Zuse")
	createTestPerson(t, other.ID, "Borrowed")

	for _, date := range []string{"2025-03-01", "2025-05-10"} {
		_, err := AddInteraction(contacted.ID, user.ID, InteractionInput{
			Date: date,
			Type: models.InteractionMeeting,
		})
		require.NoError(t, err)
	}

	rows, err := ListPersonsWithLastInteraction(user.ID, "last_name", "asc")
	require.NoError(t, err)
	require.Len(t, rows, 2, "other users' persons excluded")

	assert.Equal(t, "Adams", rows[0].LastName)
	require.True(t, rows[0].LastInteraction.Valid)
	assert.Equal(t, "2025-05-10", rows[0].LastInteraction.Time.Format("2006-01-02"))

	assert.Equal(t, "Zuse", rows[1].LastName)
	assert.False(t, rows[1].LastInteraction.Valid)
}

func TestListPersonsSortFallback(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")

	createTestPerson(t, user.ID, "Zuse")
	createTestPerson(t, user.ID, "Adams")

	// A sort field outside the whitelist falls back to last name.
	rows, err := ListPersonsWithLastInteraction(user.ID, "persons.id; DROP TABLE persons", "asc")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Adams", rows[0].LastName)
	assert.Equal(t, "Zuse", rows[1].LastName)

	var count int64
	require.NoError(t, db.DB.Model(&models.Person{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestListPersonsSortByLastInteraction(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")

	old := createTestPerson(t, user.ID, "Adams")
	recent := createTestPerson(t, user.ID, "Zuse")

	_, err := AddInteraction(old.ID, user.ID, InteractionInput{Date: "2024-01-15", Type: models.InteractionEmail})
	require.NoError(t, err)
	_, err = AddInteraction(recent.ID, user.ID, InteractionInput{Date: "2025-06-01", Type: models.InteractionEmail})
	require.NoError(t, err)

	rows, err := ListPersonsWithLastInteraction(user.ID, "last_interaction", "desc")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, recent.ID, rows[0].ID)
	assert.Equal(t, old.ID, rows[1].ID)
}
