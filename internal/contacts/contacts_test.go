package contacts

import (
	"testing"

	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
	"github.com/stretchr/testify/require"
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

func createTestUser(t *testing.T, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		PasswordHash: "irrelevant",
		Role:         models.RoleUser,
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func createTestPerson(t *testing.T, userID uint, lastName string) models.Person {
	t.Helper()

	person := models.Person{
		UserID:   userID,
		LastName: lastName,
		Status:   models.PersonStatusNew,
	}
	require.NoError(t, db.DB.Create(&person).Error)
	return person
}

func strPtr(s string) *string { return &s }
