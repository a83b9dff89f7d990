package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/auth"
	"github.com/solutor-dev/personalcrm/internal/middleware"
	"github.com/solutor-dev/personalcrm/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest wires a fresh in-memory database and a router with the routes
// under test. The failed-login pause is zeroed so lockout tests stay fast.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	t.Setenv("JWT_SECRET", "handlers-test-secret")
	require.NoError(t, auth.InitJWTSecret())

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Person{},
		&models.Interaction{},
		&models.LoginAttempt{},
	))
	db.DB = gdb

	previousDelay := failedLoginDelay
	failedLoginDelay = 0
	t.Cleanup(func() { failedLoginDelay = previousDelay })

	r := gin.New()

	api := r.Group("/api")
	api.POST("/auth/register", Register)
	api.POST("/auth/login", Login)
	api.GET("/auth/me", middleware.AuthMiddleware(), Me)

	persons := api.Group("/persons", middleware.AuthMiddleware())
	persons.GET("", ListPersons)
	persons.POST("", SavePerson)
	persons.GET("/:person_id", GetPerson)
	persons.DELETE("/:person_id", DeletePerson)
	persons.GET("/:person_id/interactions", ListInteractions)
	persons.POST("/:person_id/interactions", AddInteraction)
	persons.POST("/:person_id/ai/draft", DraftOutreach)
	persons.POST("/:person_id/ai/converse", Converse)
	persons.POST("/:person_id/ai/reset", ResetConversation)

	interactions := api.Group("/interactions", middleware.AuthMiddleware())
	interactions.PUT("/:interaction_id", UpdateInteraction)
	interactions.DELETE("/:interaction_id", DeleteInteraction)

	api.GET("/circles", middleware.AuthMiddleware(), ListCircles)

	profile := api.Group("/profile", middleware.AuthMiddleware())
	profile.GET("", GetProfile)
	profile.PUT("", UpdateProfile)

	admin := api.Group("/admin", middleware.AuthMiddleware(models.RoleAdmin))
	admin.GET("/users", ListUsers)
	admin.PUT("/users/:user_id/role", SetUserRole)
	admin.DELETE("/users/:user_id", DeleteUser)

	return r
}

func doRequest(t *testing.T, r *gin.Engine, method string, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func createUserWithPassword(t *testing.T, username string, password string, role string) models.User {
	t.Helper()

	// MinCost keeps the fixtures fast; production hashing uses DefaultCost.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Username: username, PasswordHash: string(hash), Role: role}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()

	token, err := auth.GenerateJWT(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return token
}
