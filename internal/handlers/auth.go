package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/auth"
	"github.com/solutor-dev/personalcrm/internal/lockout"
	"github.com/solutor-dev/personalcrm/internal/models"
	"github.com/solutor-dev/personalcrm/internal/types"
	"github.com/solutor-dev/personalcrm/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var (
	Domain = os.Getenv("DOMAIN")

	// Fixed pause before a failed attempt is recorded, to blunt automated
	// retries. Tests shorten it.
	failedLoginDelay = 2 * time.Second
)

// Register creates an account. The very first account becomes an active
// admin; every later one starts inactive and waits for promotion.
func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Username and password (min 8 characters) are required"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	var existingUser models.User

	err := db.DB.Where("username = ?", req.Username).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var userCount int64

	if err := db.DB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		log.Printf("Failed to count users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	role := models.RoleInactive
	if userCount == 0 {
		role = models.RoleAdmin
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Username:     req.Username,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user": types.UserResponse{
			ID:       newUser.ID,
			Username: newUser.Username,
			Role:     newUser.Role,
		},
	})
}

// Login checks the lockout before anything else, rejects disabled
// accounts before comparing passwords and issues a fresh token on
// success.
func Login(ctx *gin.Context) {
	address := ctx.ClientIP()

	locked, err := lockout.IsLocked(address)

	if err != nil {
		log.Printf("Failed to check lockout for %s: %v", address, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if locked {
		// Attempts while locked are still recorded, so the window keeps
		// extending under a sustained attack.
		if err := lockout.RecordFailure(address); err != nil {
			log.Printf("Failed to record login failure for %s: %v", address, err)
		}
		ctx.JSON(http.StatusLocked, gin.H{"error": "Too many failed attempts. Please wait 5 minutes before trying again."})
		return
	}

	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	var user models.User

	err = db.DB.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failLogin(ctx, address)
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Disabled accounts are rejected before the password comparison; the
	// distinct message is an accepted information trade-off.
	if user.Role == models.RoleInactive {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Your account is not yet activated. An administrator must approve it first."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		failLogin(ctx, address)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Username, user.Role)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setSessionCookie(ctx, token, 60*60*24*7)

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	})
}

// failLogin is the shared failure path: pause, record, answer with one
// generic message so the failing factor stays hidden.
func failLogin(ctx *gin.Context, address string) {
	time.Sleep(failedLoginDelay)

	if err := lockout.RecordFailure(address); err != nil {
		log.Printf("Failed to record login failure for %s: %v", address, err)
	}

	ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       currentUser.ID,
			Username: currentUser.Username,
			Role:     currentUser.Role,
		},
	})
}

func Logout(ctx *gin.Context) {
	setSessionCookie(ctx, "", -1)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
