package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solutor-dev/personalcrm/db"
	"github.com/solutor-dev/personalcrm/internal/models"
	"gorm.io/gorm"
)

type AdminUserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := db.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		log.Printf("Failed to list users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]AdminUserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, AdminUserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func SetUserRole(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "user_id")
	if !ok {
		return
	}

	var req SetRoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role is required"})
		return
	}

	if !models.ValidRole(req.Role) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	result := db.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", req.Role)

	if result.Error != nil {
		log.Printf("Failed to update role for user %d: %v", userID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": userID, "role": req.Role})
}

func DeleteUser(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "user_id")
	if !ok {
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Failed to fetch user %d: %v", userID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if err := db.DB.Delete(&user).Error; err != nil {
		log.Printf("Failed to delete user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
