package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/solutor-dev/personalcrm/internal/handlers"
	"github.com/solutor-dev/personalcrm/internal/middleware"
	"github.com/solutor-dev/personalcrm/internal/models"
	"github.com/solutor-dev/personalcrm/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		persons := api.Group("/persons", middleware.AuthMiddleware())
		{
			persons.GET("", handlers.ListPersons)
			persons.POST("", handlers.SavePerson)
			persons.GET("/:person_id", handlers.GetPerson)
			persons.DELETE("/:person_id", handlers.DeletePerson)

			persons.GET("/:person_id/interactions", handlers.ListInteractions)
			persons.POST("/:person_id/interactions", handlers.AddInteraction)

			persons.POST("/:person_id/ai/draft", handlers.DraftOutreach)
			persons.POST("/:person_id/ai/converse", handlers.Converse)
			persons.POST("/:person_id/ai/reset", handlers.ResetConversation)
		}

		interactions := api.Group("/interactions", middleware.AuthMiddleware())
		{
			interactions.PUT("/:interaction_id", handlers.UpdateInteraction)
			interactions.DELETE("/:interaction_id", handlers.DeleteInteraction)
		}

		api.GET("/circles", middleware.AuthMiddleware(), handlers.ListCircles)

		profile := api.Group("/profile", middleware.AuthMiddleware())
		{
			profile.GET("", handlers.GetProfile)
			profile.PUT("", handlers.UpdateProfile)
		}

		admin := api.Group("/admin", middleware.AuthMiddleware(models.RoleAdmin))
		{
			admin.GET("/users", handlers.ListUsers)
			admin.PUT("/users/:user_id/role", handlers.SetUserRole)
			admin.DELETE("/users/:user_id", handlers.DeleteUser)
		}
	}

	return r
}
