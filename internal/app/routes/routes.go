// Package routes wires the HTTP surface onto a gin engine.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hivenest/communio/internal/app/controllers"
	"github.com/hivenest/communio/internal/middleware"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Auth       *controllers.AuthController
	Suggestion *controllers.SuggestionController
	Community  *controllers.CommunityController
}

// Setup registers all routes on the engine.
func Setup(engine *gin.Engine, ctrl Controllers, authMw *middleware.AuthMiddleware) {
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := engine.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
	}

	protected := v1.Group("")
	protected.Use(authMw.JWTAuth())
	{
		communities := protected.Group("/communities")
		{
			communities.GET("/:id/suggestions", ctrl.Suggestion.List)
			communities.POST("/:id/suggestions/generate", ctrl.Suggestion.Generate)
			communities.GET("/:id/seeding", ctrl.Community.GetSeedingInfo)
			communities.DELETE("/:id/seeding", ctrl.Community.ClearSeeding)
		}

		suggestions := protected.Group("/suggestions")
		{
			suggestions.POST("/:id/broadcast", ctrl.Suggestion.Broadcast)
			suggestions.POST("/:id/implement", ctrl.Suggestion.Implement)
			suggestions.POST("/:id/review", ctrl.Suggestion.Review)
		}
	}
}
