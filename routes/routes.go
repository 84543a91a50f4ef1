package routes

import (
	"net/http"
	"time"

	"ruach/handlers"
	"ruach/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAssistantRoutes registers the widget engine endpoints consumed
// by the storefront pages.
func RegisterAssistantRoutes(r *gin.Engine, ah *handlers.AssistantHandler) {
	api := r.Group("/api/assistant")
	{
		api.POST("/session", ah.CreateSessionHandler)
		api.GET("/session/:sessionID", ah.GetMessagesHandler)
		api.POST("/session/:sessionID/message", ah.SubmitMessageHandler)
		api.POST("/session/:sessionID/quick-reply", ah.QuickReplyHandler)
		api.POST("/session/:sessionID/escalate", ah.EscalateHandler)
		api.POST("/session/:sessionID/toggle", ah.ToggleHandler)
		api.PUT("/session/:sessionID/state", ah.SetStateHandler)
		api.DELETE("/session/:sessionID/history", ah.ClearHistoryHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, ah *handlers.AssistantHandler) {
	// The widget is embedded on storefront pages, so cross-origin calls
	// are the normal case.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAssistantRoutes(r, ah)
	RegisterHealthRoute(r)
}
