package routes

import (
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/handlers"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterChatRoutes(r gin.IRouter) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.GET("/conversations", handlers.GetConversations)
		chat.POST("/conversations", handlers.CreateConversation)
		chat.GET("/conversations/:id/messages", handlers.GetMessages)
		chat.POST("/conversations/:id/messages", middleware.SendRateLimit(30, time.Minute), handlers.SendMessage)
	}
}
