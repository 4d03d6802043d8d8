package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/firmdesk/firmdesk-backend/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Chats     *ChatHandler
	Documents *DocumentHandler
	Users     *UserHandler
	Orgs      *OrgHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", middleware.RateLimit(time.Second), deps.Auth.Login)
	api.POST("/auth/logout", deps.Auth.Logout)
	api.GET("/orgs/validate/:code", deps.Orgs.ValidateCode)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/chat", deps.Chats.Send)
	authGroup.POST("/chat/file", deps.Chats.SendWithFile)
	authGroup.DELETE("/chat/:id", deps.Chats.ClearConversation)
	authGroup.GET("/chats", deps.Chats.List)
	authGroup.GET("/chats/:id/messages", deps.Chats.History)
	authGroup.PATCH("/chats/:id", deps.Chats.Rename)
	authGroup.DELETE("/chats/:id", deps.Chats.Delete)
	authGroup.DELETE("/conversations/:id", deps.Chats.ClearConversation)

	authGroup.POST("/documents", deps.Documents.Ingest)
	authGroup.POST("/documents/upload", deps.Documents.Upload)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.DELETE("/documents/:id", deps.Documents.Delete)

	authGroup.GET("/users/me", deps.Users.Me)
	authGroup.GET("/users/me/permissions", deps.Users.MyPermissions)
	authGroup.GET("/users/me/quota", deps.Users.MyQuota)
	authGroup.PATCH("/users/:id/permissions", deps.Users.UpdatePermissions)

	authGroup.POST("/orgs", deps.Orgs.Create)
	authGroup.POST("/orgs/join", deps.Orgs.Join)
	authGroup.GET("/orgs/mine", deps.Orgs.Get)
	authGroup.PATCH("/orgs/mine/defaults", deps.Orgs.UpdateDefaults)
}
