package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/askdoc-io/askdoc/internal/pkg/response"
)

type RouterDeps struct {
	Upload *UploadHandler
	Chat   *ChatHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "askdoc backend is live"})
	})
	api.POST("/upload", deps.Upload.Upload)
	api.POST("/chat", deps.Chat.Chat)
}
