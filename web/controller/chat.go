package controller

import (
	"net/http"

	"github.com/ehb/ragchat/logger"
	"github.com/ehb/ragchat/web/entity"
	"github.com/ehb/ragchat/web/middleware"

	"github.com/gin-gonic/gin"
)

// ChatController exposes the retrieval-augmented chat endpoint.
type ChatController struct {
	chat Chatter
}

func NewChatController(g *gin.RouterGroup, chat Chatter) *ChatController {
	a := &ChatController{chat: chat}
	g.POST("/chat", a.send)
	return a
}

func (a *ChatController) send(c *gin.Context) {
	var form entity.ChatForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonMsg(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	answer, err := a.chat.Chat(c.Request.Context(), form.Message)
	if err != nil {
		logger.Errorf("error during chat [%s]: %v", middleware.GetRequestID(c), err)
		jsonMsg(c, http.StatusInternalServerError, msgChatError)
		return
	}
	jsonMsg(c, http.StatusOK, answer)
}
