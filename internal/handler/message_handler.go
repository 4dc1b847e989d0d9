package handler

import (
	"net/http"

	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messaging *service.MessagingService
}

type PostMessageReq struct {
	Content string `json:"content" binding:"required"`
}

func NewMessageHandler(messaging *service.MessagingService) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

// List 未加入社区时返回 403 且 locked=true
func (h *MessageHandler) List(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.messaging.ListMessages(c.Request.Context(), caller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *MessageHandler) Post(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req PostMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}
	msg, err := h.messaging.PostMessage(c.Request.Context(), caller(c), id, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.messaging.DeleteMessage(c.Request.Context(), caller(c), id); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c)
}
