package handler

import (
	"net/http"
	"strconv"

	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderation *service.ModerationService
}

func NewModerationHandler(moderation *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

func (h *ModerationHandler) Block(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.moderation.Block(c.Request.Context(), caller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *ModerationHandler) Unblock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.moderation.Unblock(c.Request.Context(), caller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListUsers ?community_id= 限定社区成员，?blocked=true 只看被封禁的
func (h *ModerationHandler) ListUsers(c *gin.Context) {
	var communityID uint64
	if raw := c.Query("community_id"); raw != "" && raw != "all" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badParams(c)
			return
		}
		communityID = v
	}
	onlyBlocked := false
	if raw := c.Query("blocked"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badParams(c)
			return
		}
		onlyBlocked = v
	}

	list, err := h.moderation.ListUsers(c.Request.Context(), caller(c), communityID, onlyBlocked)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
