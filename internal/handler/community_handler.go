package handler

import (
	"net/http"

	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	directory  *service.DirectoryService
	membership *service.MembershipService
}

type CommunityReq struct {
	Name      string `json:"name" binding:"required"`
	FlagEmoji string `json:"flagEmoji"`
}

type ChannelReq struct {
	Name string `json:"name" binding:"required"`
}

func NewCommunityHandler(directory *service.DirectoryService, membership *service.MembershipService) *CommunityHandler {
	return &CommunityHandler{directory: directory, membership: membership}
}

func (h *CommunityHandler) List(c *gin.Context) {
	list, err := h.directory.ListCommunities(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	community, err := h.directory.GetCommunity(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Joined(c *gin.Context) {
	list, err := h.membership.ListJoined(c.Request.Context(), caller(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	community, err := h.membership.Join(c.Request.Context(), caller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.membership.Leave(c.Request.Context(), caller(c), id); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c)
}

func (h *CommunityHandler) Channels(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.directory.ListChannels(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}
	community, err := h.directory.CreateCommunity(c.Request.Context(), caller(c), req.Name, req.FlagEmoji)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"community": community})
}

func (h *CommunityHandler) Edit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CommunityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}
	community, err := h.directory.EditCommunity(c.Request.Context(), caller(c), id, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteCommunity(c.Request.Context(), caller(c), id); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c)
}

func (h *CommunityHandler) CreateChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ChannelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}
	ch, err := h.directory.CreateChannel(c.Request.Context(), caller(c), id, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"channel": ch})
}

func (h *CommunityHandler) EditChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	channelID, ok := pathID(c, "channelId")
	if !ok {
		return
	}
	var req ChannelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}
	ch, err := h.directory.EditChannel(c.Request.Context(), caller(c), id, channelID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": ch})
}

func (h *CommunityHandler) DeleteChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	channelID, ok := pathID(c, "channelId")
	if !ok {
		return
	}
	if err := h.directory.DeleteChannel(c.Request.Context(), caller(c), id, channelID); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c)
}
