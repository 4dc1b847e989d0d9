package handler

import (
	"context"
	"net/http"

	"OWS_Community/internal/model"
	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type InboxHandler struct {
	inbox *service.InboxService
}

// SubmitReq 坐标用指针区分“未传”和 0
type SubmitReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	ImageURL    string   `json:"imageUrl"`
}

func NewInboxHandler(inbox *service.InboxService) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

func (h *InboxHandler) Submit(c *gin.Context) {
	var req SubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c)
		return
	}
	sub, err := h.inbox.Submit(c.Request.Context(), caller(c), service.SubmitInput{
		Name:        req.Name,
		Description: req.Description,
		Lat:         req.Lat,
		Lng:         req.Lng,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

func (h *InboxHandler) Mine(c *gin.Context) {
	list, err := h.inbox.ListMine(c.Request.Context(), caller(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// List 默认只看待审核
func (h *InboxHandler) List(c *gin.Context) {
	status := model.SubmissionStatus(c.DefaultQuery("status", string(model.SubmissionPending)))
	list, err := h.inbox.ListByStatus(c.Request.Context(), caller(c), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *InboxHandler) Approve(c *gin.Context) {
	h.resolve(c, h.inbox.Approve)
}

func (h *InboxHandler) Reject(c *gin.Context) {
	h.resolve(c, h.inbox.Reject)
}

type resolveFunc func(ctx context.Context, caller *model.User, id uint64) (*model.Submission, error)

func (h *InboxHandler) resolve(c *gin.Context, fn resolveFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sub, err := fn(c.Request.Context(), caller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": sub})
}
