package handler

import (
	"errors"
	"net/http"
	"strconv"

	"OWS_Community/internal/middleware"
	"OWS_Community/internal/model"
	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// writeError 业务错误映射为 HTTP 状态码，未知错误只记日志不外泄
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChannelLocked):
		c.JSON(http.StatusForbidden, gin.H{"msg": err.Error(), "locked": true})
	case errors.Is(err, service.ErrBlocked):
		c.JSON(http.StatusForbidden, gin.H{"msg": err.Error(), "blocked": true})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"msg": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"msg": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
	}
}

func badParams(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
}

func respondOK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// pathID 解析路径中的数字 id
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid " + name})
		return 0, false
	}
	return id, true
}

func caller(c *gin.Context) *model.User {
	return middleware.CurrentUser(c)
}
