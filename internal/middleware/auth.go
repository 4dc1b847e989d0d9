package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"OWS_Community/internal/model"
	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
)

// CallerResolver 由 service.IdentityService 实现
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware 必须登录
func AuthMiddleware(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing or invalid authorization header"})
			return
		}
		user, err := resolver.ResolveCaller(c.Request.Context(), tokenStr)
		if err != nil {
			abortAuth(c, err)
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth 未登录按匿名处理，带了无效 token 仍然拒绝
func OptionalAuth(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			return
		}
		user, err := resolver.ResolveCaller(c.Request.Context(), tokenStr)
		if err != nil {
			abortAuth(c, err)
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// CurrentUser 匿名请求返回 nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setUser(c *gin.Context, user *model.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	zerolog.Ctx(c.Request.Context()).UpdateContext(func(ctx zerolog.Context) zerolog.Context {
		return ctx.Uint64("user_id", user.ID)
	})
}

func abortAuth(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnauthorized) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
		return
	}
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("resolve caller")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
}
