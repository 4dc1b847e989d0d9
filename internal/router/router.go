package router

import (
	"context"
	"net/http"
	"time"

	"OWS_Community/internal/handler"
	"OWS_Community/internal/middleware"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Deps struct {
	Services *service.Services
	Metrics  *pkg.Metrics
	Logger   zerolog.Logger
	// Ping 存储健康检查
	Ping func(ctx context.Context) error
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger), middleware.Recovery(), middleware.Metrics(d.Metrics))

	svc := d.Services
	user := handler.NewUserHandler(svc.Accounts)
	community := handler.NewCommunityHandler(svc.Directory, svc.Membership)
	message := handler.NewMessageHandler(svc.Messaging)
	moderation := handler.NewModerationHandler(svc.Moderation)
	inbox := handler.NewInboxHandler(svc.Inbox)

	auth := middleware.AuthMiddleware(svc.Identity)
	optional := middleware.OptionalAuth(svc.Identity)

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if d.Ping != nil {
			if err := d.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "msg": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{})))

	// 账号相关接口
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", user.Signup)
		authGroup.POST("/login", user.Login)
		authGroup.POST("/refresh", user.TokenRefresh)
		authGroup.POST("/logout", auth, user.Logout)
		authGroup.POST("/change-password", auth, user.ChangePassword)
	}

	userGroup := r.Group("/api/users", auth)
	{
		userGroup.GET("/me", user.Me)
		userGroup.PUT("/me", user.UpdateMe)
	}

	// 社区相关接口：浏览不需要登录
	communityGroup := r.Group("/api/community")
	{
		communityGroup.GET("/list", optional, community.List)
		communityGroup.GET("/joined", auth, community.Joined)
		communityGroup.GET("/:id", optional, community.Get)
		communityGroup.GET("/:id/channels", optional, community.Channels)
		communityGroup.POST("/:id/join", auth, community.Join)
		communityGroup.POST("/:id/leave", auth, community.Leave)
	}

	// 频道消息接口
	channelGroup := r.Group("/api/channels")
	{
		channelGroup.GET("/:id/messages", optional, message.List)
		channelGroup.POST("/:id/messages", auth, message.Post)
	}

	// 地点提交
	spotGroup := r.Group("/api/spots", auth)
	{
		spotGroup.POST("/inbox", inbox.Submit)
		spotGroup.GET("/inbox/mine", inbox.Mine)
	}

	// 管理员接口，权限在 service 层校验
	adminGroup := r.Group("/api/admin", auth)
	{
		adminGroup.POST("/communities", community.Create)
		adminGroup.PUT("/communities/:id", community.Edit)
		adminGroup.DELETE("/communities/:id", community.Delete)
		adminGroup.POST("/communities/:id/channels", community.CreateChannel)
		adminGroup.PUT("/communities/:id/channels/:channelId", community.EditChannel)
		adminGroup.DELETE("/communities/:id/channels/:channelId", community.DeleteChannel)

		adminGroup.DELETE("/messages/:id", message.Delete)

		adminGroup.GET("/users", moderation.ListUsers)
		adminGroup.PUT("/users/:id/block", moderation.Block)
		adminGroup.DELETE("/users/:id/block", moderation.Unblock)

		adminGroup.GET("/spots/inbox", inbox.List)
		adminGroup.POST("/spots/inbox/:id/approve", inbox.Approve)
		adminGroup.POST("/spots/inbox/:id/reject", inbox.Reject)
	}

	return r
}
