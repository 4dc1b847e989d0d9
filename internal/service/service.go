package service

import (
	"context"
	"time"

	"OWS_Community/internal/model"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"

	"github.com/rs/zerolog"
)

// SpotCatalog 审核通过的地点交给外部 Spot Catalog 持久化
type SpotCatalog interface {
	Publish(ctx context.Context, submissionID uint64, payload []byte) error
}

// Notifier 审核结果通知提交者
type Notifier interface {
	NotifyResolution(ctx context.Context, to *model.User, sub *model.Submission) error
}

type Options struct {
	Repos    *repository.Repositories
	Tokens   *pkg.TokenManager
	Notifier Notifier
	Metrics  *pkg.Metrics
	Logger   zerolog.Logger
	// IsAdminEmail 注册时决定角色
	IsAdminEmail func(email string) bool
	// HashCost bcrypt 代价，0 表示默认值
	HashCost int
	Now      func() time.Time
}

type Services struct {
	Identity   *IdentityService
	Accounts   *AccountService
	Membership *MembershipService
	Moderation *ModerationService
	Directory  *DirectoryService
	Messaging  *MessagingService
	Inbox      *InboxService
}

func New(opt Options) *Services {
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.IsAdminEmail == nil {
		opt.IsAdminEmail = func(string) bool { return false }
	}
	accounts := NewAccountService(opt.Repos, opt.Tokens, opt.IsAdminEmail, opt.Logger)
	if opt.HashCost > 0 {
		accounts.hashCost = opt.HashCost
	}
	return &Services{
		Identity:   NewIdentityService(opt.Repos, opt.Tokens),
		Accounts:   accounts,
		Membership: NewMembershipService(opt.Repos),
		Moderation: NewModerationService(opt.Repos, opt.Metrics, opt.Logger),
		Directory:  NewDirectoryService(opt.Repos, opt.Logger),
		Messaging:  NewMessagingService(opt.Repos, opt.Metrics, opt.Logger),
		Inbox:      NewInboxService(opt.Repos, opt.Notifier, opt.Metrics, opt.Logger, opt.Now),
	}
}
