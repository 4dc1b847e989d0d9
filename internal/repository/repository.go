package repository

import (
	"context"
	"errors"
	"time"

	"OWS_Community/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate record")
	ErrStateChanged = errors.New("record state changed")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, name, bio, visibility string) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	SetBlocked(ctx context.Context, id uint64, blocked bool) error
	// List 按 id 升序；communityID 为 0 时返回全部用户
	List(ctx context.Context, communityID uint64) ([]model.User, error)
}

type CommunityRepository interface {
	Create(ctx context.Context, c *model.Community) error
	FindByID(ctx context.Context, id uint64) (*model.Community, error)
	Rename(ctx context.Context, id uint64, name string) error
	// Delete 级联删除成员、频道与消息
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context) ([]model.Community, error)
}

type MembershipRepository interface {
	// Join 幂等加入，changed 表示本次是否新建了成员关系
	Join(ctx context.Context, communityID, userID uint64) (changed bool, err error)
	Leave(ctx context.Context, communityID, userID uint64) (changed bool, err error)
	IsMember(ctx context.Context, communityID, userID uint64) (bool, error)
	CountMembers(ctx context.Context, communityID uint64) (int64, error)
	ListJoined(ctx context.Context, userID uint64) ([]model.Community, error)
}

type ChannelRepository interface {
	Create(ctx context.Context, ch *model.Channel) error
	FindByID(ctx context.Context, id uint64) (*model.Channel, error)
	Rename(ctx context.Context, communityID, channelID uint64, name string) error
	// Delete 级联删除频道消息
	Delete(ctx context.Context, communityID, channelID uint64) error
	ListByCommunity(ctx context.Context, communityID uint64) ([]model.Channel, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, id uint64) (*model.Message, error)
	// ListVisible 按写入顺序返回，过滤掉被封禁作者的消息
	ListVisible(ctx context.Context, channelID uint64) ([]model.Message, error)
	Delete(ctx context.Context, id uint64) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) error
	FindByID(ctx context.Context, id uint64) (*model.Submission, error)
	ListByStatus(ctx context.Context, status model.SubmissionStatus) ([]model.Submission, error)
	ListBySubmitter(ctx context.Context, userID uint64) ([]model.Submission, error)
	// Resolve 仅当状态为 pending 时生效，否则返回 ErrStateChanged；
	// 审核通过时在同一事务内写入 spot_outbox
	Resolve(ctx context.Context, id uint64, status model.SubmissionStatus, adminID uint64, at time.Time) (*model.Submission, error)
}

type OutboxRepository interface {
	ListPending(ctx context.Context, batchSize, maxRetry int) ([]model.SpotOutbox, error)
	MarkSent(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64) error
}

// SessionRepository 保存每个用户当前有效的 access token（单点登录）
// 以及可用于刷新的 refresh token jti
type SessionRepository interface {
	Save(ctx context.Context, userID uint64, token string, ttl time.Duration) error
	Get(ctx context.Context, userID uint64) (string, error)
	Extend(ctx context.Context, userID uint64, ttl time.Duration) error
	SaveRefresh(ctx context.Context, userID uint64, tokenID string, ttl time.Duration) error
	GetRefresh(ctx context.Context, userID uint64) (string, error)
	// Delete 同时清掉 access 与 refresh 记录
	Delete(ctx context.Context, userID uint64) error
}

// Locker 跨实例互斥，token 用于安全释放
type Locker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

type Repositories struct {
	Users       UserRepository
	Communities CommunityRepository
	Members     MembershipRepository
	Channels    ChannelRepository
	Messages    MessageRepository
	Submissions SubmissionRepository
	Outbox      OutboxRepository
	Sessions    SessionRepository
	Locker      Locker
	// Ping 存储健康检查
	Ping func(ctx context.Context) error
}
