package service

import (
	"context"

	"OWS_Community/internal/model"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"

	"github.com/rs/zerolog"
)

// ModerationService 全局封禁：只改 users.blocked，消息在读取时过滤
type ModerationService struct {
	users       repository.UserRepository
	communities repository.CommunityRepository
	metrics     *pkg.Metrics
	log         zerolog.Logger
}

func NewModerationService(repos *repository.Repositories, metrics *pkg.Metrics, log zerolog.Logger) *ModerationService {
	return &ModerationService{users: repos.Users, communities: repos.Communities, metrics: metrics, log: log}
}

func (s *ModerationService) Block(ctx context.Context, caller *model.User, userID uint64) (*model.User, error) {
	return s.setBlocked(ctx, caller, userID, true)
}

func (s *ModerationService) Unblock(ctx context.Context, caller *model.User, userID uint64) (*model.User, error) {
	return s.setBlocked(ctx, caller, userID, false)
}

// setBlocked 重复封禁/解封直接返回当前状态
func (s *ModerationService) setBlocked(ctx context.Context, caller *model.User, userID uint64, blocked bool) (*model.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if blocked && caller.ID == userID {
		return nil, invalid("admins cannot block themselves")
	}
	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user")
	}
	if target.Blocked == blocked {
		return target, nil
	}
	if err = s.users.SetBlocked(ctx, userID, blocked); err != nil {
		return nil, translate(err, "user")
	}
	target.Blocked = blocked

	action := "unblock"
	if blocked {
		action = "block"
	}
	s.metrics.IncModeration(action)
	s.log.Info().Uint64("admin_id", caller.ID).Uint64("user_id", userID).Str("action", action).Msg("moderation")
	return target, nil
}

func (s *ModerationService) IsBlocked(ctx context.Context, userID uint64) (bool, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, translate(err, "user")
	}
	return u.Blocked, nil
}

// ListUsers communityID 为 0 时列出全部用户；onlyBlocked 只保留被封禁的
func (s *ModerationService) ListUsers(ctx context.Context, caller *model.User, communityID uint64, onlyBlocked bool) ([]model.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if communityID > 0 {
		if _, err := s.communities.FindByID(ctx, communityID); err != nil {
			return nil, translate(err, "community")
		}
	}
	users, err := s.users.List(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !onlyBlocked {
		return users, nil
	}
	blocked := users[:0]
	for _, u := range users {
		if u.Blocked {
			blocked = append(blocked, u)
		}
	}
	return blocked, nil
}
