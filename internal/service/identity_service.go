package service

import (
	"context"
	"errors"
	"fmt"

	"OWS_Community/internal/model"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"
)

// IdentityService 把凭证解析为调用者身份
type IdentityService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *pkg.TokenManager
}

func NewIdentityService(repos *repository.Repositories, tokens *pkg.TokenManager) *IdentityService {
	return &IdentityService{users: repos.Users, sessions: repos.Sessions, tokens: tokens}
}

// ResolveCaller 校验 access token 与 redis 中的当前会话一致，并续期；
// 角色与封禁状态每次都从存储重新读取
func (s *IdentityService) ResolveCaller(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	current, err := s.sessions.Get(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	// 单点登录：旧 token 被新登录顶掉
	if current != token {
		return nil, fmt.Errorf("%w: logged in elsewhere", ErrUnauthorized)
	}
	if err = s.sessions.Extend(ctx, claims.UserID, s.tokens.AccessTTL); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
