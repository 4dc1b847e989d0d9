package service

import (
	"context"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"
)

type MembershipService struct {
	communities repository.CommunityRepository
	members     repository.MembershipRepository
}

func NewMembershipService(repos *repository.Repositories) *MembershipService {
	return &MembershipService{communities: repos.Communities, members: repos.Members}
}

// Join 幂等加入，返回最新的社区（含成员数）
func (s *MembershipService) Join(ctx context.Context, caller *model.User, communityID uint64) (*model.Community, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if _, err := s.members.Join(ctx, communityID, caller.ID); err != nil {
		return nil, translate(err, "community")
	}
	c, err := s.communities.FindByID(ctx, communityID)
	return c, translate(err, "community")
}

// Leave 不在社区内时为空操作
func (s *MembershipService) Leave(ctx context.Context, caller *model.User, communityID uint64) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	_, err := s.members.Leave(ctx, communityID, caller.ID)
	return err
}

func (s *MembershipService) IsMember(ctx context.Context, userID, communityID uint64) (bool, error) {
	return s.members.IsMember(ctx, communityID, userID)
}

func (s *MembershipService) ListJoined(ctx context.Context, caller *model.User) ([]model.Community, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	return s.members.ListJoined(ctx, caller.ID)
}

func (s *MembershipService) MemberCount(ctx context.Context, communityID uint64) (int64, error) {
	return s.members.CountMembers(ctx, communityID)
}
