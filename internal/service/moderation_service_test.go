package service

import (
	"testing"

	"OWS_Community/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type ModerationSuite struct {
	baseSuite
}

func TestModerationSuite(t *testing.T) {
	suite.Run(t, new(ModerationSuite))
}

func (s *ModerationSuite) TestBlockIsIdempotent() {
	ana := s.newUser("Ana", model.RoleMember)

	for i := 0; i < 2; i++ {
		u, err := s.svc.Moderation.Block(s.ctx, s.admin, ana.ID)
		s.Require().NoError(err)
		s.True(u.Blocked)
	}
	blocked, err := s.svc.Moderation.IsBlocked(s.ctx, ana.ID)
	s.Require().NoError(err)
	s.True(blocked)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ModerationActions.WithLabelValues("block")))

	for i := 0; i < 2; i++ {
		u, err := s.svc.Moderation.Unblock(s.ctx, s.admin, ana.ID)
		s.Require().NoError(err)
		s.False(u.Blocked)
	}
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ModerationActions.WithLabelValues("unblock")))
}

func (s *ModerationSuite) TestBlockRules() {
	ana := s.newUser("Ana", model.RoleMember)
	bo := s.newUser("Bo", model.RoleMember)

	_, err := s.svc.Moderation.Block(s.ctx, ana, bo.ID)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.Moderation.Block(s.ctx, nil, bo.ID)
	s.ErrorIs(err, ErrUnauthorized)
	_, err = s.svc.Moderation.Block(s.ctx, s.admin, 999)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.svc.Moderation.Block(s.ctx, s.admin, s.admin.ID)
	s.ErrorIs(err, ErrInvalidInput)
	_, err = s.svc.Moderation.Unblock(s.ctx, ana, bo.ID)
	s.ErrorIs(err, ErrForbidden)
}

func (s *ModerationSuite) TestListUsers() {
	ana := s.newUser("Ana", model.RoleMember)
	bo := s.newUser("Bo", model.RoleMember)
	spain := s.community("Spain")
	_, err := s.svc.Membership.Join(s.ctx, bo, spain.ID)
	s.Require().NoError(err)
	_, err = s.svc.Moderation.Block(s.ctx, s.admin, bo.ID)
	s.Require().NoError(err)

	all, err := s.svc.Moderation.ListUsers(s.ctx, s.admin, 0, false)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]uint64{s.admin.ID, ana.ID, bo.ID}, []uint64{all[0].ID, all[1].ID, all[2].ID})
	s.True(all[2].Blocked)

	members, err := s.svc.Moderation.ListUsers(s.ctx, s.admin, spain.ID, false)
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(bo.ID, members[0].ID)

	blocked, err := s.svc.Moderation.ListUsers(s.ctx, s.admin, 0, true)
	s.Require().NoError(err)
	s.Require().Len(blocked, 1)
	s.Equal(bo.ID, blocked[0].ID)

	_, err = s.svc.Moderation.ListUsers(s.ctx, s.admin, 999, false)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.svc.Moderation.ListUsers(s.ctx, ana, 0, false)
	s.ErrorIs(err, ErrForbidden)
}

func (s *ModerationSuite) TestBlockKeepsMembershipCount() {
	ana := s.newUser("Ana", model.RoleMember)
	spain := s.community("Spain")
	_, err := s.svc.Membership.Join(s.ctx, ana, spain.ID)
	s.Require().NoError(err)
	_, err = s.svc.Moderation.Block(s.ctx, s.admin, ana.ID)
	s.Require().NoError(err)

	c, err := s.svc.Directory.GetCommunity(s.ctx, spain.ID)
	s.Require().NoError(err)
	s.EqualValues(1, c.MemberCount)

	// 被封禁用户仍可退出与重新加入
	s.Require().NoError(s.svc.Membership.Leave(s.ctx, s.reload(ana), spain.ID))
	_, err = s.svc.Membership.Join(s.ctx, s.reload(ana), spain.ID)
	s.NoError(err)
}
