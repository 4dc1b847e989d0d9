package service

import (
	"context"
	"time"

	"OWS_Community/internal/model"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"
	"OWS_Community/internal/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Publish(ctx context.Context, submissionID uint64, payload []byte) error {
	args := m.Called(ctx, submissionID, payload)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyResolution(ctx context.Context, to *model.User, sub *model.Submission) error {
	args := m.Called(ctx, to, sub)
	return args.Error(0)
}

// baseSuite 每个用例使用全新的内存存储
type baseSuite struct {
	suite.Suite
	ctx      context.Context
	repos    *repository.Repositories
	metrics  *pkg.Metrics
	notifier *mockNotifier
	svc      *Services
	admin    *model.User
}

func (s *baseSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewRepositories()
	s.metrics = pkg.NewMetrics()
	s.notifier = new(mockNotifier)
	s.svc = New(Options{
		Repos:        s.repos,
		Tokens:       pkg.NewTokenManager("access", "refresh", time.Minute, time.Hour),
		Notifier:     s.notifier,
		Metrics:      s.metrics,
		Logger:       zerolog.Nop(),
		IsAdminEmail: func(email string) bool { return email == "admin@ows.test" },
		HashCost:     bcrypt.MinCost,
	})
	s.admin = s.newUser("Admin", model.RoleAdmin)
}

func (s *baseSuite) newUser(name, role string) *model.User {
	u := &model.User{Name: name, Email: name + "@seed.test", Password: "x", Role: role}
	s.Require().NoError(s.repos.Users.Create(s.ctx, u))
	return u
}

// reload 模拟 ResolveCaller 每次请求重新读取用户
func (s *baseSuite) reload(u *model.User) *model.User {
	fresh, err := s.repos.Users.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	return fresh
}

func (s *baseSuite) community(name string) *model.Community {
	c, err := s.svc.Directory.CreateCommunity(s.ctx, s.admin, name, "")
	s.Require().NoError(err)
	return c
}

func (s *baseSuite) channel(communityID uint64, name string) *model.Channel {
	ch, err := s.svc.Directory.CreateChannel(s.ctx, s.admin, communityID, name)
	s.Require().NoError(err)
	return ch
}

func ptr(f float64) *float64 { return &f }
