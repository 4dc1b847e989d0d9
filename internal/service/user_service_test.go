package service

import (
	"testing"

	"OWS_Community/internal/model"

	"github.com/stretchr/testify/suite"
)

type AccountSuite struct {
	baseSuite
}

func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(AccountSuite))
}

func (s *AccountSuite) signup(email string) *model.User {
	u, err := s.svc.Accounts.Signup(s.ctx, SignupInput{Email: email, Password: "password1", Name: "Ana"})
	s.Require().NoError(err)
	return u
}

func (s *AccountSuite) TestSignupRoles() {
	member := s.signup("Ana@Example.com")
	s.Equal(model.RoleMember, member.Role)
	s.Equal("ana@example.com", member.Email)
	s.NotEqual("password1", member.Password)

	admin := s.signup("admin@ows.test")
	s.Equal(model.RoleAdmin, admin.Role)

	_, err := s.svc.Accounts.Signup(s.ctx, SignupInput{Email: "ana@example.com", Password: "password1", Name: "Dup"})
	s.ErrorIs(err, ErrConflict)
}

func (s *AccountSuite) TestSignupValidation() {
	cases := map[string]SignupInput{
		"email":    {Email: "nope", Password: "password1", Name: "x"},
		"password": {Email: "a@b.io", Password: "short", Name: "x"},
		"name":     {Email: "a@b.io", Password: "password1", Name: " "},
	}
	for name, in := range cases {
		_, err := s.svc.Accounts.Signup(s.ctx, in)
		s.ErrorIs(err, ErrInvalidInput, name)
	}
}

func (s *AccountSuite) TestLoginAndResolveCaller() {
	u := s.signup("ana@example.com")

	_, _, err := s.svc.Accounts.Login(s.ctx, "ana@example.com", "wrong-password")
	s.ErrorIs(err, ErrUnauthorized)
	_, _, err = s.svc.Accounts.Login(s.ctx, "nobody@example.com", "password1")
	s.ErrorIs(err, ErrUnauthorized)

	pair, _, err := s.svc.Accounts.Login(s.ctx, " ANA@example.com ", "password1")
	s.Require().NoError(err)

	caller, err := s.svc.Identity.ResolveCaller(s.ctx, pair.AccessToken)
	s.Require().NoError(err)
	s.Equal(u.ID, caller.ID)

	_, err = s.svc.Identity.ResolveCaller(s.ctx, "")
	s.ErrorIs(err, ErrUnauthorized)
	_, err = s.svc.Identity.ResolveCaller(s.ctx, pair.RefreshToken)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *AccountSuite) TestResolveCallerReadsBlockedFresh() {
	u := s.signup("ana@example.com")
	pair, _, err := s.svc.Accounts.Login(s.ctx, "ana@example.com", "password1")
	s.Require().NoError(err)

	_, err = s.svc.Moderation.Block(s.ctx, s.admin, u.ID)
	s.Require().NoError(err)
	caller, err := s.svc.Identity.ResolveCaller(s.ctx, pair.AccessToken)
	s.Require().NoError(err)
	s.True(caller.Blocked)
}

func (s *AccountSuite) TestSingleActiveSession() {
	s.signup("ana@example.com")
	first, _, err := s.svc.Accounts.Login(s.ctx, "ana@example.com", "password1")
	s.Require().NoError(err)
	second, _, err := s.svc.Accounts.Login(s.ctx, "ana@example.com", "password1")
	s.Require().NoError(err)

	_, err = s.svc.Identity.ResolveCaller(s.ctx, first.AccessToken)
	s.ErrorIs(err, ErrUnauthorized)
	caller, err := s.svc.Identity.ResolveCaller(s.ctx, second.AccessToken)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Accounts.Logout(s.ctx, caller.ID))
	_, err = s.svc.Identity.ResolveCaller(s.ctx, second.AccessToken)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *AccountSuite) TestRefresh() {
	s.signup("ana@example.com")
	pair, _, err := s.svc.Accounts.Login(s.ctx, "ana@example.com", "password1")
	s.Require().NoError(err)

	next, err := s.svc.Accounts.Refresh(s.ctx, pair.RefreshToken)
	s.Require().NoError(err)
	_, err = s.svc.Identity.ResolveCaller(s.ctx, next.AccessToken)
	s.NoError(err)
	_, err = s.svc.Identity.ResolveCaller(s.ctx, pair.AccessToken)
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.svc.Accounts.Refresh(s.ctx, pair.AccessToken)
	s.ErrorIs(err, ErrUnauthorized)

	// 已经用过的 refresh token 不能再换
	_, err = s.svc.Accounts.Refresh(s.ctx, pair.RefreshToken)
	s.ErrorIs(err, ErrUnauthorized)
	_, err = s.svc.Accounts.Refresh(s.ctx, next.RefreshToken)
	s.NoError(err)
}

func (s *AccountSuite) TestRefreshAfterSessionEnds() {
	u := s.signup("ana@example.com")

	pair, _, err := s.svc.Accounts.Login(s.ctx, "ana@example.com", "password1")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Accounts.Logout(s.ctx, u.ID))
	_, err = s.svc.Accounts.Refresh(s.ctx, pair.RefreshToken)
	s.ErrorIs(err, ErrUnauthorized)

	pair, _, err = s.svc.Accounts.Login(s.ctx, "ana@example.com", "password1")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Accounts.ChangePassword(s.ctx, u, "password1", "password2"))
	next, err := s.svc.Accounts.Refresh(s.ctx, pair.RefreshToken)
	s.ErrorIs(err, ErrUnauthorized)
	s.Nil(next)

	// 新登录会让之前的 refresh token 失效
	first, _, err := s.svc.Accounts.Login(s.ctx, "ana@example.com", "password2")
	s.Require().NoError(err)
	_, _, err = s.svc.Accounts.Login(s.ctx, "ana@example.com", "password2")
	s.Require().NoError(err)
	_, err = s.svc.Accounts.Refresh(s.ctx, first.RefreshToken)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *AccountSuite) TestChangePassword() {
	u := s.signup("ana@example.com")
	pair, _, err := s.svc.Accounts.Login(s.ctx, "ana@example.com", "password1")
	s.Require().NoError(err)

	s.ErrorIs(s.svc.Accounts.ChangePassword(s.ctx, u, "wrong-password", "password2"), ErrInvalidInput)
	s.ErrorIs(s.svc.Accounts.ChangePassword(s.ctx, u, "password1", "short"), ErrInvalidInput)
	s.Require().NoError(s.svc.Accounts.ChangePassword(s.ctx, u, "password1", "password2"))

	_, err = s.svc.Identity.ResolveCaller(s.ctx, pair.AccessToken)
	s.ErrorIs(err, ErrUnauthorized)
	_, _, err = s.svc.Accounts.Login(s.ctx, "ana@example.com", "password1")
	s.ErrorIs(err, ErrUnauthorized)
	_, _, err = s.svc.Accounts.Login(s.ctx, "ana@example.com", "password2")
	s.NoError(err)
}

func (s *AccountSuite) TestProfile() {
	u := s.signup("ana@example.com")

	got, err := s.svc.Accounts.UpdateProfile(s.ctx, u, ProfileInput{Name: " Ana M ", Bio: "tapas", Visibility: model.VisibilityPrivate})
	s.Require().NoError(err)
	s.Equal("Ana M", got.Name)
	s.Equal("tapas", got.Bio)
	s.Equal(model.VisibilityPrivate, got.Visibility)

	_, err = s.svc.Accounts.UpdateProfile(s.ctx, u, ProfileInput{Name: "Ana", Visibility: "friends"})
	s.ErrorIs(err, ErrInvalidInput)
	_, err = s.svc.Accounts.Profile(s.ctx, nil)
	s.ErrorIs(err, ErrUnauthorized)
}
