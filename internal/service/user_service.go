package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"OWS_Community/internal/model"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt 上限
	maxBioLen      = 500
)

type AccountService struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	tokens       *pkg.TokenManager
	isAdminEmail func(string) bool
	hashCost     int
	log          zerolog.Logger
}

func NewAccountService(repos *repository.Repositories, tokens *pkg.TokenManager, isAdminEmail func(string) bool, log zerolog.Logger) *AccountService {
	return &AccountService{
		users:        repos.Users,
		sessions:     repos.Sessions,
		tokens:       tokens,
		isAdminEmail: isAdminEmail,
		hashCost:     bcrypt.DefaultCost,
		log:          log,
	}
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

type ProfileInput struct {
	Name       string
	Bio        string
	Visibility string
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email is not valid")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name, "name")
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}

	role := model.RoleMember
	if s.isAdminEmail(email) {
		role = model.RoleAdmin
	}
	user := &model.User{
		Name:       name,
		Email:      email,
		Password:   string(hash),
		Role:       role,
		Visibility: model.VisibilityPublic,
	}
	if err = s.users.Create(ctx, user); err != nil {
		return nil, translate(err, "email")
	}
	s.log.Info().Uint64("user_id", user.ID).Str("role", role).Msg("account created")
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*pkg.Pair, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *AccountService) Logout(ctx context.Context, userID uint64) error {
	return s.sessions.Delete(ctx, userID)
}

// Refresh 用 refresh token 换新的一对 token，同时顶掉旧会话；
// 每个 refresh token 只能用一次，登出或改密后失效
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	current, err := s.sessions.GetRefresh(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && current != claims.ID) {
		return nil, fmt.Errorf("%w: session has ended, please log in again", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// ChangePassword 登录态修改密码，成功后强制重新登录
func (s *AccountService) ChangePassword(ctx context.Context, caller *model.User, oldPassword, newPassword string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return translate(err, "user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return invalid("old password is incorrect")
	}
	if err = checkPassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return err
	}
	if err = s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return translate(err, "user")
	}
	return s.Logout(ctx, user.ID)
}

func (s *AccountService) Profile(ctx context.Context, caller *model.User) (*model.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, caller.ID)
	return user, translate(err, "user")
}

func (s *AccountService) UpdateProfile(ctx context.Context, caller *model.User, in ProfileInput) (*model.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name, "name")
	if err != nil {
		return nil, err
	}
	bio := strings.TrimSpace(in.Bio)
	if utf8.RuneCountInString(bio) > maxBioLen {
		return nil, invalid("bio is limited to %d characters", maxBioLen)
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
		return nil, invalid("visibility must be public or private")
	}

	if err = s.users.UpdateProfile(ctx, caller.ID, name, bio, visibility); err != nil {
		return nil, translate(err, "user")
	}
	return s.Profile(ctx, caller)
}

// issue 签发 token 并写入会话，同一用户只保留最新的 access token
func (s *AccountService) issue(ctx context.Context, user *model.User) (*pkg.Pair, error) {
	pair, err := s.tokens.GeneratePair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err = s.sessions.Save(ctx, user.ID, pair.AccessToken, s.tokens.AccessTTL); err != nil {
		return nil, err
	}
	if err = s.sessions.SaveRefresh(ctx, user.ID, pair.RefreshID, s.tokens.RefreshTTL); err != nil {
		return nil, err
	}
	return pair, nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return invalid("password must be %d to %d bytes", minPasswordLen, maxPasswordLen)
	}
	return nil
}
