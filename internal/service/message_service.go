package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"OWS_Community/internal/model"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"

	"github.com/rs/zerolog"
)

const maxMessageLen = 2000

type MessagingService struct {
	channels repository.ChannelRepository
	members  repository.MembershipRepository
	messages repository.MessageRepository
	metrics  *pkg.Metrics
	log      zerolog.Logger
}

func NewMessagingService(repos *repository.Repositories, metrics *pkg.Metrics, log zerolog.Logger) *MessagingService {
	return &MessagingService{
		channels: repos.Channels,
		members:  repos.Members,
		messages: repos.Messages,
		metrics:  metrics,
		log:      log,
	}
}

func (s *MessagingService) PostMessage(ctx context.Context, caller *model.User, channelID uint64, content string) (*model.Message, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content required")
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return nil, invalid("content is limited to %d characters", maxMessageLen)
	}

	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, translate(err, "channel")
	}
	if caller.Blocked {
		return nil, ErrBlocked
	}
	// 判断是否是 community 成员，管理员不受限
	if err = s.checkAccess(ctx, caller, ch); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ChannelID:  ch.ID,
		AuthorID:   caller.ID,
		AuthorName: caller.Name,
		Content:    content,
	}
	if err = s.messages.Create(ctx, msg); err != nil {
		return nil, translate(err, "channel")
	}
	s.metrics.IncMessagesPosted()
	return msg, nil
}

// ListMessages 按发送顺序返回，被封禁作者的消息不返回
func (s *MessagingService) ListMessages(ctx context.Context, caller *model.User, channelID uint64) ([]model.Message, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, translate(err, "channel")
	}
	if caller != nil && caller.Blocked && !caller.IsAdmin() {
		return nil, ErrBlocked
	}
	if err = s.checkAccess(ctx, caller, ch); err != nil {
		return nil, err
	}
	return s.messages.ListVisible(ctx, ch.ID)
}

func (s *MessagingService) DeleteMessage(ctx context.Context, caller *model.User, messageID uint64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return translate(err, "message")
	}
	s.log.Info().Uint64("admin_id", caller.ID).Uint64("message_id", messageID).Msg("message deleted")
	return nil
}

// checkAccess 未加入社区的频道处于锁定状态
func (s *MessagingService) checkAccess(ctx context.Context, caller *model.User, ch *model.Channel) error {
	if caller == nil {
		return ErrChannelLocked
	}
	if caller.IsAdmin() {
		return nil
	}
	ok, err := s.members.IsMember(ctx, ch.CommunityID, caller.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrChannelLocked
	}
	return nil
}
