package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"

	"github.com/rs/zerolog"
)

const (
	maxNameLen  = 64
	maxEmojiLen = 32
)

// DirectoryService 社区（国家）与频道的管理，所有写操作仅限管理员
type DirectoryService struct {
	communities repository.CommunityRepository
	channels    repository.ChannelRepository
	log         zerolog.Logger
}

func NewDirectoryService(repos *repository.Repositories, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{communities: repos.Communities, channels: repos.Channels, log: log}
}

func (s *DirectoryService) CreateCommunity(ctx context.Context, caller *model.User, name, flagEmoji string) (*model.Community, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	name, err := normalizeName(name, "community name")
	if err != nil {
		return nil, err
	}
	flagEmoji = strings.TrimSpace(flagEmoji)
	if len(flagEmoji) > maxEmojiLen {
		return nil, invalid("flag emoji is too long")
	}

	community := &model.Community{
		Name:      name,
		FlagEmoji: flagEmoji,
		CreatorID: caller.ID,
	}
	if err = s.communities.Create(ctx, community); err != nil {
		return nil, translate(err, "community "+name)
	}
	s.log.Info().Uint64("admin_id", caller.ID).Uint64("community_id", community.ID).Msg("community created")
	return community, nil
}

func (s *DirectoryService) EditCommunity(ctx context.Context, caller *model.User, id uint64, name string) (*model.Community, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	name, err := normalizeName(name, "community name")
	if err != nil {
		return nil, err
	}
	if err = s.communities.Rename(ctx, id, name); err != nil {
		return nil, translate(err, "community")
	}
	c, err := s.communities.FindByID(ctx, id)
	return c, translate(err, "community")
}

// DeleteCommunity 级联删除成员、频道和消息，不可恢复
func (s *DirectoryService) DeleteCommunity(ctx context.Context, caller *model.User, id uint64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.communities.Delete(ctx, id); err != nil {
		return translate(err, "community")
	}
	s.log.Info().Uint64("admin_id", caller.ID).Uint64("community_id", id).Msg("community deleted")
	return nil
}

func (s *DirectoryService) GetCommunity(ctx context.Context, id uint64) (*model.Community, error) {
	c, err := s.communities.FindByID(ctx, id)
	return c, translate(err, "community")
}

func (s *DirectoryService) ListCommunities(ctx context.Context) ([]model.Community, error) {
	return s.communities.List(ctx)
}

func (s *DirectoryService) CreateChannel(ctx context.Context, caller *model.User, communityID uint64, name string) (*model.Channel, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	name, err := normalizeName(name, "channel name")
	if err != nil {
		return nil, err
	}
	ch := &model.Channel{CommunityID: communityID, Name: name}
	if err = s.channels.Create(ctx, ch); err != nil {
		return nil, translate(err, "channel "+name)
	}
	return ch, nil
}

func (s *DirectoryService) EditChannel(ctx context.Context, caller *model.User, communityID, channelID uint64, name string) (*model.Channel, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	name, err := normalizeName(name, "channel name")
	if err != nil {
		return nil, err
	}
	if err = s.channels.Rename(ctx, communityID, channelID, name); err != nil {
		return nil, translate(err, "channel")
	}
	ch, err := s.channels.FindByID(ctx, channelID)
	return ch, translate(err, "channel")
}

func (s *DirectoryService) DeleteChannel(ctx context.Context, caller *model.User, communityID, channelID uint64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.channels.Delete(ctx, communityID, channelID); err != nil {
		return translate(err, "channel")
	}
	s.log.Info().Uint64("admin_id", caller.ID).Uint64("channel_id", channelID).Msg("channel deleted")
	return nil
}

// ListChannels 任何人可浏览频道名，读取内容另需成员身份
func (s *DirectoryService) ListChannels(ctx context.Context, communityID uint64) ([]model.Channel, error) {
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, translate(err, "community")
	}
	return s.channels.ListByCommunity(ctx, communityID)
}

func normalizeName(name, field string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", invalid("%s is limited to %d characters", field, maxNameLen)
	}
	return name, nil
}
