package mysql

import (
	"context"

	"OWS_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChannelRepository struct {
	DB *gorm.DB
}

func (r *ChannelRepository) Create(ctx context.Context, ch *model.Channel) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCommunity(tx, ch.CommunityID); err != nil {
			return err
		}
		return tx.Create(ch).Error
	})
	return translate(err)
}

func (r *ChannelRepository) FindByID(ctx context.Context, id uint64) (*model.Channel, error) {
	var ch model.Channel
	if err := r.DB.WithContext(ctx).First(&ch, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ch, nil
}

func (r *ChannelRepository) Rename(ctx context.Context, communityID, channelID uint64, name string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch model.Channel
		if err := tx.Where("id = ? AND community_id = ?", channelID, communityID).First(&ch).Error; err != nil {
			return err
		}
		return tx.Model(&ch).Update("name", name).Error
	})
	return translate(err)
}

// Delete 事务内先删消息再删频道
func (r *ChannelRepository) Delete(ctx context.Context, communityID, channelID uint64) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch model.Channel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND community_id = ?", channelID, communityID).
			First(&ch).Error; err != nil {
			return err
		}
		if err := tx.Where("channel_id = ?", ch.ID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Channel{}, ch.ID).Error
	})
	return translate(err)
}

func (r *ChannelRepository) ListByCommunity(ctx context.Context, communityID uint64) ([]model.Channel, error) {
	var list []model.Channel
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}
