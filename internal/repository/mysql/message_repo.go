package mysql

import (
	"context"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return translate(r.DB.WithContext(ctx).Create(msg).Error)
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint64) (*model.Message, error) {
	var msg model.Message
	if err := r.DB.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// ListVisible 读时过滤：只连表排除被封禁作者，消息本身不删除，解封后原样恢复
func (r *MessageRepository) ListVisible(ctx context.Context, channelID uint64) ([]model.Message, error) {
	var list []model.Message
	err := r.DB.WithContext(ctx).Model(&model.Message{}).
		Select("messages.*").
		Joins("JOIN users u ON u.id = messages.author_id").
		Where("messages.channel_id = ? AND u.blocked = ?", channelID, false).
		Order("messages.id ASC").
		Find(&list).Error
	return list, err
}

// Delete 硬删除
func (r *MessageRepository) Delete(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Delete(&model.Message{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
