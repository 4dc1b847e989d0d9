package mysql

import (
	"context"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).Select(communityWithCount).Where("communities.id = ?", id).Take(&community).Error
	if err != nil {
		return nil, translate(err)
	}
	return &community, nil
}

func (r *CommunityRepository) Rename(ctx context.Context, id uint64, name string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Community{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return tx.Model(&model.Community{}).Where("id = ?", id).Update("name", name).Error
	})
	return translate(err)
}

// Delete 事务内级联删除：消息 -> 频道 -> 成员 -> 社区
func (r *CommunityRepository) Delete(ctx context.Context, id uint64) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Community
		// 锁住社区行，避免并发 join / 建频道写入孤儿数据
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
			return err
		}
		channelIDs := tx.Model(&model.Channel{}).Select("id").Where("community_id = ?", id)
		if err := tx.Where("channel_id IN (?)", channelIDs).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&model.Channel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&model.CommunityMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Community{}, id).Error
	})
	return translate(err)
}

// List 按创建顺序返回
func (r *CommunityRepository) List(ctx context.Context) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Select(communityWithCount).Order("communities.id ASC").Find(&list).Error
	return list, err
}

// lockCommunity 共享锁读取社区，社区不存在时返回 ErrNotFound
func lockCommunity(tx *gorm.DB, id uint64) error {
	var c model.Community
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Select("id").First(&c, id).Error
	return translate(err)
}
