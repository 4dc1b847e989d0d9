package mysql

import (
	"context"

	"OWS_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

func (r *CommunityMemberRepository) Join(ctx context.Context, communityID, userID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCommunity(tx, communityID); err != nil {
			return err
		}
		// 幂等插入：若已存在 (community_id, user_id) 则不报错
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&model.CommunityMember{CommunityID: communityID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0
		return nil
	})
	return changed, translate(err)
}

func (r *CommunityMemberRepository) Leave(ctx context.Context, communityID, userID uint64) (bool, error) {
	res := r.DB.WithContext(ctx).Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&model.CommunityMember{})
	return res.RowsAffected > 0, res.Error
}

func (r *CommunityMemberRepository) IsMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) CountMembers(ctx context.Context, communityID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}

func (r *CommunityMemberRepository) ListJoined(ctx context.Context, userID uint64) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Select(communityWithCount).
		Joins("JOIN community_members cm ON cm.community_id = communities.id AND cm.user_id = ?", userID).
		Order("communities.id ASC").
		Find(&list).Error
	return list, err
}
