package mysql

import (
	"context"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uint64, name, bio, visibility string) error {
	return r.update(ctx, id, map[string]any{"name": name, "bio": bio, "visibility": visibility})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.update(ctx, id, map[string]any{"password": hash})
}

// SetBlocked 幂等：重复封禁/解封不报错
func (r *UserRepository) SetBlocked(ctx context.Context, id uint64, blocked bool) error {
	return r.update(ctx, id, map[string]any{"blocked": blocked})
}

func (r *UserRepository) List(ctx context.Context, communityID uint64) ([]model.User, error) {
	var list []model.User
	q := r.DB.WithContext(ctx).Model(&model.User{})
	if communityID > 0 {
		q = q.Select("users.*").
			Joins("JOIN community_members cm ON cm.user_id = users.id").
			Where("cm.community_id = ?", communityID)
	}
	err := q.Order("users.id ASC").Find(&list).Error
	return list, err
}

// update MySQL 对未变化的行 RowsAffected 为 0，所以先确认记录存在
func (r *UserRepository) update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return tx.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
	})
}
