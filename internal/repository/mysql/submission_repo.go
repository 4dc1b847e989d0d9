package mysql

import (
	"context"
	"encoding/json"
	"time"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return translate(r.DB.WithContext(ctx).Create(s).Error)
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uint64) (*model.Submission, error) {
	var s model.Submission
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *SubmissionRepository) ListByStatus(ctx context.Context, status model.SubmissionStatus) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.WithContext(ctx).Where("status = ?", status).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) ListBySubmitter(ctx context.Context, userID uint64) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.WithContext(ctx).Where("submitted_by = ?", userID).Order("id ASC").Find(&list).Error
	return list, err
}

// Resolve 条件更新保证只有一次审核生效：并发的第二个请求会读到已变更的状态，影响行数为 0
func (r *SubmissionRepository) Resolve(ctx context.Context, id uint64, status model.SubmissionStatus, adminID uint64, at time.Time) (*model.Submission, error) {
	var sub model.Submission
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Submission{}).
			Where("id = ? AND status = ?", id, model.SubmissionPending).
			Updates(map[string]any{"status": status, "resolved_by": adminID, "resolved_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&model.Submission{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return repository.ErrNotFound
			}
			return repository.ErrStateChanged
		}
		if err := tx.First(&sub, id).Error; err != nil {
			return err
		}
		if status != model.SubmissionApproved {
			return nil
		}
		// 写 outbox，与状态变更同事务
		payload, err := json.Marshal(model.SpotHandoff{
			SubmissionID: sub.ID,
			SubmittedBy:  sub.SubmittedBy,
			Name:         sub.Name,
			Description:  sub.Description,
			Lat:          sub.Lat,
			Lng:          sub.Lng,
			ImageURL:     sub.ImageURL,
			ApprovedBy:   adminID,
			ApprovedAt:   at.UTC(),
		})
		if err != nil {
			return err
		}
		return tx.Create(&model.SpotOutbox{
			SubmissionID: sub.ID,
			Payload:      string(payload),
			Status:       model.OutboxPending,
		}).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}
