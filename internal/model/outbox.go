package model

import "time"

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// SpotHandoff 审核通过后交给 Spot Catalog 的数据
type SpotHandoff struct {
	SubmissionID uint64    `json:"submission_id"`
	SubmittedBy  uint64    `json:"submitted_by"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	ImageURL     string    `json:"image_url"`
	ApprovedBy   uint64    `json:"approved_by"`
	ApprovedAt   time.Time `json:"approved_at"`
}

// SpotOutbox 审核通过事件表，与状态变更同事务写入，submission_id 唯一保证只写一次
type SpotOutbox struct {
	ID           uint64 `gorm:"primaryKey"`
	SubmissionID uint64 `gorm:"not null;uniqueIndex"`
	Payload      string `gorm:"type:json;not null"`
	Status       int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry        int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SpotOutbox) TableName() string { return "spot_outbox" }
