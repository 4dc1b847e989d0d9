package model

import "time"

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	}
	return false
}

// Submission 用户提交的待审核地点（spot inbox）
type Submission struct {
	ID          uint64           `gorm:"primaryKey" json:"id"`
	SubmittedBy uint64           `gorm:"not null;index" json:"submittedBy"`
	Name        string           `gorm:"size:128;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Lat         float64          `gorm:"not null" json:"lat"`
	Lng         float64          `gorm:"not null" json:"lng"`
	ImageURL    string           `gorm:"size:512" json:"imageUrl"`
	Status      SubmissionStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	// 审核结果保留用于审计
	ResolvedBy *uint64    `json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"-"`
}
