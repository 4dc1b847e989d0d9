package model

import "time"

// Community 即国家社区
type Community struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	// Name 唯一且不区分大小写，与内存实现的 EqualFold 一致
	Name      string `gorm:"type:varchar(64) CHARACTER SET utf8mb4 COLLATE utf8mb4_0900_as_ci;uniqueIndex;not null" json:"name"`
	FlagEmoji string `gorm:"size:32" json:"flagEmoji"`
	CreatorID uint64 `gorm:"not null;index" json:"-"`
	// MemberCount 每次读取时由 community_members 实时统计，不落库
	MemberCount int64     `gorm:"->;-:migration" json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}

// CommunityMember 成员关系，(community_id, user_id) 唯一
type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	CreatedAt   time.Time
}
