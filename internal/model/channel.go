package model

import "time"

type Channel struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;uniqueIndex:uk_community_channel_name" json:"communityId"`
	Name        string    `gorm:"type:varchar(64) CHARACTER SET utf8mb4 COLLATE utf8mb4_0900_as_ci;not null;uniqueIndex:uk_community_channel_name" json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}
