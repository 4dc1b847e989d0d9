package model

import "time"

// Message 频道消息，只追加；管理员删除为硬删除
type Message struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	ChannelID  uint64    `gorm:"not null;index:idx_channel_id,priority:1" json:"channelId"`
	AuthorID   uint64    `gorm:"not null;index" json:"authorId"`
	AuthorName string    `gorm:"size:64;not null" json:"authorName"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}
