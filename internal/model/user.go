package model

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// User 账号即身份，Blocked 是审核模块唯一会修改的字段
type User struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:64;not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Role       string    `gorm:"size:16;not null;default:member" json:"role"`
	Blocked    bool      `gorm:"not null;default:false;index" json:"blocked"`
	Bio        string    `gorm:"size:500" json:"bio"`
	Visibility string    `gorm:"size:16;not null;default:public" json:"visibility"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
