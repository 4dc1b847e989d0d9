package mysql

import (
	"context"
	"errors"
	"time"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"

	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// InitDB 打开连接池并做一次 Ping
func InitDB(opt Options) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(opt.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opt.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opt.MaxOpenConns)
	}
	if opt.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opt.MaxIdleConns)
	}
	if opt.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opt.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate 自动建表（开发阶段 OK）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Channel{},
		&model.Message{},
		&model.Submission{},
		&model.SpotOutbox{},
	)
}

// NewRepositories 组装 MySQL 仓储；Sessions 与 Locker 由 redis 包提供
func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Users:       &UserRepository{DB: db},
		Communities: &CommunityRepository{DB: db},
		Members:     &CommunityMemberRepository{DB: db},
		Channels:    &ChannelRepository{DB: db},
		Messages:    &MessageRepository{DB: db},
		Submissions: &SubmissionRepository{DB: db},
		Outbox:      &OutboxRepository{DB: db},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// translate 把 gorm 错误转换成仓储层哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	}
	return err
}

// communityWithCount 成员数每次读取时实时统计
const communityWithCount = "communities.*, (SELECT COUNT(*) FROM community_members m WHERE m.community_id = communities.id) AS member_count"
