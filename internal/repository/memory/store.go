// Package memory 提供进程内仓储实现，用于本地开发（storage.driver=memory）与测试。
// 所有表共用一把锁，每个操作天然串行化。
package memory

import (
	"context"
	"sync"
	"time"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	seq map[string]uint64

	users       map[uint64]*model.User
	communities map[uint64]*model.Community
	members     map[memberKey]time.Time
	channels    map[uint64]*model.Channel
	messages    map[uint64]*model.Message
	submissions map[uint64]*model.Submission
	outbox      map[uint64]*model.SpotOutbox
	sessions    map[uint64]session
	refresh     map[uint64]session
	locks       map[string]session

	now func() time.Time
}

type memberKey struct {
	communityID uint64
	userID      uint64
}

type session struct {
	token     string
	expiresAt time.Time
}

func NewStore() *Store {
	return &Store{
		seq:         make(map[string]uint64),
		users:       make(map[uint64]*model.User),
		communities: make(map[uint64]*model.Community),
		members:     make(map[memberKey]time.Time),
		channels:    make(map[uint64]*model.Channel),
		messages:    make(map[uint64]*model.Message),
		submissions: make(map[uint64]*model.Submission),
		outbox:      make(map[uint64]*model.SpotOutbox),
		sessions:    make(map[uint64]session),
		refresh:     make(map[uint64]session),
		locks:       make(map[string]session),
		now:         time.Now,
	}
}

// NewRepositories 返回共享同一个 Store 的全部仓储
func NewRepositories() *repository.Repositories {
	return NewStore().Repositories()
}

func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:       &userRepo{s},
		Communities: &communityRepo{s},
		Members:     &memberRepo{s},
		Channels:    &channelRepo{s},
		Messages:    &messageRepo{s},
		Submissions: &submissionRepo{s},
		Outbox:      &outboxRepo{s},
		Sessions:    &sessionRepo{s},
		Locker:      &lockRepo{s},
		Ping:        func(context.Context) error { return nil },
	}
}

func (s *Store) nextID(table string) uint64 {
	s.seq[table]++
	return s.seq[table]
}

// memberCount 调用方需持有锁
func (s *Store) memberCount(communityID uint64) int64 {
	var n int64
	for k := range s.members {
		if k.communityID == communityID {
			n++
		}
	}
	return n
}

func (s *Store) communityView(c *model.Community) model.Community {
	out := *c
	out.MemberCount = s.memberCount(c.ID)
	return out
}
