package memory

import (
	"context"
	"sort"
	"strings"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = r.s.nextID("users")
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = model.RoleMember
	}
	if user.Visibility == "" {
		user.Visibility = model.VisibilityPublic
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uint64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) UpdateProfile(_ context.Context, id uint64, name, bio, visibility string) error {
	return r.update(id, func(u *model.User) {
		u.Name, u.Bio, u.Visibility = name, bio, visibility
	})
}

func (r *userRepo) UpdatePassword(_ context.Context, id uint64, hash string) error {
	return r.update(id, func(u *model.User) { u.Password = hash })
}

func (r *userRepo) SetBlocked(_ context.Context, id uint64, blocked bool) error {
	return r.update(id, func(u *model.User) { u.Blocked = blocked })
}

func (r *userRepo) List(_ context.Context, communityID uint64) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if communityID > 0 {
			if _, ok := r.s.members[memberKey{communityID, u.ID}]; !ok {
				continue
			}
		}
		list = append(list, *u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *userRepo) update(id uint64, fn func(u *model.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = r.s.now()
	return nil
}

type communityRepo struct{ s *Store }

func (r *communityRepo) Create(_ context.Context, c *model.Community) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.communities {
		if strings.EqualFold(existing.Name, c.Name) {
			return repository.ErrDuplicate
		}
	}
	c.ID = r.s.nextID("communities")
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	c.MemberCount = 0
	cp := *c
	r.s.communities[c.ID] = &cp
	return nil
}

func (r *communityRepo) FindByID(_ context.Context, id uint64) (*model.Community, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.communities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	view := r.s.communityView(c)
	return &view, nil
}

func (r *communityRepo) Rename(_ context.Context, id uint64, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.communities[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.s.communities {
		if existing.ID != id && strings.EqualFold(existing.Name, name) {
			return repository.ErrDuplicate
		}
	}
	c.Name = name
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *communityRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.communities[id]; !ok {
		return repository.ErrNotFound
	}
	for chID, ch := range r.s.channels {
		if ch.CommunityID != id {
			continue
		}
		r.s.deleteChannelMessages(chID)
		delete(r.s.channels, chID)
	}
	for k := range r.s.members {
		if k.communityID == id {
			delete(r.s.members, k)
		}
	}
	delete(r.s.communities, id)
	return nil
}

func (r *communityRepo) List(_ context.Context) ([]model.Community, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]model.Community, 0, len(r.s.communities))
	for _, c := range r.s.communities {
		list = append(list, r.s.communityView(c))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type memberRepo struct{ s *Store }

func (r *memberRepo) Join(_ context.Context, communityID, userID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.communities[communityID]; !ok {
		return false, repository.ErrNotFound
	}
	k := memberKey{communityID, userID}
	if _, ok := r.s.members[k]; ok {
		return false, nil
	}
	r.s.members[k] = r.s.now()
	return true, nil
}

func (r *memberRepo) Leave(_ context.Context, communityID, userID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{communityID, userID}
	if _, ok := r.s.members[k]; !ok {
		return false, nil
	}
	delete(r.s.members, k)
	return true, nil
}

func (r *memberRepo) IsMember(_ context.Context, communityID, userID uint64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.members[memberKey{communityID, userID}]
	return ok, nil
}

func (r *memberRepo) CountMembers(_ context.Context, communityID uint64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.memberCount(communityID), nil
}

func (r *memberRepo) ListJoined(_ context.Context, userID uint64) ([]model.Community, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []model.Community{}
	for k := range r.s.members {
		if k.userID != userID {
			continue
		}
		if c, ok := r.s.communities[k.communityID]; ok {
			list = append(list, r.s.communityView(c))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type channelRepo struct{ s *Store }

func (r *channelRepo) Create(_ context.Context, ch *model.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.communities[ch.CommunityID]; !ok {
		return repository.ErrNotFound
	}
	if r.s.channelNameTaken(ch.CommunityID, 0, ch.Name) {
		return repository.ErrDuplicate
	}
	ch.ID = r.s.nextID("channels")
	ch.CreatedAt = r.s.now()
	ch.UpdatedAt = ch.CreatedAt
	cp := *ch
	r.s.channels[ch.ID] = &cp
	return nil
}

func (r *channelRepo) FindByID(_ context.Context, id uint64) (*model.Channel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ch, ok := r.s.channels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (r *channelRepo) Rename(_ context.Context, communityID, channelID uint64, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ch, ok := r.s.channels[channelID]
	if !ok || ch.CommunityID != communityID {
		return repository.ErrNotFound
	}
	if r.s.channelNameTaken(communityID, channelID, name) {
		return repository.ErrDuplicate
	}
	ch.Name = name
	ch.UpdatedAt = r.s.now()
	return nil
}

func (r *channelRepo) Delete(_ context.Context, communityID, channelID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ch, ok := r.s.channels[channelID]
	if !ok || ch.CommunityID != communityID {
		return repository.ErrNotFound
	}
	r.s.deleteChannelMessages(channelID)
	delete(r.s.channels, channelID)
	return nil
}

func (r *channelRepo) ListByCommunity(_ context.Context, communityID uint64) ([]model.Channel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []model.Channel{}
	for _, ch := range r.s.channels {
		if ch.CommunityID == communityID {
			list = append(list, *ch)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *Store) channelNameTaken(communityID, exceptID uint64, name string) bool {
	for _, ch := range s.channels {
		if ch.CommunityID == communityID && ch.ID != exceptID && strings.EqualFold(ch.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) deleteChannelMessages(channelID uint64) {
	for id, m := range s.messages {
		if m.ChannelID == channelID {
			delete(s.messages, id)
		}
	}
}

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(_ context.Context, msg *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.channels[msg.ChannelID]; !ok {
		return repository.ErrNotFound
	}
	msg.ID = r.s.nextID("messages")
	msg.CreatedAt = r.s.now()
	cp := *msg
	r.s.messages[msg.ID] = &cp
	return nil
}

func (r *messageRepo) FindByID(_ context.Context, id uint64) (*model.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

// ListVisible 与 MySQL 实现一致：作者不存在或被封禁的消息都不返回
func (r *messageRepo) ListVisible(_ context.Context, channelID uint64) ([]model.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []model.Message{}
	for _, m := range r.s.messages {
		if m.ChannelID != channelID {
			continue
		}
		author, ok := r.s.users[m.AuthorID]
		if !ok || author.Blocked {
			continue
		}
		list = append(list, *m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *messageRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.messages, id)
	return nil
}
