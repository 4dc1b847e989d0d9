package memory

import (
	"context"
	"time"

	"OWS_Community/internal/repository"
)

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Save(_ context.Context, userID uint64, token string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[userID] = session{token: token, expiresAt: r.s.now().Add(ttl)}
	return nil
}

func (r *sessionRepo) Get(_ context.Context, userID uint64) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.live(r.s.sessions, userID)
}

func (r *sessionRepo) SaveRefresh(_ context.Context, userID uint64, tokenID string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.refresh[userID] = session{token: tokenID, expiresAt: r.s.now().Add(ttl)}
	return nil
}

func (r *sessionRepo) GetRefresh(_ context.Context, userID uint64) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.live(r.s.refresh, userID)
}

// live 读取未过期的记录，过期的顺手删掉
func (r *sessionRepo) live(m map[uint64]session, userID uint64) (string, error) {
	sess, ok := m[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	if !r.s.now().Before(sess.expiresAt) {
		delete(m, userID)
		return "", repository.ErrNotFound
	}
	return sess.token, nil
}

func (r *sessionRepo) Extend(_ context.Context, userID uint64, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[userID]; ok {
		sess.expiresAt = r.s.now().Add(ttl)
		r.s.sessions[userID] = sess
	}
	return nil
}

func (r *sessionRepo) Delete(_ context.Context, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, userID)
	delete(r.s.refresh, userID)
	return nil
}

type lockRepo struct{ s *Store }

func (r *lockRepo) Acquire(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if held, ok := r.s.locks[key]; ok && r.s.now().Before(held.expiresAt) {
		return false, nil
	}
	r.s.locks[key] = session{token: token, expiresAt: r.s.now().Add(ttl)}
	return true, nil
}

// Release 只释放自己持有的锁
func (r *lockRepo) Release(_ context.Context, key, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if held, ok := r.s.locks[key]; ok && held.token == token {
		delete(r.s.locks, key)
	}
	return nil
}
