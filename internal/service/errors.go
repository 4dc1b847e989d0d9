package service

import (
	"errors"
	"fmt"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// ErrChannelLocked 非成员读取频道内容，客户端展示为“加入后解锁”
var ErrChannelLocked = fmt.Errorf("%w: join the community to view this channel", ErrForbidden)

var ErrBlocked = fmt.Errorf("%w: your access has been blocked", ErrForbidden)

// translate 仓储层哨兵错误转换为业务错误
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	case errors.Is(err, repository.ErrStateChanged):
		return fmt.Errorf("%w: %s already resolved", ErrConflict, what)
	}
	return err
}

func requireCaller(caller *model.User) error {
	if caller == nil {
		return fmt.Errorf("%w: login required", ErrUnauthorized)
	}
	return nil
}

func requireAdmin(caller *model.User) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin only", ErrForbidden)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
