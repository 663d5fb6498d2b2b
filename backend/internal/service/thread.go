package service

import (
	"context"

	"github.com/itchan-dev/mboard/shared/domain"
	"github.com/itchan-dev/mboard/shared/logger"
)

type ThreadService interface {
	List(ctx context.Context, p Principal, client domain.ClientDetails) ([]domain.Thread, error)
	Create(ctx context.Context, p Principal, title domain.ThreadTitle, client domain.ClientDetails) (domain.Thread, error)
	SetLocked(ctx context.Context, p Principal, id domain.ThreadId, locked bool, client domain.ClientDetails) error
	SetPinned(ctx context.Context, p Principal, id domain.ThreadId, pinned bool, client domain.ClientDetails) error
}

type Thread struct {
	storage   ThreadStorage
	validator ThreadValidator
}

type ThreadStorage interface {
	ListThreads(ctx context.Context) ([]domain.Thread, error)
	CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error)
	SetThreadLocked(ctx context.Context, id domain.ThreadId, locked bool) error
	SetThreadPinned(ctx context.Context, id domain.ThreadId, pinned bool) error
}

type ThreadValidator interface {
	Title(title domain.ThreadTitle) error
	ThreadId(id domain.ThreadId) error
}

func NewThread(storage ThreadStorage, validator ThreadValidator) ThreadService {
	return &Thread{storage, validator}
}

func (b *Thread) List(ctx context.Context, p Principal, client domain.ClientDetails) ([]domain.Thread, error) {
	if err := requireScope(p, domain.ScopeReader); err != nil {
		return nil, err
	}
	logger.Log.Info("user is listing threads", "user", p.Subject(), "ip", client.IpAddress)

	threads, err := b.storage.ListThreads(ctx)
	if err != nil {
		return nil, storageError("list threads", err)
	}
	return threads, nil
}

func (b *Thread) Create(ctx context.Context, p Principal, title domain.ThreadTitle, client domain.ClientDetails) (domain.Thread, error) {
	if err := requireScope(p, domain.ScopeWriter); err != nil {
		return domain.Thread{}, err
	}
	if err := b.validator.Title(title); err != nil {
		return domain.Thread{}, err
	}
	logger.Log.Info("user is creating thread", "user", p.Subject(), "ip", client.IpAddress, "title", title)

	thread, err := b.storage.CreateThread(ctx, domain.ThreadCreationData{Title: title, CreatorId: p.Subject()})
	if err != nil {
		return domain.Thread{}, storageError("create thread", err)
	}
	return thread, nil
}

func (b *Thread) SetLocked(ctx context.Context, p Principal, id domain.ThreadId, locked bool, client domain.ClientDetails) error {
	if err := requireScope(p, domain.ScopeEditor); err != nil {
		return err
	}
	if err := b.validator.ThreadId(id); err != nil {
		return err
	}
	logger.Log.Info("user is changing thread lock", "user", p.Subject(), "ip", client.IpAddress, "thread_id", id, "locked", locked)

	return storageError("lock thread", b.storage.SetThreadLocked(ctx, id, locked))
}

func (b *Thread) SetPinned(ctx context.Context, p Principal, id domain.ThreadId, pinned bool, client domain.ClientDetails) error {
	if err := requireScope(p, domain.ScopeEditor); err != nil {
		return err
	}
	if err := b.validator.ThreadId(id); err != nil {
		return err
	}
	logger.Log.Info("user is changing thread pin", "user", p.Subject(), "ip", client.IpAddress, "thread_id", id, "pinned", pinned)

	return storageError("pin thread", b.storage.SetThreadPinned(ctx, id, pinned))
}
