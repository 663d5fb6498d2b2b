package service

import (
	"context"
	"slices"
	"sync"

	"github.com/itchan-dev/mboard/shared/domain"
)

// Mock structs

type MockThreadStorage struct {
	ListThreadsFunc     func(ctx context.Context) ([]domain.Thread, error)
	CreateThreadFunc    func(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error)
	SetThreadLockedFunc func(ctx context.Context, id domain.ThreadId, locked bool) error
	SetThreadPinnedFunc func(ctx context.Context, id domain.ThreadId, pinned bool) error

	mu    sync.Mutex
	calls []string
}

func (m *MockThreadStorage) track(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *MockThreadStorage) Called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.calls, name)
}

func (m *MockThreadStorage) ListThreads(ctx context.Context) ([]domain.Thread, error) {
	m.track("ListThreads")
	if m.ListThreadsFunc != nil {
		return m.ListThreadsFunc(ctx)
	}
	return nil, nil
}

func (m *MockThreadStorage) CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error) {
	m.track("CreateThread")
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx, creationData)
	}
	return domain.Thread{Id: 1, Title: creationData.Title, CreatorId: creationData.CreatorId}, nil
}

func (m *MockThreadStorage) SetThreadLocked(ctx context.Context, id domain.ThreadId, locked bool) error {
	m.track("SetThreadLocked")
	if m.SetThreadLockedFunc != nil {
		return m.SetThreadLockedFunc(ctx, id, locked)
	}
	return nil
}

func (m *MockThreadStorage) SetThreadPinned(ctx context.Context, id domain.ThreadId, pinned bool) error {
	m.track("SetThreadPinned")
	if m.SetThreadPinnedFunc != nil {
		return m.SetThreadPinnedFunc(ctx, id, pinned)
	}
	return nil
}

type MockThreadValidator struct {
	TitleFunc    func(title domain.ThreadTitle) error
	ThreadIdFunc func(id domain.ThreadId) error
}

func (m *MockThreadValidator) Title(title domain.ThreadTitle) error {
	if m.TitleFunc != nil {
		return m.TitleFunc(title)
	}
	return nil
}

func (m *MockThreadValidator) ThreadId(id domain.ThreadId) error {
	if m.ThreadIdFunc != nil {
		return m.ThreadIdFunc(id)
	}
	return nil
}

type MockMessageStorage struct {
	ListMessagesFunc  func(ctx context.Context, threadId domain.ThreadId) ([]domain.Message, error)
	PostMessageFunc   func(ctx context.Context, creationData domain.MessageCreationData) (domain.Message, error)
	EditMessageFunc   func(ctx context.Context, edit domain.MessageEdit) (domain.Message, error)
	DeleteMessageFunc func(ctx context.Context, deletion domain.MessageDeletion) error

	mu    sync.Mutex
	calls []string
}

func (m *MockMessageStorage) track(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *MockMessageStorage) Called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.calls, name)
}

func (m *MockMessageStorage) ListMessages(ctx context.Context, threadId domain.ThreadId) ([]domain.Message, error) {
	m.track("ListMessages")
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, threadId)
	}
	return nil, nil
}

func (m *MockMessageStorage) PostMessage(ctx context.Context, creationData domain.MessageCreationData) (domain.Message, error) {
	m.track("PostMessage")
	if m.PostMessageFunc != nil {
		return m.PostMessageFunc(ctx, creationData)
	}
	return domain.Message{Id: 1, ThreadId: creationData.ThreadId, Author: creationData.Author, Text: creationData.Text}, nil
}

func (m *MockMessageStorage) EditMessage(ctx context.Context, edit domain.MessageEdit) (domain.Message, error) {
	m.track("EditMessage")
	if m.EditMessageFunc != nil {
		return m.EditMessageFunc(ctx, edit)
	}
	return domain.Message{Id: edit.Id, Author: edit.Editor, Text: edit.Text}, nil
}

func (m *MockMessageStorage) DeleteMessage(ctx context.Context, deletion domain.MessageDeletion) error {
	m.track("DeleteMessage")
	if m.DeleteMessageFunc != nil {
		return m.DeleteMessageFunc(ctx, deletion)
	}
	return nil
}

type MockMessageValidator struct {
	TextFunc      func(text domain.MsgText) error
	MessageIdFunc func(id domain.MsgId) error
	ThreadIdFunc  func(id domain.ThreadId) error
}

func (m *MockMessageValidator) Text(text domain.MsgText) error {
	if m.TextFunc != nil {
		return m.TextFunc(text)
	}
	return nil
}

func (m *MockMessageValidator) MessageId(id domain.MsgId) error {
	if m.MessageIdFunc != nil {
		return m.MessageIdFunc(id)
	}
	return nil
}

func (m *MockMessageValidator) ThreadId(id domain.ThreadId) error {
	if m.ThreadIdFunc != nil {
		return m.ThreadIdFunc(id)
	}
	return nil
}

var (
	reader = &domain.User{Id: "reader", Scopes: []domain.Scope{domain.ScopeReader}}
	alice  = &domain.User{Id: "alice", Scopes: []domain.Scope{domain.ScopeReader, domain.ScopeWriter}}
	editor = &domain.User{Id: "mod", Scopes: []domain.Scope{domain.ScopeReader, domain.ScopeWriter, domain.ScopeEditor}}
	admin  = &domain.User{Id: "root", Scopes: []domain.Scope{domain.ScopeReader, domain.ScopeWriter}, Admin: true}
	client = domain.ClientDetails{IpAddress: "10.0.0.1", UserAgent: "test"}
)
