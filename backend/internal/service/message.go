package service

import (
	"context"

	"github.com/itchan-dev/mboard/shared/domain"
	"github.com/itchan-dev/mboard/shared/logger"
)

type MessageService interface {
	List(ctx context.Context, p Principal, threadId domain.ThreadId, client domain.ClientDetails) ([]domain.Message, error)
	Post(ctx context.Context, p Principal, threadId domain.ThreadId, text domain.MsgText, client domain.ClientDetails) (domain.Message, error)
	Edit(ctx context.Context, p Principal, id domain.MsgId, text domain.MsgText, client domain.ClientDetails) (domain.Message, error)
	Delete(ctx context.Context, p Principal, id domain.MsgId, client domain.ClientDetails) error
}

type Message struct {
	storage   MessageStorage
	validator MessageValidator
}

// MessageStorage performs each check-then-write as one compound operation.
type MessageStorage interface {
	ListMessages(ctx context.Context, threadId domain.ThreadId) ([]domain.Message, error)
	PostMessage(ctx context.Context, creationData domain.MessageCreationData) (domain.Message, error)
	EditMessage(ctx context.Context, edit domain.MessageEdit) (domain.Message, error)
	DeleteMessage(ctx context.Context, deletion domain.MessageDeletion) error
}

type MessageValidator interface {
	Text(text domain.MsgText) error
	MessageId(id domain.MsgId) error
	ThreadId(id domain.ThreadId) error
}

func NewMessage(storage MessageStorage, validator MessageValidator) MessageService {
	return &Message{storage, validator}
}

func (b *Message) List(ctx context.Context, p Principal, threadId domain.ThreadId, client domain.ClientDetails) ([]domain.Message, error) {
	if err := requireScope(p, domain.ScopeReader); err != nil {
		return nil, err
	}
	if err := b.validator.ThreadId(threadId); err != nil {
		return nil, err
	}
	logger.Log.Info("user is listing messages", "user", p.Subject(), "ip", client.IpAddress, "thread_id", threadId)

	messages, err := b.storage.ListMessages(ctx, threadId)
	if err != nil {
		return nil, storageError("list messages", err)
	}
	return messages, nil
}

func (b *Message) Post(ctx context.Context, p Principal, threadId domain.ThreadId, text domain.MsgText, client domain.ClientDetails) (domain.Message, error) {
	if err := requireScope(p, domain.ScopeWriter); err != nil {
		return domain.Message{}, err
	}
	if err := b.validator.ThreadId(threadId); err != nil {
		return domain.Message{}, err
	}
	if err := b.validator.Text(text); err != nil {
		return domain.Message{}, err
	}
	logger.Log.Info("user is posting message", "user", p.Subject(), "ip", client.IpAddress, "thread_id", threadId)

	msg, err := b.storage.PostMessage(ctx, domain.MessageCreationData{
		ThreadId: threadId,
		Author:   p.Subject(),
		Text:     text,
		Client:   client,
	})
	if err != nil {
		return domain.Message{}, storageError("post message", err)
	}
	return msg, nil
}

func (b *Message) Edit(ctx context.Context, p Principal, id domain.MsgId, text domain.MsgText, client domain.ClientDetails) (domain.Message, error) {
	if err := requireScope(p, domain.ScopeWriter); err != nil {
		return domain.Message{}, err
	}
	if err := b.validator.MessageId(id); err != nil {
		return domain.Message{}, err
	}
	if err := b.validator.Text(text); err != nil {
		return domain.Message{}, err
	}
	logger.Log.Info("user is editing message", "user", p.Subject(), "ip", client.IpAddress, "message_id", id)

	msg, err := b.storage.EditMessage(ctx, domain.MessageEdit{Id: id, Editor: p.Subject(), Text: text})
	if err != nil {
		return domain.Message{}, storageError("edit message", err)
	}
	return msg, nil
}

func (b *Message) Delete(ctx context.Context, p Principal, id domain.MsgId, client domain.ClientDetails) error {
	if err := requireScope(p, domain.ScopeWriter); err != nil {
		return err
	}
	if err := b.validator.MessageId(id); err != nil {
		return err
	}
	logger.Log.Info("user is deleting message", "user", p.Subject(), "ip", client.IpAddress, "message_id", id, "admin", p.IsAdmin())

	return storageError("delete message", b.storage.DeleteMessage(ctx, domain.MessageDeletion{
		Id:      id,
		By:      p.Subject(),
		ByAdmin: p.IsAdmin(),
	}))
}
