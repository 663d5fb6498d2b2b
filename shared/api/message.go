package api

import (
	"time"

	"github.com/itchan-dev/mboard/shared/domain"
)

// Request DTOs

type PostMessageRequest struct {
	ThreadId domain.ThreadId `json:"threadId" validate:"required,gt=0"`
	Content  string          `json:"content" validate:"required"`
}

type EditMessageRequest struct {
	MessageId domain.MsgId `json:"messageId" validate:"required,gt=0"`
	Content   string       `json:"content" validate:"required"`
}

type DeleteMessageRequest struct {
	MessageId domain.MsgId `json:"messageId" validate:"required,gt=0"`
}

// Response DTOs

type MessageResponse struct {
	MessageId   domain.MsgId    `json:"messageId"`
	ThreadId    domain.ThreadId `json:"threadId"`
	UserId      domain.UserId   `json:"userId"`
	Content     string          `json:"content"`
	ContentHtml string          `json:"contentHtml"`
	IpAddress   string          `json:"ipAddress"`
	UserAgent   string          `json:"userAgent"`
	CreatedAt   time.Time       `json:"createdAt"`
	EditedAt    *time.Time      `json:"editedAt"`
}

// NewMessageResponse maps a stored message; html is its rendered content.
func NewMessageResponse(m domain.Message, html string) MessageResponse {
	return MessageResponse{
		MessageId:   m.Id,
		ThreadId:    m.ThreadId,
		UserId:      m.Author,
		Content:     m.Text,
		ContentHtml: html,
		IpAddress:   m.Client.IpAddress,
		UserAgent:   m.Client.UserAgent,
		CreatedAt:   m.CreatedAt,
		EditedAt:    m.EditedAt,
	}
}

type PostMessageResponse struct {
	MessageId domain.MsgId `json:"messageId"`
}

// EmptyResponse is the body of writes that return nothing.
type EmptyResponse struct{}
