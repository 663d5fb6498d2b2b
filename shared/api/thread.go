package api

import (
	"time"

	"github.com/itchan-dev/mboard/shared/domain"
)

// Request DTOs

type CreateThreadRequest struct {
	Title string `json:"title" validate:"required,max=256"`
}

type ListMessagesQuery struct {
	ThreadId domain.ThreadId `json:"threadId" validate:"required,gt=0"`
}

type SetThreadLockRequest struct {
	ThreadId domain.ThreadId `json:"threadId" validate:"required,gt=0"`
	IsLocked bool            `json:"isLocked"`
}

type SetThreadPinRequest struct {
	ThreadId domain.ThreadId `json:"threadId" validate:"required,gt=0"`
	IsPinned bool            `json:"isPinned"`
}

// Response DTOs

type ThreadResponse struct {
	ThreadId      domain.ThreadId `json:"threadId"`
	Title         string          `json:"title"`
	CreatorUserId domain.UserId   `json:"creatorUserId"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastPostAt    time.Time       `json:"lastPostAt"`
	IsPinned      bool            `json:"isPinned"`
	IsLocked      bool            `json:"isLocked"`
}

func NewThreadResponse(t domain.Thread) ThreadResponse {
	return ThreadResponse{
		ThreadId:      t.Id,
		Title:         t.Title,
		CreatorUserId: t.CreatorId,
		CreatedAt:     t.CreatedAt,
		LastPostAt:    t.LastPostAt,
		IsPinned:      t.IsPinned,
		IsLocked:      t.IsLocked,
	}
}

type CreateThreadResponse struct {
	ThreadId domain.ThreadId `json:"threadId"`
}

type ThreadLockResponse struct {
	ThreadId domain.ThreadId `json:"threadId"`
	IsLocked bool            `json:"isLocked"`
}

type ThreadPinResponse struct {
	ThreadId domain.ThreadId `json:"threadId"`
	IsPinned bool            `json:"isPinned"`
}
