package domain

import (
	"time"
)

// ClientDetails describes where a request came from.
type ClientDetails struct {
	IpAddress string
	UserAgent string
}

type MessageCreationData struct {
	ThreadId ThreadId
	Author   UserId
	Text     MsgText
	Client   ClientDetails
}

// MessageEdit replaces the text of a message. Only the author may edit.
type MessageEdit struct {
	Id     MsgId
	Editor UserId
	Text   MsgText
}

// MessageDeletion soft-deletes a message. The author or an admin may delete.
type MessageDeletion struct {
	Id      MsgId
	By      UserId
	ByAdmin bool
}

type Message struct {
	Id        MsgId
	ThreadId  ThreadId
	Author    UserId
	Text      MsgText
	Client    ClientDetails
	CreatedAt time.Time
	EditedAt  *time.Time
	IsDeleted bool
}
