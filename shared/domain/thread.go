package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Title     ThreadTitle
	CreatorId UserId
}

type Thread struct {
	Id         ThreadId
	Title      ThreadTitle
	CreatorId  UserId
	CreatedAt  time.Time
	LastPostAt time.Time
	IsPinned   bool
	IsLocked   bool
}
