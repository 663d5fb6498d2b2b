package domain

import (
	"fmt"
	"time"
)

// for debug
func (m *Message) String() string {
	edited := "never"
	if m.EditedAt != nil {
		edited = m.EditedAt.Format(time.StampMilli)
	}
	return fmt.Sprintf("[id:%d, thread:%d, author:%s, text:%s, created:%s, edited:%s, deleted:%t]",
		m.Id, m.ThreadId, m.Author, m.Text, m.CreatedAt.Format(time.StampMilli), edited, m.IsDeleted)
}

func (t *Thread) String() string {
	return fmt.Sprintf("[id:%d, title:%s, creator:%s, last_post:%s, pinned:%t, locked:%t]",
		t.Id, t.Title, t.CreatorId, t.LastPostAt.Format(time.StampMilli), t.IsPinned, t.IsLocked)
}
