package sqlstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/itchan-dev/mboard/shared/domain"
	internal_errors "github.com/itchan-dev/mboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// factory returns an empty, migrated storage.
type factory func(t *testing.T) *Storage

// runStorageSuite exercises the storage contract against any driver.
func runStorageSuite(t *testing.T, newStorage factory) {
	t.Run("CreateThread", func(t *testing.T) { testCreateThread(t, newStorage(t)) })
	t.Run("ListThreadsOrdering", func(t *testing.T) { testListThreadsOrdering(t, newStorage(t)) })
	t.Run("SetThreadFlags", func(t *testing.T) { testSetThreadFlags(t, newStorage(t)) })
	t.Run("PostMessage", func(t *testing.T) { testPostMessage(t, newStorage(t)) })
	t.Run("PostMessageLocked", func(t *testing.T) { testPostMessageLocked(t, newStorage(t)) })
	t.Run("PostMessageClockSkew", func(t *testing.T) { testPostMessageClockSkew(t, newStorage(t)) })
	t.Run("EditMessage", func(t *testing.T) { testEditMessage(t, newStorage(t)) })
	t.Run("DeleteMessage", func(t *testing.T) { testDeleteMessage(t, newStorage(t)) })
	t.Run("ConcurrentWriters", func(t *testing.T) { testConcurrentWriters(t, newStorage(t)) })
}

// fakeClock returns strictly increasing times starting at base.
func fakeClock(base time.Time) func() time.Time {
	var mu sync.Mutex
	next := base
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		next = next.Add(time.Second)
		return next
	}
}

func mustCreateThread(t *testing.T, s *Storage, title, creator string) domain.Thread {
	t.Helper()
	thread, err := s.CreateThread(context.Background(), domain.ThreadCreationData{Title: title, CreatorId: creator})
	require.NoError(t, err)
	return thread
}

func mustPost(t *testing.T, s *Storage, threadId domain.ThreadId, author, text string) domain.Message {
	t.Helper()
	msg, err := s.PostMessage(context.Background(), domain.MessageCreationData{
		ThreadId: threadId,
		Author:   author,
		Text:     text,
		Client:   domain.ClientDetails{IpAddress: "127.0.0.1", UserAgent: "test-agent"},
	})
	require.NoError(t, err)
	return msg
}

func requireKind(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, target)
}

func testCreateThread(t *testing.T, s *Storage) {
	ctx := context.Background()
	thread := mustCreateThread(t, s, "Welcome", "alice")

	assert.Equal(t, domain.ThreadId(1), thread.Id)
	assert.Equal(t, "alice", thread.CreatorId)
	assert.Equal(t, thread.CreatedAt, thread.LastPostAt)

	stored, err := s.GetThread(ctx, thread.Id)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", stored.Title)
	assert.Equal(t, "alice", stored.CreatorId)
	assert.True(t, stored.CreatedAt.Equal(stored.LastPostAt))
	assert.True(t, stored.CreatedAt.Equal(thread.CreatedAt))
	assert.False(t, stored.IsLocked)
	assert.False(t, stored.IsPinned)

	_, err = s.GetThread(ctx, 999)
	requireKind(t, err, internal_errors.ErrNotFound)
}

func testListThreadsOrdering(t *testing.T, s *Storage) {
	ctx := context.Background()
	s.now = fakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	empty, err := s.ListThreads(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a := mustCreateThread(t, s, "a", "u")
	b := mustCreateThread(t, s, "b", "u")
	c := mustCreateThread(t, s, "c", "u")
	d := mustCreateThread(t, s, "d", "u")

	// a gets the latest post, c is pinned
	mustPost(t, s, a.Id, "u", "bump")
	require.NoError(t, s.SetThreadPinned(ctx, c.Id, true))

	threads, err := s.ListThreads(ctx)
	require.NoError(t, err)
	ids := make([]domain.ThreadId, 0, len(threads))
	for _, th := range threads {
		ids = append(ids, th.Id)
	}
	assert.Equal(t, []domain.ThreadId{c.Id, a.Id, d.Id, b.Id}, ids)

	for i := 1; i < len(threads); i++ {
		prev, cur := threads[i-1], threads[i]
		if prev.IsPinned == cur.IsPinned {
			assert.False(t, prev.LastPostAt.Before(cur.LastPostAt), "lastPostAt must be descending within a group")
		} else {
			assert.True(t, prev.IsPinned, "pinned threads come first")
		}
	}
}

func testSetThreadFlags(t *testing.T, s *Storage) {
	ctx := context.Background()
	thread := mustCreateThread(t, s, "flags", "alice")

	require.NoError(t, s.SetThreadLocked(ctx, thread.Id, true))
	require.NoError(t, s.SetThreadPinned(ctx, thread.Id, true))
	stored, err := s.GetThread(ctx, thread.Id)
	require.NoError(t, err)
	assert.True(t, stored.IsLocked)
	assert.True(t, stored.IsPinned)

	// setting the same value again is not an error
	require.NoError(t, s.SetThreadLocked(ctx, thread.Id, true))

	require.NoError(t, s.SetThreadLocked(ctx, thread.Id, false))
	require.NoError(t, s.SetThreadPinned(ctx, thread.Id, false))
	stored, err = s.GetThread(ctx, thread.Id)
	require.NoError(t, err)
	assert.False(t, stored.IsLocked)
	assert.False(t, stored.IsPinned)

	requireKind(t, s.SetThreadLocked(ctx, 999, true), internal_errors.ErrNotFound)
	requireKind(t, s.SetThreadPinned(ctx, 999, true), internal_errors.ErrNotFound)
}

func testPostMessage(t *testing.T, s *Storage) {
	ctx := context.Background()
	s.now = fakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	thread := mustCreateThread(t, s, "Welcome", "alice")

	first := mustPost(t, s, thread.Id, "bob", "hi")
	assert.Equal(t, "bob", first.Author)
	assert.False(t, first.IsDeleted)

	afterFirst, err := s.GetThread(ctx, thread.Id)
	require.NoError(t, err)
	assert.True(t, afterFirst.LastPostAt.After(thread.LastPostAt))
	assert.True(t, afterFirst.LastPostAt.Equal(first.CreatedAt))

	second := mustPost(t, s, thread.Id, "alice", "hello bob")
	afterSecond, err := s.GetThread(ctx, thread.Id)
	require.NoError(t, err)
	assert.True(t, afterSecond.LastPostAt.After(afterFirst.LastPostAt))

	messages, err := s.ListMessages(ctx, thread.Id)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, first.Id, messages[0].Id)
	assert.Equal(t, second.Id, messages[1].Id)
	assert.Equal(t, "hi", messages[0].Text)
	assert.Equal(t, "127.0.0.1", messages[0].Client.IpAddress)
	assert.Equal(t, "test-agent", messages[0].Client.UserAgent)
	assert.Nil(t, messages[0].EditedAt)

	_, err = s.PostMessage(ctx, domain.MessageCreationData{ThreadId: 999, Author: "bob", Text: "lost"})
	requireKind(t, err, internal_errors.ErrNotFound)

	other, err := s.ListMessages(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testPostMessageLocked(t *testing.T, s *Storage) {
	ctx := context.Background()
	thread := mustCreateThread(t, s, "locked", "alice")
	require.NoError(t, s.SetThreadLocked(ctx, thread.Id, true))

	_, err := s.PostMessage(ctx, domain.MessageCreationData{ThreadId: thread.Id, Author: "alice", Text: "nope"})
	requireKind(t, err, internal_errors.ErrForbidden)

	messages, err := s.ListMessages(ctx, thread.Id)
	require.NoError(t, err)
	assert.Empty(t, messages)

	stored, err := s.GetThread(ctx, thread.Id)
	require.NoError(t, err)
	assert.True(t, stored.LastPostAt.Equal(thread.LastPostAt))
}

func testPostMessageClockSkew(t *testing.T, s *Storage) {
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	thread := mustCreateThread(t, s, "skew", "alice")
	first := mustPost(t, s, thread.Id, "alice", "first")

	// wall clock steps back an hour
	s.now = func() time.Time { return base.Add(-time.Hour) }
	second := mustPost(t, s, thread.Id, "alice", "second")
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))

	stored, err := s.GetThread(ctx, thread.Id)
	require.NoError(t, err)
	assert.True(t, stored.LastPostAt.Equal(base))

	messages, err := s.ListMessages(ctx, thread.Id)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, first.Id, messages[0].Id)
	assert.Equal(t, second.Id, messages[1].Id)
}

func testEditMessage(t *testing.T, s *Storage) {
	ctx := context.Background()
	thread := mustCreateThread(t, s, "Welcome", "alice")
	msg := mustPost(t, s, thread.Id, "bob", "hi")

	_, err := s.EditMessage(ctx, domain.MessageEdit{Id: msg.Id, Editor: "alice", Text: "hacked"})
	requireKind(t, err, internal_errors.ErrForbidden)
	unchanged, err := s.GetMessage(ctx, msg.Id)
	require.NoError(t, err)
	assert.Equal(t, "hi", unchanged.Text)
	assert.Nil(t, unchanged.EditedAt)

	edited, err := s.EditMessage(ctx, domain.MessageEdit{Id: msg.Id, Editor: "bob", Text: "hi all"})
	require.NoError(t, err)
	assert.Equal(t, "hi all", edited.Text)
	require.NotNil(t, edited.EditedAt)

	stored, err := s.GetMessage(ctx, msg.Id)
	require.NoError(t, err)
	assert.Equal(t, "hi all", stored.Text)
	require.NotNil(t, stored.EditedAt)
	assert.True(t, stored.EditedAt.Equal(*edited.EditedAt))

	_, err = s.EditMessage(ctx, domain.MessageEdit{Id: 999, Editor: "bob", Text: "x"})
	requireKind(t, err, internal_errors.ErrNotFound)

	require.NoError(t, s.DeleteMessage(ctx, domain.MessageDeletion{Id: msg.Id, By: "bob"}))
	_, err = s.EditMessage(ctx, domain.MessageEdit{Id: msg.Id, Editor: "bob", Text: "zombie"})
	requireKind(t, err, internal_errors.ErrNotFound)
}

func testDeleteMessage(t *testing.T, s *Storage) {
	ctx := context.Background()
	thread := mustCreateThread(t, s, "Welcome", "alice")
	own := mustPost(t, s, thread.Id, "bob", "mine")
	moderated := mustPost(t, s, thread.Id, "bob", "spam")
	kept := mustPost(t, s, thread.Id, "bob", "kept")

	err := s.DeleteMessage(ctx, domain.MessageDeletion{Id: kept.Id, By: "alice"})
	requireKind(t, err, internal_errors.ErrForbidden)

	require.NoError(t, s.DeleteMessage(ctx, domain.MessageDeletion{Id: own.Id, By: "bob"}))
	require.NoError(t, s.DeleteMessage(ctx, domain.MessageDeletion{Id: moderated.Id, By: "admin", ByAdmin: true}))

	err = s.DeleteMessage(ctx, domain.MessageDeletion{Id: own.Id, By: "bob"})
	requireKind(t, err, internal_errors.ErrNotFound)
	err = s.DeleteMessage(ctx, domain.MessageDeletion{Id: 999, By: "bob"})
	requireKind(t, err, internal_errors.ErrNotFound)

	// rows are kept, only flagged
	stored, err := s.GetMessage(ctx, own.Id)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)

	messages, err := s.ListMessages(ctx, thread.Id)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, kept.Id, messages[0].Id)
}

func testConcurrentWriters(t *testing.T, s *Storage) {
	ctx := context.Background()
	thread := mustCreateThread(t, s, "busy", "alice")

	const writers = 8
	const perWriter = 5
	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := s.PostMessage(ctx, domain.MessageCreationData{
					ThreadId: thread.Id,
					Author:   fmt.Sprintf("user%d", w),
					Text:     fmt.Sprintf("post %d", i),
				})
				errs <- err
			}
		}(w)
	}

	// readers run alongside and must always see a consistent thread
	done := make(chan struct{})
	var readerWg sync.WaitGroup
	readerWg.Add(1)
	go func() {
		defer readerWg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			messages, err := s.ListMessages(ctx, thread.Id)
			if !assert.NoError(t, err) {
				return
			}
			current, err := s.GetThread(ctx, thread.Id)
			if !assert.NoError(t, err) {
				return
			}
			if n := len(messages); n > 0 {
				assert.False(t, current.LastPostAt.Before(messages[n-1].CreatedAt))
			}
		}
	}()

	wg.Wait()
	close(done)
	readerWg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	messages, err := s.ListMessages(ctx, thread.Id)
	require.NoError(t, err)
	assert.Len(t, messages, writers*perWriter)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}
