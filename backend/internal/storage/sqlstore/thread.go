package sqlstore

import (
	"context"
	"fmt"

	"github.com/itchan-dev/mboard/shared/domain"
	internal_errors "github.com/itchan-dev/mboard/shared/errors"
	"github.com/jmoiron/sqlx"
)

type threadRow struct {
	Id         domain.ThreadId `db:"thread_id"`
	Title      string          `db:"title"`
	CreatorId  domain.UserId   `db:"creator_user_id"`
	CreatedAt  Timestamp       `db:"created_at"`
	LastPostAt Timestamp       `db:"last_post_at"`
	IsPinned   bool            `db:"is_pinned"`
	IsLocked   bool            `db:"is_locked"`
}

func (r threadRow) toDomain() domain.Thread {
	return domain.Thread{
		Id:         r.Id,
		Title:      r.Title,
		CreatorId:  r.CreatorId,
		CreatedAt:  r.CreatedAt.Time,
		LastPostAt: r.LastPostAt.Time,
		IsPinned:   r.IsPinned,
		IsLocked:   r.IsLocked,
	}
}

const threadColumns = `thread_id, title, creator_user_id, created_at, last_post_at, is_pinned, is_locked`

// ListThreads returns all threads, pinned first, then by latest post.
func (s *Storage) ListThreads(ctx context.Context) ([]domain.Thread, error) {
	var threads []domain.Thread
	err := s.guard.Read(ctx, func(ctx context.Context) error {
		var rows []threadRow
		err := sqlx.SelectContext(ctx, s.db, &rows, `
			SELECT `+threadColumns+`
			FROM threads
			ORDER BY is_pinned DESC, last_post_at DESC, thread_id DESC
		`)
		if err != nil {
			return fmt.Errorf("failed to list threads: %w", err)
		}
		threads = make([]domain.Thread, 0, len(rows))
		for _, r := range rows {
			threads = append(threads, r.toDomain())
		}
		return nil
	})
	return threads, err
}

// GetThread returns a single thread.
func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	var thread domain.Thread
	err := s.guard.Read(ctx, func(ctx context.Context) error {
		var row threadRow
		err := sqlx.GetContext(ctx, s.db, &row, s.db.Rebind(`
			SELECT `+threadColumns+`
			FROM threads
			WHERE thread_id = ?
		`), id)
		if err != nil {
			if isNoRows(err) {
				return internal_errors.NotFound("Thread not found")
			}
			return fmt.Errorf("failed to get thread: %w", err)
		}
		thread = row.toDomain()
		return nil
	})
	return thread, err
}

// CreateThread inserts a thread whose lastPostAt equals its createdAt.
func (s *Storage) CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error) {
	var thread domain.Thread
	err := s.guard.Write(ctx, func(ctx context.Context) error {
		now := s.timestamp()
		var id domain.ThreadId
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
			INSERT INTO threads (title, creator_user_id, created_at, last_post_at)
			VALUES (?, ?, ?, ?)
			RETURNING thread_id
		`), creationData.Title, creationData.CreatorId, now, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert thread: %w", err)
		}
		thread = domain.Thread{
			Id:         id,
			Title:      creationData.Title,
			CreatorId:  creationData.CreatorId,
			CreatedAt:  now.Time,
			LastPostAt: now.Time,
		}
		return nil
	})
	return thread, err
}

// SetThreadLocked sets isLocked. A missing thread is NotFound.
func (s *Storage) SetThreadLocked(ctx context.Context, id domain.ThreadId, locked bool) error {
	return s.setThreadFlag(ctx, "is_locked", id, locked)
}

// SetThreadPinned sets isPinned. A missing thread is NotFound.
func (s *Storage) SetThreadPinned(ctx context.Context, id domain.ThreadId, pinned bool) error {
	return s.setThreadFlag(ctx, "is_pinned", id, pinned)
}

// column is always one of the constants above, never user input.
func (s *Storage) setThreadFlag(ctx context.Context, column string, id domain.ThreadId, value bool) error {
	return s.guard.Write(ctx, func(ctx context.Context) error {
		result, err := s.db.ExecContext(ctx, s.db.Rebind(
			fmt.Sprintf(`UPDATE threads SET %s = ? WHERE thread_id = ?`, column),
		), value, id)
		if err != nil {
			return fmt.Errorf("failed to update thread %s: %w", column, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update thread %s: %w", column, err)
		}
		if affected == 0 {
			return internal_errors.NotFound("Thread not found")
		}
		return nil
	})
}
