package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/mboard/shared/domain"
	internal_errors "github.com/itchan-dev/mboard/shared/errors"
	"github.com/jmoiron/sqlx"
)

type messageRow struct {
	Id        domain.MsgId    `db:"message_id"`
	ThreadId  domain.ThreadId `db:"thread_id"`
	Author    domain.UserId   `db:"user_id"`
	Text      string          `db:"content"`
	IpAddress string          `db:"ip_address"`
	UserAgent sql.NullString  `db:"user_agent"`
	CreatedAt Timestamp       `db:"created_at"`
	EditedAt  *Timestamp      `db:"edited_at"`
	IsDeleted bool            `db:"is_deleted"`
}

func (r messageRow) toDomain() domain.Message {
	msg := domain.Message{
		Id:       r.Id,
		ThreadId: r.ThreadId,
		Author:   r.Author,
		Text:     r.Text,
		Client: domain.ClientDetails{
			IpAddress: r.IpAddress,
			UserAgent: r.UserAgent.String,
		},
		CreatedAt: r.CreatedAt.Time,
		IsDeleted: r.IsDeleted,
	}
	if r.EditedAt != nil {
		editedAt := r.EditedAt.Time
		msg.EditedAt = &editedAt
	}
	return msg
}

const messageColumns = `message_id, thread_id, user_id, content, ip_address, user_agent, created_at, edited_at, is_deleted`

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ListMessages returns the non-deleted messages of a thread, oldest first.
// An unknown thread yields an empty list.
func (s *Storage) ListMessages(ctx context.Context, threadId domain.ThreadId) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.guard.Read(ctx, func(ctx context.Context) error {
		var rows []messageRow
		err := sqlx.SelectContext(ctx, s.db, &rows, s.db.Rebind(`
			SELECT `+messageColumns+`
			FROM messages
			WHERE thread_id = ? AND is_deleted = FALSE
			ORDER BY created_at ASC, message_id ASC
		`), threadId)
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		messages = make([]domain.Message, 0, len(rows))
		for _, r := range rows {
			messages = append(messages, r.toDomain())
		}
		return nil
	})
	return messages, err
}

// GetMessage returns a message, including soft-deleted ones.
func (s *Storage) GetMessage(ctx context.Context, id domain.MsgId) (domain.Message, error) {
	var msg domain.Message
	err := s.guard.Read(ctx, func(ctx context.Context) error {
		var row messageRow
		err := sqlx.GetContext(ctx, s.db, &row, s.db.Rebind(`
			SELECT `+messageColumns+`
			FROM messages
			WHERE message_id = ?
		`), id)
		if err != nil {
			if isNoRows(err) {
				return internal_errors.NotFound("Message not found")
			}
			return fmt.Errorf("failed to get message: %w", err)
		}
		msg = row.toDomain()
		return nil
	})
	return msg, err
}

// PostMessage checks that the thread exists and is unlocked, inserts the
// message and bumps the thread's lastPostAt, all in one transaction.
// Neither createdAt nor lastPostAt ever moves backwards.
func (s *Storage) PostMessage(ctx context.Context, creationData domain.MessageCreationData) (domain.Message, error) {
	var msg domain.Message
	err := s.guard.Write(ctx, func(ctx context.Context) error {
		return s.withTx(ctx, func(tx *sqlx.Tx) error {
			var thread struct {
				IsLocked   bool      `db:"is_locked"`
				LastPostAt Timestamp `db:"last_post_at"`
			}
			err := tx.GetContext(ctx, &thread, tx.Rebind(
				`SELECT is_locked, last_post_at FROM threads WHERE thread_id = ?`,
			), creationData.ThreadId)
			if err != nil {
				if isNoRows(err) {
					return internal_errors.NotFound("Thread not found")
				}
				return fmt.Errorf("failed to check thread: %w", err)
			}
			if thread.IsLocked {
				return internal_errors.Forbidden("Thread is locked")
			}

			createdAt := s.timestamp()
			if createdAt.Before(thread.LastPostAt.Time) {
				createdAt = thread.LastPostAt
			}

			var id domain.MsgId
			err = tx.QueryRowxContext(ctx, tx.Rebind(`
				INSERT INTO messages (thread_id, user_id, content, ip_address, user_agent, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
				RETURNING message_id
			`),
				creationData.ThreadId,
				creationData.Author,
				creationData.Text,
				creationData.Client.IpAddress,
				creationData.Client.UserAgent,
				createdAt,
			).Scan(&id)
			if err != nil {
				if isForeignKeyViolation(err) {
					return internal_errors.NotFound("Thread not found")
				}
				return fmt.Errorf("failed to insert message: %w", err)
			}

			if _, err := tx.ExecContext(ctx, tx.Rebind(
				`UPDATE threads SET last_post_at = ? WHERE thread_id = ?`,
			), createdAt, creationData.ThreadId); err != nil {
				return fmt.Errorf("failed to update thread last post: %w", err)
			}

			msg = domain.Message{
				Id:        id,
				ThreadId:  creationData.ThreadId,
				Author:    creationData.Author,
				Text:      creationData.Text,
				Client:    creationData.Client,
				CreatedAt: createdAt.Time,
			}
			return nil
		})
	})
	return msg, err
}

// EditMessage replaces the content of a live message owned by the editor
// and stamps editedAt.
func (s *Storage) EditMessage(ctx context.Context, edit domain.MessageEdit) (domain.Message, error) {
	var msg domain.Message
	err := s.guard.Write(ctx, func(ctx context.Context) error {
		return s.withTx(ctx, func(tx *sqlx.Tx) error {
			row, err := liveMessage(ctx, tx, edit.Id)
			if err != nil {
				return err
			}
			if row.Author != edit.Editor {
				return internal_errors.Forbidden("Not authorized to edit this message")
			}

			editedAt := s.timestamp()
			if _, err := tx.ExecContext(ctx, tx.Rebind(
				`UPDATE messages SET content = ?, edited_at = ? WHERE message_id = ?`,
			), edit.Text, editedAt, edit.Id); err != nil {
				return fmt.Errorf("failed to edit message: %w", err)
			}

			row.Text = edit.Text
			row.EditedAt = &editedAt
			msg = row.toDomain()
			return nil
		})
	})
	return msg, err
}

// DeleteMessage soft-deletes a live message. The owner or an admin may delete.
func (s *Storage) DeleteMessage(ctx context.Context, deletion domain.MessageDeletion) error {
	return s.guard.Write(ctx, func(ctx context.Context) error {
		return s.withTx(ctx, func(tx *sqlx.Tx) error {
			row, err := liveMessage(ctx, tx, deletion.Id)
			if err != nil {
				return err
			}
			if row.Author != deletion.By && !deletion.ByAdmin {
				return internal_errors.Forbidden("Not authorized to delete this message")
			}

			if _, err := tx.ExecContext(ctx, tx.Rebind(
				`UPDATE messages SET is_deleted = TRUE WHERE message_id = ?`,
			), deletion.Id); err != nil {
				return fmt.Errorf("failed to delete message: %w", err)
			}
			return nil
		})
	})
}

// liveMessage loads a message that is not soft-deleted.
func liveMessage(ctx context.Context, q sqlx.ExtContext, id domain.MsgId) (messageRow, error) {
	var row messageRow
	err := sqlx.GetContext(ctx, q, &row, q.Rebind(`
		SELECT `+messageColumns+`
		FROM messages
		WHERE message_id = ? AND is_deleted = FALSE
	`), id)
	if err != nil {
		if isNoRows(err) {
			return row, internal_errors.NotFound("Message not found")
		}
		return row, fmt.Errorf("failed to get message: %w", err)
	}
	return row, nil
}
