package utils

import (
	"unicode/utf8"

	"github.com/itchan-dev/mboard/shared/domain"
	"github.com/itchan-dev/mboard/shared/errors"
)

type ThreadValidator struct{}

func (e *ThreadValidator) Title(title domain.ThreadTitle) error {
	if len(title) == 0 {
		return errors.Validation("Thread title is required")
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLen {
		return errors.Validation("Thread title is too long")
	}
	return nil
}

func (e *ThreadValidator) ThreadId(id domain.ThreadId) error {
	if id <= 0 {
		return errors.Validation("Thread ID is required")
	}
	return nil
}

type MessageValidator struct{}

func (e *MessageValidator) Text(text domain.MsgText) error {
	if len(text) == 0 {
		return errors.Validation("Message content is required")
	}
	return nil
}

func (e *MessageValidator) MessageId(id domain.MsgId) error {
	if id <= 0 {
		return errors.Validation("Message ID is required")
	}
	return nil
}

func (e *MessageValidator) ThreadId(id domain.ThreadId) error {
	return (&ThreadValidator{}).ThreadId(id)
}
