package service

import (
	"errors"

	"github.com/itchan-dev/mboard/shared/domain"
	internal_errors "github.com/itchan-dev/mboard/shared/errors"
	"github.com/itchan-dev/mboard/shared/guard"
	"github.com/itchan-dev/mboard/shared/logger"
)

// Principal is the authenticated identity a request acts as.
type Principal interface {
	Subject() domain.UserId
	HasScope(scope domain.Scope) bool
	IsAdmin() bool
}

func requireScope(p Principal, scope domain.Scope) error {
	if p == nil {
		return internal_errors.Unauthorized("Please sign-in")
	}
	if !p.HasScope(scope) {
		return internal_errors.Forbidden("Missing required scope " + string(scope))
	}
	return nil
}

// storageError passes taxonomy errors through and hides everything else
// behind a generic storage failure.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := internal_errors.As(err); ok {
		return e
	}
	logger.Log.Error("storage operation failed", "op", op, "error", err, "busy", errors.Is(err, guard.ErrNotAcquired))
	return internal_errors.Storage("DB Failed", err)
}
