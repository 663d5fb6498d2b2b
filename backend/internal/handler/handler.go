package handler

import (
	"context"

	"github.com/itchan-dev/mboard/backend/internal/service"
)

// HealthChecker reports whether the storage is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Renderer turns stored message content into safe HTML.
type Renderer interface {
	Render(text string) string
}

type Handler struct {
	thread   service.ThreadService
	message  service.MessageService
	renderer Renderer
	health   HealthChecker
}

func New(thread service.ThreadService, message service.MessageService, renderer Renderer, health HealthChecker) *Handler {
	return &Handler{
		thread:   thread,
		message:  message,
		renderer: renderer,
		health:   health,
	}
}
