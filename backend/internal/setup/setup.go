package setup

import (
	"github.com/itchan-dev/mboard/backend/internal/handler"
	"github.com/itchan-dev/mboard/backend/internal/service"
	"github.com/itchan-dev/mboard/backend/internal/storage/sqlstore"
	"github.com/itchan-dev/mboard/backend/internal/utils"
	"github.com/itchan-dev/mboard/shared/config"
	"github.com/itchan-dev/mboard/shared/guard"
	"github.com/itchan-dev/mboard/shared/jwt"
	"github.com/itchan-dev/mboard/shared/markdown"
	mw "github.com/itchan-dev/mboard/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *sqlstore.Storage
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *mw.Auth
}

// SetupDependencies opens the configured storage and wires everything on top of it.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := sqlstore.New(cfg, guard.New(cfg.Public.LockTimeout))
	if err != nil {
		return nil, err
	}
	return Wire(cfg, storage), nil
}

// Wire builds services, handlers and middleware on an open storage.
func Wire(cfg *config.Config, storage *sqlstore.Storage) *Dependencies {
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	thread := service.NewThread(storage, &utils.ThreadValidator{})
	message := service.NewMessage(storage, &utils.MessageValidator{})

	h := handler.New(thread, message, markdown.New(), storage)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		Jwt:            jwtService,
		AuthMiddleware: mw.NewAuth(jwtService),
	}
}
