package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/itchan-dev/mboard/backend/internal/router"
	"github.com/itchan-dev/mboard/backend/internal/setup"
	"github.com/itchan-dev/mboard/backend/internal/storage/sqlstore"
	"github.com/itchan-dev/mboard/shared/config"
	"github.com/itchan-dev/mboard/shared/domain"
	"github.com/itchan-dev/mboard/shared/guard"
	"github.com/itchan-dev/mboard/shared/jwt"
	"github.com/itchan-dev/mboard/shared/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configFolder string

	rootCmd := &cobra.Command{
		Use:          "mboard-api",
		Short:        "Message board API server",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")

	rootCmd.AddCommand(
		serveCommand(&configFolder),
		migrateCommand(&configFolder),
		tokenCommand(&configFolder),
	)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(configFolder string) *config.Config {
	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)
	return cfg
}

func serveCommand(configFolder *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*configFolder)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := setup.SetupDependencies(cfg)
			if err != nil {
				return fmt.Errorf("setup dependencies: %w", err)
			}
			defer deps.Storage.Cleanup()

			if err := deps.Storage.MigrateUp(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			server := &http.Server{
				Addr:              cfg.Public.HttpAddr,
				Handler:           router.New(deps),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Log.Info("server started", "addr", cfg.Public.HttpAddr, "driver", cfg.Public.Storage.Driver)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

func migrateCommand(configFolder *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(apply func(*sqlstore.Storage, context.Context) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*configFolder)
			storage, err := sqlstore.New(cfg, guard.New(cfg.Public.LockTimeout))
			if err != nil {
				return err
			}
			defer storage.Cleanup()
			return apply(storage, cmd.Context())
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  run((*sqlstore.Storage).MigrateUp),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE:  run((*sqlstore.Storage).MigrateDown),
		},
	)
	return cmd
}

// tokenCommand mints an access token signed with the configured key.
// Useful for local testing; production tokens come from the identity provider.
func tokenCommand(configFolder *string) *cobra.Command {
	var (
		sub    string
		roles  []string
		scopes []string
		admin  bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*configFolder)

			user := domain.User{Id: sub, Admin: admin}
			for _, s := range scopes {
				scope, err := domain.ParseScope(s)
				if err != nil {
					return err
				}
				user.Scopes = append(user.Scopes, scope)
			}
			var rs []domain.Role
			for _, r := range roles {
				rs = append(rs, domain.Role(strings.ToUpper(r)))
			}

			token, err := jwt.New(cfg.JwtKey(), cfg.JwtTTL()).NewToken(user, rs...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", "", "user id (token subject)")
	cmd.Flags().StringSliceVar(&roles, "role", []string{string(domain.RoleBoardUser)}, "roles granted to the user")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "explicit scopes, e.g. READER,WRITER")
	cmd.Flags().BoolVar(&admin, "admin", false, "mark the user as an admin")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
