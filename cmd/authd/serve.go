package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	auth "github.com/webafan/portfolio-auth"
	"github.com/webafan/portfolio-auth/config"
	"github.com/webafan/portfolio-auth/repository"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the authentication HTTP API",
		Long: `Run the HTTP API exposing login, validate, logout and the liveness
route under the configured base path.`,
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.String("host", "", "listen host")
	flags.Int("port", 0, "listen port")
	flags.String("base-path", "", "route prefix for the auth endpoints")
	flags.String("store-driver", "", "user store driver (sqlite, postgres)")
	flags.String("dsn", "", "user store DSN")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.Duration("token-ttl", 0, "token lifetime")
	flags.Bool("enforce-active", true, "reject logins from inactive users")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := newApp(cfg, repository.NewUsers(db), logger, reg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("auth server listening", "addr", cfg.Addr(), "base_path", cfg.Server.BasePath)
		errCh <- srv.Serve(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down auth server", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "graceful shutdown failed")
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	db, err := repository.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.Store.AutoMigrate {
		if _, err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// newApp wires the authenticator and its routes into a fiber backed server
func newApp(cfg *config.Config, store auth.UserStore, logger *slog.Logger, reg *prometheus.Registry) (router.Server[*fiber.App], error) {
	hasher, err := auth.NewHasher(cfg.Auth.Hasher, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	auther, err := auth.NewAuthenticator(store, cfg)
	if err != nil {
		return nil, err
	}
	auther = auther.
		WithLogger(logger).
		WithHasher(hasher).
		WithMetrics(auth.NewMetrics(reg)).
		WithActivitySink(auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
			logger.Debug("auth activity", "type", event.Type, "username", event.Username, "reason", event.Reason)
			return nil
		}))

	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		app := fiber.New(fiber.Config{
			AppName:               "authd",
			DisableStartupMessage: true,
			ErrorHandler:          auth.FiberErrorHandler(logger),
		})
		app.Use(recover.New())
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.Server.CORSOrigins, ","),
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		}))
		if cfg.Metrics.Enabled {
			app.Get(cfg.Metrics.Path, auth.MetricsHandler(reg))
		}
		return app
	})

	api := srv.Router().Group(cfg.Server.BasePath)

	auth.RegisterAuthRoutes(api,
		auth.WithHTTPAuthenticator(auther),
		auth.WithControllerLogger(logger),
		auth.WithAuthScheme(cfg.Auth.AuthScheme),
	)

	api.Get("/me", func(ctx router.Context) error {
		claims, ok := auth.GetRouterClaims(ctx, cfg.GetContextKey())
		if !ok {
			return fiber.ErrUnauthorized
		}
		return ctx.JSON(fiber.StatusOK, fiber.Map{
			"username": claims.Username(),
			"role":     claims.Role(),
			"expires":  claims.Expires(),
		})
	}, auther.ProtectedRoute(cfg, nil)).SetName("auth.me")

	return srv, nil
}
