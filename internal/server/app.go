// Package server wires the application together: configuration, database,
// migrations, services, and the HTTP endpoint, plus graceful shutdown on
// OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shepherdhq/memberd/internal/logging"
	"github.com/shepherdhq/memberd/internal/server/auth"
	"github.com/shepherdhq/memberd/internal/server/config"
	"github.com/shepherdhq/memberd/internal/server/mail"
	"github.com/shepherdhq/memberd/internal/server/repositories/repomanager"
	"github.com/shepherdhq/memberd/internal/server/rest"
	"github.com/shepherdhq/memberd/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}

	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var mailer mail.Mailer
	if cfg.BrevoAPIKey == "" {
		mailer = mail.NewLogMailer(logger)
	} else {
		mailer = mail.NewBrevoMailer(cfg.BrevoAPIKey, cfg.MailFromName, cfg.MailFromEmail)
	}

	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.AccessTokenTTL)

	tokens := services.NewRefreshTokenService(db, m, issuer, cfg)

	svc := rest.Services{
		Auth:        services.NewAuthService(db, m, tokens, issuer, mailer, logger, cfg),
		Members:     services.NewMemberService(db, m),
		Zones:       services.NewZoneService(db, m),
		Cells:       services.NewCellService(db, m),
		Departments: services.NewDepartmentService(db, m),
		FollowUps:   services.NewFollowUpService(db, m),
		Export:      services.NewExportService(db, m, cfg),
	}

	server := rest.NewServer(cfg, logger, issuer, svc)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
