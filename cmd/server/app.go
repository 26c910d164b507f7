package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/language"

	"github.com/phrazzld/tasktracker/internal/config"
	"github.com/phrazzld/tasktracker/internal/i18n"
	"github.com/phrazzld/tasktracker/internal/platform/postgres"
	"github.com/phrazzld/tasktracker/internal/reminder"
	"github.com/phrazzld/tasktracker/internal/service"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/phrazzld/tasktracker/internal/store"
)

// defaultLanguage is used for API responses when Accept-Language names no
// supported language.
const defaultLanguage = "en"

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	translator *i18n.Translator

	taskStore store.TaskStore

	jwtService  auth.JWTService
	userService service.UserService
	taskService service.TaskService
	tagService  service.TagService

	mailer      reminder.Mailer
	scheduler   *reminder.Scheduler
	queue       *reminder.Queue
	workers     *reminder.WorkerPool
	failedSends atomic.Int64
}

// newApplication wires stores and services on top of an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.translator, err = i18n.New(defaultLanguage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load message catalogs: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	tagStore := postgres.NewPostgresTagStore(db, logger)

	app.userService = service.NewUserService(userStore, auth.NewBcryptVerifier(), db, logger)
	app.taskService = service.NewTaskService(app.taskStore, tagStore, db, logger)
	app.tagService = service.NewTagService(tagStore, db, logger)

	app.mailer = reminder.NewMailer(cfg.Mail, logger)

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is canceled, with the reminder scheduler
// running alongside when enabled.
func (app *application) Run(ctx context.Context) error {
	if app.config.Reminder.Enabled {
		job, err := app.startReminders()
		if err != nil {
			app.cleanup()
			return err
		}
		app.scheduler = reminder.NewScheduler(job,
			time.Duration(app.config.Reminder.IntervalMinutes)*time.Minute, app.logger)
		app.scheduler.Start()
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// remindOnce runs the reminder job a single time and waits for the sends.
func (app *application) remindOnce(ctx context.Context) error {
	job, err := app.startReminders()
	if err != nil {
		return err
	}

	result, runErr := job.Run(ctx)
	app.queue.Close()
	app.workers.Drain()

	failed := app.failedSends.Load()
	app.logger.Info("reminders sent",
		"due", result.Due,
		"queued", result.Queued,
		"skipped", result.Skipped,
		"failed", failed)

	if runErr != nil {
		return fmt.Errorf("reminder run failed: %w", runErr)
	}
	return nil
}

// startReminders starts the delivery workers and builds the job that feeds them.
func (app *application) startReminders() (*reminder.Job, error) {
	cfg := app.config.Reminder

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder timezone %q: %w", cfg.Timezone, err)
	}
	lang, err := language.Parse(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder language %q: %w", cfg.Language, err)
	}

	app.queue = reminder.NewQueue(cfg.QueueSize, app.logger)
	poolCfg := reminder.DefaultWorkerPoolConfig()
	poolCfg.WorkerCount = cfg.WorkerCount
	app.workers = reminder.NewWorkerPool(app.queue, app.mailer, poolCfg, app.logger)
	app.workers.SetErrorHandler(func(d reminder.Delivery, err error) {
		app.failedSends.Add(1)
	})
	app.workers.Start()

	return reminder.NewJob(app.taskStore, app.queue, app.translator, reminder.JobConfig{
		From:     app.config.Mail.From,
		Location: loc,
		Language: lang,
	}, app.logger), nil
}

// cleanup handles graceful shutdown of application resources. Queued
// reminders are sent before the database is closed.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.queue != nil {
		app.queue.Close()
		app.workers.Drain()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
