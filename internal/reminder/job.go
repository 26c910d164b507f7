package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/i18n"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"golang.org/x/text/language"
)

// DueTaskLister returns the pending tasks expiring on a date with their owners.
// store.TaskStore satisfies it.
type DueTaskLister interface {
	ListDueReminders(ctx context.Context, date time.Time) ([]domain.Reminder, error)
}

// JobConfig configures a Job.
type JobConfig struct {
	From     string
	Location *time.Location
	Language language.Tag
	// Now defaults to time.Now.
	Now func() time.Time
}

// Job finds today's due tasks and queues one reminder per task.
type Job struct {
	tasks      DueTaskLister
	queue      QueueWriter
	translator *i18n.Translator
	cfg        JobConfig
	logger     *slog.Logger
}

// RunResult summarizes one run.
type RunResult struct {
	Due     int
	Queued  int
	Skipped int
}

// NewJob creates a Job.
func NewJob(tasks DueTaskLister, queue QueueWriter, translator *i18n.Translator, cfg JobConfig, logger *slog.Logger) *Job {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Job{
		tasks:      tasks,
		queue:      queue,
		translator: translator,
		cfg:        cfg,
		logger:     logger.With("component", "reminder_job"),
	}
}

// Today returns the current date in the job's time zone.
func (j *Job) Today() time.Time {
	now := j.cfg.Now().In(j.cfg.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Run queues reminders for every pending task that expires today. Owners
// without an email are skipped. When the queue is full Run waits for the
// workers; it stops early only if ctx ends or the queue is closed, and then
// returns the partial result with the error.
func (j *Job) Run(ctx context.Context) (RunResult, error) {
	log := logger.FromContextOrDefault(ctx, j.logger)
	today := j.Today()

	due, err := j.tasks.ListDueReminders(ctx, today)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to list due tasks: %w", err)
	}

	result := RunResult{Due: len(due)}
	for _, r := range due {
		if r.OwnerEmail == "" {
			log.Info("skipping reminder, owner has no email",
				slog.String("task_id", r.TaskID.String()),
				slog.String("owner_id", r.OwnerID.String()))
			result.Skipped++
			continue
		}

		d := Delivery{
			ID:      uuid.New(),
			TaskID:  r.TaskID,
			Message: j.message(r),
		}
		if err := j.queue.Enqueue(ctx, d); err != nil {
			log.Error("reminder run interrupted",
				slog.String("task_id", r.TaskID.String()),
				slog.Int("queued", result.Queued),
				slog.Int("remaining", result.Due-result.Queued-result.Skipped),
				slog.Any("error", err))
			return result, fmt.Errorf("failed to queue reminder for task %s: %w", r.TaskID, err)
		}
		result.Queued++
	}

	log.Info("reminder run finished",
		slog.String("date", today.Format(domain.DateLayout)),
		slog.Int("due", result.Due),
		slog.Int("queued", result.Queued),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func (j *Job) message(r domain.Reminder) Message {
	data := map[string]any{
		"Username": r.Username,
		"Title":    r.TaskTitle,
	}
	return Message{
		From: j.cfg.From,
		To:   r.OwnerEmail,
		Subject: j.translator.Localize(j.cfg.Language, i18n.MsgReminderSubject,
			"Pending Task Reminder", nil),
		Body: j.translator.Localize(j.cfg.Language, i18n.MsgReminderBody,
			"", data),
	}
}
