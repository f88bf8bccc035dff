// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/session"
)

// Housekeeping runs the periodic cleanup jobs of the server process.
//
// # Jobs
//   - session_purge: deletes expired session records ([constants.SessionPurgeSchedule]).
//   - panel_prune: drops admin panels idle for [constants.PanelIdleTTL] ([constants.PanelPruneSchedule]).
type Housekeeping struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewHousekeeping schedules the jobs. Nothing runs until [Housekeeping.Start].
func NewHousekeeping(sessions *session.Manager, registry *crud.Registry, logger *slog.Logger) (*Housekeeping, error) {
	logger = logger.With(slog.String("system", "housekeeping"))

	// The innermost wrapper sees the job itself and can name it
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{logger: logger}),
		recoverJob(logger),
	))

	jobs := []struct {
		schedule string
		job      namedJob
	}{
		{constants.SessionPurgeSchedule, &sessionPurgeJob{sessions: sessions, logger: logger}},
		{constants.PanelPruneSchedule, &panelPruneJob{registry: registry, logger: logger}},
	}
	for _, entry := range jobs {
		if _, err := scheduler.AddJob(entry.schedule, entry.job); err != nil {
			return nil, err
		}
	}

	return &Housekeeping{cron: scheduler, logger: logger}, nil
}

// Start launches the scheduler in its own goroutine.
func (housekeeping *Housekeeping) Start() {
	housekeeping.logger.Info("housekeeping_started", slog.Int("jobs", len(housekeeping.cron.Entries())))
	housekeeping.cron.Start()
}

// Stop waits for running jobs to finish.
func (housekeeping *Housekeeping) Stop() {
	<-housekeeping.cron.Stop().Done()
	housekeeping.logger.Info("housekeeping_stopped")
}

// # Jobs

type namedJob interface {
	cron.Job
	Name() string
}

type sessionPurgeJob struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func (job *sessionPurgeJob) Name() string { return "session_purge" }

func (job *sessionPurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.GlobalRequestTimeout)
	defer cancel()

	removed, err := job.sessions.Purge(ctx)
	if err != nil {
		job.logger.Error("session_purge_failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		job.logger.Info("session_purge_completed", slog.Int("removed", removed))
	}
}

type panelPruneJob struct {
	registry *crud.Registry
	logger   *slog.Logger
}

func (job *panelPruneJob) Name() string { return "panel_prune" }

func (job *panelPruneJob) Run() {
	if removed := job.registry.Prune(constants.PanelIdleTTL); removed > 0 {
		job.logger.Info("panel_prune_completed", slog.Int("removed", removed), slog.Int("sessions", job.registry.Sessions()))
	}
}

// # Wrappers

// recoverJob keeps a panicking job from taking the server down.
func recoverJob(logger *slog.Logger) cron.JobWrapper {
	return func(job cron.Job) cron.Job {
		return cron.FuncJob(func() {
			startTime := time.Now()
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("job_panicked",
						slog.String("job_name", jobName(job)),
						slog.Any("panic", recovered),
						slog.String("stack_trace", string(debug.Stack())),
					)
				}
			}()

			job.Run()
			logger.Debug("job_finished", slog.String("job_name", jobName(job)), slog.Duration("duration", time.Since(startTime)))
		})
	}
}

func jobName(job cron.Job) string {
	if named, ok := job.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "anonymous"
}

// cronLogger adapts slog to [cron.Logger].
type cronLogger struct {
	logger *slog.Logger
}

func (adapter cronLogger) Info(message string, keysAndValues ...any) {
	adapter.logger.Debug(message, keysAndValues...)
}

func (adapter cronLogger) Error(err error, message string, keysAndValues ...any) {
	adapter.logger.Error(message, append(keysAndValues, slog.Any("error", err))...)
}
