package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"
)

// ScheduleOff disables autosave.
const ScheduleOff = "off"

// Autosaver periodically saves open documents with unsaved changes.
type Autosaver struct {
	docs   *DocumentService
	logger *slog.Logger
	cron   *cron.Cron
}

// NewAutosaver schedules SaveDirty on schedule, a cron expression or
// descriptor like "@every 30s". An empty schedule or "off" returns a
// disabled autosaver whose Start and Stop do nothing.
func NewAutosaver(docs *DocumentService, schedule string, logger *slog.Logger) (*Autosaver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Autosaver{docs: docs, logger: logger}
	schedule = strings.TrimSpace(schedule)
	if schedule == "" || schedule == ScheduleOff {
		return a, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, a.run); err != nil {
		return nil, fmt.Errorf("autosave schedule %q: %w", schedule, err)
	}
	a.cron = c
	return a, nil
}

// Enabled reports whether a schedule is installed.
func (a *Autosaver) Enabled() bool { return a.cron != nil }

func (a *Autosaver) run() {
	n, err := a.docs.SaveDirty()
	if err != nil {
		a.logger.Error("autosave failed", "error", err)
	}
	if n > 0 {
		a.logger.Info("autosaved documents", "count", n)
	}
}

// Start begins running the schedule in the background.
func (a *Autosaver) Start() {
	if a.cron == nil {
		return
	}
	a.cron.Start()
	a.logger.Debug("autosave started", "entries", len(a.cron.Entries()))
}

// Stop halts the schedule and waits for a running save or for ctx.
func (a *Autosaver) Stop(ctx context.Context) {
	if a.cron == nil {
		return
	}
	select {
	case <-a.cron.Stop().Done():
	case <-ctx.Done():
	}
}
