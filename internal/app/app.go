package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"sketchpad/internal/clipboard"
	"sketchpad/internal/config"
	mcpserver "sketchpad/internal/mcp"
	"sketchpad/internal/service"
	"sketchpad/internal/storage"
)

// App wires configuration, storage, services and the MCP server together.
type App struct {
	configPath string
	cfg        *config.Config
	level      *slog.LevelVar
	logger     *slog.Logger

	db        *storage.DB
	docs      *service.DocumentService
	autosaver *service.Autosaver
	watcher   *config.Watcher
	mcp       *mcpserver.Server
}

// New loads the configuration at configPath (an empty path means the default
// location) and sets up logging. Nothing is opened until Startup.
func New(configPath string) (*App, error) {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	lvl, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	level.Set(lvl)
	// stdout carries the MCP protocol, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return &App{configPath: configPath, cfg: cfg, level: level, logger: logger}, nil
}

// Startup opens the database and starts background services.
func (a *App) Startup(ctx context.Context) error {
	db, err := storage.New(a.cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db

	emitter := logEmitter{logger: a.logger}
	a.docs = service.NewDocumentService(
		storage.NewDocumentStore(db),
		storage.NewHistoryStore(db, a.cfg.History.PersistEntries),
		a.openClipboard(),
		service.OptionsFromConfig(a.cfg, emitter, a.logger),
	)

	a.autosaver, err = service.NewAutosaver(a.docs, a.cfg.Autosave.Schedule, a.logger)
	if err != nil {
		db.Close()
		return err
	}
	a.autosaver.Start()

	a.watcher, err = config.Watch(a.configPath, a.applyConfig, a.logger)
	if err != nil {
		// Hot reload is optional; the app works without it.
		a.logger.Warn("config watcher disabled", "path", a.configPath, "error", err)
	}

	a.mcp = mcpserver.New(mcpserver.Deps{
		Emitter:   emitter,
		Logger:    a.logger,
		Documents: a.docs,
	})
	a.logger.Info("sketchpad started", "db", a.cfg.DBPath(), "autosave", a.autosaver.Enabled())
	return nil
}

func (a *App) openClipboard() clipboard.Clipboard {
	if a.cfg.Clipboard.Backend == config.BackendMemory {
		return clipboard.NewMemory("")
	}
	sys, err := clipboard.NewSystem()
	if err != nil {
		a.logger.Warn("system clipboard unavailable, using in-memory clipboard", "error", err)
		return clipboard.NewMemory("")
	}
	return sys
}

// applyConfig applies the settings that can change without a restart.
func (a *App) applyConfig(cfg *config.Config) {
	if lvl, err := config.ParseLevel(cfg.LogLevel); err == nil {
		a.level.Set(lvl)
	} else {
		a.logger.Warn("ignoring invalid log level", "value", cfg.LogLevel)
	}
	if a.docs != nil {
		a.docs.SetMaxDepth(cfg.History.MaxDepth)
	}
	a.logger.Info("config reloaded", "log_level", cfg.LogLevel, "max_depth", cfg.History.MaxDepth)
}

// Shutdown stops background work, saves dirty documents and closes storage.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.autosaver != nil {
		a.autosaver.Stop(ctx)
	}
	if a.docs != nil {
		if err := a.docs.Shutdown(ctx); err != nil {
			a.logger.Error("saving documents on shutdown failed", "error", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Documents exposes the document service.
func (a *App) Documents() *service.DocumentService { return a.docs }

// logEmitter writes session events to the debug log when no front end is
// attached.
type logEmitter struct {
	logger *slog.Logger
}

func (e logEmitter) Emit(ctx context.Context, event string, data any) {
	switch d := data.(type) {
	case service.RenderEvent:
		e.logger.DebugContext(ctx, "event", "name", event, "document", d.DocumentID, "objects", len(d.Objects))
	case service.HistoryInfo:
		e.logger.DebugContext(ctx, "event", "name", event, "document", d.DocumentID, "undo", d.UndoDepth, "redo", d.RedoDepth)
	default:
		e.logger.DebugContext(ctx, "event", "name", event)
	}
}
