package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"sketchpad/internal/config"
	"sketchpad/internal/domain"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	data := "data_dir: " + filepath.Join(dir, "data") + "\n" +
		"log_level: warn\n" +
		"clipboard:\n  backend: memory\n" +
		"autosave:\n  schedule: \"off\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApp_StartupAndShutdown(t *testing.T) {
	dir := t.TempDir()
	a, err := New(writeConfig(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if a.level.Level() != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", a.level.Level())
	}
	if err := a.Startup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if a.autosaver.Enabled() {
		t.Error("autosave should be off")
	}

	doc, sess, err := a.Documents().Create("from app")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.AddShape(domain.KindRect); err != nil {
		t.Fatal(err)
	}

	reloaded := config.Default()
	reloaded.LogLevel = "debug"
	reloaded.History.MaxDepth = 1
	a.applyConfig(reloaded)
	if a.level.Level() != slog.LevelDebug {
		t.Error("log level should follow the reloaded config")
	}
	if got := sess.History().MaxDepth; got != 1 {
		t.Errorf("max depth should follow the reloaded config, got %d", got)
	}

	a.Shutdown(context.Background())

	if _, err := os.Stat(filepath.Join(dir, "data", "sketchpad.db")); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	// Dirty documents are saved on shutdown.
	b, _ := New(filepath.Join(dir, "config.yaml"))
	if err := b.Startup(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer b.Shutdown(context.Background())
	reopened, err := b.Documents().Open(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(reopened.Objects()); n != 1 {
		t.Errorf("expected the rect to survive a restart, got %d objects", n)
	}
}
