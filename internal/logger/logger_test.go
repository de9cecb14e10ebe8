package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	if err := Init(Config{Dir: dir}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Fatalf("log directory was not created: %s", dir)
	}
	if Logger.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level, got %v", Logger.GetLevel())
	}

	Info("test info message", "key", "value")
	Warn("test warning message")
	Error("test error message")

	if _, err := os.Stat(filepath.Join(dir, "routinr.log")); err != nil {
		t.Fatalf("log file not written: %v", err)
	}
}

func TestInitDebugMode(t *testing.T) {
	if err := Init(Config{Debug: true, Dir: t.TempDir()}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %v", Logger.GetLevel())
	}
	Debug("test debug message")
}

func TestWith(t *testing.T) {
	if err := Init(Config{Dir: t.TempDir()}); err != nil {
		t.Fatal(err)
	}
	if With("engine") == nil {
		t.Fatal("With returned nil")
	}
}
