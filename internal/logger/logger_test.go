package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	l, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l == nil {
		t.Fatal("expected logger")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Debug("hidden")
	l.Info("run finished")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"run finished"`) {
		t.Errorf("expected info entry, got %s", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug entry should be filtered: %s", data)
	}
}

func TestMust_FallsBack(t *testing.T) {
	if Must(Config{Level: "bogus"}) == nil {
		t.Fatal("expected fallback logger")
	}
}
