package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm-credit.log")
	logger, err := New(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("artifacts loaded")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "artifacts loaded") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]bool{
		"":      true,
		"info":  true,
		"DEBUG": true,
		"warn":  true,
		"loud":  false,
	}
	for raw, ok := range cases {
		_, err := parseLevel(raw)
		if ok && err != nil {
			t.Fatalf("level %q: unexpected error %v", raw, err)
		}
		if !ok && err == nil {
			t.Fatalf("level %q: expected error", raw)
		}
	}
}
