package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		level     string
		wantInfo  bool
		wantError bool
	}{
		{"ALL", true, true},
		{"INFO", true, true},
		{"ERROR", false, true},
		{"NONE", false, false},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(Options{Level: tc.level, Format: "console", ConsoleOutput: &buf})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			logger.Info("info message")
			logger.Error("error message")

			out := buf.String()
			if got := strings.Contains(out, "info message"); got != tc.wantInfo {
				t.Fatalf("info logged=%v, want %v (output %q)", got, tc.wantInfo, out)
			}
			if got := strings.Contains(out, "error message"); got != tc.wantError {
				t.Fatalf("error logged=%v, want %v (output %q)", got, tc.wantError, out)
			}
		})
	}
}

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "ALL", Format: "console", ConsoleOutput: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.With("run_id", "abc").Info("decision", "allow", true, "name", "Some Movie 2024")

	line := buf.String()
	for _, fragment := range []string{"[INFO]", "decision", "run_id=abc", "allow=true", `name="Some Movie 2024"`} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in output %q", fragment, line)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "loopguard.log")
	logger, err := New(Options{Level: "ALL", Format: "console", FilePath: path, MaxSizeMB: 10, MaxBackups: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestRotateShiftsBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loopguard.log")

	// Over the 1 MB limit.
	big := bytes.Repeat([]byte("x"), 1024*1024+1)
	if err := os.WriteFile(path, big, 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	if err := os.WriteFile(path+".1", []byte("old-1"), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}
	if err := os.WriteFile(path+".2", []byte("old-2"), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	if err := rotate(path, 1, 2); err != nil {
		t.Fatalf("rotate failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected current log to be rotated away")
	}
	one, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("read .1: %v", err)
	}
	if len(one) != len(big) {
		t.Fatalf("expected current log moved to .1, got %d bytes", len(one))
	}
	two, err := os.ReadFile(path + ".2")
	if err != nil {
		t.Fatalf("read .2: %v", err)
	}
	if string(two) != "old-1" {
		t.Fatalf("expected .1 shifted to .2, got %q", string(two))
	}
	// old-2 was the oldest backup and is gone.
	if _, err := os.Stat(fmt.Sprintf("%s.3", path)); !os.IsNotExist(err) {
		t.Fatal("expected no .3 backup")
	}
}

func TestRotateTruncatesWithoutBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loopguard.log")
	big := bytes.Repeat([]byte("x"), 1024*1024+1)
	if err := os.WriteFile(path, big, 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	if err := rotate(path, 1, 0); err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected truncated file, got %d bytes", info.Size())
	}
}
