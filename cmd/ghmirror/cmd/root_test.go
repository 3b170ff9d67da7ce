package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func withLogFlags(t *testing.T, level, format, file string, verb, q bool) {
	t.Helper()
	oldLevel, oldFormat, oldFile, oldVerbose, oldQuiet := logLevel, logFormat, logFile, verbose, quiet
	logLevel, logFormat, logFile, verbose, quiet = level, format, file, verb, q
	t.Cleanup(func() {
		logLevel, logFormat, logFile, verbose, quiet = oldLevel, oldFormat, oldFile, oldVerbose, oldQuiet
	})
}

func TestSetupLoggingJSON(t *testing.T) {
	withLogFlags(t, "info", "json", "", false, false)

	var buf bytes.Buffer
	logger := logrus.New()
	if err := setupLogging(logger, &buf); err != nil {
		t.Fatalf("setupLogging: %v", err)
	}

	logger.WithField("project", "app").Info("Project updated")
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, `"msg":"Project updated"`) || !strings.Contains(out, `"project":"app"`) {
		t.Errorf("expected JSON entry, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entry should be filtered at info level")
	}
}

func TestSetupLoggingVerboseAndQuiet(t *testing.T) {
	withLogFlags(t, "info", "text", "", true, false)
	logger := logrus.New()
	if err := setupLogging(logger, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("verbose level = %v, want debug", logger.GetLevel())
	}

	withLogFlags(t, "info", "text", "", false, true)
	if err := setupLogging(logger, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("quiet level = %v, want warning", logger.GetLevel())
	}
}

func TestSetupLoggingRejectsBadValues(t *testing.T) {
	withLogFlags(t, "loud", "text", "", false, false)
	if err := setupLogging(logrus.New(), &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}

	withLogFlags(t, "info", "xml", "", false, false)
	if err := setupLogging(logrus.New(), &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetupLoggingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ghmirror.log")
	withLogFlags(t, "info", "text", path, false, false)

	var buf bytes.Buffer
	logger := logrus.New()
	if err := setupLogging(logger, &buf); err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	logger.Info("written twice")

	if !strings.Contains(buf.String(), "written twice") {
		t.Errorf("stderr output missing entry: %q", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "written twice") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"sync", "check", "status", "info", "init", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
