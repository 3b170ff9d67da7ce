package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/bianoble/ghmirror/internal/config"
)

func runInit(t *testing.T, outPath string, force bool) error {
	t.Helper()
	oldPath, oldForce := configPath, initForce
	configPath, initForce = outPath, force
	defer func() { configPath, initForce = oldPath, oldForce }()

	return initCmd.RunE(initCmd, nil)
}

func TestInitCreatesConfig(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "projects.yaml")

	if err := runInit(t, outPath, false); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}
}

func TestInitTemplateLoads(t *testing.T) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(initTemplate), &raw); err != nil {
		t.Fatalf("template is not valid YAML: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "projects.yaml")
	if err := runInit(t, outPath, false); err != nil {
		t.Fatalf("init: %v", err)
	}

	cfg, err := config.Load(outPath)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if len(cfg.Projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(cfg.Projects))
	}

	p, err := cfg.Prepare(cfg.Projects[0])
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	want := filepath.Join(filepath.Dir(outPath), "mirror", "your-org", "example-app")
	if p.TargetDir != want {
		t.Errorf("target_dir = %q, want %q", p.TargetDir, want)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "projects.yaml")
	if err := os.WriteFile(outPath, []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}

	err := runInit(t, outPath, false)
	if err == nil {
		t.Fatal("expected error when file exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error should mention 'already exists': %v", err)
	}

	data, _ := os.ReadFile(outPath)
	if string(data) != "existing" {
		t.Error("existing file was modified")
	}
}

func TestInitForceOverwrites(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "projects.yaml")
	if err := os.WriteFile(outPath, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runInit(t, outPath, true); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != initTemplate {
		t.Error("file should contain the template after --force")
	}
}
