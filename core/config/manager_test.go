package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adalundhe/statlab/core/storage"
)

func testDirs(t *testing.T) *storage.Dirs {
	t.Helper()
	return &storage.Dirs{
		Config: t.TempDir(),
		Data:   t.TempDir(),
		State:  t.TempDir(),
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sampler.Steps != 11000 {
		t.Errorf("Sampler.Steps: got %d, want 11000", cfg.Sampler.Steps)
	}
	if cfg.Sampler.BurnIn != 1000 {
		t.Errorf("Sampler.BurnIn: got %d, want 1000", cfg.Sampler.BurnIn)
	}
	if cfg.Cluster.K != 3 {
		t.Errorf("Cluster.K: got %d, want 3", cfg.Cluster.K)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Output.Format: got %s, want table", cfg.Output.Format)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
}

func TestManagerGet(t *testing.T) {
	m := NewManager(testDirs(t))

	cfg := m.Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Classify.Neighbors != 5 {
		t.Errorf("Classify.Neighbors: got %d, want 5", cfg.Classify.Neighbors)
	}
}

func TestManagerLoadFromUserFile(t *testing.T) {
	dirs := testDirs(t)

	content := `
sampler:
  steps: 5000
  proposal_scale: 0.5
cluster:
  k: 7
`
	if err := os.WriteFile(filepath.Join(dirs.Config, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	m := NewManager(dirs)
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := m.Get()
	if cfg.Sampler.Steps != 5000 {
		t.Errorf("Sampler.Steps: got %d, want 5000", cfg.Sampler.Steps)
	}
	if cfg.Sampler.ProposalScale != 0.5 {
		t.Errorf("Sampler.ProposalScale: got %v, want 0.5", cfg.Sampler.ProposalScale)
	}
	if cfg.Cluster.K != 7 {
		t.Errorf("Cluster.K: got %d, want 7", cfg.Cluster.K)
	}
	// Untouched sections keep their defaults.
	if cfg.Sampler.BurnIn != 1000 {
		t.Errorf("Sampler.BurnIn: got %d, want default 1000", cfg.Sampler.BurnIn)
	}
}

func TestProjectConfigOverridesUser(t *testing.T) {
	dirs := testDirs(t)
	project := t.TempDir()

	userContent := "cluster:\n  k: 7\n"
	if err := os.WriteFile(filepath.Join(dirs.Config, "config.yaml"), []byte(userContent), 0644); err != nil {
		t.Fatalf("failed to write user config: %v", err)
	}

	projectDir := filepath.Join(project, ".statlab")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatalf("failed to create project dir: %v", err)
	}
	projectContent := "cluster:\n  k: 4\n"
	if err := os.WriteFile(filepath.Join(projectDir, "config.yaml"), []byte(projectContent), 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}

	m := NewManager(dirs)
	m.project = project
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := m.Get().Cluster.K; got != 4 {
		t.Errorf("Cluster.K: got %d, want project value 4", got)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("STATLAB_SAMPLER_STEPS", "2000")
	t.Setenv("STATLAB_OUTPUT_FORMAT", "JSON")
	t.Setenv("STATLAB_HISTORY_ENABLED", "false")

	m := NewManager(testDirs(t))
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := m.Get()
	if cfg.Sampler.Steps != 2000 {
		t.Errorf("Sampler.Steps: got %d, want 2000", cfg.Sampler.Steps)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format: got %s, want json", cfg.Output.Format)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled should be overridden to false")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dirs := testDirs(t)
	if err := os.WriteFile(filepath.Join(dirs.Config, "config.yaml"), []byte("sampler: ["), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	m := NewManager(dirs)
	if err := m.Load(); err == nil {
		t.Error("malformed yaml should fail Load")
	}
}

func TestHistoryPath(t *testing.T) {
	dirs := testDirs(t)

	cfg := DefaultConfig()
	if got, want := cfg.HistoryPath(dirs), dirs.HistoryDBPath(); got != want {
		t.Errorf("HistoryPath: got %s, want %s", got, want)
	}

	cfg.History.Path = "/tmp/custom.db"
	if got := cfg.HistoryPath(dirs); got != "/tmp/custom.db" {
		t.Errorf("HistoryPath: got %s, want /tmp/custom.db", got)
	}
}
