package storage

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func resetGlobalDirs() {
	globalDirs = nil
	globalDirsErr = nil
	globalDirsOnce = sync.Once{}
}

func TestResolveDirs(t *testing.T) {
	resetGlobalDirs()

	dirs, err := ResolveDirs()
	if err != nil {
		t.Fatalf("ResolveDirs failed: %v", err)
	}

	if dirs.Config == "" {
		t.Error("Config dir should not be empty")
	}
	if dirs.Data == "" {
		t.Error("Data dir should not be empty")
	}
	if dirs.State == "" {
		t.Error("State dir should not be empty")
	}

	if !strings.Contains(dirs.Config, "statlab") {
		t.Errorf("Config dir should contain 'statlab': %s", dirs.Config)
	}
}

func TestResolveDirsXDGOverride(t *testing.T) {
	resetGlobalDirs()

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	dirs, err := ResolveDirs()
	if err != nil {
		t.Fatalf("ResolveDirs failed: %v", err)
	}

	want := filepath.Join(tmpDir, "statlab")
	if dirs.Config != want {
		t.Errorf("Config dir = %s, want %s", dirs.Config, want)
	}

	resetGlobalDirs()
}

func TestResolveProjectDirs(t *testing.T) {
	pd := ResolveProjectDirs("/tmp/demo")

	if pd.Root != filepath.Join("/tmp/demo", ".statlab") {
		t.Errorf("unexpected project root: %s", pd.Root)
	}
	if filepath.Base(pd.Config) != "config.yaml" {
		t.Errorf("unexpected project config: %s", pd.Config)
	}
	if filepath.Base(pd.Plots) != "plots" {
		t.Errorf("unexpected plots dir: %s", pd.Plots)
	}
}

func TestHistoryDBPath(t *testing.T) {
	d := &Dirs{Data: "/data/statlab"}
	if got := d.HistoryDBPath(); got != filepath.Join("/data/statlab", "runs.db") {
		t.Errorf("HistoryDBPath = %s", got)
	}
}

func TestEnsureAll(t *testing.T) {
	tmp := t.TempDir()
	d := &Dirs{
		Config: filepath.Join(tmp, "config"),
		Data:   filepath.Join(tmp, "data"),
		State:  filepath.Join(tmp, "state"),
	}
	if err := d.EnsureAll(); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}
