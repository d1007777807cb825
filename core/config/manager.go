// Package config resolves the effective statlab configuration from defaults,
// the user config file, the project config file, and STATLAB_* environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"unsafe"

	"gopkg.in/yaml.v3"

	"github.com/adalundhe/statlab/core/storage"
)

type Manager struct {
	configPtr unsafe.Pointer
	dirs      *storage.Dirs
	project   string
}

type Config struct {
	Sampler  SamplerConfig  `yaml:"sampler"`
	Cluster  ClusterConfig  `yaml:"cluster"`
	Classify ClassifyConfig `yaml:"classify"`
	Output   OutputConfig   `yaml:"output"`
	History  HistoryConfig  `yaml:"history"`
}

// SamplerConfig holds the Metropolis-Hastings defaults used by the conjoint
// command.
type SamplerConfig struct {
	Steps         int     `yaml:"steps"`
	BurnIn        int     `yaml:"burn_in"`
	ProposalScale float64 `yaml:"proposal_scale"`
	Seed          uint64  `yaml:"seed"`
}

type ClusterConfig struct {
	K             int     `yaml:"k"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
	Seed          uint64  `yaml:"seed"`
}

type ClassifyConfig struct {
	Neighbors    int     `yaml:"neighbors"`
	TestFraction float64 `yaml:"test_fraction"`
	Seed         uint64  `yaml:"seed"`
}

type OutputConfig struct {
	Format    string `yaml:"format"` // table or json
	PlotDir   string `yaml:"plot_dir"`
	Precision int    `yaml:"precision"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty means the platform data dir
}

func NewManager(dirs *storage.Dirs) *Manager {
	m := &Manager{
		dirs:    dirs,
		project: ".",
	}
	cfg := DefaultConfig()
	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	return m
}

func DefaultConfig() *Config {
	return &Config{
		Sampler: SamplerConfig{
			Steps:         11000,
			BurnIn:        1000,
			ProposalScale: 0.02,
			Seed:          1,
		},
		Cluster: ClusterConfig{
			K:             3,
			MaxIterations: 100,
			Tolerance:     1e-9,
			Seed:          1,
		},
		Classify: ClassifyConfig{
			Neighbors:    5,
			TestFraction: 0.25,
			Seed:         1,
		},
		Output: OutputConfig{
			Format:    "table",
			Precision: 4,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

func (m *Manager) Get() *Config {
	return (*Config)(atomic.LoadPointer(&m.configPtr))
}

func (m *Manager) Load() error {
	cfg := DefaultConfig()

	if err := m.loadUserConfig(cfg); err != nil {
		return fmt.Errorf("user config: %w", err)
	}

	if err := m.loadProjectConfig(cfg); err != nil {
		return fmt.Errorf("project config: %w", err)
	}

	m.applyEnvironment(cfg)

	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	return nil
}

func (m *Manager) loadUserConfig(cfg *Config) error {
	return m.loadYAMLFile(m.dirs.ConfigDir("config.yaml"), cfg)
}

func (m *Manager) loadProjectConfig(cfg *Config) error {
	projectDirs := storage.ResolveProjectDirs(m.project)
	return m.loadYAMLFile(projectDirs.Config, cfg)
}

func (m *Manager) loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func (m *Manager) applyEnvironment(cfg *Config) {
	if v := os.Getenv("STATLAB_SAMPLER_STEPS"); v != "" {
		if n, err := parseInt(v); err == nil {
			cfg.Sampler.Steps = n
		}
	}
	if v := os.Getenv("STATLAB_SAMPLER_BURN_IN"); v != "" {
		if n, err := parseInt(v); err == nil {
			cfg.Sampler.BurnIn = n
		}
	}
	if v := os.Getenv("STATLAB_SAMPLER_PROPOSAL_SCALE"); v != "" {
		if f, err := parseFloat(v); err == nil {
			cfg.Sampler.ProposalScale = f
		}
	}
	if v := os.Getenv("STATLAB_SAMPLER_SEED"); v != "" {
		if n, err := parseUint(v); err == nil {
			cfg.Sampler.Seed = n
		}
	}
	if v := os.Getenv("STATLAB_CLUSTER_K"); v != "" {
		if n, err := parseInt(v); err == nil {
			cfg.Cluster.K = n
		}
	}
	if v := os.Getenv("STATLAB_CLASSIFY_NEIGHBORS"); v != "" {
		if n, err := parseInt(v); err == nil {
			cfg.Classify.Neighbors = n
		}
	}
	if v := os.Getenv("STATLAB_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}
	if v := os.Getenv("STATLAB_OUTPUT_PLOT_DIR"); v != "" {
		cfg.Output.PlotDir = v
	}
	if v := os.Getenv("STATLAB_HISTORY_ENABLED"); v != "" {
		cfg.History.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("STATLAB_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
}

// HistoryPath returns the configured run-history database location, falling
// back to the platform data directory.
func (c *Config) HistoryPath(dirs *storage.Dirs) string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return dirs.HistoryDBPath()
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func parseUint(s string) (uint64, error) {
	var n uint64
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func parseFloat(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(s, "%f", &f)
	return f, err
}
