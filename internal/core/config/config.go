package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	ProjectDirs   []string      `toml:"project_dirs"`
	Exclude       Exclude       `toml:"exclude"`
	Python        Python        `toml:"python"`
	Registry      Registry      `toml:"registry"`
	Output        Output        `toml:"output"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
	Alerts        Alerts        `toml:"alerts"`
	Performance   Performance   `toml:"performance"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Python struct {
	InterpreterPrefix string   `toml:"interpreter_prefix"`
	SearchPaths       []string `toml:"search_paths"`
	VenvNames         []string `toml:"venv_names"`
}

type Registry struct {
	BaseURL         string        `toml:"base_url"`
	Timeout         time.Duration `toml:"timeout"`
	RequestInterval time.Duration `toml:"request_interval"`
	Burst           int           `toml:"burst"`
}

type Output struct {
	CondaFile        string   `toml:"conda_file"`
	RequirementsFile string   `toml:"requirements_file"`
	Markdown         string   `toml:"markdown"`
	Channels         []string `toml:"channels"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type History struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

type Alerts struct {
	Beep     bool  `toml:"beep"`
	Terminal *bool `toml:"terminal"`
}

type Performance struct {
	MaxHeapMB int `toml:"max_heap_mb"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	return finalize(&cfg)
}

// Default is the configuration used when no config file exists: every
// section at its default, env overrides still applied.
func Default() (*Config, error) {
	return finalize(&Config{})
}

func finalize(cfg *Config) (*Config, error) {
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validateVersion(cfg); err != nil {
		return nil, err
	}
	if err := validateProjectDirs(cfg); err != nil {
		return nil, err
	}
	if err := validateExclude(cfg); err != nil {
		return nil, err
	}
	if err := validatePython(cfg); err != nil {
		return nil, err
	}
	if err := validateRegistry(cfg); err != nil {
		return nil, err
	}
	if err := validateOutput(cfg); err != nil {
		return nil, err
	}
	if err := validateHistory(cfg); err != nil {
		return nil, err
	}
	if err := validatePerformance(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.ProjectDirs) == 0 {
		cfg.ProjectDirs = []string{"."}
	}

	if len(cfg.Python.VenvNames) == 0 {
		cfg.Python.VenvNames = []string{".venv", "venv", "env", ".env"}
	}

	if strings.TrimSpace(cfg.Registry.BaseURL) == "" {
		cfg.Registry.BaseURL = "https://pypi.org/pypi"
	}
	if cfg.Registry.Timeout <= 0 {
		cfg.Registry.Timeout = 10 * time.Second
	}
	if cfg.Registry.RequestInterval == 0 {
		cfg.Registry.RequestInterval = 100 * time.Millisecond
	}
	if cfg.Registry.Burst == 0 {
		cfg.Registry.Burst = 1
	}

	if strings.TrimSpace(cfg.Output.CondaFile) == "" {
		cfg.Output.CondaFile = "environment.yml"
	}
	if strings.TrimSpace(cfg.Output.RequirementsFile) == "" {
		cfg.Output.RequirementsFile = "base_requirements.txt"
	}
	if len(cfg.Output.Channels) == 0 {
		cfg.Output.Channels = []string{"defaults", "conda-forge"}
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "envinfer-history.db"
	}
}

func (a Alerts) TerminalEnabled() bool {
	if a.Terminal == nil {
		return true
	}
	return *a.Terminal
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateProjectDirs(cfg *Config) error {
	for i, dir := range cfg.ProjectDirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("project_dirs[%d] must not be empty", i)
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.dirs[%d] must not be empty", i)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.files[%d] must not be empty", i)
		}
	}
	return nil
}

func validatePython(cfg *Config) error {
	for i, name := range cfg.Python.VenvNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("python.venv_names[%d] must not be empty", i)
		}
	}
	for i, path := range cfg.Python.SearchPaths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("python.search_paths[%d] must not be empty", i)
		}
	}
	return nil
}

func validateRegistry(cfg *Config) error {
	base := strings.TrimSpace(cfg.Registry.BaseURL)
	if base == "" {
		return fmt.Errorf("registry.base_url must not be empty")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("registry.base_url must be an http(s) URL, got %q", cfg.Registry.BaseURL)
	}
	if cfg.Registry.RequestInterval < 0 {
		return fmt.Errorf("registry.request_interval must be >= 0, got %v", cfg.Registry.RequestInterval)
	}
	if cfg.Registry.Burst < 1 {
		return fmt.Errorf("registry.burst must be >= 1, got %d", cfg.Registry.Burst)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if strings.TrimSpace(cfg.Output.CondaFile) == "" {
		return fmt.Errorf("output.conda_file must not be empty")
	}
	if strings.TrimSpace(cfg.Output.RequirementsFile) == "" {
		return fmt.Errorf("output.requirements_file must not be empty")
	}
	for i, channel := range cfg.Output.Channels {
		if strings.TrimSpace(channel) == "" {
			return fmt.Errorf("output.channels[%d] must not be empty", i)
		}
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history.enabled=true")
	}
	return nil
}

func validatePerformance(cfg *Config) error {
	if cfg.Performance.MaxHeapMB < 0 {
		return fmt.Errorf("performance.max_heap_mb must be >= 0, got %d", cfg.Performance.MaxHeapMB)
	}
	return nil
}
