package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: ENVINFER_[SECTION]_[KEY]
// (e.g., ENVINFER_REGISTRY_BASE_URL).
func ApplyEnvOverrides(cfg *Config) {
	// Registry
	setEnvString(&cfg.Registry.BaseURL, "ENVINFER_REGISTRY_BASE_URL")
	setEnvDuration(&cfg.Registry.Timeout, "ENVINFER_REGISTRY_TIMEOUT")
	setEnvDuration(&cfg.Registry.RequestInterval, "ENVINFER_REGISTRY_REQUEST_INTERVAL")
	setEnvInt(&cfg.Registry.Burst, "ENVINFER_REGISTRY_BURST")

	// Python environment
	setEnvString(&cfg.Python.InterpreterPrefix, "ENVINFER_PYTHON_INTERPRETER_PREFIX")

	// Output
	setEnvString(&cfg.Output.CondaFile, "ENVINFER_OUTPUT_CONDA_FILE")
	setEnvString(&cfg.Output.RequirementsFile, "ENVINFER_OUTPUT_REQUIREMENTS_FILE")
	setEnvString(&cfg.Output.Markdown, "ENVINFER_OUTPUT_MARKDOWN")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "ENVINFER_WATCH_DEBOUNCE")

	// History
	setEnvBool(&cfg.History.Enabled, "ENVINFER_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "ENVINFER_HISTORY_PATH")
	setEnvString(&cfg.History.ProjectKey, "ENVINFER_HISTORY_PROJECT_KEY")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "ENVINFER_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "ENVINFER_OTLP_ENDPOINT")

	// Performance
	setEnvInt(&cfg.Performance.MaxHeapMB, "ENVINFER_PERFORMANCE_MAX_HEAP_MB")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
