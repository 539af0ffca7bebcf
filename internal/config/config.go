// Package config loads the monitor's settings from a YAML file with
// environment-variable overrides, then a sync.Once singleton the rest of
// the program reads through Get.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v2"
)

// Config is the root configuration document.
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Providers  []ProviderConfig `yaml:"providers"`
	Heuristics HeuristicsConfig `yaml:"heuristics"`
	Target     TargetConfig     `yaml:"target"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EngineConfig sizes the arena and graph the engine allocates once at
// construction. WorkerThreads is loaded and defaulted but nothing reads it;
// the engine runs a single consumer worker.
type EngineConfig struct {
	ArenaBytes    int `yaml:"arena_bytes"`
	GraphCapacity int `yaml:"graph_capacity"`
	WorkerThreads int `yaml:"worker_threads"`
}

// ProviderConfig describes one entry in the provider-name recognition
// table: whether it is enabled at start, and its trace level/keyword mask.
type ProviderConfig struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	Level    uint8  `yaml:"level"`
	Keywords uint64 `yaml:"keywords"`
}

// HeuristicsConfig holds detector thresholds as loaded from the config file
// and environment. Nothing passes these fields on: the detectors in
// internal/parsers/heuristics use their own fixed values.
type HeuristicsConfig struct {
	DgaEntropyThreshold     float64 `yaml:"dga_entropy_threshold"`
	BruteForceWindowSeconds int     `yaml:"bruteforce_window_seconds"`
	BruteForceThreshold     int     `yaml:"bruteforce_threshold"`
	SuspiciousMemoryFlags   uint32  `yaml:"suspicious_memory_flags"`
	ObfuscatedNameMinLength int     `yaml:"obfuscated_name_min_length"`
	ObfuscatedNonAlnumRatio float64 `yaml:"obfuscated_nonalnum_ratio"`
}

// TargetConfig describes the monitored executable launched by
// start_monitoring.
type TargetConfig struct {
	ExePath string   `yaml:"exe_path"`
	Args    []string `yaml:"args"`
	Workdir string   `yaml:"workdir"`
}

// TelemetryConfig configures the Prometheus /metrics exporter.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig configures the slog handler cmd/exerayd installs.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the process-wide singleton, loading it from CONFIG_PATH (or
// "config.yaml") on first call. A missing or unreadable file falls back to
// defaults rather than failing the process.
func Get() *Config {
	once.Do(func() {
		cfg, err := LoadConfig(getEnv("CONFIG_PATH", "config.yaml"))
		if err != nil {
			slog.Warn("config: failed to load config file, using defaults", "error", err)
			cfg = &Config{}
		}
		cfg.applyEnvOverrides()
		cfg.applyDefaults()
		instance = cfg
	})
	return instance
}

// LoadConfig reads and decodes the YAML document at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Target.ExePath = getEnv("EXERAY_TARGET_EXE", c.Target.ExePath)
	c.Target.Workdir = getEnv("EXERAY_TARGET_WORKDIR", c.Target.Workdir)

	if v := getEnvInt("EXERAY_ARENA_BYTES", 0); v > 0 {
		c.Engine.ArenaBytes = v
	}
	if v := getEnvInt("EXERAY_GRAPH_CAPACITY", 0); v > 0 {
		c.Engine.GraphCapacity = v
	}
	if v := getEnvInt("EXERAY_WORKER_THREADS", 0); v > 0 {
		c.Engine.WorkerThreads = v
	}

	if v := getEnvFloat("EXERAY_DGA_ENTROPY_THRESHOLD", 0); v > 0 {
		c.Heuristics.DgaEntropyThreshold = v
	}
	if v := getEnvInt("EXERAY_BRUTEFORCE_WINDOW_SECONDS", 0); v > 0 {
		c.Heuristics.BruteForceWindowSeconds = v
	}
	if v := getEnvInt("EXERAY_BRUTEFORCE_THRESHOLD", 0); v > 0 {
		c.Heuristics.BruteForceThreshold = v
	}

	c.Telemetry.Addr = getEnv("EXERAY_TELEMETRY_ADDR", c.Telemetry.Addr)
	c.Telemetry.Enabled = getEnvBool("EXERAY_TELEMETRY_ENABLED", c.Telemetry.Enabled)

	c.Logging.Level = getEnv("EXERAY_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("EXERAY_LOG_FORMAT", c.Logging.Format)
}

// applyDefaults fills every zero-valued field with the shipped default,
// and seeds the full provider table (all disabled) when the loaded
// document named none at all.
func (c *Config) applyDefaults() {
	if c.Engine.ArenaBytes == 0 {
		c.Engine.ArenaBytes = 64 << 20 // 64 MiB
	}
	if c.Engine.GraphCapacity == 0 {
		c.Engine.GraphCapacity = 1 << 20
	}
	if c.Engine.WorkerThreads == 0 {
		c.Engine.WorkerThreads = 1
	}
	if c.Heuristics.DgaEntropyThreshold == 0 {
		c.Heuristics.DgaEntropyThreshold = 3.8
	}
	if c.Heuristics.BruteForceWindowSeconds == 0 {
		c.Heuristics.BruteForceWindowSeconds = 60
	}
	if c.Heuristics.BruteForceThreshold == 0 {
		c.Heuristics.BruteForceThreshold = 5
	}
	if c.Heuristics.SuspiciousMemoryFlags == 0 {
		c.Heuristics.SuspiciousMemoryFlags = 0x40 // PAGE_EXECUTE_READWRITE
	}
	if c.Heuristics.ObfuscatedNameMinLength == 0 {
		c.Heuristics.ObfuscatedNameMinLength = 3
	}
	if c.Heuristics.ObfuscatedNonAlnumRatio == 0 {
		c.Heuristics.ObfuscatedNonAlnumRatio = 0.5
	}
	if c.Target.Workdir == "" {
		c.Target.Workdir = "."
	}
	if c.Telemetry.Addr == "" {
		c.Telemetry.Addr = ":9090"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if len(c.Providers) == 0 {
		c.Providers = DefaultProviderTable()
	}
}

// DefaultProviderTable enumerates the full provider-name recognition table
// with every entry disabled, a starting point callers can selectively flip
// on rather than hand-writing all thirteen names.
func DefaultProviderTable() []ProviderConfig {
	names := []string{
		"Process", "File", "Registry", "Network", "Image", "Thread",
		"Memory", "PowerShell", "AMSI", "DNS", "WMI", "CLR", "Security",
	}
	table := make([]ProviderConfig, 0, len(names))
	for _, name := range names {
		table = append(table, ProviderConfig{Name: name, Enabled: false})
	}
	return table
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1"
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
