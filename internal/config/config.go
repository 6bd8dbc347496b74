// Package config provides centralized configuration for NetGuard-AI.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the tunables for the analysis pipeline. Every field can be
// overridden via environment variables; defaults match the documented
// behavior of the demonstration dashboard.
type Config struct {
	// TickInterval is the producer loop cadence.
	TickInterval time.Duration

	// MinBatch and MaxBatch bound the per-tick record count emitted by
	// the simulated source.
	MinBatch int
	MaxBatch int

	// ThreatThreshold is the minimum confidence for a non-normal
	// prediction to become a ThreatEvent.
	ThreatThreshold float64

	// HighSeverityThreshold is the confidence at which a ThreatEvent is
	// tiered HIGH instead of MEDIUM.
	HighSeverityThreshold float64

	// LogCapacity is the maximum number of entries the event log keeps.
	LogCapacity int

	// ThreatRate is the fraction of simulated records shaped like attack
	// traffic. Illustrative default, not a detection guarantee.
	ThreatRate float64

	// ModelPath is the path to the trained classifier artifact. Empty or
	// unreadable paths put the classifier into degraded (rule-based) mode.
	ModelPath string

	// PcapFile, when set, replays records from a capture file instead of
	// running the simulator. Reading a pcap needs no elevated privileges.
	PcapFile string

	// DataDir is the directory for JSONL event/threat history dumps.
	DataDir string

	// ListenAddr is the HTTP listen address for the dashboard API.
	ListenAddr string
}

// Default returns the default configuration, with environment overrides
// applied.
func Default() *Config {
	return &Config{
		TickInterval:          envDuration("NETGUARD_TICK_INTERVAL", 2*time.Second),
		MinBatch:              envInt("NETGUARD_MIN_BATCH", 1),
		MaxBatch:              envInt("NETGUARD_MAX_BATCH", 10),
		ThreatThreshold:       envFloat("NETGUARD_THREAT_THRESHOLD", 0.5),
		HighSeverityThreshold: envFloat("NETGUARD_HIGH_SEVERITY_THRESHOLD", 0.8),
		LogCapacity:           envInt("NETGUARD_LOG_CAPACITY", 10000),
		ThreatRate:            envFloat("NETGUARD_THREAT_RATE", 0.15),
		ModelPath:             os.Getenv("NETGUARD_MODEL_PATH"),
		PcapFile:              os.Getenv("NETGUARD_PCAP_FILE"),
		DataDir:               envString("NETGUARD_DATA_DIR", defaultDataDir()),
		ListenAddr:            envString("NETGUARD_LISTEN_ADDR", ":8090"),
	}
}

// Validate clamps out-of-range values back to usable defaults rather than
// failing; the monitor should come up even with a bad environment.
func (c *Config) Validate() {
	if c.TickInterval <= 0 {
		c.TickInterval = 2 * time.Second
	}
	if c.MinBatch < 0 {
		c.MinBatch = 0
	}
	if c.MaxBatch < c.MinBatch {
		c.MaxBatch = c.MinBatch
	}
	if c.ThreatThreshold < 0 || c.ThreatThreshold > 1 {
		c.ThreatThreshold = 0.5
	}
	if c.HighSeverityThreshold < c.ThreatThreshold || c.HighSeverityThreshold > 1 {
		c.HighSeverityThreshold = 0.8
	}
	if c.LogCapacity <= 0 {
		c.LogCapacity = 10000
	}
	if c.ThreatRate < 0 || c.ThreatRate > 1 {
		c.ThreatRate = 0.15
	}
}

// EnsureDirectories creates the data directory if it does not exist.
func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.DataDir, 0o755)
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "netguard-ai")
	}
	home := os.Getenv("HOME")
	if home == "" {
		home = "/tmp"
	}
	return filepath.Join(home, ".local", "share", "netguard-ai")
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// EnvVarsDoc documents the configuration surface for operators.
const EnvVarsDoc = `
NetGuard-AI Configuration Environment Variables:

  NETGUARD_TICK_INTERVAL           Producer loop cadence (default: 2s)
  NETGUARD_MIN_BATCH               Minimum records per tick (default: 1)
  NETGUARD_MAX_BATCH               Maximum records per tick (default: 10)
  NETGUARD_THREAT_THRESHOLD        Alert confidence threshold (default: 0.5)
  NETGUARD_HIGH_SEVERITY_THRESHOLD HIGH-tier confidence (default: 0.8)
  NETGUARD_LOG_CAPACITY            Event log capacity (default: 10000)
  NETGUARD_THREAT_RATE             Simulated attack-traffic rate (default: 0.15)
  NETGUARD_MODEL_PATH              Trained classifier artifact (default: unset)
  NETGUARD_PCAP_FILE               Replay records from a pcap file instead
  NETGUARD_DATA_DIR                JSONL history directory
                                   (default: ~/.local/share/netguard-ai)
  NETGUARD_LISTEN_ADDR             Dashboard API address (default: :8090)
`
