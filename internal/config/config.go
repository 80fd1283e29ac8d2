// Package config loads run configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/execution"
	"options-sim-lab/internal/simulation"
	"options-sim-lab/internal/strategy"
)

// Config errors
var (
	ErrInvalidConfig   = errors.New("invalid config")
	ErrUnknownScenario = errors.New("unknown scenario")
)

// DateLayout is the layout of data range bounds.
const DateLayout = "2006-01-02"

// Storage backends
const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
)

// Environment variables read after .env is loaded.
const (
	EnvPostgresDSN   = "POSTGRES_DSN"
	EnvClickHouseDSN = "CLICKHOUSE_DSN"
	EnvLogLevel      = "LOG_LEVEL"
)

// Config is the full configuration of a backtest or sweep.
type Config struct {
	Simulation simulation.Config    `yaml:"simulation"`
	Execution  execution.Config     `yaml:"execution"`
	Profile    domain.ProfileConfig `yaml:"profile"`
	Scenario   string               `yaml:"scenario"`
	Data       DataConfig           `yaml:"data"`
	Storage    StorageConfig        `yaml:"storage"`
	Logging    LoggingConfig        `yaml:"logging"`
	Tracing    TracingConfig        `yaml:"tracing"`
	Sweep      SweepConfig          `yaml:"sweep"`
	Server     ServerConfig         `yaml:"server"`
}

// DataConfig bounds the bars a run reads. Empty bounds read everything.
type DataConfig struct {
	From string `yaml:"from"` // YYYY-MM-DD, inclusive
	To   string `yaml:"to"`   // YYYY-MM-DD, inclusive
}

// StorageConfig selects where bars come from and where results go.
type StorageConfig struct {
	Backend       string `yaml:"backend"` // "memory" | "database"
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"` // database name taken from the DSN path
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" | "console"
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// SweepConfig is the parameter grid of a sweep: every profile runs under
// every scenario.
type SweepConfig struct {
	Profiles  []domain.ProfileConfig `yaml:"profiles"`
	Scenarios []string               `yaml:"scenarios"`
	Workers   int                    `yaml:"workers"`
}

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a config with every documented default.
func Default() Config {
	return Config{
		Simulation: simulation.DefaultConfig(),
		Execution:  execution.DefaultConfig(),
		Scenario:   domain.ScenarioRealistic,
		Storage: StorageConfig{
			Backend: BackendMemory,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "options-sim-lab",
		},
		Sweep: SweepConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads path on top of the defaults, applies environment overrides
// and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// LoadEnv loads .env files into the process environment.
// Missing files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPostgresDSN); v != "" && c.Storage.PostgresDSN == "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv(EnvClickHouseDSN); v != "" && c.Storage.ClickHouseDSN == "" {
		c.Storage.ClickHouseDSN = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports the first unusable value. Invalid values are never
// replaced by defaults.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.Execution.Validate(); err != nil {
		return err
	}
	if c.Execution.ContractMultiplier != c.Simulation.ContractMultiplier {
		return fmt.Errorf("%w: execution.contract_multiplier %v differs from simulation.contract_multiplier %v",
			ErrInvalidConfig, c.Execution.ContractMultiplier, c.Simulation.ContractMultiplier)
	}

	if _, err := c.ScenarioConfig(); err != nil {
		return err
	}
	if _, _, err := c.Data.Range(); err != nil {
		return err
	}

	if c.Profile.ProfileID != "" {
		if err := validateProfile(c.Profile, c.Simulation); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendDatabase:
		if c.Storage.PostgresDSN == "" || c.Storage.ClickHouseDSN == "" {
			return fmt.Errorf("%w: database backend requires postgres_dsn and clickhouse_dsn (or %s, %s)",
				ErrInvalidConfig, EnvPostgresDSN, EnvClickHouseDSN)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if c.Sweep.Workers <= 0 {
		return fmt.Errorf("%w: sweep.workers must be positive, got %d", ErrInvalidConfig, c.Sweep.Workers)
	}
	for i, p := range c.Sweep.Profiles {
		if err := validateProfile(p, c.Simulation); err != nil {
			return fmt.Errorf("sweep.profiles[%d]: %w", i, err)
		}
	}
	for _, id := range c.Sweep.Scenarios {
		if _, ok := domain.ScenarioByID(id); !ok {
			return fmt.Errorf("%w: sweep scenario %q", ErrUnknownScenario, id)
		}
	}

	return nil
}

// ScenarioConfig resolves the configured scenario id.
func (c *Config) ScenarioConfig() (domain.ScenarioConfig, error) {
	s, ok := domain.ScenarioByID(c.Scenario)
	if !ok {
		return domain.ScenarioConfig{}, fmt.Errorf("%w: %q", ErrUnknownScenario, c.Scenario)
	}
	return s, nil
}

// SweepScenarios returns the sweep scenarios, or all four when none are listed.
func (c *Config) SweepScenarios() []domain.ScenarioConfig {
	ids := c.Sweep.Scenarios
	if len(ids) == 0 {
		ids = []string{
			domain.ScenarioOptimistic,
			domain.ScenarioRealistic,
			domain.ScenarioPessimistic,
			domain.ScenarioDegraded,
		}
	}
	out := make([]domain.ScenarioConfig, 0, len(ids))
	for _, id := range ids {
		if s, ok := domain.ScenarioByID(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// Range parses the data bounds. Zero times mean unbounded.
func (d DataConfig) Range() (from, to time.Time, err error) {
	if from, err = parseDate("data.from", d.From); err != nil {
		return
	}
	if to, err = parseDate("data.to", d.To); err != nil {
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		err = fmt.Errorf("%w: data.to %s is before data.from %s", ErrInvalidConfig, d.To, d.From)
	}
	if !to.IsZero() {
		// inclusive end of day
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return
}

func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	return t, nil
}

func validateProfile(p domain.ProfileConfig, sim simulation.Config) error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidConfig)
	}
	_, err := strategy.FromConfig(p, strategy.Env{Multiplier: sim.ContractMultiplier, DefaultVIX: sim.DefaultVIX})
	return err
}
