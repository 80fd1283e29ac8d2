package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/simulation"
	"options-sim-lab/internal/strategy"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100000.0, cfg.Simulation.InitialCapital)
	assert.True(t, cfg.Simulation.EnforceExecutionLag)
	assert.Equal(t, 0.02, cfg.Simulation.DailyLossLimitPct)
	assert.Equal(t, 0.65, cfg.Execution.CommissionPerContract)
	assert.Equal(t, domain.ScenarioRealistic, cfg.Scenario)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 4, cfg.Sweep.Workers)
}

func TestLoad_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
simulation:
  initial_capital: 50000
  enforce_execution_lag: false
  max_loss_pct: 0.5
execution:
  commission_per_contract: 0.5
profile:
  id: short_strangle
  symbol: SPY
  dte: 45
  wing_pct: 0.1
  profit_target_pct: 0.5
  min_vix: 18
scenario: pessimistic
data:
  from: 2023-01-03
  to: 2023-12-29
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50000.0, cfg.Simulation.InitialCapital)
	assert.False(t, cfg.Simulation.EnforceExecutionLag)
	assert.Equal(t, 0.5, cfg.Simulation.MaxLossPct)
	assert.Equal(t, 0.04, cfg.Simulation.RiskFreeRate)
	assert.Equal(t, 0.5, cfg.Execution.CommissionPerContract)
	assert.Equal(t, 0.055, cfg.Execution.OCCFeePerContract)
	require.NotNil(t, cfg.Profile.DTE)
	assert.Equal(t, 45, *cfg.Profile.DTE)
	assert.Nil(t, cfg.Profile.Contracts)

	scenario, err := cfg.ScenarioConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.ScenarioConfigPessimistic, scenario)

	from, to, err := cfg.Data.Range()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2023, 12, 29, 23, 59, 59, 999999999, time.UTC), to)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "negative capital",
			yaml:    "simulation:\n  initial_capital: -1\n",
			wantErr: simulation.ErrInvalidConfig,
		},
		{
			name:    "unknown scenario",
			yaml:    "scenario: apocalyptic\n",
			wantErr: ErrUnknownScenario,
		},
		{
			name:    "bad date",
			yaml:    "data:\n  from: 03/01/2023\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "reversed range",
			yaml:    "data:\n  from: 2023-02-01\n  to: 2023-01-01\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown profile",
			yaml:    "profile:\n  id: iron_condor\n  symbol: SPY\n",
			wantErr: strategy.ErrUnknownProfile,
		},
		{
			name:    "missing dte",
			yaml:    "profile:\n  id: long_call\n  symbol: SPY\n  profit_target_pct: 0.5\n",
			wantErr: strategy.ErrMissingDTE,
		},
		{
			name:    "database without dsn",
			yaml:    "storage:\n  backend: database\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "zero workers",
			yaml:    "sweep:\n  workers: 0\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "multiplier mismatch",
			yaml:    "execution:\n  contract_multiplier: 50\n",
			wantErr: ErrInvalidConfig,
		},
	}

	t.Setenv(EnvPostgresDSN, "")
	t.Setenv(EnvClickHouseDSN, "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLoad_EnvDSN(t *testing.T) {
	envFile := writeFile(t, ".env", "POSTGRES_DSN=postgres://u:p@localhost:5432/sim\nCLICKHOUSE_DSN=clickhouse://localhost:9000/default\n")
	t.Setenv(EnvPostgresDSN, "")
	t.Setenv(EnvClickHouseDSN, "")
	os.Unsetenv(EnvPostgresDSN)
	os.Unsetenv(EnvClickHouseDSN)

	require.NoError(t, LoadEnv(envFile, filepath.Join(t.TempDir(), "missing.env")))

	cfg, err := Load(writeFile(t, "config.yaml", "storage:\n  backend: database\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/sim", cfg.Storage.PostgresDSN)
	assert.Equal(t, "clickhouse://localhost:9000/default", cfg.Storage.ClickHouseDSN)
}

func TestSweepScenarios(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.SweepScenarios(), 4)

	cfg.Sweep.Scenarios = []string{domain.ScenarioDegraded}
	got := cfg.SweepScenarios()
	require.Len(t, got, 1)
	assert.Equal(t, domain.ScenarioDegraded, got[0].ScenarioID)
}
