package backtest

import (
	"encoding/json"
	"fmt"
	"time"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/execution"
	"options-sim-lab/internal/simulation"
)

// Job is everything that determines a run's output besides the bars.
// Its JSON form is stored with the run and hashed into the run id.
type Job struct {
	Profile    domain.ProfileConfig  `json:"profile"`
	Scenario   domain.ScenarioConfig `json:"scenario"`
	Simulation simulation.Config     `json:"simulation"`
	Execution  execution.Config      `json:"execution"`
	From       time.Time             `json:"from"` // zero = first stored bar
	To         time.Time             `json:"to"`   // zero = last stored bar
}

// ConfigJSON returns the canonical encoding of the job.
func (j Job) ConfigJSON() ([]byte, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	return b, nil
}

// JobFromRun decodes the job stored with a run.
func JobFromRun(run *domain.BacktestRun) (Job, error) {
	var j Job
	if len(run.ConfigJSON) == 0 {
		return j, fmt.Errorf("%w: run %s has no stored config", ErrInvalidJob, run.RunID)
	}
	if err := json.Unmarshal(run.ConfigJSON, &j); err != nil {
		return j, fmt.Errorf("%w: decode config of run %s: %v", ErrInvalidJob, run.RunID, err)
	}
	return j, nil
}

// Grid expands base into one job per profile and scenario, profiles outermost.
func Grid(base Job, profiles []domain.ProfileConfig, scenarios []domain.ScenarioConfig) []Job {
	jobs := make([]Job, 0, len(profiles)*len(scenarios))
	for _, p := range profiles {
		for _, s := range scenarios {
			j := base
			j.Profile = p
			j.Scenario = s
			jobs = append(jobs, j)
		}
	}
	return jobs
}
