package backtest

import (
	"context"
	"time"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/replay"
	"options-sim-lab/internal/simulation"
)

// Progress holds what the engine has fed to the simulator so far.
type Progress struct {
	BarCount  int
	FirstDate time.Time
	LastDate  time.Time
}

// Engine drives a simulator bar by bar.
// Implements replay.ReplayEngine.
type Engine struct {
	sim      *simulation.Simulator
	progress Progress
}

// NewEngine creates a new backtest engine around sim.
func NewEngine(sim *simulation.Simulator) *Engine {
	return &Engine{sim: sim}
}

// OnBar steps the simulator with one bar.
// Implements replay.ReplayEngine.
func (e *Engine) OnBar(ctx context.Context, bar *domain.Bar) error {
	if err := e.sim.Step(ctx, *bar); err != nil {
		return err
	}

	if e.progress.BarCount == 0 {
		e.progress.FirstDate = bar.Date
	}
	e.progress.LastDate = bar.Date
	e.progress.BarCount++
	return nil
}

// Progress returns the bars processed so far.
func (e *Engine) Progress() Progress {
	return e.progress
}

// Result returns the simulator's result at the current bar.
func (e *Engine) Result() *simulation.Result {
	return e.sim.Result()
}

// Ensure Engine implements replay.ReplayEngine
var _ replay.ReplayEngine = (*Engine)(nil)
