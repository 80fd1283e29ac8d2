package simulation

import (
	"errors"
	"fmt"
	"time"
)

// Simulator errors. All of them abort a run.
var (
	ErrInvalidConfig     = errors.New("invalid simulation config")
	ErrCallbackContract  = errors.New("strategy callback broke its contract")
	ErrAuditMismatch     = errors.New("capital does not reconcile with ledger")
	ErrOutOfOrder        = errors.New("bars must be strictly chronological")
	ErrSimulatorFailed   = errors.New("simulator already failed")
	ErrNilStrategy       = errors.New("strategy is required")
	ErrTradeNotConstruct = errors.New("trade constructor returned no trade")
)

// BarError identifies the bar, trade and step where a run failed.
type BarError struct {
	Date    time.Time
	TradeID string // empty when no trade was involved
	Step    string
	Err     error
}

func (e *BarError) Error() string {
	if e.TradeID != "" {
		return fmt.Sprintf("bar %s step %s trade %s: %v", e.Date.Format(time.DateOnly), e.Step, e.TradeID, e.Err)
	}
	return fmt.Sprintf("bar %s step %s: %v", e.Date.Format(time.DateOnly), e.Step, e.Err)
}

func (e *BarError) Unwrap() error {
	return e.Err
}

// Step names used in BarError.
const (
	stepValidate = "validate"
	stepMark     = "mark_to_market"
	stepExpiry   = "expiration"
	stepExit     = "exit"
	stepFill     = "fill_queued"
	stepEntry    = "entry"
	stepAudit    = "audit"
)
