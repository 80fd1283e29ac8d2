package backtest

import "errors"

// Backtest errors
var (
	ErrNoBars           = errors.New("no bars in range")
	ErrInvalidJob       = errors.New("invalid backtest job")
	ErrRunExists        = errors.New("run already persisted")
	ErrNonDeterministic = errors.New("run is not deterministic")
	ErrBarsChanged      = errors.New("stored bars changed since the run")
)
