package domain

import "errors"

// ErrInvalidBar is returned for bars with missing or non-finite market data.
var ErrInvalidBar = errors.New("invalid bar")
