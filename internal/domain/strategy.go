package domain

// ProfileConfig selects a strategy profile and its parameters.
// Parameters are pointers so missing values can be told apart from zero.
type ProfileConfig struct {
	ProfileID string `yaml:"id" json:"id"` // "long_call" | "short_strangle" | "futures_momentum"
	Symbol    string `yaml:"symbol" json:"symbol"`

	// Sizing and expiry (all profiles)
	Contracts *int `yaml:"contracts" json:"contracts,omitempty"`
	DTE       *int `yaml:"dte" json:"dte,omitempty"`

	// Exit
	ProfitTargetPct *float64 `yaml:"profit_target_pct" json:"profit_target_pct,omitempty"`
	StopPct         *float64 `yaml:"stop_pct" json:"stop_pct,omitempty"`

	// short_strangle
	WingPct *float64 `yaml:"wing_pct" json:"wing_pct,omitempty"`
	MinVIX  *float64 `yaml:"min_vix" json:"min_vix,omitempty"`

	// futures_momentum
	RangeThreshold *float64 `yaml:"range_threshold" json:"range_threshold,omitempty"`
}

// Profile ID constants
const (
	ProfileLongCall        = "long_call"
	ProfileShortStrangle   = "short_strangle"
	ProfileFuturesMomentum = "futures_momentum"
)
