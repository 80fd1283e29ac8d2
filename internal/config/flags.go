package config

import (
	"flag"
)

// Overrides binds command line flags that override config file values.
// Only flags given on the command line are applied.
type Overrides struct {
	fs *flag.FlagSet

	profile        string
	symbol         string
	scenario       string
	from           string
	to             string
	contracts      int
	dte            int
	profitTarget   float64
	stopPct        float64
	wingPct        float64
	minVIX         float64
	rangeThreshold float64
	capital        float64
	backend        string
	logLevel       string
	workers        int
}

// RegisterFlags adds the override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Overrides {
	o := &Overrides{fs: fs}
	fs.StringVar(&o.profile, "profile", "", "Profile: long_call, short_strangle, futures_momentum")
	fs.StringVar(&o.symbol, "symbol", "", "Underlying symbol")
	fs.StringVar(&o.scenario, "scenario", "", "Scenario: optimistic, realistic, pessimistic, degraded")
	fs.StringVar(&o.from, "from", "", "First bar date (YYYY-MM-DD)")
	fs.StringVar(&o.to, "to", "", "Last bar date (YYYY-MM-DD)")
	fs.IntVar(&o.contracts, "contracts", 0, "Contracts per trade")
	fs.IntVar(&o.dte, "dte", 0, "Days to expiry at entry")
	fs.Float64Var(&o.profitTarget, "profit-target-pct", 0, "Profit target as a fraction of entry cost")
	fs.Float64Var(&o.stopPct, "stop-pct", 0, "Stop distance for futures_momentum")
	fs.Float64Var(&o.wingPct, "wing-pct", 0, "Strangle wing distance from spot")
	fs.Float64Var(&o.minVIX, "min-vix", 0, "Minimum VIX for short_strangle entries")
	fs.Float64Var(&o.rangeThreshold, "range-threshold", 0, "Close-in-range threshold for futures_momentum")
	fs.Float64Var(&o.capital, "initial-capital", 0, "Initial capital")
	fs.StringVar(&o.backend, "storage", "", "Storage backend: memory, database")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.IntVar(&o.workers, "workers", 0, "Sweep worker count")
	return o
}

// Apply copies every flag that was set onto c.
func (o *Overrides) Apply(c *Config) {
	o.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "profile":
			c.Profile.ProfileID = o.profile
		case "symbol":
			c.Profile.Symbol = o.symbol
			for i := range c.Sweep.Profiles {
				c.Sweep.Profiles[i].Symbol = o.symbol
			}
		case "scenario":
			c.Scenario = o.scenario
		case "from":
			c.Data.From = o.from
		case "to":
			c.Data.To = o.to
		case "contracts":
			c.Profile.Contracts = &o.contracts
		case "dte":
			c.Profile.DTE = &o.dte
		case "profit-target-pct":
			c.Profile.ProfitTargetPct = &o.profitTarget
		case "stop-pct":
			c.Profile.StopPct = &o.stopPct
		case "wing-pct":
			c.Profile.WingPct = &o.wingPct
		case "min-vix":
			c.Profile.MinVIX = &o.minVIX
		case "range-threshold":
			c.Profile.RangeThreshold = &o.rangeThreshold
		case "initial-capital":
			c.Simulation.InitialCapital = o.capital
		case "storage":
			c.Storage.Backend = o.backend
		case "log-level":
			c.Logging.Level = o.logLevel
		case "workers":
			c.Sweep.Workers = o.workers
		}
	})
}
