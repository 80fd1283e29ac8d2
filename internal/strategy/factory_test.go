package strategy

import (
	"errors"
	"reflect"
	"testing"

	"options-sim-lab/internal/domain"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestFromConfig_LongCall(t *testing.T) {
	cfg := domain.ProfileConfig{
		ProfileID:       domain.ProfileLongCall,
		Symbol:          "SPY",
		Contracts:       intPtr(2),
		DTE:             intPtr(30),
		ProfitTargetPct: floatPtr(0.5),
	}

	s, err := FromConfig(cfg, Env{Multiplier: 100})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	lc, ok := s.(*LongCallStrategy)
	if !ok {
		t.Fatalf("expected *LongCallStrategy, got %T", s)
	}
	if lc.Contracts != 2 {
		t.Errorf("expected 2 contracts, got %d", lc.Contracts)
	}
	if lc.DTE != 30 {
		t.Errorf("expected dte 30, got %d", lc.DTE)
	}
	if lc.Name() != domain.ProfileLongCall {
		t.Errorf("expected name %s, got %s", domain.ProfileLongCall, lc.Name())
	}
	if lc.ID() != "LONG_CALL_x2_dte30_tp50" {
		t.Errorf("unexpected id %s", lc.ID())
	}
}

func TestFromConfig_ShortStrangle(t *testing.T) {
	cfg := domain.ProfileConfig{
		ProfileID:       domain.ProfileShortStrangle,
		DTE:             intPtr(45),
		WingPct:         floatPtr(0.05),
		MinVIX:          floatPtr(18),
		ProfitTargetPct: floatPtr(0.5),
	}

	s, err := FromConfig(cfg, Env{Multiplier: 100})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	ss, ok := s.(*ShortStrangleStrategy)
	if !ok {
		t.Fatalf("expected *ShortStrangleStrategy, got %T", s)
	}
	if ss.Contracts != defaultContracts {
		t.Errorf("expected default contracts, got %d", ss.Contracts)
	}
	if ss.WingPct != 0.05 {
		t.Errorf("expected 0.05, got %f", ss.WingPct)
	}
	if ss.MinVIX != 18 {
		t.Errorf("expected 18, got %f", ss.MinVIX)
	}
	if ss.DefaultVIX != domain.DefaultVIX {
		t.Errorf("expected default vix %f, got %f", domain.DefaultVIX, ss.DefaultVIX)
	}
}

func TestFromConfig_ShortStrangleUsesConfiguredDefaultVIX(t *testing.T) {
	cfg := domain.ProfileConfig{
		ProfileID:       domain.ProfileShortStrangle,
		DTE:             intPtr(45),
		WingPct:         floatPtr(0.05),
		MinVIX:          floatPtr(18),
		ProfitTargetPct: floatPtr(0.5),
	}

	s, err := FromConfig(cfg, Env{Multiplier: 100, DefaultVIX: 12})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	// A bar without VIX is gated on the simulation default, not the package one.
	enter, err := s.EntryLogic(domain.Bar{Symbol: "SPY", Date: day0, Close: 100}, nil)
	if err != nil {
		t.Fatalf("EntryLogic failed: %v", err)
	}
	if enter {
		t.Error("expected no entry with default vix 12 below floor 18")
	}

	if _, err := FromConfig(cfg, Env{Multiplier: 100, DefaultVIX: -1}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam for negative default vix, got %v", err)
	}
}

func TestFromConfig_FuturesMomentum(t *testing.T) {
	cfg := domain.ProfileConfig{
		ProfileID:      domain.ProfileFuturesMomentum,
		DTE:            intPtr(90),
		RangeThreshold: floatPtr(0.2),
		StopPct:        floatPtr(0.03),
	}

	s, err := FromConfig(cfg, Env{Multiplier: 50})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	fm, ok := s.(*FuturesMomentumStrategy)
	if !ok {
		t.Fatalf("expected *FuturesMomentumStrategy, got %T", s)
	}
	if fm.ProfitTargetPct != 0 {
		t.Errorf("expected disabled profit target, got %f", fm.ProfitTargetPct)
	}
	if fm.Multiplier != 50 {
		t.Errorf("expected multiplier 50, got %f", fm.Multiplier)
	}
}

func TestFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.ProfileConfig
		want error
	}{
		{
			name: "unknown profile",
			cfg:  domain.ProfileConfig{ProfileID: "iron_condor"},
			want: ErrUnknownProfile,
		},
		{
			name: "missing dte",
			cfg:  domain.ProfileConfig{ProfileID: domain.ProfileLongCall, ProfitTargetPct: floatPtr(0.5)},
			want: ErrMissingDTE,
		},
		{
			name: "missing profit target",
			cfg:  domain.ProfileConfig{ProfileID: domain.ProfileLongCall, DTE: intPtr(30)},
			want: ErrMissingProfitTarget,
		},
		{
			name: "missing wing",
			cfg:  domain.ProfileConfig{ProfileID: domain.ProfileShortStrangle, DTE: intPtr(30), ProfitTargetPct: floatPtr(0.5)},
			want: ErrMissingWingPct,
		},
		{
			name: "missing range threshold",
			cfg:  domain.ProfileConfig{ProfileID: domain.ProfileFuturesMomentum, DTE: intPtr(30), StopPct: floatPtr(0.02)},
			want: ErrMissingRangeThreshold,
		},
		{
			name: "missing stop",
			cfg:  domain.ProfileConfig{ProfileID: domain.ProfileFuturesMomentum, DTE: intPtr(30), RangeThreshold: floatPtr(0.2)},
			want: ErrMissingStopPct,
		},
		{
			name: "zero contracts",
			cfg: domain.ProfileConfig{
				ProfileID: domain.ProfileLongCall, DTE: intPtr(30), Contracts: intPtr(0), ProfitTargetPct: floatPtr(0.5),
			},
			want: ErrInvalidParam,
		},
		{
			name: "wing out of range",
			cfg: domain.ProfileConfig{
				ProfileID: domain.ProfileShortStrangle, DTE: intPtr(30), WingPct: floatPtr(1.5), ProfitTargetPct: floatPtr(0.5),
			},
			want: ErrInvalidParam,
		},
		{
			name: "negative dte",
			cfg: domain.ProfileConfig{
				ProfileID: domain.ProfileLongCall, DTE: intPtr(-1), ProfitTargetPct: floatPtr(0.5),
			},
			want: ErrInvalidParam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(tt.cfg, Env{Multiplier: 100})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProfiles_Sorted(t *testing.T) {
	want := []string{domain.ProfileFuturesMomentum, domain.ProfileLongCall, domain.ProfileShortStrangle}
	if got := Profiles(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
