package models

import "time"

// Horizon is a temporal resolution at which the pipeline runs independently.
type Horizon string

const (
	HorizonMicro  Horizon = "micro"
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
	HorizonMacro  Horizon = "macro"
)

// HorizonSpec binds a horizon to its resampling and tuning defaults.
type HorizonSpec struct {
	Granularity   time.Duration
	MinLength     int
	EntropyWindow int
	TensionDecay  float64
	// Weight breaks ties in multi-scale voting; longer horizons weigh more.
	Weight int
}

var horizonSpecs = map[Horizon]HorizonSpec{
	HorizonMicro:  {Granularity: time.Minute, MinLength: 30, EntropyWindow: 30, TensionDecay: 0.80, Weight: 1},
	HorizonShort:  {Granularity: 5 * time.Minute, MinLength: 30, EntropyWindow: 20, TensionDecay: 0.85, Weight: 2},
	HorizonMedium: {Granularity: time.Hour, MinLength: 24, EntropyWindow: 20, TensionDecay: 0.90, Weight: 3},
	HorizonLong:   {Granularity: 24 * time.Hour, MinLength: 20, EntropyWindow: 14, TensionDecay: 0.93, Weight: 4},
	HorizonMacro:  {Granularity: 7 * 24 * time.Hour, MinLength: 12, EntropyWindow: 8, TensionDecay: 0.95, Weight: 5},
}

// AllHorizons lists horizons from shortest to longest.
func AllHorizons() []Horizon {
	return []Horizon{HorizonMicro, HorizonShort, HorizonMedium, HorizonLong, HorizonMacro}
}

// Spec returns the defaults bound to h.
func (h Horizon) Spec() (HorizonSpec, bool) {
	s, ok := horizonSpecs[h]
	return s, ok
}

// IsValidHorizon returns true if h is a supported horizon.
func IsValidHorizon(h Horizon) bool {
	_, ok := horizonSpecs[h]
	return ok
}

// DefaultHorizon returns the default horizon.
func DefaultHorizon() Horizon { return HorizonShort }

// MonitorKey identifies one monitoring loop.
type MonitorKey struct {
	Symbol  string
	Horizon Horizon
}

func (k MonitorKey) String() string { return k.Symbol + "|" + string(k.Horizon) }
