package interpreter

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"Manifold/internal/domain"
)

var validate = validator.New()

// Thresholds are the levels the phase rules compare against.
//
// Curvature levels are ratios of the last curvature to the snapshot's
// curvature threshold. Entropy levels are normalized to [0,1] by log2(bins).
// Tension levels are absolute tension values.
type Thresholds struct {
	HighTension        float64 `yaml:"high_tension" default:"0.05" validate:"gt=0"`
	CompressionTension float64 `yaml:"compression_tension" default:"0.025" validate:"gt=0,ltefield=HighTension"`
	TensionHardLimit   float64 `yaml:"tension_hard_limit" default:"0.1" validate:"gtefield=HighTension"`

	SingularityCurvature float64 `yaml:"singularity_curvature" default:"1" validate:"gt=0"`
	ImpulseCurvature     float64 `yaml:"impulse_curvature" default:"0.5" validate:"gt=0,ltefield=SingularityCurvature"`
	CalmCurvature        float64 `yaml:"calm_curvature" default:"0.25" validate:"gt=0,ltefield=ImpulseCurvature"`

	LowEntropy   float64 `yaml:"low_entropy" default:"0.6" validate:"gt=0,lte=1"`
	EntropySpike float64 `yaml:"entropy_spike" default:"0.9" validate:"gtefield=LowEntropy,lte=1"`

	// ConvergencePct is the distance, in percent of price, inside which the
	// nearest attractor holds the price.
	ConvergencePct float64 `yaml:"convergence_pct" default:"1" validate:"gt=0"`
	// RecentFraction is the trailing share of the window in which
	// singularities and flow events count as recent. 1 counts every event
	// in the analysed window.
	RecentFraction        float64 `yaml:"recent_fraction" default:"1" validate:"gt=0,lte=1"`
	SingularityCountLimit int     `yaml:"singularity_count_limit" default:"2" validate:"gte=1"`
	FlowBars              int     `yaml:"flow_bars" default:"10" validate:"gte=4"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	var th Thresholds
	_ = defaults.Set(&th)
	return th
}

// Validate checks ranges and ordering. It never fills in defaults; start
// from DefaultThresholds to override single levels.
func (th *Thresholds) Validate() error {
	if err := validate.Struct(th); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrThresholdConfig, err)
	}
	return nil
}
