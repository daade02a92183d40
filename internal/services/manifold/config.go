package manifold

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"Manifold/internal/domain"
)

var validate = validator.New()

// CurvatureConfig tunes the curvature estimator. Unless RawScale is set,
// curvature is divided by the window's mean price and MinMagnitude is a
// fraction of price.
type CurvatureConfig struct {
	RawScale     bool    `yaml:"raw_scale"`
	MinMagnitude float64 `yaml:"min_magnitude" default:"0.0001" validate:"gt=0"`
}

type EntropyConfig struct {
	Bins int `yaml:"bins" default:"10" validate:"gte=2,lte=512"`
	// MinSpan widens the bin range when returns barely move.
	MinSpan float64 `yaml:"min_span" default:"0.001" validate:"gte=0"`
	// Window overrides the horizon's local entropy window when non-zero.
	Window int `yaml:"window" validate:"gte=0"`
}

type TensionConfig struct {
	// Decay overrides the horizon's decay factor when non-zero.
	Decay            float64 `yaml:"decay" validate:"gte=0,lt=1"`
	PersistenceBonus float64 `yaml:"persistence_bonus" default:"0.5" validate:"gte=0,lte=10"`
}

type SingularityConfig struct {
	MADMultiplier     float64 `yaml:"mad_multiplier" default:"2.5" validate:"gt=0"`
	TensionPercentile float64 `yaml:"tension_percentile" default:"90" validate:"gt=0,lt=100"`
	TensionFloor      float64 `yaml:"tension_floor" default:"0.02" validate:"gte=0"`
	MinGap            int     `yaml:"min_gap" default:"5" validate:"gte=1"`
}

type AttractorConfig struct {
	MaxCenters int `yaml:"max_centers" default:"5" validate:"gte=1,lte=50"`
	// HalfLife is the recency half-life as a fraction of the window length.
	HalfLife float64 `yaml:"half_life" default:"0.5" validate:"gt=0,lte=10"`
	MergePct float64 `yaml:"merge_pct" default:"0.5" validate:"gte=0,lt=100"`
	MaxIter  int     `yaml:"max_iter" default:"50" validate:"gte=1,lte=1000"`
}

type RicciConfig struct {
	Lookahead     int     `yaml:"lookahead" default:"3" validate:"gte=1"`
	DropRatio     float64 `yaml:"drop_ratio" default:"0.5" validate:"gt=0,lt=1"`
	ResetFraction float64 `yaml:"reset_fraction" default:"0.5" validate:"gt=0,lte=1"`
}

// Config holds every threshold of the single-scale pipeline.
type Config struct {
	Curvature   CurvatureConfig   `yaml:"curvature"`
	Entropy     EntropyConfig     `yaml:"entropy"`
	Tension     TensionConfig     `yaml:"tension"`
	Singularity SingularityConfig `yaml:"singularity"`
	Attractor   AttractorConfig   `yaml:"attractor"`
	Ricci       RicciConfig       `yaml:"ricci"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

// Validate checks ranges and leaves every value as given, so an explicit
// zero such as PersistenceBonus 0 is kept. Failures wrap
// domain.ErrThresholdConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrThresholdConfig, err)
	}
	return nil
}
