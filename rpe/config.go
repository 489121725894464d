package rpe

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/trajeval/utils"
)

// Config describes how an estimate is associated with its groundtruth and how segments are
// selected and evaluated.
type Config struct {
	OffsetSec                        float64 `json:"offset_sec"`
	MaxDifferenceSec                 float64 `json:"max_difference_sec"`
	SegmentLength                    float64 `json:"segment_length"`
	SkipFrames                       int     `json:"skip_frames"`
	LeastSquaresAlign                bool    `json:"least_squares_align"`
	LeastSquaresAlignTranslationOnly bool    `json:"least_squares_align_translation_only"`
	LeastSquaresAlignScale           bool    `json:"least_squares_align_scale"`
	LeastSquaresAlignRange           float64 `json:"least_squares_align_range"`
	AllowPartialSegments             bool    `json:"allow_partial_segments"`
	Workers                          int     `json:"workers"`
}

// maxDurationSec bounds offset_sec and max_difference_sec so they convert to a time.Duration
// without overflowing.
const maxDurationSec = 1e9

// NewDefaultConfig returns the configuration used when no option is set.
func NewDefaultConfig() *Config {
	return &Config{
		OffsetSec:              0,
		MaxDifferenceSec:       0.02,
		SegmentLength:          50,
		SkipFrames:             10,
		LeastSquaresAlignRange: 0.2,
		Workers:                1,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if !utils.IsFinite(cfg.OffsetSec, cfg.MaxDifferenceSec, cfg.SegmentLength, cfg.LeastSquaresAlignRange) {
		return utils.NewConfigValidationError(path, errors.New("options must be finite numbers"))
	}
	if cfg.MaxDifferenceSec < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_difference_sec must not be negative, got %v", cfg.MaxDifferenceSec))
	}
	if cfg.MaxDifferenceSec > maxDurationSec {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_difference_sec must be at most %g, got %v", maxDurationSec, cfg.MaxDifferenceSec))
	}
	if math.Abs(cfg.OffsetSec) > maxDurationSec {
		return utils.NewConfigValidationError(path,
			errors.Errorf("offset_sec must be within ±%g, got %v", maxDurationSec, cfg.OffsetSec))
	}
	if cfg.SegmentLength <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("segment_length must be positive, got %v", cfg.SegmentLength))
	}
	if cfg.SkipFrames < 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("skip_frames must be at least 1, got %d", cfg.SkipFrames))
	}
	if cfg.LeastSquaresAlignRange <= 0 || cfg.LeastSquaresAlignRange > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("least_squares_align_range must be in (0, 1], got %v", cfg.LeastSquaresAlignRange))
	}
	if cfg.LeastSquaresAlignTranslationOnly && cfg.LeastSquaresAlignScale {
		return utils.NewConfigValidationError(path,
			errors.New("least_squares_align_translation_only and least_squares_align_scale are mutually exclusive"))
	}
	if cfg.Workers < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("workers must not be negative, got %d", cfg.Workers))
	}
	return nil
}

// Offset returns the offset applied to estimate stamps before matching.
func (cfg *Config) Offset() time.Duration {
	return utils.SecondsToDuration(cfg.OffsetSec)
}

// MaxDifference returns the matching tolerance.
func (cfg *Config) MaxDifference() time.Duration {
	return utils.SecondsToDuration(cfg.MaxDifferenceSec)
}

// AlignmentMode returns the per-segment realignment selected by the config.
func (cfg *Config) AlignmentMode() AlignmentMode {
	switch {
	case !cfg.LeastSquaresAlign:
		return AlignNone
	case cfg.LeastSquaresAlignTranslationOnly:
		return AlignTranslation
	case cfg.LeastSquaresAlignScale:
		return AlignSimilarity
	default:
		return AlignRigid
	}
}

// AlignOptions returns the realignment options for ComputeError.
func (cfg *Config) AlignOptions() AlignOptions {
	return AlignOptions{Mode: cfg.AlignmentMode(), Range: cfg.LeastSquaresAlignRange}
}

// SegmentOptions returns the options for SelectSegments.
func (cfg *Config) SegmentOptions() []SegmentOption {
	if cfg.AllowPartialSegments {
		return []SegmentOption{KeepPartialSegments()}
	}
	return nil
}

// DecodeConfig decodes attributes onto the default config. Unknown keys are rejected.
func DecodeConfig(attributes map[string]interface{}) (*Config, error) {
	cfg := NewDefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating config decoder")
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}

// ReadConfigFile reads a JSON config file. Options missing from the file keep their defaults.
func ReadConfigFile(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	var attributes map[string]interface{}
	if err := json.Unmarshal(data, &attributes); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}
	cfg, err := DecodeConfig(attributes)
	if err != nil {
		return nil, errors.Wrapf(err, "config %q", path)
	}
	return cfg, nil
}
