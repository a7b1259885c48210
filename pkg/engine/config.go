// config.go - Tunable smash parameters, loadable from flags or a JSON file.
package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Clamp bounds applied by Normalize.
const (
	MinBPM          = 40
	MaxBPM          = 200
	MinGridDivision = 4
	MaxGridDivision = 16
)

// Range is an ordered pair of floats sampled uniformly.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Normalized returns the range with Low <= High regardless of input order.
func (r Range) Normalized() Range {
	if r.Low > r.High {
		r.Low, r.High = r.High, r.Low
	}
	return r
}

// Pick samples a uniform value in [Low, High].
func (r Range) Pick(rng Rand) float64 {
	return r.Low + rng.Float64()*(r.High-r.Low)
}

// Config is an immutable snapshot of the composition parameters, consulted
// once per smash. Call Normalize before use.
type Config struct {
	ImageLayers int `json:"imageLayers"`
	TextLayers  int `json:"textLayers"`
	AudioLayers int `json:"audioLayers"`

	Alpha     Range   `json:"alpha"`     // layer opacity, [0,1]
	Rotation  float64 `json:"rotation"`  // max text rotation, radians
	ImageCrop Range   `json:"imageCrop"` // crop fraction of source dims, (0,1]
	TextSize  Range   `json:"textSize"`  // font size, pixels

	BPM           float64 `json:"bpm"`
	GridDivision  int     `json:"gridDivision"`
	PhraseChance  float64 `json:"phraseChance"`
	StutterChance float64 `json:"stutterChance"`
}

// DefaultConfig returns the stock smash parameters.
func DefaultConfig() Config {
	return Config{
		ImageLayers:   4,
		TextLayers:    3,
		AudioLayers:   8,
		Alpha:         Range{Low: 0.35, High: 0.9},
		Rotation:      0.6,
		ImageCrop:     Range{Low: 0.2, High: 0.8},
		TextSize:      Range{Low: 24, High: 120},
		BPM:           120,
		GridDivision:  8,
		PhraseChance:  0.25,
		StutterChance: 0.35,
	}
}

// Normalize clamps every field into its documented domain and orders the
// range pairs so Low <= High. Layer counts of zero are legal no-ops.
func (c Config) Normalize() Config {
	if c.ImageLayers < 0 {
		c.ImageLayers = 0
	}
	if c.TextLayers < 0 {
		c.TextLayers = 0
	}
	if c.AudioLayers < 0 {
		c.AudioLayers = 0
	}

	c.Alpha = c.Alpha.Normalized()
	c.Alpha.Low = clampF(c.Alpha.Low, 0, 1)
	c.Alpha.High = clampF(c.Alpha.High, 0, 1)

	if c.Rotation < 0 {
		c.Rotation = 0
	}

	c.ImageCrop = c.ImageCrop.Normalized()
	c.ImageCrop.Low = clampF(c.ImageCrop.Low, 0.01, 1)
	c.ImageCrop.High = clampF(c.ImageCrop.High, 0.01, 1)

	c.TextSize = c.TextSize.Normalized()
	if c.TextSize.Low < 1 {
		c.TextSize.Low = 1
	}
	if c.TextSize.High < c.TextSize.Low {
		c.TextSize.High = c.TextSize.Low
	}

	c.BPM = clampF(c.BPM, MinBPM, MaxBPM)
	if c.GridDivision < MinGridDivision {
		c.GridDivision = MinGridDivision
	}
	if c.GridDivision > MaxGridDivision {
		c.GridDivision = MaxGridDivision
	}
	c.PhraseChance = clampF(c.PhraseChance, 0, 1)
	c.StutterChance = clampF(c.StutterChance, 0, 1)
	return c
}

// ParseConfigFile reads a JSON config. Missing fields keep their zero value;
// the caller decides whether to overlay onto DefaultConfig first.
func ParseConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
