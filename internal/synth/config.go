package synth

import (
	"fmt"
	"math/rand/v2"
)

// DefaultSize is the number of examples in one training set.
const DefaultSize = 1000

// Range is a half-open sampling interval [Min, Max).
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) sample(rng *rand.Rand) float64 {
	return rng.Float64()*(r.Max-r.Min) + r.Min
}

// Contains reports whether v lies in [Min, Max).
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v < r.Max
}

// Config controls training set generation.
type Config struct {
	Size        int   `yaml:"size"`
	Age         Range `yaml:"age"`
	HeartRate   Range `yaml:"heart_rate"`
	Systolic    Range `yaml:"systolic"`
	Cholesterol Range `yaml:"cholesterol"`
}

// DefaultConfig returns the standard sampling ranges.
func DefaultConfig() Config {
	return Config{
		Size:        DefaultSize,
		Age:         Range{Min: 20, Max: 80},
		HeartRate:   Range{Min: 60, Max: 140},
		Systolic:    Range{Min: 90, Max: 150},
		Cholesterol: Range{Min: 150, Max: 300},
	}
}

// Validate rejects empty sets and inverted ranges.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", c.Size)
	}
	for _, r := range []struct {
		name string
		r    Range
	}{
		{"age", c.Age},
		{"heart_rate", c.HeartRate},
		{"systolic", c.Systolic},
		{"cholesterol", c.Cholesterol},
	} {
		if !(r.r.Max > r.r.Min) {
			return fmt.Errorf("%s range [%v, %v) is empty", r.name, r.r.Min, r.r.Max)
		}
	}
	return nil
}
