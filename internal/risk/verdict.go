package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Distribution holds per-tier percentages rounded to one decimal.
type Distribution struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// Sum returns Low+Medium+High.
func (d Distribution) Sum() float64 {
	return d.Low + d.Medium + d.High
}

// Of returns the percentage assigned to t.
func (d Distribution) Of(t Tier) float64 {
	switch t {
	case Low:
		return d.Low
	case Medium:
		return d.Medium
	case High:
		return d.High
	default:
		return 0
	}
}

// Verdict is the user-facing result of one inference.
type Verdict struct {
	Tier         Tier         `json:"-"`
	Confidence   float64      `json:"confidence"`
	Distribution Distribution `json:"distribution"`
}

// Label returns the tier's display label.
func (v Verdict) Label() string {
	return v.Tier.String()
}

// FromProbabilities turns a softmax output into a Verdict.
// Ties on the maximum resolve to the lowest index.
func FromProbabilities(p []float64) (Verdict, error) {
	if len(p) != NumTiers {
		return Verdict{}, fmt.Errorf("probability vector has %d entries, want %d", len(p), NumTiers)
	}
	for i, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Verdict{}, fmt.Errorf("probability %d is not finite: %v", i, v)
		}
	}

	tier := Tier(floats.MaxIdx(p))
	return Verdict{
		Tier:       tier,
		Confidence: Percent(p[tier]),
		Distribution: Distribution{
			Low:    Percent(p[Low]),
			Medium: Percent(p[Medium]),
			High:   Percent(p[High]),
		},
	}, nil
}

// Percent converts a probability to a percentage rounded to one decimal.
func Percent(p float64) float64 {
	return math.Round(p*1000) / 10
}
