package synth

import (
	"math/rand/v2"

	"github.com/abhisek/cardiofola/internal/risk"
	"github.com/abhisek/cardiofola/internal/vitals"
)

// Thresholds above which a feature adds one point to the risk score.
const (
	AgeThreshold         = 50
	HeartRateThreshold   = 100
	SystolicThreshold    = 130
	CholesterolThreshold = 240
)

// Example is one labeled training row.
type Example struct {
	Features vitals.Features
	Label    risk.OneHot
}

// Generator produces labeled examples from the threshold heuristic.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a Generator. A nil src draws from an unseeded source, so
// no two training sets are alike.
func New(cfg Config, src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{cfg: cfg, rng: rand.New(src)}
}

// Generate returns cfg.Size freshly sampled examples.
func (g *Generator) Generate() []Example {
	out := make([]Example, g.cfg.Size)
	for i := range out {
		f := vitals.Features{
			g.cfg.Age.sample(g.rng),
			g.cfg.HeartRate.sample(g.rng),
			g.cfg.Systolic.sample(g.rng),
			g.cfg.Cholesterol.sample(g.rng),
		}
		out[i] = Example{
			Features: f,
			Label:    risk.OneHotFor(TierForScore(Score(f))),
		}
	}
	return out
}

// Score counts how many thresholds the features exceed (0..4).
func Score(f vitals.Features) int {
	score := 0
	if f[0] > AgeThreshold {
		score++
	}
	if f[1] > HeartRateThreshold {
		score++
	}
	if f[2] > SystolicThreshold {
		score++
	}
	if f[3] > CholesterolThreshold {
		score++
	}
	return score
}

// TierForScore maps a risk score to its label tier.
func TierForScore(score int) risk.Tier {
	switch {
	case score <= 1:
		return risk.Low
	case score == 2:
		return risk.Medium
	default:
		return risk.High
	}
}

// Split separates examples into feature rows and label rows.
func Split(examples []Example) (x, y [][]float64) {
	x = make([][]float64, len(examples))
	y = make([][]float64, len(examples))
	for i, ex := range examples {
		f, l := ex.Features, ex.Label
		x[i] = f[:]
		y[i] = l[:]
	}
	return x, y
}
