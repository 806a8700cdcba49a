package trainer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/cardiofola/internal/classifier"
	"github.com/abhisek/cardiofola/internal/synth"
)

// Model is the part of the classifier the trainer drives.
type Model interface {
	Adapt(x [][]float64) error
	TrainBatch(x, y [][]float64) (classifier.Metrics, error)
	Evaluate(x, y [][]float64) (classifier.Metrics, error)
}

// EpochStats records the metrics at the end of one epoch.
type EpochStats struct {
	Epoch       int     `json:"epoch"`
	Loss        float64 `json:"loss"`
	Accuracy    float64 `json:"accuracy"`
	ValLoss     float64 `json:"val_loss"`
	ValAccuracy float64 `json:"val_accuracy"`
}

// History is the outcome of one Fit call.
type History struct {
	Epochs    []EpochStats
	Steps     int
	TrainRows int
	ValRows   int
	Duration  time.Duration
}

// Final returns the stats of the last completed epoch.
func (h *History) Final() EpochStats {
	if h == nil || len(h.Epochs) == 0 {
		return EpochStats{}
	}
	return h.Epochs[len(h.Epochs)-1]
}

// Trainer fits a Model to a training set.
type Trainer struct {
	cfg Config
	rng *rand.Rand

	// OnEpoch, when set, is called after every epoch from the Fit goroutine.
	OnEpoch func(EpochStats)
}

// New creates a Trainer. A nil src shuffles from an unseeded source.
func New(cfg Config, src rand.Source) *Trainer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Trainer{cfg: cfg, rng: rand.New(src)}
}

// Fit trains m for cfg.Epochs passes. The trailing ValidationSplit share of
// the set is held out for validation; the remaining rows are reshuffled
// before each epoch when Shuffle is set. The context is checked between
// epochs.
func (t *Trainer) Fit(ctx context.Context, m Model, set []synth.Example) (*History, error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("fit: empty training set")
	}

	x, y := synth.Split(set)
	nVal := int(math.Floor(float64(len(x)) * t.cfg.ValidationSplit))
	nTrain := len(x) - nVal
	trainX, trainY := x[:nTrain], y[:nTrain]
	valX, valY := x[nTrain:], y[nTrain:]

	if err := m.Adapt(trainX); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	start := time.Now()
	hist := &History{TrainRows: nTrain, ValRows: nVal}
	order := make([]int, nTrain)
	for i := range order {
		order[i] = i
	}
	bx := make([][]float64, 0, t.cfg.BatchSize)
	by := make([][]float64, 0, t.cfg.BatchSize)

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return hist, err
		}
		if t.cfg.Shuffle {
			t.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var lossSum, accSum float64
		for lo := 0; lo < nTrain; lo += t.cfg.BatchSize {
			hi := min(lo+t.cfg.BatchSize, nTrain)
			bx, by = bx[:0], by[:0]
			for _, idx := range order[lo:hi] {
				bx = append(bx, trainX[idx])
				by = append(by, trainY[idx])
			}
			bm, err := m.TrainBatch(bx, by)
			if err != nil {
				return hist, fmt.Errorf("epoch %d: %w", epoch, err)
			}
			lossSum += bm.Loss * float64(bm.Samples)
			accSum += bm.Accuracy * float64(bm.Samples)
			hist.Steps++
		}

		stats := EpochStats{
			Epoch:    epoch,
			Loss:     lossSum / float64(nTrain),
			Accuracy: accSum / float64(nTrain),
		}
		if math.IsNaN(stats.Loss) || math.IsInf(stats.Loss, 0) {
			return hist, fmt.Errorf("epoch %d: loss is not finite", epoch)
		}
		if nVal > 0 {
			vm, err := m.Evaluate(valX, valY)
			if err != nil {
				return hist, fmt.Errorf("epoch %d validation: %w", epoch, err)
			}
			stats.ValLoss, stats.ValAccuracy = vm.Loss, vm.Accuracy
		}

		hist.Epochs = append(hist.Epochs, stats)
		if t.OnEpoch != nil {
			t.OnEpoch(stats)
		}
	}

	hist.Duration = time.Since(start)
	return hist, nil
}
