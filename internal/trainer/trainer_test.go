package trainer

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cardiofola/internal/classifier"
	"github.com/abhisek/cardiofola/internal/synth"
)

// recordingModel captures what the trainer feeds it.
type recordingModel struct {
	adapted    int
	batchSizes []int
	firstRows  [][]float64
	evalRows   []int
	failAt     int
}

func (m *recordingModel) Adapt(x [][]float64) error {
	m.adapted = len(x)
	return nil
}

func (m *recordingModel) TrainBatch(x, y [][]float64) (classifier.Metrics, error) {
	m.batchSizes = append(m.batchSizes, len(x))
	m.firstRows = append(m.firstRows, x[0])
	if m.failAt > 0 && len(m.batchSizes) == m.failAt {
		return classifier.Metrics{}, errors.New("boom")
	}
	return classifier.Metrics{Loss: 0.5, Accuracy: 0.75, Samples: len(x)}, nil
}

func (m *recordingModel) Evaluate(x, y [][]float64) (classifier.Metrics, error) {
	m.evalRows = append(m.evalRows, len(x))
	return classifier.Metrics{Loss: 0.6, Accuracy: 0.7, Samples: len(x)}, nil
}

func trainingSet(seed uint64) []synth.Example {
	return synth.New(synth.DefaultConfig(), rand.NewPCG(seed, seed)).Generate()
}

func TestFit_StepsAndSplit(t *testing.T) {
	m := &recordingModel{}
	tr := New(DefaultConfig(), rand.NewPCG(1, 1))

	var seen []EpochStats
	tr.OnEpoch = func(s EpochStats) { seen = append(seen, s) }

	hist, err := tr.Fit(context.Background(), m, trainingSet(1))
	require.NoError(t, err)

	assert.Equal(t, 800, m.adapted)
	assert.Equal(t, 800, hist.TrainRows)
	assert.Equal(t, 200, hist.ValRows)
	assert.Equal(t, 50*25, hist.Steps)
	assert.Equal(t, 25, DefaultConfig().StepsPerEpoch(1000))
	require.Len(t, hist.Epochs, 50)
	require.Len(t, seen, 50)
	assert.Equal(t, 50, hist.Final().Epoch)

	for _, n := range m.batchSizes {
		assert.Equal(t, 32, n)
	}
	require.Len(t, m.evalRows, 50)
	for _, n := range m.evalRows {
		assert.Equal(t, 200, n)
	}

	final := hist.Final()
	assert.InDelta(t, 0.5, final.Loss, 1e-9)
	assert.InDelta(t, 0.75, final.Accuracy, 1e-9)
	assert.InDelta(t, 0.6, final.ValLoss, 1e-9)
	assert.InDelta(t, 0.7, final.ValAccuracy, 1e-9)
}

func TestFit_PartialLastBatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epochs = 1
	set := trainingSet(2)[:100] // 80 training rows: 32 + 32 + 16

	m := &recordingModel{}
	hist, err := New(cfg, rand.NewPCG(2, 2)).Fit(context.Background(), m, set)
	require.NoError(t, err)
	assert.Equal(t, []int{32, 32, 16}, m.batchSizes)
	assert.Equal(t, 3, hist.Steps)
}

func TestFit_ShufflesEachEpoch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epochs = 3
	m := &recordingModel{}
	_, err := New(cfg, rand.NewPCG(3, 3)).Fit(context.Background(), m, trainingSet(3))
	require.NoError(t, err)

	// First row of each epoch's first batch: steps 0, 25 and 50.
	assert.NotEqual(t, m.firstRows[0], m.firstRows[25])
	assert.NotEqual(t, m.firstRows[25], m.firstRows[50])
}

func TestFit_NoShuffleKeepsOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epochs = 2
	cfg.Shuffle = false
	set := trainingSet(4)
	m := &recordingModel{}
	_, err := New(cfg, nil).Fit(context.Background(), m, set)
	require.NoError(t, err)
	assert.Equal(t, set[0].Features[:], m.firstRows[0])
	assert.Equal(t, set[0].Features[:], m.firstRows[25])
}

func TestFit_Errors(t *testing.T) {
	tr := New(DefaultConfig(), nil)

	_, err := tr.Fit(context.Background(), &recordingModel{}, nil)
	assert.Error(t, err)

	_, err = tr.Fit(context.Background(), &recordingModel{failAt: 3}, trainingSet(5))
	assert.ErrorContains(t, err, "boom")

	bad := DefaultConfig()
	bad.BatchSize = 0
	_, err = New(bad, nil).Fit(context.Background(), &recordingModel{}, trainingSet(5))
	assert.Error(t, err)
}

func TestFit_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := New(DefaultConfig(), nil)
	tr.OnEpoch = func(s EpochStats) {
		if s.Epoch == 2 {
			cancel()
		}
	}
	hist, err := tr.Fit(ctx, &recordingModel{}, trainingSet(6))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, hist.Epochs, 2)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{Epochs: 0, BatchSize: 1}.Validate())
	assert.Error(t, Config{Epochs: 1, BatchSize: 1, ValidationSplit: 1}.Validate())
	assert.Error(t, Config{Epochs: 1, BatchSize: 1, ValidationSplit: -0.1}.Validate())
}

func TestFit_RealClassifierLearnsHeuristic(t *testing.T) {
	if testing.Short() {
		t.Skip("trains a full model")
	}
	clf := classifier.New(rand.NewPCG(21, 22))
	t.Cleanup(func() { clf.Close() })

	hist, err := New(DefaultConfig(), rand.NewPCG(23, 24)).Fit(context.Background(), clf, trainingSet(25))
	require.NoError(t, err)

	first, final := hist.Epochs[0], hist.Final()
	assert.Less(t, final.Loss, first.Loss)
	assert.Greater(t, final.ValAccuracy, 0.7)
}
