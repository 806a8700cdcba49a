package classifier

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func TestNew_Architecture(t *testing.T) {
	c := New(rand.NewPCG(1, 1))
	// 4*16+16 + 16*8+8 + 8*3+3
	assert.Equal(t, 243, c.NumParams())

	summary := c.Summary()
	require.Len(t, summary, 4)
	assert.Equal(t, LayerSummary{Name: "dense_1", Units: 16, Activation: "relu", Params: 80}, summary[0])
	assert.Equal(t, "dropout_1", summary[1].Name)
	assert.Equal(t, LayerSummary{Name: "dense_2", Units: 8, Activation: "relu", Params: 136}, summary[2])
	assert.Equal(t, LayerSummary{Name: "dense_3", Units: 3, Activation: "softmax", Params: 27}, summary[3])
}

func TestPredict_IsDistribution(t *testing.T) {
	c := New(rand.NewPCG(2, 2))
	inputs := [][]float64{
		{30, 70, 115, 180},
		{65, 110, 140, 260},
		{200, 300, 115, 200},
		{1, 1, 1, 1},
	}
	for _, in := range inputs {
		p, err := c.Predict(in)
		require.NoError(t, err)
		require.Len(t, p, 3)
		assert.InDelta(t, 1.0, sum(p), 1e-9)
		for _, v := range p {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestPredict_Deterministic(t *testing.T) {
	c := New(rand.NewPCG(3, 3))
	a, err := c.Predict([]float64{45, 90, 125, 220})
	require.NoError(t, err)
	b, err := c.Predict([]float64{45, 90, 125, 220})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPredict_ShapeMismatch(t *testing.T) {
	c := New(rand.NewPCG(4, 4))
	_, err := c.Predict([]float64{1, 2, 3})
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 4, shapeErr.Want)
	assert.Equal(t, 3, shapeErr.Got)
}

func TestTrainBatch_ShapeErrors(t *testing.T) {
	c := New(rand.NewPCG(5, 5))
	_, err := c.TrainBatch(nil, nil)
	assert.Error(t, err)

	_, err = c.TrainBatch([][]float64{{1, 2, 3, 4}}, [][]float64{{1, 0, 0}, {0, 1, 0}})
	assert.Error(t, err)

	_, err = c.TrainBatch([][]float64{{1, 2, 3, 4}}, [][]float64{{1, 0}})
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestTrainBatch_ReducesLoss(t *testing.T) {
	c := New(rand.NewPCG(6, 6))
	x := [][]float64{
		{25, 65, 95, 160},
		{30, 70, 110, 170},
		{35, 75, 100, 180},
		{70, 130, 145, 290},
		{75, 125, 140, 280},
		{78, 135, 148, 295},
	}
	y := [][]float64{
		{1, 0, 0}, {1, 0, 0}, {1, 0, 0},
		{0, 0, 1}, {0, 0, 1}, {0, 0, 1},
	}
	require.NoError(t, c.Adapt(x))

	before, err := c.Evaluate(x, y)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		_, err := c.TrainBatch(x, y)
		require.NoError(t, err)
	}
	after, err := c.Evaluate(x, y)
	require.NoError(t, err)

	assert.Less(t, after.Loss, before.Loss)
	assert.Equal(t, 1.0, after.Accuracy)
	assert.Equal(t, 6, after.Samples)
}

func TestAdapt_Errors(t *testing.T) {
	c := New(rand.NewPCG(7, 7))
	assert.Error(t, c.Adapt(nil))
	assert.Error(t, c.Adapt([][]float64{{1, 2}}))
}

func TestClose(t *testing.T) {
	c := New(rand.NewPCG(8, 8))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, c.Closed())
	assert.Zero(t, c.NumParams())
	assert.Nil(t, c.Summary())

	_, err := c.Predict([]float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.TrainBatch([][]float64{{1, 2, 3, 4}}, [][]float64{{1, 0, 0}})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.Evaluate([][]float64{{1, 2, 3, 4}}, [][]float64{{1, 0, 0}})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Adapt([][]float64{{1, 2, 3, 4}}), ErrClosed)
}

func TestSoftmaxRows_Stable(t *testing.T) {
	c := New(rand.NewPCG(9, 9))
	// Large unscaled inputs push pre-activations far from zero.
	p, err := c.Predict([]float64{1e6, 1e6, 1e6, 1e6})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(p), 1e-9)
}
