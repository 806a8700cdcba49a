package classifier

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

type activation int

const (
	actReLU activation = iota
	actSoftmax
)

func (a activation) String() string {
	if a == actSoftmax {
		return "softmax"
	}
	return "relu"
}

// dense is a fully connected layer: out = act(in·W + b).
type dense struct {
	w   *mat.Dense
	b   []float64
	act activation
}

// newDense initializes W with Glorot-uniform values and b with zeros.
func newDense(in, out int, act activation, rng *rand.Rand) *dense {
	limit := math.Sqrt(6 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return &dense{
		w:   mat.NewDense(in, out, data),
		b:   make([]float64, out),
		act: act,
	}
}

func (l *dense) params() int {
	r, c := l.w.Dims()
	return r*c + len(l.b)
}

// forward returns the pre-activation z and the activation a for a batch.
func (l *dense) forward(x mat.Matrix) (z, a *mat.Dense) {
	z = &mat.Dense{}
	z.Mul(x, l.w)
	z.Apply(func(_, j int, v float64) float64 { return v + l.b[j] }, z)

	a = &mat.Dense{}
	switch l.act {
	case actSoftmax:
		a.CloneFrom(z)
		softmaxRows(a)
	default:
		a.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, z)
	}
	return z, a
}

// backward takes dL/dz and the layer input, returning parameter gradients
// and dL/dx.
func (l *dense) backward(in, dz *mat.Dense) (gw *mat.Dense, gb []float64, dx *mat.Dense) {
	gw = &mat.Dense{}
	gw.Mul(in.T(), dz)

	rows, cols := dz.Dims()
	gb = make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j, v := range dz.RawRowView(i) {
			gb[j] += v
		}
	}

	dx = &mat.Dense{}
	dx.Mul(dz, l.w.T())
	return gw, gb, dx
}

// reluGrad masks upstream gradients where the pre-activation was not positive.
func reluGrad(upstream, z *mat.Dense) *mat.Dense {
	out := &mat.Dense{}
	out.Apply(func(i, j int, v float64) float64 {
		if z.At(i, j) > 0 {
			return v
		}
		return 0
	}, upstream)
	return out
}

func softmaxRows(m *mat.Dense) {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		peak := math.Inf(-1)
		for _, v := range row {
			peak = math.Max(peak, v)
		}
		var sum float64
		for j, v := range row {
			row[j] = math.Exp(v - peak)
			sum += row[j]
		}
		for j := range row {
			row[j] /= sum
		}
	}
}
