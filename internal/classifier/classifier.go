package classifier

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/abhisek/cardiofola/internal/risk"
	"github.com/abhisek/cardiofola/internal/vitals"
)

// Architecture. Fixed; not configurable at runtime.
const (
	Hidden1     = 16
	Hidden2     = 8
	DropoutRate = 0.2
)

// probClip bounds probabilities inside the log of the loss.
const probClip = 1e-7

// Metrics summarizes one batch or evaluation.
type Metrics struct {
	Loss     float64
	Accuracy float64
	Samples  int
}

// LayerSummary describes one layer for display.
type LayerSummary struct {
	Name       string
	Units      int
	Activation string
	Params     int
}

// Classifier is a 4→16→8→3 feed-forward network with dropout after the
// first hidden layer. Training methods take an exclusive lock; Predict
// takes a shared one, so a trained Classifier can serve concurrent calls.
// Close releases the parameters; a closed Classifier rejects every call.
type Classifier struct {
	mu     sync.RWMutex
	layers []*dense
	scaler scaler
	opt    *adam
	rng    *rand.Rand
	closed bool
}

// New builds an untrained Classifier. A nil src uses an unseeded source.
func New(src rand.Source) *Classifier {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	rng := rand.New(src)
	c := &Classifier{
		layers: []*dense{
			newDense(vitals.NumFeatures, Hidden1, actReLU, rng),
			newDense(Hidden1, Hidden2, actReLU, rng),
			newDense(Hidden2, risk.NumTiers, actSoftmax, rng),
		},
		scaler: identityScaler(),
		rng:    rng,
	}
	c.opt = newAdam(LearningRate, c.paramSlices())
	return c
}

// Adapt fits the input standardizer to the given feature rows.
// Call it once with the training rows before the first TrainBatch.
func (c *Classifier) Adapt(x [][]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if len(x) == 0 {
		return fmt.Errorf("adapt: no rows")
	}
	if err := checkWidth(x, vitals.NumFeatures); err != nil {
		return fmt.Errorf("adapt: %w", err)
	}
	c.scaler.fit(x)
	return nil
}

// TrainBatch runs one forward/backward pass with dropout active and applies
// an Adam update. It returns the batch loss and accuracy before the update.
func (c *Classifier) TrainBatch(x, y [][]float64) (Metrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Metrics{}, ErrClosed
	}
	xm, ym, err := c.batch(x, y)
	if err != nil {
		return Metrics{}, err
	}

	p := c.forwardTrain(xm)
	m := metrics(p.out, ym)

	grads := c.backward(p, ym)
	c.opt.step(c.paramSlices(), grads)
	return m, nil
}

// Evaluate computes loss and accuracy without dropout or updates.
func (c *Classifier) Evaluate(x, y [][]float64) (Metrics, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return Metrics{}, ErrClosed
	}
	xm, ym, err := c.batch(x, y)
	if err != nil {
		return Metrics{}, err
	}
	return metrics(c.infer(xm), ym), nil
}

// Predict returns the probability of each tier for one feature vector
// ordered as vitals.Features.
func (c *Classifier) Predict(features []float64) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}
	if len(features) != vitals.NumFeatures {
		return nil, &ShapeError{Row: 0, Want: vitals.NumFeatures, Got: len(features)}
	}

	row := make([]float64, vitals.NumFeatures)
	c.scaler.apply(row, features)
	out := c.infer(mat.NewDense(1, vitals.NumFeatures, row))

	probs := mat.Row(nil, 0, out)
	for i, v := range probs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("output %d is not finite", i)
		}
	}
	return probs, nil
}

// Summary describes each layer, input to output.
func (c *Classifier) Summary() []LayerSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	names := []string{"dense_1", "dense_2", "dense_3"}
	out := make([]LayerSummary, 0, len(c.layers)+1)
	for i, l := range c.layers {
		_, units := l.w.Dims()
		out = append(out, LayerSummary{Name: names[i], Units: units, Activation: l.act.String(), Params: l.params()})
		if i == 0 {
			out = append(out, LayerSummary{Name: "dropout_1", Units: units, Activation: fmt.Sprintf("rate %.1f", DropoutRate)})
		}
	}
	return out
}

// NumParams returns the count of trainable parameters.
func (c *Classifier) NumParams() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, l := range c.layers {
		n += l.params()
	}
	return n
}

// Close releases the parameters. It is safe to call more than once.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.layers = nil
	c.opt = nil
	return nil
}

// Closed reports whether Close has been called.
func (c *Classifier) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// pass holds the intermediate values of one training forward pass.
type pass struct {
	x    *mat.Dense
	z1   *mat.Dense
	mask *mat.Dense
	d1   *mat.Dense
	z2   *mat.Dense
	a2   *mat.Dense
	out  *mat.Dense
}

func (c *Classifier) forwardTrain(x *mat.Dense) *pass {
	l1, l2, l3 := c.layers[0], c.layers[1], c.layers[2]
	p := &pass{x: x}

	var a1 *mat.Dense
	p.z1, a1 = l1.forward(x)

	// Inverted dropout: kept units are scaled so inference needs no rescale.
	keep := 1 - DropoutRate
	rows, cols := a1.Dims()
	p.mask = mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if c.rng.Float64() < keep {
				p.mask.Set(i, j, 1/keep)
			}
		}
	}
	p.d1 = &mat.Dense{}
	p.d1.MulElem(a1, p.mask)

	p.z2, p.a2 = l2.forward(p.d1)
	_, p.out = l3.forward(p.a2)
	return p
}

func (c *Classifier) infer(x *mat.Dense) *mat.Dense {
	var a mat.Matrix = x
	var out *mat.Dense
	for _, l := range c.layers {
		_, out = l.forward(a)
		a = out
	}
	return out
}

// backward returns gradients in paramSlices order. Softmax and
// cross-entropy combine to (p - y)/n at the output.
func (c *Classifier) backward(p *pass, y *mat.Dense) [][]float64 {
	l1, l2, l3 := c.layers[0], c.layers[1], c.layers[2]
	n, _ := y.Dims()

	dz3 := &mat.Dense{}
	dz3.Sub(p.out, y)
	dz3.Scale(1/float64(n), dz3)
	gw3, gb3, da2 := l3.backward(p.a2, dz3)

	dz2 := reluGrad(da2, p.z2)
	gw2, gb2, dd1 := l2.backward(p.d1, dz2)

	da1 := &mat.Dense{}
	da1.MulElem(dd1, p.mask)
	dz1 := reluGrad(da1, p.z1)
	gw1, gb1, _ := l1.backward(p.x, dz1)

	return [][]float64{
		gw1.RawMatrix().Data, gb1,
		gw2.RawMatrix().Data, gb2,
		gw3.RawMatrix().Data, gb3,
	}
}

func (c *Classifier) paramSlices() [][]float64 {
	out := make([][]float64, 0, 2*len(c.layers))
	for _, l := range c.layers {
		out = append(out, l.w.RawMatrix().Data, l.b)
	}
	return out
}

// batch validates shapes and converts rows to matrices, scaling features.
func (c *Classifier) batch(x, y [][]float64) (*mat.Dense, *mat.Dense, error) {
	if len(x) == 0 {
		return nil, nil, fmt.Errorf("empty batch")
	}
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("batch has %d feature rows and %d label rows", len(x), len(y))
	}
	if err := checkWidth(x, vitals.NumFeatures); err != nil {
		return nil, nil, err
	}
	if err := checkWidth(y, risk.NumTiers); err != nil {
		return nil, nil, err
	}

	xm := mat.NewDense(len(x), vitals.NumFeatures, nil)
	ym := mat.NewDense(len(y), risk.NumTiers, nil)
	for i := range x {
		c.scaler.apply(xm.RawRowView(i), x[i])
		ym.SetRow(i, y[i])
	}
	return xm, ym, nil
}

func checkWidth(rows [][]float64, want int) error {
	for i, r := range rows {
		if len(r) != want {
			return &ShapeError{Row: i, Want: want, Got: len(r)}
		}
	}
	return nil
}

// metrics returns mean categorical cross-entropy and argmax accuracy.
func metrics(p, y *mat.Dense) Metrics {
	n, _ := y.Dims()
	var loss float64
	correct := 0
	for i := 0; i < n; i++ {
		pr, yr := p.RawRowView(i), y.RawRowView(i)
		for j, t := range yr {
			if t != 0 {
				loss -= t * math.Log(math.Min(math.Max(pr[j], probClip), 1-probClip))
			}
		}
		if floats.MaxIdx(pr) == floats.MaxIdx(yr) {
			correct++
		}
	}
	return Metrics{
		Loss:     loss / float64(n),
		Accuracy: float64(correct) / float64(n),
		Samples:  n,
	}
}
