package classifier

import "math"

// Adam defaults.
const (
	LearningRate = 0.001
	beta1        = 0.9
	beta2        = 0.999
	epsilon      = 1e-7
)

// adam keeps first and second moment estimates per parameter slice.
type adam struct {
	lr float64
	t  int
	m  [][]float64
	v  [][]float64
}

func newAdam(lr float64, params [][]float64) *adam {
	a := &adam{lr: lr, m: make([][]float64, len(params)), v: make([][]float64, len(params))}
	for i, p := range params {
		a.m[i] = make([]float64, len(p))
		a.v[i] = make([]float64, len(p))
	}
	return a
}

// step applies one update in place. params and grads must align with the
// slices the optimizer was created with.
func (a *adam) step(params, grads [][]float64) {
	a.t++
	c1 := 1 - math.Pow(beta1, float64(a.t))
	c2 := 1 - math.Pow(beta2, float64(a.t))

	for k, p := range params {
		g, m, v := grads[k], a.m[k], a.v[k]
		for i := range p {
			m[i] = beta1*m[i] + (1-beta1)*g[i]
			v[i] = beta2*v[i] + (1-beta2)*g[i]*g[i]
			p[i] -= a.lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + epsilon)
		}
	}
}
