package classifier

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/abhisek/cardiofola/internal/vitals"
)

// scaler standardizes each input column. It starts as the identity and is
// fitted once from training rows; it has no trainable parameters.
type scaler struct {
	mean [vitals.NumFeatures]float64
	std  [vitals.NumFeatures]float64
}

func identityScaler() scaler {
	var s scaler
	for j := range s.std {
		s.std[j] = 1
	}
	return s
}

func (s *scaler) fit(rows [][]float64) {
	col := make([]float64, len(rows))
	for j := range s.mean {
		for i, r := range rows {
			col[i] = r[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.mean[j], s.std[j] = mean, std
	}
}

func (s *scaler) apply(dst, src []float64) {
	for j, v := range src {
		dst[j] = (v - s.mean[j]) / s.std[j]
	}
}
