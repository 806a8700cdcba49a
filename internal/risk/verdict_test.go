package risk

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromProbabilities(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
		want  Verdict
	}{
		{
			name:  "low dominant",
			probs: []float64{0.8, 0.15, 0.05},
			want:  Verdict{Tier: Low, Confidence: 80, Distribution: Distribution{Low: 80, Medium: 15, High: 5}},
		},
		{
			name:  "high dominant",
			probs: []float64{0.1234, 0.2, 0.6766},
			want:  Verdict{Tier: High, Confidence: 67.7, Distribution: Distribution{Low: 12.3, Medium: 20, High: 67.7}},
		},
		{
			name:  "tie prefers lower index",
			probs: []float64{0.1, 0.45, 0.45},
			want:  Verdict{Tier: Medium, Confidence: 45, Distribution: Distribution{Low: 10, Medium: 45, High: 45}},
		},
		{
			name:  "three way tie picks low",
			probs: []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
			want:  Verdict{Tier: Low, Confidence: 33.3, Distribution: Distribution{Low: 33.3, Medium: 33.3, High: 33.3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromProbabilities(tt.probs)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("verdict mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromProbabilities_Invalid(t *testing.T) {
	_, err := FromProbabilities([]float64{0.5, 0.5})
	assert.Error(t, err)

	_, err = FromProbabilities([]float64{0.5, 0.5, math.NaN()})
	assert.Error(t, err)
}

func TestVerdictDistributionSumsToHundred(t *testing.T) {
	probs := [][]float64{
		{0.333, 0.333, 0.334},
		{0.98765, 0.01, 0.00235},
		{0.05, 0.05, 0.9},
		{0.4449, 0.4451, 0.11},
	}
	for _, p := range probs {
		v, err := FromProbabilities(p)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, v.Distribution.Sum(), 0.1, "probs %v", p)
		for _, tier := range Tiers {
			assert.GreaterOrEqual(t, v.Distribution.Of(v.Tier), v.Distribution.Of(tier))
		}
		assert.Equal(t, v.Confidence, v.Distribution.Of(v.Tier))
	}
}

func TestTierLabels(t *testing.T) {
	assert.Equal(t, "Low Risk", Low.String())
	assert.Equal(t, "Medium Risk", Medium.String())
	assert.Equal(t, "High Risk", High.String())
	assert.Equal(t, "Tier(7)", Tier(7).String())

	for _, tier := range Tiers {
		got, ok := ParseTier(tier.String())
		require.True(t, ok)
		assert.Equal(t, tier, got)
	}
	_, ok := ParseTier("unknown")
	assert.False(t, ok)
}

func TestTierLevel(t *testing.T) {
	assert.Equal(t, "normal", Low.Level())
	assert.Equal(t, "warning", Medium.Level())
	assert.Equal(t, "danger", High.Level())
	assert.Equal(t, "", Tier(-1).Level())
}

func TestOneHot(t *testing.T) {
	for _, tier := range Tiers {
		oh := OneHotFor(tier)
		var sum float64
		for _, v := range oh {
			sum += v
		}
		assert.Equal(t, 1.0, sum)
		assert.Equal(t, tier, oh.Tier())
	}
}
