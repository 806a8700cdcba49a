package advice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cardiofola/internal/risk"
)

func TestForLabel(t *testing.T) {
	high := ForLabel("High Risk")
	require.Len(t, high, 3)
	for _, tip := range high {
		assert.NotEmpty(t, tip)
	}
	assert.Equal(t, "Consult with a healthcare provider immediately", high[0])

	unknown := ForLabel("unknown")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestFor_EveryTierDistinct(t *testing.T) {
	seen := map[string]risk.Tier{}
	for _, tier := range risk.Tiers {
		list := For(tier)
		require.Len(t, list, 3, "tier %s", tier)
		for _, tip := range list {
			if prev, dup := seen[tip]; dup {
				t.Errorf("tip %q shared by %s and %s", tip, prev, tier)
			}
			seen[tip] = tier
		}
	}
	assert.Empty(t, For(risk.Tier(9)))
}

func TestFor_ReturnsCopy(t *testing.T) {
	list := For(risk.Low)
	list[0] = "changed"
	assert.Equal(t, "Maintain your current healthy lifestyle", For(risk.Low)[0])
}
