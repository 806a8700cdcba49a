package advice

import "github.com/abhisek/cardiofola/internal/risk"

var tips = map[risk.Tier][]string{
	risk.Low: {
		"Maintain your current healthy lifestyle",
		"Continue regular exercise routine",
		"Keep monitoring your vitals regularly",
	},
	risk.Medium: {
		"Consider increasing physical activity",
		"Monitor your diet and reduce sodium intake",
		"Schedule regular check-ups with your doctor",
	},
	risk.High: {
		"Consult with a healthcare provider immediately",
		"Consider lifestyle modifications",
		"Monitor blood pressure and heart rate daily",
	},
}

// For returns the tips for a tier in display order. Unknown tiers get an
// empty list. The returned slice is a copy.
func For(t risk.Tier) []string {
	list, ok := tips[t]
	if !ok {
		return []string{}
	}
	return append([]string(nil), list...)
}

// ForLabel is For keyed by display label, e.g. "High Risk".
func ForLabel(label string) []string {
	t, ok := risk.ParseTier(label)
	if !ok {
		return []string{}
	}
	return For(t)
}
