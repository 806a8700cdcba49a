package risk

import "fmt"

// Tier is the discrete output category of the classifier.
type Tier int

const (
	Low Tier = iota
	Medium
	High
)

// NumTiers is the width of every label and probability vector.
const NumTiers = 3

// Tiers lists every tier in label-index order.
var Tiers = [NumTiers]Tier{Low, Medium, High}

var tierLabels = [NumTiers]string{"Low Risk", "Medium Risk", "High Risk"}

// String returns the display label, e.g. "High Risk".
func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierLabels[t]
}

// Valid reports whether t is one of Low, Medium or High.
func (t Tier) Valid() bool {
	return t >= Low && t <= High
}

// Level returns the presentation severity: "normal", "warning" or "danger".
func (t Tier) Level() string {
	switch t {
	case Low:
		return "normal"
	case Medium:
		return "warning"
	case High:
		return "danger"
	default:
		return ""
	}
}

// ParseTier maps a display label back to its tier.
func ParseTier(label string) (Tier, bool) {
	for i, l := range tierLabels {
		if l == label {
			return Tier(i), true
		}
	}
	return 0, false
}

// OneHot is a length-3 label vector with a single 1 at the true class.
type OneHot [NumTiers]float64

// OneHotFor returns the one-hot encoding of t.
func OneHotFor(t Tier) OneHot {
	var oh OneHot
	if t.Valid() {
		oh[t] = 1
	}
	return oh
}

// Tier returns the index of the hot entry.
func (o OneHot) Tier() Tier {
	for i, v := range o {
		if v == 1 {
			return Tier(i)
		}
	}
	return Tier(-1)
}
