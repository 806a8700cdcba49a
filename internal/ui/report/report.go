// Package report renders assessments for the terminal and for JSON output.
package report

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cardiofola/internal/advice"
	"github.com/abhisek/cardiofola/internal/risk"
	"github.com/abhisek/cardiofola/internal/ui/components"
	"github.com/abhisek/cardiofola/internal/ui/theme"
	"github.com/abhisek/cardiofola/internal/vitals"
)

// Assessment pairs a record with its verdict and tips.
type Assessment struct {
	Record          vitals.Record `json:"vitals"`
	Risk            string        `json:"risk"`
	Level           string        `json:"level"`
	Verdict         risk.Verdict  `json:"verdict"`
	Recommendations []string      `json:"recommendations"`
	At              time.Time     `json:"at"`
}

// NewAssessment builds an Assessment, filling in recommendations for the
// verdict's tier.
func NewAssessment(rec vitals.Record, v risk.Verdict, at time.Time) Assessment {
	return Assessment{
		Record:          rec.WithDefaults(),
		Risk:            v.Label(),
		Level:           v.Tier.Level(),
		Verdict:         v,
		Recommendations: advice.For(v.Tier),
		At:              at,
	}
}

// Card renders the full verdict card.
func Card(a Assessment, width int) string {
	inner := max(width-6, 20) // border and padding

	var b strings.Builder

	b.WriteString(theme.Subtitle.Render(a.Record.String()))
	b.WriteString("\n\n")

	b.WriteString(theme.TierBadge(a.Verdict.Tier))
	b.WriteString(theme.Body.Render(fmt.Sprintf("  %.1f%% confidence", a.Verdict.Confidence)))
	b.WriteString("\n\n")

	b.WriteString(Distribution(a.Verdict.Distribution, inner))
	b.WriteString("\n\n")

	b.WriteString(theme.Title.Render("Recommendations"))
	b.WriteString("\n")
	for _, tip := range a.Recommendations {
		b.WriteString(theme.Body.Render("  • " + tip))
		b.WriteString("\n")
	}

	return theme.Card.
		BorderForeground(theme.TierColor(a.Verdict.Tier)).
		Width(width).
		Render(strings.TrimRight(b.String(), "\n"))
}

// Distribution renders one bar per tier.
func Distribution(d risk.Distribution, width int) string {
	rows := make([]string, 0, risk.NumTiers)
	for _, t := range risk.Tiers {
		bar := components.NewProgressBar(t.String(), d.Of(t)/100, true, width)
		bar.Fill = theme.TierColor(t)
		rows = append(rows, bar.View())
	}
	return strings.Join(rows, "\n")
}

// Reading is one line in the recent readings list.
func Reading(a Assessment) string {
	dot := lipgloss.NewStyle().Foreground(theme.TierColor(a.Verdict.Tier)).Render("●")
	return fmt.Sprintf("%s %s  %s  %s",
		dot,
		theme.Subtitle.Render(a.At.Local().Format("15:04:05")),
		theme.Body.Render(fmt.Sprintf("%.0f BPM, %.0f/%.0f mmHg", a.Record.HeartRate, a.Record.Systolic, a.Record.Diastolic)),
		theme.TierBadge(a.Verdict.Tier),
	)
}
