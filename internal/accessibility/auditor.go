// Package accessibility scores the contrast of semantic color pairs and
// derives the WCAG level a theme advertises.
package accessibility

import (
	"fmt"
	"math"

	"github.com/codr1/themeforge/internal/models"
)

// MinimumContrastRatio is the WCAG AA threshold for body text.
const MinimumContrastRatio = 4.5

const contrastPenalty = 20

// Pair is a foreground token checked against its background token.
type Pair struct {
	Foreground string
	Background string
}

// ContrastPairs are the semantic pairs audited when both keys are present.
var ContrastPairs = []Pair{
	{Foreground: "foreground", Background: "background"},
	{Foreground: "primary-foreground", Background: "primary"},
	{Foreground: "card-foreground", Background: "card"},
	{Foreground: "popover-foreground", Background: "popover"},
	{Foreground: "accent-foreground", Background: "accent"},
	{Foreground: "muted-foreground", Background: "muted"},
}

// Report is the outcome of an audit. It is applied to a ValidationResult and
// patched onto a copy of the theme; the audited theme is never modified.
type Report struct {
	Score       int
	Issues      []models.AccessibilityIssue
	Warnings    []models.Warning
	Level       models.WCAGLevel
	LowestRatio float64
	Measured    int
}

func Audit(theme models.ThemeConfig) Report {
	report := Report{
		Score:  models.MaxAccessibilityScore,
		Issues: []models.AccessibilityIssue{},
	}

	for _, pair := range ContrastPairs {
		fg, ok := theme.Colors.Get(pair.Foreground)
		if !ok {
			continue
		}
		bg, ok := theme.Colors.Get(pair.Background)
		if !ok {
			continue
		}
		ratio, err := models.TokenContrastRatio(fg, bg)
		if err != nil {
			continue
		}

		if report.Measured == 0 || ratio < report.LowestRatio {
			report.LowestRatio = ratio
		}
		report.Measured++

		if ratio >= MinimumContrastRatio {
			continue
		}
		message := fmt.Sprintf("%s vs %s is %.2f:1 (minimum %.1f:1)", pair.Foreground, pair.Background, ratio, MinimumContrastRatio)
		report.Issues = append(report.Issues, models.AccessibilityIssue{
			Type:    "contrast",
			Message: message,
			Impact:  models.ImpactSerious,
		})
		report.Warnings = append(report.Warnings, models.Warning{
			Path:       "colors." + pair.Foreground,
			Message:    message,
			Suggestion: fmt.Sprintf("Adjust %s or %s until the ratio reaches %.1f:1", pair.Foreground, pair.Background, MinimumContrastRatio),
		})
		report.Score -= contrastPenalty
	}

	// Scores stop at zero once enough pairs fail.
	if report.Score < 0 {
		report.Score = 0
	}
	report.LowestRatio = math.Round(report.LowestRatio*100) / 100
	report.Level = levelFor(report.Issues)
	return report
}

func levelFor(issues []models.AccessibilityIssue) models.WCAGLevel {
	if len(issues) == 0 {
		return models.WCAGLevelAAA
	}
	for _, issue := range issues {
		if issue.Impact == models.ImpactSerious {
			return models.WCAGLevelA
		}
	}
	return models.WCAGLevelAA
}

// Apply records the score, issues and warnings on result.
func (r Report) Apply(result *models.ValidationResult) {
	result.Accessibility = models.AccessibilityReport{
		Score:  r.Score,
		Issues: append([]models.AccessibilityIssue{}, r.Issues...),
	}
	result.Warnings = append(result.Warnings, r.Warnings...)
}

// Patch returns a copy of theme carrying the derived accessibility metadata.
func (r Report) Patch(theme models.ThemeConfig) models.ThemeConfig {
	patched := theme.Clone()
	patched.Metadata.Accessibility.WCAGLevel = r.Level
	if r.Measured > 0 {
		patched.Metadata.Accessibility.ContrastRatio = r.LowestRatio
	}
	return patched
}
