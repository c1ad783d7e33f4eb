// Package performance estimates how heavy a theme's stylesheet will be.
package performance

import (
	"fmt"
	"math"

	"github.com/codr1/themeforge/internal/models"
)

const (
	variableWarningThreshold = 100
	kilobytesPerVariable     = 0.1
	lowTierAboveKB           = 50
	mediumTierAboveKB        = 25
)

// Report is the estimator outcome, applied like the accessibility report.
type Report struct {
	VariableCount int
	EstimatedSize int
	Tier          models.PerformanceTier
	Warnings      []models.Warning
}

func Estimate(theme models.ThemeConfig) Report {
	count := theme.Colors.Len() + theme.Spacing.Len() + theme.Typography.FontSize.Len()

	report := Report{
		VariableCount: count,
		EstimatedSize: int(math.Round(float64(count) * kilobytesPerVariable)),
	}
	if count > variableWarningThreshold {
		report.Warnings = append(report.Warnings, models.Warning{
			Path:       "performance",
			Message:    fmt.Sprintf("High number of CSS variables (%d) may slow down style recalculation", count),
			Suggestion: "Consider consolidating similar tokens",
		})
	}

	switch {
	case report.EstimatedSize > lowTierAboveKB:
		report.Tier = models.PerformanceLow
	case report.EstimatedSize > mediumTierAboveKB:
		report.Tier = models.PerformanceMedium
	default:
		report.Tier = models.PerformanceHigh
	}
	return report
}

func (r Report) Apply(result *models.ValidationResult) {
	result.Warnings = append(result.Warnings, r.Warnings...)
}

// Patch returns a copy of theme carrying the derived performance metadata.
func (r Report) Patch(theme models.ThemeConfig) models.ThemeConfig {
	patched := theme.Clone()
	patched.Metadata.Performance = models.PerformanceMeta{
		Tier:          r.Tier,
		EstimatedSize: r.EstimatedSize,
	}
	return patched
}
