package editor

import (
	"sort"

	"github.com/codr1/themeforge/internal/models"
)

func angle(v float64) *float64 { return &v }

var backgroundPresets = map[string]func() models.Background{
	"sunset": func() models.Background {
		return models.NewGradientBackground(models.GradientConfig{
			ID:    "preset-sunset",
			Name:  "Sunset",
			Type:  models.GradientLinear,
			Angle: angle(135),
			Colors: []models.ColorStop{
				{Color: "#ff7e5f", Position: 0},
				{Color: "#feb47b", Position: 100},
			},
			CSS: "linear-gradient(135deg, #ff7e5f 0%, #feb47b 100%)",
		})
	},
	"ocean": func() models.Background {
		return models.NewGradientBackground(models.GradientConfig{
			ID:       "preset-ocean",
			Name:     "Ocean",
			Type:     models.GradientRadial,
			Position: "center",
			Colors: []models.ColorStop{
				{Color: "#2e3192", Position: 0},
				{Color: "#1bffff", Position: 100},
			},
			CSS: "radial-gradient(circle at center, #2e3192 0%, #1bffff 100%)",
		})
	},
	"aurora": func() models.Background {
		return models.NewGradientBackground(models.GradientConfig{
			ID:    "preset-aurora",
			Name:  "Aurora",
			Type:  models.GradientConic,
			Angle: angle(0),
			Colors: []models.ColorStop{
				{Color: "oklch(0.75 0.18 150)", Position: 0},
				{Color: "oklch(0.6 0.2 280)", Position: 50},
				{Color: "oklch(0.75 0.18 150)", Position: 100},
			},
			CSS: "conic-gradient(from 0deg, oklch(0.75 0.18 150) 0%, oklch(0.6 0.2 280) 50%, oklch(0.75 0.18 150) 100%)",
		})
	},
	"paper": func() models.Background {
		return models.NewSolidBackground("#fafaf9")
	},
	"midnight": func() models.Background {
		return models.NewSolidBackground("#0f172a")
	},
}

// BackgroundPresets lists the preset names in alphabetical order.
func BackgroundPresets() []string {
	names := make([]string, 0, len(backgroundPresets))
	for name := range backgroundPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
