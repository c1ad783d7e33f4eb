// internal/models/defaults.go
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	defaultThemeForeground = "#000000"
	defaultThemeBackground = "#ffffff"
	defaultThemePrimary    = "#1f2937"
	defaultThemeOnPrimary  = "#f9fafb"
	defaultThemeAccent     = "#2563eb"
)

// DefaultTheme returns a complete theme that passes validation. The editor
// starts new drafts from it.
func DefaultTheme() ThemeConfig {
	colors := NewOrderedMap[ColorToken]()
	colors.Set("foreground", ColorToken{Value: defaultThemeForeground, Space: ColorSpaceHex, Semantic: "text"})
	colors.Set("background", ColorToken{Value: defaultThemeBackground, Space: ColorSpaceHex, Semantic: "surface"})
	colors.Set("primary", ColorToken{Value: defaultThemePrimary, Space: ColorSpaceHex})
	colors.Set("primary-foreground", ColorToken{Value: defaultThemeOnPrimary, Space: ColorSpaceHex})
	colors.Set("accent", ColorToken{Value: defaultThemeAccent, Space: ColorSpaceHex})

	spacing := NewOrderedMap[string]()
	for i, key := range RequiredSpacingKeys {
		spacing.Set(key, []string{"0.25rem", "0.5rem", "1rem", "1.5rem", "2rem", "3rem", "4rem"}[i])
	}

	typography := TypographyScale{}
	typography.FontSize.Set("sm", "0.875rem")
	typography.FontSize.Set("base", "1rem")
	typography.FontSize.Set("lg", "1.125rem")
	typography.FontWeight.Set("normal", "400")
	typography.FontWeight.Set("bold", "700")
	typography.LineHeight.Set("normal", "1.5")
	typography.LetterSpacing.Set("normal", "0em")

	backgrounds := NewOrderedMap[Background]()
	backgrounds.Set("page", NewSolidBackground(defaultThemeBackground))

	return ThemeConfig{
		ID:          uuid.NewString(),
		Name:        "Untitled Theme",
		Version:     CurrentSchemaVersion,
		Timestamp:   NewTimestamp(time.Now()),
		Colors:      *colors,
		Spacing:     *spacing,
		Typography:  typography,
		Borders:     BorderConfig{Radius: "0.5rem", Width: "1px", Style: BorderSolid},
		Effects:     EffectConfig{Blur: "0px", Opacity: 1},
		Backgrounds: *backgrounds,
		Metadata: Metadata{
			BaseTheme: "default",
			Tags:      []string{},
			Accessibility: AccessibilityMeta{
				WCAGLevel: WCAGLevelAAA,
			},
			Performance: PerformanceMeta{
				Tier: PerformanceHigh,
			},
		},
	}
}
