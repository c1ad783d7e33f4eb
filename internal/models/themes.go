// internal/models/themes.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// CurrentSchemaVersion is the document version produced by the editor and
// targeted by the migration table.
const CurrentSchemaVersion = "1.0.0"

const MaxThemeNameLength = 100

// MaxDocumentBytes is the ceiling on the serialized size of a theme document.
const MaxDocumentBytes = 200 * 1024

type WCAGLevel string

const (
	WCAGLevelA   WCAGLevel = "A"
	WCAGLevelAA  WCAGLevel = "AA"
	WCAGLevelAAA WCAGLevel = "AAA"
)

var WCAGLevels = []WCAGLevel{WCAGLevelA, WCAGLevelAA, WCAGLevelAAA}

// PerformanceTier names the device budget a theme fits. Low is the heaviest.
type PerformanceTier string

const (
	PerformanceLow    PerformanceTier = "low"
	PerformanceMedium PerformanceTier = "medium"
	PerformanceHigh   PerformanceTier = "high"
)

var PerformanceTiers = []PerformanceTier{PerformanceLow, PerformanceMedium, PerformanceHigh}

type AccessibilityMeta struct {
	WCAGLevel     WCAGLevel `json:"wcagLevel,omitempty"`
	ContrastRatio float64   `json:"contrastRatio"`
	ReducedMotion bool      `json:"reducedMotion"`
}

type PerformanceMeta struct {
	Tier          PerformanceTier `json:"tier,omitempty"`
	EstimatedSize int             `json:"estimatedSize"`
}

type Metadata struct {
	BaseTheme     string            `json:"baseTheme"`
	Tags          []string          `json:"tags"`
	Description   string            `json:"description"`
	Accessibility AccessibilityMeta `json:"accessibility"`
	Performance   PerformanceMeta   `json:"performance"`
}

// ThemeConfig is the theme document. Accessibility and performance metadata
// are recomputed on every validation pass.
type ThemeConfig struct {
	ID          string                      `json:"id"`
	Name        string                      `json:"name"`
	Version     string                      `json:"version"`
	Timestamp   Timestamp                   `json:"timestamp"`
	Author      string                      `json:"author,omitempty"`
	Colors      OrderedMap[ColorToken]      `json:"colors"`
	Spacing     OrderedMap[string]          `json:"spacing"`
	Typography  TypographyScale             `json:"typography"`
	Gradients   []GradientConfig            `json:"gradients,omitempty"`
	Shadows     []ShadowConfig              `json:"shadows,omitempty"`
	Borders     BorderConfig                `json:"borders"`
	Effects     EffectConfig                `json:"effects"`
	Animations  *OrderedMap[AnimationConfig] `json:"animations,omitempty"`
	Backgrounds OrderedMap[Background]      `json:"backgrounds"`
	Responsive  *OrderedMap[ThemeOverride]  `json:"responsive,omitempty"`
	Metadata    Metadata                    `json:"metadata"`
}

// Clone returns a deep copy so edits to the clone never reach t.
func (t ThemeConfig) Clone() ThemeConfig {
	clone := t
	clone.Colors = t.Colors.Clone()
	clone.Spacing = t.Spacing.Clone()
	clone.Typography = t.Typography.Clone()
	if t.Gradients != nil {
		clone.Gradients = make([]GradientConfig, len(t.Gradients))
		for i, gradient := range t.Gradients {
			clone.Gradients[i] = gradient.Clone()
		}
	}
	clone.Shadows = append([]ShadowConfig(nil), t.Shadows...)
	if t.Effects.Saturate != nil {
		saturate := *t.Effects.Saturate
		clone.Effects.Saturate = &saturate
	}
	if t.Animations != nil {
		animations := t.Animations.Clone()
		clone.Animations = &animations
	}
	backgrounds := NewOrderedMap[Background]()
	for key, background := range t.Backgrounds.All() {
		backgrounds.Set(key, background.Clone())
	}
	clone.Backgrounds = *backgrounds
	if t.Responsive != nil {
		responsive := NewOrderedMap[ThemeOverride]()
		for device, override := range t.Responsive.All() {
			responsive.Set(device, override.Clone())
		}
		clone.Responsive = responsive
	}
	clone.Metadata.Tags = append([]string{}, t.Metadata.Tags...)
	return clone
}

// Timestamp marshals as an RFC 3339 string and accepts either that or a
// number of milliseconds since the Unix epoch.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Epoch milliseconds must land in years 0000 through 9999 so the value can be
// written back as RFC 3339.
var (
	minTimestampMillis = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxTimestampMillis = time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli() - 1
)

// ParseTimestamp converts a decoded JSON value into a Timestamp.
func ParseTimestamp(raw any) (Timestamp, error) {
	switch v := raw.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return Timestamp{}, fmt.Errorf("timestamp must be an ISO-8601 date-time")
		}
		return NewTimestamp(parsed), nil
	case float64:
		if math.IsNaN(v) || v < float64(minTimestampMillis) || v > float64(maxTimestampMillis) {
			return Timestamp{}, fmt.Errorf("timestamp must be between years 0000 and 9999")
		}
		return NewTimestamp(time.UnixMilli(int64(v))), nil
	default:
		return Timestamp{}, fmt.Errorf("timestamp must be an ISO-8601 string or epoch milliseconds")
	}
}
