// internal/models/tokens.go
package models

import "regexp"

type ColorSpace string

const (
	ColorSpaceOKLCH ColorSpace = "oklch"
	ColorSpaceHSL   ColorSpace = "hsl"
	ColorSpaceRGB   ColorSpace = "rgb"
	ColorSpaceHex   ColorSpace = "hex"
)

var ColorSpaces = []ColorSpace{ColorSpaceOKLCH, ColorSpaceHSL, ColorSpaceRGB, ColorSpaceHex}

// ColorToken is a single named color. Value must follow the grammar of Space.
type ColorToken struct {
	Value    string     `json:"value"`
	Space    ColorSpace `json:"space"`
	Contrast *float64   `json:"contrast,omitempty"`
	Semantic string     `json:"semantic,omitempty"`
}

var tokenKeyRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsTokenKey reports whether key can name a CSS custom property such as
// --color-<key>.
func IsTokenKey(key string) bool {
	return tokenKeyRegex.MatchString(key)
}

// RequiredSpacingKeys lists the steps every spacing scale must define.
var RequiredSpacingKeys = []string{"xs", "sm", "md", "lg", "xl", "2xl", "3xl"}

type TypographyScale struct {
	FontSize      OrderedMap[string] `json:"fontSize"`
	FontWeight    OrderedMap[string] `json:"fontWeight"`
	LineHeight    OrderedMap[string] `json:"lineHeight"`
	LetterSpacing OrderedMap[string] `json:"letterSpacing"`
}

func (t TypographyScale) Clone() TypographyScale {
	return TypographyScale{
		FontSize:      t.FontSize.Clone(),
		FontWeight:    t.FontWeight.Clone(),
		LineHeight:    t.LineHeight.Clone(),
		LetterSpacing: t.LetterSpacing.Clone(),
	}
}

type GradientType string

const (
	GradientLinear GradientType = "linear"
	GradientRadial GradientType = "radial"
	GradientConic  GradientType = "conic"
)

type ColorStop struct {
	Color    string  `json:"color"`
	Position float64 `json:"position"`
}

// GradientConfig needs at least two color stops.
type GradientConfig struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Type     GradientType `json:"type"`
	Angle    *float64     `json:"angle,omitempty"`
	Position string       `json:"position,omitempty"`
	Colors   []ColorStop  `json:"colors"`
	CSS      string       `json:"css"`
}

func (g GradientConfig) Clone() GradientConfig {
	clone := g
	if g.Angle != nil {
		angle := *g.Angle
		clone.Angle = &angle
	}
	clone.Colors = append([]ColorStop(nil), g.Colors...)
	return clone
}

type ShadowConfig struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	X      string `json:"x"`
	Y      string `json:"y"`
	Blur   string `json:"blur"`
	Spread string `json:"spread"`
	Color  string `json:"color"`
	Inset  bool   `json:"inset,omitempty"`
}

type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
	BorderDouble BorderStyle = "double"
	BorderNone   BorderStyle = "none"
)

var BorderStyles = []BorderStyle{BorderSolid, BorderDashed, BorderDotted, BorderDouble, BorderNone}

type BorderConfig struct {
	Radius string      `json:"radius"`
	Width  string      `json:"width"`
	Style  BorderStyle `json:"style"`
}

type EffectConfig struct {
	Blur         string   `json:"blur"`
	BackdropBlur string   `json:"backdropBlur,omitempty"`
	Opacity      float64  `json:"opacity"`
	Saturate     *float64 `json:"saturate,omitempty"`
}

var AnimationEasings = []string{"linear", "ease", "ease-in", "ease-out", "ease-in-out"}

type AnimationConfig struct {
	Duration string `json:"duration"`
	Easing   string `json:"easing"`
	Delay    string `json:"delay,omitempty"`
}

type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

var DeviceTypes = []DeviceType{DeviceMobile, DeviceTablet, DeviceDesktop}

// ThemeOverride is the partial theme applied at a responsive breakpoint.
type ThemeOverride struct {
	Colors     *OrderedMap[ColorToken] `json:"colors,omitempty"`
	Spacing    *OrderedMap[string]     `json:"spacing,omitempty"`
	Typography *TypographyScale        `json:"typography,omitempty"`
}

func (o ThemeOverride) Clone() ThemeOverride {
	var clone ThemeOverride
	if o.Colors != nil {
		colors := o.Colors.Clone()
		clone.Colors = &colors
	}
	if o.Spacing != nil {
		spacing := o.Spacing.Clone()
		clone.Spacing = &spacing
	}
	if o.Typography != nil {
		typography := o.Typography.Clone()
		clone.Typography = &typography
	}
	return clone
}
