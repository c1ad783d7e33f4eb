// internal/models/colors.go
package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	hexColorRegex   = regexp.MustCompile(`^#([A-Fa-f0-9]{3}|[A-Fa-f0-9]{6}|[A-Fa-f0-9]{8})$`)
	rgbColorRegex   = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*(\d*\.?\d+)\s*)?\)$`)
	hslColorRegex   = regexp.MustCompile(`^hsla?\(\s*(\d*\.?\d+)(?:deg)?\s*,\s*(\d*\.?\d+)%\s*,\s*(\d*\.?\d+)%\s*(?:,\s*(\d*\.?\d+)\s*)?\)$`)
	oklchColorRegex = regexp.MustCompile(`^oklch\(\s*(\d*\.?\d+)\s+(\d*\.?\d+)\s+(\d*\.?\d+)\s*(?:/\s*(\d*\.?\d+)\s*)?\)$`)
)

func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(strings.TrimSpace(value))
}

// MatchesColorSpace reports whether value follows the grammar of space.
func MatchesColorSpace(value string, space ColorSpace) bool {
	switch space {
	case ColorSpaceHex:
		return hexColorRegex.MatchString(value)
	case ColorSpaceRGB:
		return rgbColorRegex.MatchString(value)
	case ColorSpaceHSL:
		return hslColorRegex.MatchString(value)
	case ColorSpaceOKLCH:
		return oklchColorRegex.MatchString(value)
	default:
		return false
	}
}

// InferColorSpace returns the first space whose grammar matches value.
func InferColorSpace(value string) (ColorSpace, bool) {
	for _, space := range ColorSpaces {
		if MatchesColorSpace(value, space) {
			return space, true
		}
	}
	return "", false
}

// ParseColor decodes value in the given space. Alpha is ignored.
func ParseColor(value string, space ColorSpace) (colorful.Color, error) {
	switch space {
	case ColorSpaceHex:
		return parseHexColor(value)
	case ColorSpaceRGB:
		m := rgbColorRegex.FindStringSubmatch(value)
		if m == nil {
			return colorful.Color{}, fmt.Errorf("invalid rgb color: %s", value)
		}
		var channels [3]float64
		for i := range channels {
			n, _ := strconv.Atoi(m[i+1])
			if n > 255 {
				return colorful.Color{}, fmt.Errorf("rgb channel out of range: %s", value)
			}
			channels[i] = float64(n) / 255
		}
		return colorful.Color{R: channels[0], G: channels[1], B: channels[2]}, nil
	case ColorSpaceHSL:
		m := hslColorRegex.FindStringSubmatch(value)
		if m == nil {
			return colorful.Color{}, fmt.Errorf("invalid hsl color: %s", value)
		}
		h, _ := strconv.ParseFloat(m[1], 64)
		s, _ := strconv.ParseFloat(m[2], 64)
		l, _ := strconv.ParseFloat(m[3], 64)
		if s > 100 || l > 100 {
			return colorful.Color{}, fmt.Errorf("hsl percentage out of range: %s", value)
		}
		return colorful.Hsl(math.Mod(h, 360), s/100, l/100), nil
	case ColorSpaceOKLCH:
		m := oklchColorRegex.FindStringSubmatch(value)
		if m == nil {
			return colorful.Color{}, fmt.Errorf("invalid oklch color: %s", value)
		}
		l, _ := strconv.ParseFloat(m[1], 64)
		c, _ := strconv.ParseFloat(m[2], 64)
		h, _ := strconv.ParseFloat(m[3], 64)
		// Lightness above 1 is written as a percentage.
		if l > 1 {
			l /= 100
		}
		if l > 1 {
			return colorful.Color{}, fmt.Errorf("oklch lightness out of range: %s", value)
		}
		return colorful.OkLch(l, c, math.Mod(h, 360)).Clamped(), nil
	default:
		return colorful.Color{}, fmt.Errorf("unsupported color space: %s", space)
	}
}

// ContrastRatio computes the WCAG 2.x contrast ratio between two colors.
func ContrastRatio(foreground, background colorful.Color) float64 {
	foregroundL := RelativeLuminance(foreground)
	backgroundL := RelativeLuminance(background)
	lightest := math.Max(foregroundL, backgroundL)
	darkest := math.Min(foregroundL, backgroundL)
	return (lightest + 0.05) / (darkest + 0.05)
}

// TokenContrastRatio parses both tokens and returns their contrast ratio.
func TokenContrastRatio(foreground, background ColorToken) (float64, error) {
	fg, err := ParseColor(foreground.Value, foreground.Space)
	if err != nil {
		return 0, err
	}
	bg, err := ParseColor(background.Value, background.Space)
	if err != nil {
		return 0, err
	}
	return ContrastRatio(fg, bg), nil
}

func RelativeLuminance(color colorful.Color) float64 {
	c := color.Clamped()

	rl := srgbToLinear(c.R)
	gl := srgbToLinear(c.G)
	bl := srgbToLinear(c.B)

	return 0.2126*rl + 0.7152*gl + 0.0722*bl
}

func parseHexColor(hexColor string) (colorful.Color, error) {
	if !hexColorRegex.MatchString(hexColor) {
		return colorful.Color{}, fmt.Errorf("invalid hex color: %s", hexColor)
	}

	hex := strings.TrimPrefix(hexColor, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 8:
		hex = hex[:6]
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hex color: %s", hexColor)
	}

	r := float64((value >> 16) & 0xFF)
	g := float64((value >> 8) & 0xFF)
	b := float64(value & 0xFF)

	return colorful.Color{R: r / 255, G: g / 255, B: b / 255}, nil
}

func srgbToLinear(value float64) float64 {
	if value <= 0.03928 {
		return value / 12.92
	}
	return math.Pow((value+0.055)/1.055, 2.4)
}
