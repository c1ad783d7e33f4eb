// internal/validation/formats.go
package validation

import "regexp"

var (
	dimensionRegex       = regexp.MustCompile(`^\d+(\.\d+)?(px|rem|em)$`)
	signedDimensionRegex = regexp.MustCompile(`^-?\d+(\.\d+)?(px|rem|em)$`)
	pixelRegex           = regexp.MustCompile(`^\d+(\.\d+)?px$`)
	fontWeightRegex      = regexp.MustCompile(`^\d+$`)
	lineHeightRegex      = regexp.MustCompile(`^[\d.]+$`)
	letterSpacingRegex   = regexp.MustCompile(`^-?[\d.]+em$`)
	semverRegex          = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	durationRegex        = regexp.MustCompile(`^\d+(\.\d+)?(ms|s)$`)
	cubicBezierRegex     = regexp.MustCompile(`^cubic-bezier\(\s*-?\d*\.?\d+\s*,\s*-?\d*\.?\d+\s*,\s*-?\d*\.?\d+\s*,\s*-?\d*\.?\d+\s*\)$`)
)

type grammar struct {
	pattern *regexp.Regexp
	message string
}

var (
	dimensionGrammar       = grammar{dimensionRegex, "must be a number followed by px, rem or em"}
	signedDimensionGrammar = grammar{signedDimensionRegex, "must be a signed number followed by px, rem or em"}
	pixelGrammar           = grammar{pixelRegex, "must be a number of pixels like 4px"}
	fontWeightGrammar      = grammar{fontWeightRegex, "must be a whole number like 400"}
	lineHeightGrammar      = grammar{lineHeightRegex, "must be a unitless number like 1.5"}
	letterSpacingGrammar   = grammar{letterSpacingRegex, "must be a number of em like 0.02em"}
	durationGrammar        = grammar{durationRegex, "must be a duration like 200ms or 0.3s"}
)
