// Package export renders validated themes as downloadable artifacts.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/codr1/themeforge/internal/models"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatCSS      Format = "css"
	FormatTailwind Format = "tailwind"
)

var Formats = []Format{FormatJSON, FormatCSS, FormatTailwind}

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidTokenKey   = errors.New("token key is not a valid CSS identifier")
)

// ParseFormat accepts a format name from a query string or flag.
func ParseFormat(raw string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Formats {
		if format == known {
			return format, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
}

// Export serializes theme. The theme must already have passed validation.
func Export(theme models.ThemeConfig, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return exportJSON(theme)
	case FormatCSS:
		return exportCSS(theme)
	case FormatTailwind:
		return exportTailwind(theme)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func exportJSON(theme models.ThemeConfig) (string, error) {
	data, err := json.MarshalIndent(theme, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal theme: %w", err)
	}
	return string(data), nil
}

func exportCSS(theme models.ThemeConfig) (string, error) {
	colors := models.NewOrderedMap[string]()
	for key, token := range theme.Colors.All() {
		colors.Set(key, token.Value)
	}
	groups := []struct {
		prefix string
		values models.OrderedMap[string]
	}{
		{prefix: "color", values: *colors},
		{prefix: "spacing", values: theme.Spacing},
		{prefix: "font-size", values: theme.Typography.FontSize},
		{prefix: "font-weight", values: theme.Typography.FontWeight},
		{prefix: "line-height", values: theme.Typography.LineHeight},
		{prefix: "letter-spacing", values: theme.Typography.LetterSpacing},
	}

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, group := range groups {
		for key, value := range group.values.All() {
			if !models.IsTokenKey(key) {
				return "", fmt.Errorf("%w: %s %q", ErrInvalidTokenKey, group.prefix, key)
			}
			fmt.Fprintf(&b, "  --%s-%s: %s;\n", group.prefix, key, value)
		}
	}
	b.WriteString("}\n")
	return b.String(), nil
}

type tailwindSection struct {
	name   string
	values models.OrderedMap[string]
}

func exportTailwind(theme models.ThemeConfig) (string, error) {
	colors := models.NewOrderedMap[string]()
	for key, token := range theme.Colors.All() {
		colors.Set(key, token.Value)
	}
	sections := []tailwindSection{
		{name: "colors", values: *colors},
		{name: "spacing", values: theme.Spacing},
		{name: "fontSize", values: theme.Typography.FontSize},
		{name: "fontWeight", values: theme.Typography.FontWeight},
		{name: "lineHeight", values: theme.Typography.LineHeight},
		{name: "letterSpacing", values: theme.Typography.LetterSpacing},
	}

	var b bytes.Buffer
	b.WriteString("module.exports = {\n  theme: {\n    extend: {\n")
	for i, section := range sections {
		fmt.Fprintf(&b, "      %s: {\n", section.name)
		keys := section.values.Keys()
		for j, key := range keys {
			value, _ := section.values.Get(key)
			quotedKey, err := json.Marshal(key)
			if err != nil {
				return "", fmt.Errorf("encode %s key: %w", section.name, err)
			}
			quotedValue, err := json.Marshal(value)
			if err != nil {
				return "", fmt.Errorf("encode %s.%s: %w", section.name, key, err)
			}
			fmt.Fprintf(&b, "        %s: %s", quotedKey, quotedValue)
			if j < len(keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("      }")
		if i < len(sections)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("    }\n  }\n}\n")
	return b.String(), nil
}

// Filename returns the download name for theme in format.
func Filename(theme models.ThemeConfig, format Format) string {
	slug := Slugify(theme.Name)
	switch format {
	case FormatCSS:
		return slug + "-theme.css"
	case FormatTailwind:
		return slug + "-tailwind.config.js"
	default:
		return slug + "-theme.json"
	}
}

func MIMEType(format Format) string {
	switch format {
	case FormatCSS:
		return "text/css"
	case FormatTailwind:
		return "text/javascript"
	default:
		return "application/json"
	}
}

// Slugify lowercases name and joins its letter and digit runs with hyphens.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return "theme"
	}
	return b.String()
}
