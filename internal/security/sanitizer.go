// Package security rejects theme documents that carry script or CSS
// injection payloads and strips those payloads from raw editor input.
package security

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/codr1/themeforge/internal/models"
)

// RootPath is the path used for document-wide errors.
const RootPath = "root"

var dangerousPatterns = []string{
	"javascript:",
	"expression(",
	"vbscript:",
	"data:text",
	"@import",
	"<script",
	"</script>",
}

var textPolicy = bluemonday.StrictPolicy()

// Field is a free-text or CSS-bearing value and where it lives in the document.
type Field struct {
	Path  string
	Value string
}

// Violation describes a rejected field. Callers log these server-side.
type Violation struct {
	Path    string
	Pattern string
}

// FindPattern returns the first prohibited pattern contained in value,
// compared case-insensitively.
func FindPattern(value string) (string, bool) {
	lowered := asciiLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowered, pattern) {
			return pattern, true
		}
	}
	return "", false
}

// ScanFields appends one error per field that contains a prohibited pattern.
func ScanFields(fields []Field, result *models.ValidationResult) []Violation {
	var violations []Violation
	for _, field := range fields {
		pattern, found := FindPattern(field.Value)
		if !found {
			continue
		}
		result.AddError(field.Path, fmt.Sprintf("contains prohibited pattern %q", pattern))
		violations = append(violations, Violation{Path: field.Path, Pattern: pattern})
	}
	return violations
}

// Scan checks every CSS-bearing and free-text field of theme.
func Scan(theme models.ThemeConfig, result *models.ValidationResult) []Violation {
	return ScanFields(Fields(theme), result)
}

// CheckSize appends a root-level error when size exceeds the document limit.
func CheckSize(size int, result *models.ValidationResult) bool {
	if size <= models.MaxDocumentBytes {
		return true
	}
	result.AddError(RootPath, fmt.Sprintf(
		"theme document is %d bytes, which exceeds the %d byte limit",
		size,
		models.MaxDocumentBytes,
	))
	return false
}

// Fields lists the scanned values of a typed theme in document order.
func Fields(theme models.ThemeConfig) []Field {
	fields := []Field{{Path: "name", Value: theme.Name}}
	for key, token := range theme.Colors.All() {
		fields = append(fields, Field{Path: "colors." + key, Value: token.Value})
	}
	for i, gradient := range theme.Gradients {
		fields = append(fields, Field{Path: fmt.Sprintf("gradients.%d.css", i), Value: gradient.CSS})
	}
	for key, background := range theme.Backgrounds.All() {
		if gradient, ok := background.Gradient(); ok {
			fields = append(fields, Field{Path: "backgrounds." + key + ".gradient.css", Value: gradient.CSS})
		}
		if image, ok := background.Image(); ok {
			fields = append(fields, Field{Path: "backgrounds." + key + ".image.url", Value: image.URL})
		}
	}
	if theme.Responsive != nil {
		for device, override := range theme.Responsive.All() {
			if override.Colors == nil {
				continue
			}
			for key, token := range override.Colors.All() {
				fields = append(fields, Field{Path: "responsive." + device + ".colors." + key, Value: token.Value})
			}
		}
	}
	fields = append(fields, Field{Path: "metadata.description", Value: theme.Metadata.Description})
	return fields
}

// Sanitize removes every prohibited pattern from value. Removal repeats until
// the value is stable so split payloads such as "javajavascript:script:" do
// not reassemble.
func Sanitize(value string) string {
	for {
		next := stripPatterns(value)
		if next == value {
			return next
		}
		value = next
	}
}

// SanitizeText strips markup from free text and then removes prohibited
// patterns. The result is HTML-escaped.
func SanitizeText(value string) string {
	return Sanitize(textPolicy.Sanitize(value))
}

func stripPatterns(value string) string {
	for _, pattern := range dangerousPatterns {
		for {
			idx := strings.Index(asciiLower(value), pattern)
			if idx < 0 {
				break
			}
			value = value[:idx] + value[idx+len(pattern):]
		}
	}
	return value
}

// asciiLower lowercases A-Z only so byte offsets match the input.
func asciiLower(value string) string {
	b := []byte(value)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
