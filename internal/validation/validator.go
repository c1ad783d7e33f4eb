// Package validation checks untrusted theme documents and derives their
// accessibility and performance metadata.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/codr1/themeforge/internal/accessibility"
	"github.com/codr1/themeforge/internal/models"
	"github.com/codr1/themeforge/internal/performance"
	"github.com/codr1/themeforge/internal/security"
)

// UnknownPath is the error path used when the input is not a JSON object.
const UnknownPath = "unknown"

// Outcome is the result of validating one document. Theme is set only when
// the document is valid and carries the recomputed derived metadata.
type Outcome struct {
	Result     models.ValidationResult
	Theme      *models.ThemeConfig
	Violations []security.Violation
}

// Valid reports whether the document passed every check.
func (o Outcome) Valid() bool {
	return o.Result.Valid
}

// Validate checks a raw JSON document. Errors are reported in a fixed order:
// structural, then security. Accessibility and performance warnings follow
// for structurally sound documents.
func Validate(data []byte) Outcome {
	result := models.NewValidationResult()

	if !gjson.ValidBytes(data) {
		result.AddError(UnknownPath, "theme document is not valid JSON")
		result.Finalize()
		return Outcome{Result: result}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		result.AddError(UnknownPath, "theme document must be a JSON object")
		result.Finalize()
		return Outcome{Result: result}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		result.AddError(UnknownPath, "theme document is not valid JSON")
		result.Finalize()
		return Outcome{Result: result}
	}

	checker := &schemaChecker{result: &result}
	checker.checkTheme(root)
	violations := security.ScanFields(checker.fields, &result)
	security.CheckSize(compact.Len(), &result)

	if len(result.Errors) > 0 {
		result.Finalize()
		return Outcome{Result: result, Violations: violations}
	}

	var theme models.ThemeConfig
	if err := json.Unmarshal(compact.Bytes(), &theme); err != nil {
		result.AddError(UnknownPath, fmt.Sprintf("theme document could not be decoded: %v", err))
		result.Finalize()
		return Outcome{Result: result}
	}

	patched := Derive(theme, &result)
	result.Finalize()
	return Outcome{Result: result, Theme: &patched}
}

// ValidateValue validates an already-decoded value such as the output of
// json.Unmarshal into an any.
func ValidateValue(candidate any) Outcome {
	data, err := json.Marshal(candidate)
	if err != nil {
		result := models.NewValidationResult()
		result.AddError(UnknownPath, "theme document must be a JSON object")
		result.Finalize()
		return Outcome{Result: result}
	}
	return Validate(data)
}

// ValidateTheme validates a typed theme by round-tripping it through JSON so
// that in-memory edits get the same checks as uploaded documents.
func ValidateTheme(theme models.ThemeConfig) Outcome {
	data, err := json.Marshal(theme)
	if err != nil {
		result := models.NewValidationResult()
		result.AddError(UnknownPath, fmt.Sprintf("theme could not be encoded: %v", err))
		result.Finalize()
		return Outcome{Result: result}
	}
	return Validate(data)
}

// Derive runs the auditor and estimator, records their findings on result
// and returns a copy of theme with the derived metadata applied.
func Derive(theme models.ThemeConfig, result *models.ValidationResult) models.ThemeConfig {
	audit := accessibility.Audit(theme)
	audit.Apply(result)
	patched := audit.Patch(theme)

	estimate := performance.Estimate(patched)
	estimate.Apply(result)
	return estimate.Patch(patched)
}
