// internal/models/validation.go
package models

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactModerate Impact = "moderate"
	ImpactSerious  Impact = "serious"
	ImpactCritical Impact = "critical"
)

// FieldError reports one problem at a dot-notation path.
type FieldError struct {
	Path     string   `json:"path"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

type Warning struct {
	Path       string `json:"path"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

type AccessibilityIssue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Impact  Impact `json:"impact"`
}

type AccessibilityReport struct {
	Score  int                  `json:"score"`
	Issues []AccessibilityIssue `json:"issues"`
}

type ValidationResult struct {
	Valid         bool                `json:"valid"`
	Errors        []FieldError        `json:"errors"`
	Warnings      []Warning           `json:"warnings"`
	Accessibility AccessibilityReport `json:"accessibility"`
}

const MaxAccessibilityScore = 100

func NewValidationResult() ValidationResult {
	return ValidationResult{
		Errors:   []FieldError{},
		Warnings: []Warning{},
		Accessibility: AccessibilityReport{
			Score:  MaxAccessibilityScore,
			Issues: []AccessibilityIssue{},
		},
	}
}

func (r *ValidationResult) AddError(path, message string) {
	r.Errors = append(r.Errors, FieldError{Path: path, Message: message, Severity: SeverityError})
}

func (r *ValidationResult) AddWarning(path, message, suggestion string) {
	r.Warnings = append(r.Warnings, Warning{Path: path, Message: message, Suggestion: suggestion})
}

// Finalize sets Valid from the collected errors.
func (r *ValidationResult) Finalize() {
	r.Valid = len(r.Errors) == 0
}

// ErrorsAt returns the errors recorded for path.
func (r ValidationResult) ErrorsAt(path string) []FieldError {
	var matches []FieldError
	for _, fieldErr := range r.Errors {
		if fieldErr.Path == path {
			matches = append(matches, fieldErr)
		}
	}
	return matches
}
