package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/codr1/themeforge/internal/models"
)

var (
	passLabel = color.New(color.FgGreen, color.Bold)
	failLabel = color.New(color.FgRed, color.Bold)
	errorText = color.New(color.FgRed)
	warnText  = color.New(color.FgYellow)
	noteText  = color.New(color.FgCyan)
)

func printReport(w io.Writer, doc checkedDocument) {
	result := doc.Outcome.Result
	size := humanize.Bytes(uint64(doc.Size))

	if result.Valid {
		passLabel.Fprint(w, "PASS")
	} else {
		failLabel.Fprint(w, "FAIL")
	}
	fmt.Fprintf(w, " %s (%s, accessibility %d/%d", doc.Name, size, result.Accessibility.Score, models.MaxAccessibilityScore)
	if theme := doc.Outcome.Theme; theme != nil {
		fmt.Fprintf(w, ", WCAG %s, %s tier", theme.Metadata.Accessibility.WCAGLevel, theme.Metadata.Performance.Tier)
	}
	fmt.Fprintln(w, ")")

	for _, step := range doc.Migrations {
		noteText.Fprintf(w, "  migrated  %s\n", step)
	}
	for _, fieldErr := range result.Errors {
		errorText.Fprintf(w, "  error     %s: %s\n", fieldErr.Path, fieldErr.Message)
	}
	for _, warning := range result.Warnings {
		warnText.Fprintf(w, "  warning   %s: %s", warning.Path, warning.Message)
		if warning.Suggestion != "" {
			fmt.Fprintf(w, " (%s)", warning.Suggestion)
		}
		fmt.Fprintln(w)
	}
}
