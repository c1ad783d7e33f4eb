// Package migration upgrades stored theme documents to the current schema
// version before they are validated.
package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/codr1/themeforge/internal/models"
)

var ErrCycle = errors.New("migration step does not advance the version")

// Step rewrites a document stored at From into the shape of To. Transforms
// work on raw JSON so that key order survives.
type Step struct {
	From      string
	To        string
	Transform func(doc []byte) ([]byte, error)
}

// Result describes one Apply call.
type Result struct {
	Document []byte
	From     string
	To       string
	Applied  []string
}

func (r Result) Changed() bool {
	return len(r.Applied) > 0
}

type Migrator struct {
	steps map[string]Step
}

// NewMigrator checks that every step moves to a strictly newer version and
// that no version has two outgoing steps.
func NewMigrator(steps ...Step) (*Migrator, error) {
	m := &Migrator{steps: make(map[string]Step, len(steps))}
	for _, step := range steps {
		from, err := semver.StrictNewVersion(step.From)
		if err != nil {
			return nil, fmt.Errorf("step from %q: %w", step.From, err)
		}
		to, err := semver.StrictNewVersion(step.To)
		if err != nil {
			return nil, fmt.Errorf("step to %q: %w", step.To, err)
		}
		if !to.GreaterThan(from) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrCycle, step.From, step.To)
		}
		if _, exists := m.steps[step.From]; exists {
			return nil, fmt.Errorf("duplicate migration from %s", step.From)
		}
		m.steps[step.From] = step
	}
	return m, nil
}

// Default returns the migrator for the built-in schema history.
func Default() *Migrator {
	m, err := NewMigrator(Steps...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in migrations: %v", err))
	}
	return m
}

// Apply runs steps by exact version match until none applies. Documents
// without a string version are returned unchanged for the validator to
// report.
func (m *Migrator) Apply(doc []byte) (Result, error) {
	version := gjson.GetBytes(doc, "version")
	if version.Type != gjson.String {
		return Result{Document: doc}, nil
	}

	result := Result{Document: doc, From: version.Str, To: version.Str}
	seen := map[string]bool{}
	for {
		step, ok := m.steps[result.To]
		if !ok {
			return result, nil
		}
		if seen[step.From] {
			return result, fmt.Errorf("%w: revisited %s", ErrCycle, step.From)
		}
		seen[step.From] = true

		next, err := step.Transform(result.Document)
		if err != nil {
			return result, fmt.Errorf("migrate %s -> %s: %w", step.From, step.To, err)
		}
		next, err = sjson.SetBytes(next, "version", step.To)
		if err != nil {
			return result, fmt.Errorf("set version %s: %w", step.To, err)
		}
		result.Document = next
		result.To = step.To
		result.Applied = append(result.Applied, step.From+" -> "+step.To)
	}
}

// NeedsMigration reports whether doc declares a version older than the
// current schema.
func NeedsMigration(doc []byte) bool {
	version := gjson.GetBytes(doc, "version")
	if version.Type != gjson.String {
		return false
	}
	declared, err := semver.StrictNewVersion(version.Str)
	if err != nil {
		return false
	}
	return declared.LessThan(semver.MustParse(models.CurrentSchemaVersion))
}

var Steps = []Step{
	{From: "0.1.0", To: "0.2.0", Transform: wrapBareColors},
	{From: "0.2.0", To: models.CurrentSchemaVersion, Transform: adoptMetadataSections},
}

// wrapBareColors turns "colors": {"primary": "#fff"} into color tokens.
func wrapBareColors(doc []byte) ([]byte, error) {
	colors := gjson.GetBytes(doc, "colors")
	if !colors.IsObject() {
		return doc, nil
	}

	var err error
	colors.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			return true
		}
		space, ok := models.InferColorSpace(value.Str)
		if !ok {
			space = models.ColorSpaceHex
		}
		doc, err = sjson.SetBytes(doc, "colors."+escapeKey(key.String()), map[string]string{
			"value": value.Str,
			"space": string(space),
		})
		return err == nil
	})
	return doc, err
}

// adoptMetadataSections renames metadata.a11y and adds the sections
// introduced in 1.0.0.
func adoptMetadataSections(doc []byte) ([]byte, error) {
	var err error
	a11y := gjson.GetBytes(doc, "metadata.a11y")
	if a11y.Exists() {
		if !gjson.GetBytes(doc, "metadata.accessibility").Exists() {
			if doc, err = sjson.SetRawBytes(doc, "metadata.accessibility", []byte(a11y.Raw)); err != nil {
				return nil, err
			}
		}
		if doc, err = sjson.DeleteBytes(doc, "metadata.a11y"); err != nil {
			return nil, err
		}
	}
	if !gjson.GetBytes(doc, "metadata.performance").Exists() {
		doc, err = sjson.SetBytes(doc, "metadata.performance", map[string]any{
			"tier":          string(models.PerformanceHigh),
			"estimatedSize": 0,
		})
		if err != nil {
			return nil, err
		}
	}
	if !gjson.GetBytes(doc, "backgrounds").Exists() {
		if doc, err = sjson.SetRawBytes(doc, "backgrounds", []byte("{}")); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

func escapeKey(key string) string {
	return pathEscaper.Replace(key)
}
