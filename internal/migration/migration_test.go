package migration

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/codr1/themeforge/internal/models"
	"github.com/codr1/themeforge/internal/validation"
)

const legacyTheme = `{
  "id": "legacy-1",
  "name": "Legacy",
  "version": "0.1.0",
  "timestamp": "2023-01-01T00:00:00Z",
  "colors": {"foreground": "#000000", "background": "rgb(255, 255, 255)", "brand.main": "#123456"},
  "spacing": {"xs": "0.25rem", "sm": "0.5rem", "md": "1rem", "lg": "1.5rem", "xl": "2rem", "2xl": "3rem", "3xl": "4rem"},
  "typography": {
    "fontSize": {"base": "1rem"},
    "fontWeight": {"normal": "400"},
    "lineHeight": {"normal": "1.5"},
    "letterSpacing": {"normal": "0em"}
  },
  "borders": {"radius": "4px", "width": "1px", "style": "solid"},
  "effects": {"blur": "0px", "opacity": 1},
  "metadata": {"baseTheme": "default", "tags": [], "description": "", "a11y": {"wcagLevel": "AA", "contrastRatio": 7, "reducedMotion": true}}
}`

func TestApplyUpgradesLegacyDocument(t *testing.T) {
	result, err := Default().Apply([]byte(legacyTheme))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if result.From != "0.1.0" || result.To != models.CurrentSchemaVersion {
		t.Fatalf("unexpected versions %s -> %s", result.From, result.To)
	}
	if len(result.Applied) != 2 {
		t.Fatalf("expected two steps, got %v", result.Applied)
	}

	doc := result.Document
	if got := gjson.GetBytes(doc, "colors.background.space").String(); got != "rgb" {
		t.Fatalf("expected inferred rgb space, got %q", got)
	}
	if got := gjson.GetBytes(doc, `colors.brand\.main.value`).String(); got != "#123456" {
		t.Fatalf("expected dotted key to be wrapped, got %q", got)
	}
	if gjson.GetBytes(doc, "metadata.a11y").Exists() {
		t.Fatalf("expected a11y to be renamed")
	}
	if !gjson.GetBytes(doc, "metadata.accessibility.reducedMotion").Bool() {
		t.Fatalf("expected accessibility to carry a11y values")
	}

	var keys []string
	gjson.GetBytes(doc, "colors").ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	if len(keys) != 3 || keys[0] != "foreground" || keys[2] != "brand.main" {
		t.Fatalf("expected color order preserved, got %v", keys)
	}

	outcome := validation.Validate(doc)
	if !outcome.Valid() {
		t.Fatalf("migrated document should validate, got %+v", outcome.Result.Errors)
	}
}

func TestApplyCurrentVersionIsNoop(t *testing.T) {
	doc := []byte(`{"version": "1.0.0", "colors": {}}`)

	result, err := Default().Apply(doc)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if result.Changed() || string(result.Document) != string(doc) {
		t.Fatalf("expected unchanged document, got %s", result.Document)
	}
}

func TestApplyWithoutVersion(t *testing.T) {
	result, err := Default().Apply([]byte(`{"colors": {}}`))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if result.Changed() {
		t.Fatalf("expected no steps, got %v", result.Applied)
	}
}

func TestNewMigratorRejectsBadTables(t *testing.T) {
	identity := func(doc []byte) ([]byte, error) { return doc, nil }

	tests := []struct {
		name    string
		steps   []Step
		wantErr error
	}{
		{name: "backwards", steps: []Step{{From: "1.0.0", To: "0.9.0", Transform: identity}}, wantErr: ErrCycle},
		{name: "self loop", steps: []Step{{From: "1.0.0", To: "1.0.0", Transform: identity}}, wantErr: ErrCycle},
		{name: "bad version", steps: []Step{{From: "1.0", To: "2.0.0", Transform: identity}}},
		{name: "duplicate source", steps: []Step{
			{From: "1.0.0", To: "2.0.0", Transform: identity},
			{From: "1.0.0", To: "3.0.0", Transform: identity},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMigrator(tt.steps...)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyPropagatesTransformError(t *testing.T) {
	boom := errors.New("boom")
	m, err := NewMigrator(Step{From: "1.0.0", To: "1.1.0", Transform: func([]byte) ([]byte, error) { return nil, boom }})
	if err != nil {
		t.Fatalf("NewMigrator() error = %v", err)
	}

	if _, err := m.Apply([]byte(`{"version":"1.0.0"}`)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transform error, got %v", err)
	}
}

func TestNeedsMigration(t *testing.T) {
	tests := map[string]bool{
		`{"version":"0.1.0"}`: true,
		`{"version":"1.0.0"}`: false,
		`{"version":"1.0"}`:   false,
		`{}`:                  false,
	}
	for doc, want := range tests {
		if got := NeedsMigration([]byte(doc)); got != want {
			t.Fatalf("NeedsMigration(%s) = %v, want %v", doc, got, want)
		}
	}
}
