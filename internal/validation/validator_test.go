package validation

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/sjson"
	"pgregory.net/rapid"

	"github.com/codr1/themeforge/internal/models"
)

const minimalTheme = `{
  "id": "theme-1",
  "name": "Minimal",
  "version": "1.0.0",
  "timestamp": "2024-05-01T12:00:00Z",
  "colors": {
    "foreground": {"value": "#000000", "space": "hex"},
    "background": {"value": "#ffffff", "space": "hex"}
  },
  "spacing": {"xs": "0.25rem", "sm": "0.5rem", "md": "1rem", "lg": "1.5rem", "xl": "2rem", "2xl": "3rem", "3xl": "4rem"},
  "typography": {
    "fontSize": {"base": "1rem"},
    "fontWeight": {"normal": "400"},
    "lineHeight": {"normal": "1.5"},
    "letterSpacing": {"normal": "0em"}
  },
  "borders": {"radius": "4px", "width": "1px", "style": "solid"},
  "effects": {"blur": "0px", "opacity": 1},
  "backgrounds": {"page": {"type": "solid", "solid": {"color": "#ffffff"}}},
  "metadata": {"baseTheme": "default", "tags": [], "description": "A minimal theme"}
}`

func mutate(t *testing.T, doc, path string, value any) string {
	t.Helper()
	out, err := sjson.Set(doc, path, value)
	if err != nil {
		t.Fatalf("sjson.Set(%q) error = %v", path, err)
	}
	return out
}

func remove(t *testing.T, doc, path string) string {
	t.Helper()
	out, err := sjson.Delete(doc, path)
	if err != nil {
		t.Fatalf("sjson.Delete(%q) error = %v", path, err)
	}
	return out
}

func errorPaths(result models.ValidationResult) []string {
	paths := make([]string, len(result.Errors))
	for i, fieldErr := range result.Errors {
		paths[i] = fieldErr.Path
	}
	return paths
}

func TestValidateMinimalTheme(t *testing.T) {
	outcome := Validate([]byte(minimalTheme))

	if !outcome.Valid() {
		t.Fatalf("expected valid theme, got errors %+v", outcome.Result.Errors)
	}
	if outcome.Result.Accessibility.Score != 100 {
		t.Fatalf("expected score 100, got %d", outcome.Result.Accessibility.Score)
	}
	if outcome.Theme == nil {
		t.Fatalf("expected typed theme on success")
	}
	meta := outcome.Theme.Metadata
	if meta.Accessibility.WCAGLevel != models.WCAGLevelAAA {
		t.Fatalf("expected AAA, got %q", meta.Accessibility.WCAGLevel)
	}
	if meta.Accessibility.ContrastRatio != 21 {
		t.Fatalf("expected contrast ratio 21, got %v", meta.Accessibility.ContrastRatio)
	}
	if meta.Performance.Tier != models.PerformanceHigh || meta.Performance.EstimatedSize != 1 {
		t.Fatalf("unexpected performance metadata %+v", meta.Performance)
	}
	if len(outcome.Result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", outcome.Result.Warnings)
	}
}

func TestValidateVersionFormat(t *testing.T) {
	doc := mutate(t, minimalTheme, "version", "1.0")

	outcome := Validate([]byte(doc))

	if outcome.Valid() {
		t.Fatalf("expected invalid theme")
	}
	if len(outcome.Result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %+v", outcome.Result.Errors)
	}
	got := outcome.Result.Errors[0]
	if got.Path != "version" || got.Severity != models.SeverityError {
		t.Fatalf("unexpected error %+v", got)
	}
	if outcome.Theme != nil {
		t.Fatalf("expected no typed theme for invalid input")
	}
}

func TestValidateNonObject(t *testing.T) {
	for _, input := range []string{`[]`, `"theme"`, `42`, `null`, `{"id":`, ``} {
		t.Run(input, func(t *testing.T) {
			outcome := Validate([]byte(input))
			if outcome.Valid() {
				t.Fatalf("expected invalid")
			}
			if len(outcome.Result.Errors) != 1 || outcome.Result.Errors[0].Path != UnknownPath {
				t.Fatalf("expected single unknown error, got %+v", outcome.Result.Errors)
			}
		})
	}
}

func TestValidateCollectsEveryStructuralError(t *testing.T) {
	doc := remove(t, minimalTheme, "borders")
	doc = mutate(t, doc, "spacing.md", "1 rem")
	doc = mutate(t, doc, "effects.opacity", 1.5)
	doc = mutate(t, doc, "typography.fontWeight.normal", "bold")

	outcome := Validate([]byte(doc))

	want := []string{"spacing.md", "typography.fontWeight.normal", "borders", "effects.opacity"}
	if got := errorPaths(outcome.Result); !reflect.DeepEqual(got, want) {
		t.Fatalf("error paths = %v, want %v", got, want)
	}
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
		want  string
	}{
		{name: "missing spacing step", path: "spacing.3xl", value: nil, want: "spacing.3xl"},
		{name: "rgb out of range", path: "colors.foreground", value: map[string]any{"value": "rgb(300, 0, 0)", "space": "rgb"}, want: "colors.foreground.value"},
		{name: "space mismatch", path: "colors.foreground", value: map[string]any{"value": "#000", "space": "hsl"}, want: "colors.foreground.value"},
		{name: "unknown space", path: "colors.foreground.space", value: "cmyk", want: "colors.foreground.space"},
		{name: "contrast above 21", path: "colors.foreground.contrast", value: 22, want: "colors.foreground.contrast"},
		{name: "name too long", path: "name", value: strings.Repeat("a", 101), want: "name"},
		{name: "name untrimmed", path: "name", value: " Minimal", want: "name"},
		{name: "bad letter spacing", path: "typography.letterSpacing.normal", value: "0.1px", want: "typography.letterSpacing.normal"},
		{name: "bad border style", path: "borders.style", value: "groove", want: "borders.style"},
		{name: "bad timestamp", path: "timestamp", value: "yesterday", want: "timestamp"},
		{name: "unknown device", path: "responsive.watch", value: map[string]any{}, want: "responsive.watch"},
		{name: "bad animation easing", path: "animations.fade", value: map[string]any{"duration": "200ms", "easing": "bouncy"}, want: "animations.fade.easing"},
		{name: "bad animation duration", path: "animations.fade", value: map[string]any{"duration": "fast", "easing": "ease"}, want: "animations.fade.duration"},
		{name: "wrong background payload", path: "backgrounds.page.image", value: map[string]any{"url": "https://example.com/a.png"}, want: "backgrounds.page.image"},
		{name: "relative image url", path: "backgrounds.hero", value: map[string]any{
			"type":  "image",
			"image": map[string]any{"url": "/a.png", "opacity": 0.5, "blur": "2px"},
		}, want: "backgrounds.hero.image.url"},
		{name: "gradient needs two stops", path: "gradients", value: []any{map[string]any{
			"id": "g1", "name": "Sunset", "type": "linear",
			"colors": []any{map[string]any{"color": "#ff0000", "position": 0}},
			"css":    "linear-gradient(#ff0000, #ff0000)",
		}}, want: "gradients.0.colors"},
		{name: "bad derived tier", path: "metadata.performance", value: map[string]any{"tier": "ultra"}, want: "metadata.performance.tier"},
		{name: "fractional estimated size", path: "metadata.performance", value: map[string]any{"estimatedSize": 1.5}, want: "metadata.performance.estimatedSize"},
		{name: "epoch millis after year 9999", path: "timestamp", value: 1e15, want: "timestamp"},
		{name: "epoch millis before year 0", path: "timestamp", value: -1e15, want: "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc string
			if tt.value == nil {
				doc = remove(t, minimalTheme, tt.path)
			} else {
				doc = mutate(t, minimalTheme, tt.path, tt.value)
			}

			outcome := Validate([]byte(doc))

			if outcome.Valid() {
				t.Fatalf("expected invalid theme")
			}
			if got := outcome.Result.ErrorsAt(tt.want); len(got) != 1 {
				t.Fatalf("expected one error at %s, got %+v", tt.want, outcome.Result.Errors)
			}
		})
	}
}

// withKey returns minimalTheme with key set under the object at section,
// creating intermediate objects as needed.
func withKey(t *testing.T, section, key string, value any) string {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(minimalTheme), &doc); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	parent := doc
	for _, name := range strings.Split(section, ".") {
		child, ok := parent[name].(map[string]any)
		if !ok {
			child = map[string]any{}
			parent[name] = child
		}
		parent = child
	}
	parent[key] = value
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return string(data)
}

func TestValidateTokenKeys(t *testing.T) {
	token := map[string]any{"value": "#ff0000", "space": "hex"}
	script := "x: red; } </style><script>alert(1)</script><style> :root { --y"

	tests := []struct {
		name          string
		section       string
		key           string
		value         any
		wantViolation bool
	}{
		{name: "color key with markup", section: "colors", key: script, value: token, wantViolation: true},
		{name: "color key with space", section: "colors", key: "brand color", value: token},
		{name: "spacing key with semicolon", section: "spacing", key: "md;x", value: "1rem"},
		{name: "font size key with brace", section: "typography.fontSize", key: "base}", value: "1rem"},
		{name: "font weight key with colon", section: "typography.fontWeight", key: "a:b", value: "400"},
		{name: "line height key with slash", section: "typography.lineHeight", key: "a/b", value: "1.5"},
		{name: "letter spacing key with bang", section: "typography.letterSpacing", key: "wide!", value: "0.1em"},
		{name: "responsive color key", section: "responsive.mobile.colors", key: "a b", value: token},
		{name: "responsive spacing key", section: "responsive.tablet.spacing", key: "javascript:x", value: "1rem", wantViolation: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := withKey(t, tt.section, tt.key, tt.value)

			outcome := Validate([]byte(doc))

			if outcome.Valid() {
				t.Fatalf("expected key %q to be rejected", tt.key)
			}
			path := tt.section + "." + tt.key
			if got := outcome.Result.ErrorsAt(path); len(got) != 1 {
				t.Fatalf("expected one error at %s, got %+v", path, outcome.Result.Errors)
			}
			if got := len(outcome.Violations) > 0; got != tt.wantViolation {
				t.Fatalf("violations = %+v, want violation %v", outcome.Violations, tt.wantViolation)
			}
		})
	}

	doc := withKey(t, "colors", "brand_accent-2", token)
	if outcome := Validate([]byte(doc)); !outcome.Valid() {
		t.Fatalf("expected identifier key to be accepted, got %+v", outcome.Result.Errors)
	}
}

func TestValidateAcceptsOptionalSections(t *testing.T) {
	doc := mutate(t, minimalTheme, "gradients", []any{map[string]any{
		"id": "g1", "name": "Sunset", "type": "linear", "angle": 90,
		"colors": []any{
			map[string]any{"color": "#ff7e5f", "position": 0},
			map[string]any{"color": "transparent", "position": 100},
		},
		"css": "linear-gradient(90deg, #ff7e5f 0%, transparent 100%)",
	}})
	doc = mutate(t, doc, "shadows", []any{map[string]any{
		"id": "s1", "name": "Card", "x": "0px", "y": "-2px", "blur": "8px", "spread": "0px", "color": "rgba(0, 0, 0, 0.2)",
	}})
	doc = mutate(t, doc, "animations.fade", map[string]any{"duration": "0.3s", "easing": "cubic-bezier(0.4, 0, 0.2, 1)"})
	doc = mutate(t, doc, "responsive.mobile", map[string]any{
		"spacing": map[string]any{"md": "0.75rem"},
		"colors":  map[string]any{"accent": map[string]any{"value": "oklch(0.7 0.15 250)", "space": "oklch"}},
	})
	doc = mutate(t, doc, "backgrounds.hero", map[string]any{
		"type": "image",
		"image": map[string]any{
			"url": "https://example.com/hero.jpg", "opacity": 0.8, "blur": "4px",
			"overlay": map[string]any{"color": "#000000", "opacity": 0.4},
		},
	})
	doc = mutate(t, doc, "timestamp", 1700000000000)

	outcome := Validate([]byte(doc))

	if !outcome.Valid() {
		t.Fatalf("expected valid theme, got %+v", outcome.Result.Errors)
	}
	if got := outcome.Theme.Timestamp.UTC().Format("2006-01-02"); got != "2023-11-14" {
		t.Fatalf("expected epoch timestamp to decode, got %s", got)
	}
	if outcome.Theme.Backgrounds.Keys()[1] != "hero" {
		t.Fatalf("expected background order preserved, got %v", outcome.Theme.Backgrounds.Keys())
	}
}

func TestValidateRejectsDuplicateKeys(t *testing.T) {
	doc := strings.Replace(minimalTheme, `"id": "theme-1",`, `"id": "theme-1", "id": "theme-2",`, 1)

	outcome := Validate([]byte(doc))

	errs := outcome.Result.ErrorsAt("id")
	if len(errs) != 1 || errs[0].Message != "duplicate key" {
		t.Fatalf("expected duplicate key error, got %+v", outcome.Result.Errors)
	}
}

func TestValidateSecurityErrorsFollowStructuralErrors(t *testing.T) {
	doc := remove(t, minimalTheme, "version")
	doc = mutate(t, doc, "colors.foreground.value", "JavaScript:alert(1)")

	outcome := Validate([]byte(doc))

	want := []string{"version", "colors.foreground"}
	if got := errorPaths(outcome.Result); !reflect.DeepEqual(got, want) {
		t.Fatalf("error paths = %v, want %v", got, want)
	}
	if len(outcome.Violations) != 1 || outcome.Violations[0].Pattern != "javascript:" {
		t.Fatalf("expected one javascript: violation, got %+v", outcome.Violations)
	}
}

func TestValidateSizeGate(t *testing.T) {
	doc := mutate(t, minimalTheme, "metadata.description", strings.Repeat("x", models.MaxDocumentBytes))

	outcome := Validate([]byte(doc))

	if outcome.Valid() {
		t.Fatalf("expected oversize theme to be invalid")
	}
	if len(outcome.Result.Errors) != 1 || outcome.Result.Errors[0].Path != "root" {
		t.Fatalf("expected single root error, got %+v", outcome.Result.Errors)
	}
}

func TestValidateOverwritesDerivedMetadata(t *testing.T) {
	doc := mutate(t, minimalTheme, "metadata.accessibility", map[string]any{"wcagLevel": "A", "contrastRatio": 1, "reducedMotion": true})
	doc = mutate(t, doc, "metadata.performance", map[string]any{"tier": "low", "estimatedSize": 900})

	outcome := Validate([]byte(doc))

	if !outcome.Valid() {
		t.Fatalf("expected valid theme, got %+v", outcome.Result.Errors)
	}
	meta := outcome.Theme.Metadata
	if meta.Accessibility.WCAGLevel != models.WCAGLevelAAA || meta.Performance.Tier != models.PerformanceHigh {
		t.Fatalf("derived metadata not recomputed: %+v", meta)
	}
	if !meta.Accessibility.ReducedMotion {
		t.Fatalf("expected caller reducedMotion to survive")
	}
}

func TestValidateLowContrastStaysValid(t *testing.T) {
	doc := mutate(t, minimalTheme, "colors.foreground.value", "#777777")
	doc = mutate(t, doc, "colors.background.value", "#787878")

	outcome := Validate([]byte(doc))

	if !outcome.Valid() {
		t.Fatalf("accessibility issues must not invalidate, got %+v", outcome.Result.Errors)
	}
	if outcome.Result.Accessibility.Score != 80 {
		t.Fatalf("expected score 80, got %d", outcome.Result.Accessibility.Score)
	}
	if len(outcome.Result.Warnings) != 1 || outcome.Result.Warnings[0].Path != "colors.foreground" {
		t.Fatalf("expected one contrast warning, got %+v", outcome.Result.Warnings)
	}
	if outcome.Theme.Metadata.Accessibility.WCAGLevel != models.WCAGLevelA {
		t.Fatalf("expected level A, got %q", outcome.Theme.Metadata.Accessibility.WCAGLevel)
	}
}

func TestValidateValue(t *testing.T) {
	var decoded any
	if err := json.Unmarshal([]byte(minimalTheme), &decoded); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	if outcome := ValidateValue(decoded); !outcome.Valid() {
		t.Fatalf("expected valid, got %+v", outcome.Result.Errors)
	}
	if outcome := ValidateValue([]any{1, 2}); outcome.Result.Errors[0].Path != UnknownPath {
		t.Fatalf("expected unknown error, got %+v", outcome.Result.Errors)
	}
}

func TestValidateThemeDefault(t *testing.T) {
	outcome := ValidateTheme(models.DefaultTheme())

	if !outcome.Valid() {
		t.Fatalf("default theme should validate, got %+v", outcome.Result.Errors)
	}
}

var hexDigits = []rune("0123456789abcdef")

func hexColor() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		digits := rapid.SliceOfN(rapid.SampledFrom(hexDigits), 6, 6).Draw(t, "digits")
		return "#" + string(digits)
	})
}

func TestValidateIsDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		doc := minimalTheme
		var err error
		doc, err = sjson.Set(doc, "colors.foreground.value", hexColor().Draw(rt, "fg"))
		if err != nil {
			rt.Fatalf("set fg: %v", err)
		}
		doc, err = sjson.Set(doc, "spacing.md", rapid.SampledFrom([]string{"1rem", "1 rem", "12px", "-1px", "2em"}).Draw(rt, "md"))
		if err != nil {
			rt.Fatalf("set md: %v", err)
		}
		if rapid.Bool().Draw(rt, "dropBorders") {
			doc, _ = sjson.Delete(doc, "borders")
		}

		first := Validate([]byte(doc))
		second := Validate([]byte(doc))

		if !reflect.DeepEqual(first.Result, second.Result) {
			rt.Fatalf("results differ:\n%+v\n%+v", first.Result, second.Result)
		}
	})
}

var (
	minEpochMillis = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxEpochMillis = time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli() - 1
)

func TestValidateRejectsEpochOutsideFourDigitYears(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var millis int64
		if rapid.Bool().Draw(rt, "future") {
			millis = rapid.Int64Range(maxEpochMillis+1, 1<<52).Draw(rt, "millis")
		} else {
			millis = rapid.Int64Range(-(1 << 52), minEpochMillis-1).Draw(rt, "millis")
		}
		doc, err := sjson.Set(minimalTheme, "timestamp", millis)
		if err != nil {
			rt.Fatalf("set timestamp: %v", err)
		}

		outcome := Validate([]byte(doc))

		if outcome.Valid() {
			rt.Fatalf("expected timestamp %d to be rejected", millis)
		}
		if got := outcome.Result.ErrorsAt("timestamp"); len(got) != 1 {
			rt.Fatalf("expected one error at timestamp, got %+v", outcome.Result.Errors)
		}
	})
}

func TestValidateRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		theme := models.DefaultTheme()
		count := rapid.IntRange(0, 20).Draw(rt, "extraColors")
		for i := 0; i < count; i++ {
			key := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "key")
			theme.Colors.Set(key, models.ColorToken{Value: hexColor().Draw(rt, "color"), Space: models.ColorSpaceHex})
		}
		data, err := json.MarshalIndent(theme, "", "  ")
		if err != nil {
			rt.Fatalf("marshal: %v", err)
		}
		if rapid.Bool().Draw(rt, "epochTimestamp") {
			millis := rapid.Int64Range(minEpochMillis, maxEpochMillis).Draw(rt, "millis")
			if data, err = sjson.SetBytes(data, "timestamp", millis); err != nil {
				rt.Fatalf("set timestamp: %v", err)
			}
		}

		first := Validate(data)
		if !first.Valid() {
			rt.Fatalf("expected valid, got %+v", first.Result.Errors)
		}
		again, err := json.MarshalIndent(first.Theme, "", "  ")
		if err != nil {
			rt.Fatalf("marshal validated theme: %v", err)
		}
		second := Validate(again)
		if !second.Valid() {
			rt.Fatalf("round trip invalid: %+v", second.Result.Errors)
		}
		if !reflect.DeepEqual(first.Theme.Colors.Keys(), second.Theme.Colors.Keys()) {
			rt.Fatalf("color order changed: %v vs %v", first.Theme.Colors.Keys(), second.Theme.Colors.Keys())
		}
		third, _ := json.MarshalIndent(second.Theme, "", "  ")
		if string(again) != string(third) {
			rt.Fatalf("round trip changed document")
		}
	})
}

func TestValidateSecurityGate(t *testing.T) {
	patterns := []string{"javascript:", "expression(", "vbscript:", "data:text", "@import", "<script", "</script>"}
	fields := []struct {
		path    string
		errPath string
	}{
		{path: "colors.foreground.value", errPath: "colors.foreground"},
		{path: "name", errPath: "name"},
		{path: "metadata.description", errPath: "metadata.description"},
	}

	rapid.Check(t, func(rt *rapid.T) {
		pattern := rapid.SampledFrom(patterns).Draw(rt, "pattern")
		if rapid.Bool().Draw(rt, "upper") {
			pattern = strings.ToUpper(pattern)
		}
		prefix := rapid.StringMatching(`[a-z0-9]{0,8}`).Draw(rt, "prefix")
		suffix := rapid.StringMatching(`[a-z0-9]{0,8}`).Draw(rt, "suffix")
		field := rapid.SampledFrom(fields).Draw(rt, "field")

		doc, err := sjson.Set(minimalTheme, field.path, prefix+pattern+suffix)
		if err != nil {
			rt.Fatalf("set: %v", err)
		}
		outcome := Validate([]byte(doc))

		if outcome.Valid() {
			rt.Fatalf("expected %q at %s to be rejected", pattern, field.path)
		}
		if got := outcome.Result.ErrorsAt(field.errPath); len(got) != 1 {
			rt.Fatalf("expected one error at %s, got %+v", field.errPath, outcome.Result.Errors)
		}
	})
}
