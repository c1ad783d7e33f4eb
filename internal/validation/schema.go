// internal/validation/schema.go
package validation

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/codr1/themeforge/internal/models"
	"github.com/codr1/themeforge/internal/security"
)

// schemaChecker walks an untrusted document in source order, recording one
// error per violation and collecting the fields the security scan inspects.
type schemaChecker struct {
	result *models.ValidationResult
	fields []security.Field
}

type member struct {
	key   string
	value gjson.Result
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func index(parent string, i int) string {
	return parent + "." + strconv.Itoa(i)
}

func (c *schemaChecker) fail(path, message string) {
	c.result.AddError(path, message)
}

func (c *schemaChecker) failf(path, format string, args ...any) {
	c.result.AddError(path, fmt.Sprintf(format, args...))
}

func (c *schemaChecker) collect(path, value string) {
	c.fields = append(c.fields, security.Field{Path: path, Value: value})
}

// members returns the object's entries in order plus a lookup by key.
// Duplicate keys are rejected because decoders disagree on which one wins.
func (c *schemaChecker) members(obj gjson.Result, path string) ([]member, map[string]gjson.Result) {
	var ordered []member
	lookup := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if _, seen := lookup[name]; seen {
			c.fail(join(path, name), "duplicate key")
			return true
		}
		lookup[name] = value
		ordered = append(ordered, member{key: name, value: value})
		return true
	})
	return ordered, lookup
}

// tokenKey checks a key that ends up in an exported variable name. Keys
// carrying an injection payload are left to the security scan.
func (c *schemaChecker) tokenKey(path, key string) bool {
	if _, dangerous := security.FindPattern(key); dangerous {
		c.collect(path, key)
		return false
	}
	if !models.IsTokenKey(key) {
		c.fail(path, "key must contain only letters, digits, hyphens and underscores")
		return false
	}
	return true
}

func (c *schemaChecker) object(value gjson.Result, path string, required bool) ([]member, map[string]gjson.Result, bool) {
	if !value.Exists() {
		if required {
			c.fail(path, "is required")
		}
		return nil, nil, false
	}
	if !value.IsObject() {
		c.fail(path, "must be an object")
		return nil, nil, false
	}
	ordered, lookup := c.members(value, path)
	return ordered, lookup, true
}

func (c *schemaChecker) array(value gjson.Result, path string, required bool) ([]gjson.Result, bool) {
	if !value.Exists() {
		if required {
			c.fail(path, "is required")
		}
		return nil, false
	}
	if !value.IsArray() {
		c.fail(path, "must be an array")
		return nil, false
	}
	return value.Array(), true
}

func (c *schemaChecker) str(value gjson.Result, path string, required bool) (string, bool) {
	if !value.Exists() {
		if required {
			c.fail(path, "is required")
		}
		return "", false
	}
	if value.Type != gjson.String {
		c.fail(path, "must be a string")
		return "", false
	}
	return value.Str, true
}

func (c *schemaChecker) nonEmpty(value gjson.Result, path string) (string, bool) {
	s, ok := c.str(value, path, true)
	if !ok {
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		c.fail(path, "must not be empty")
		return "", false
	}
	return s, true
}

func (c *schemaChecker) number(value gjson.Result, path string, required bool, min, max float64) (float64, bool) {
	if !value.Exists() {
		if required {
			c.fail(path, "is required")
		}
		return 0, false
	}
	if value.Type != gjson.Number {
		c.fail(path, "must be a number")
		return 0, false
	}
	if value.Num < min || value.Num > max {
		c.failf(path, "must be between %s and %s", formatBound(min), formatBound(max))
		return 0, false
	}
	return value.Num, true
}

func (c *schemaChecker) integer(value gjson.Result, path string, required bool, min, max float64) {
	n, ok := c.number(value, path, required, min, max)
	if ok && n != math.Trunc(n) {
		c.fail(path, "must be a whole number")
	}
}

func (c *schemaChecker) boolean(value gjson.Result, path string) {
	if value.Exists() && !value.IsBool() {
		c.fail(path, "must be a boolean")
	}
}

func (c *schemaChecker) matches(value gjson.Result, path string, required bool, g grammar) {
	s, ok := c.str(value, path, required)
	if !ok {
		return
	}
	if !g.pattern.MatchString(s) {
		c.fail(path, g.message)
	}
}

func enumMember[T ~string](c *schemaChecker, value gjson.Result, path string, required bool, allowed []T) {
	s, ok := c.str(value, path, required)
	if !ok {
		return
	}
	if !slices.Contains(allowed, T(s)) {
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = string(a)
		}
		c.failf(path, "must be one of %s", strings.Join(names, ", "))
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *schemaChecker) checkTheme(root gjson.Result) {
	_, fields, _ := c.object(root, "", true)

	c.nonEmpty(fields["id"], "id")
	c.checkName(fields["name"])
	if version, ok := c.str(fields["version"], "version", true); ok && !semverRegex.MatchString(version) {
		c.fail("version", "must be a semantic version like 1.0.0")
	}
	c.checkTimestamp(fields["timestamp"])
	c.str(fields["author"], "author", false)

	if members, _, ok := c.object(fields["colors"], "colors", true); ok {
		c.checkColorTokens(members, "colors")
	}
	c.checkSpacing(fields["spacing"], "spacing", true)
	c.checkTypography(fields["typography"], "typography", true)

	if gradients, ok := c.array(fields["gradients"], "gradients", false); ok {
		for i, gradient := range gradients {
			c.checkGradient(gradient, index("gradients", i))
		}
	}
	if shadows, ok := c.array(fields["shadows"], "shadows", false); ok {
		for i, shadow := range shadows {
			c.checkShadow(shadow, index("shadows", i))
		}
	}
	c.checkBorders(fields["borders"])
	c.checkEffects(fields["effects"])

	if animations, _, ok := c.object(fields["animations"], "animations", false); ok {
		for _, m := range animations {
			c.checkAnimation(m.value, join("animations", m.key))
		}
	}
	if backgrounds, _, ok := c.object(fields["backgrounds"], "backgrounds", true); ok {
		for _, m := range backgrounds {
			c.checkBackground(m.value, join("backgrounds", m.key))
		}
	}
	c.checkResponsive(fields["responsive"])
	c.checkMetadata(fields["metadata"])
}

func (c *schemaChecker) checkName(value gjson.Result) {
	name, ok := c.nonEmpty(value, "name")
	if !ok {
		return
	}
	c.collect("name", name)
	if _, dangerous := security.FindPattern(name); dangerous {
		return
	}
	if strings.TrimSpace(name) != name {
		c.fail("name", "must not have leading or trailing whitespace")
		return
	}
	if len(name) > models.MaxThemeNameLength {
		c.failf("name", "must be %d characters or fewer", models.MaxThemeNameLength)
	}
}

func (c *schemaChecker) checkTimestamp(value gjson.Result) {
	if !value.Exists() {
		c.fail("timestamp", "is required")
		return
	}
	if _, err := models.ParseTimestamp(value.Value()); err != nil {
		c.fail("timestamp", err.Error())
	}
}

func (c *schemaChecker) checkColorTokens(members []member, path string) {
	for _, m := range members {
		tokenPath := join(path, m.key)
		if !c.tokenKey(tokenPath, m.key) {
			continue
		}
		_, token, ok := c.object(m.value, tokenPath, true)
		if !ok {
			continue
		}

		value, hasValue := c.str(token["value"], join(tokenPath, "value"), true)
		if hasValue {
			c.collect(tokenPath, value)
		}
		spaceValue := token["space"]
		enumMember(c, spaceValue, join(tokenPath, "space"), true, models.ColorSpaces)
		c.number(token["contrast"], join(tokenPath, "contrast"), false, 1, 21)
		c.str(token["semantic"], join(tokenPath, "semantic"), false)

		if !hasValue || spaceValue.Type != gjson.String {
			continue
		}
		// Injection payloads are reported once, by the security scan.
		if _, dangerous := security.FindPattern(value); dangerous {
			continue
		}
		space := models.ColorSpace(spaceValue.Str)
		if !slices.Contains(models.ColorSpaces, space) {
			continue
		}
		if !models.MatchesColorSpace(value, space) {
			c.failf(join(tokenPath, "value"), "is not a valid %s color", space)
			continue
		}
		if _, err := models.ParseColor(value, space); err != nil {
			c.failf(join(tokenPath, "value"), "is out of range for %s", space)
		}
	}
}

func (c *schemaChecker) checkColorValue(value gjson.Result, path string) {
	s, ok := c.str(value, path, true)
	if !ok {
		return
	}
	if s == "transparent" {
		return
	}
	if _, ok := models.InferColorSpace(s); !ok {
		c.fail(path, "must be a hex, rgb, hsl or oklch color")
	}
}

func (c *schemaChecker) checkSpacing(value gjson.Result, path string, requireSteps bool) {
	members, lookup, ok := c.object(value, path, requireSteps)
	if !ok {
		return
	}
	if requireSteps {
		for _, key := range models.RequiredSpacingKeys {
			if _, present := lookup[key]; !present {
				c.fail(join(path, key), "is required")
			}
		}
	}
	for _, m := range members {
		stepPath := join(path, m.key)
		if c.tokenKey(stepPath, m.key) {
			c.matches(m.value, stepPath, true, dimensionGrammar)
		}
	}
}

func (c *schemaChecker) checkTypography(value gjson.Result, path string, required bool) {
	_, fields, ok := c.object(value, path, required)
	if !ok {
		return
	}
	scales := []struct {
		key     string
		grammar grammar
	}{
		{key: "fontSize", grammar: dimensionGrammar},
		{key: "fontWeight", grammar: fontWeightGrammar},
		{key: "lineHeight", grammar: lineHeightGrammar},
		{key: "letterSpacing", grammar: letterSpacingGrammar},
	}
	for _, scale := range scales {
		scalePath := join(path, scale.key)
		members, _, ok := c.object(fields[scale.key], scalePath, required)
		if !ok {
			continue
		}
		for _, m := range members {
			stepPath := join(scalePath, m.key)
			if c.tokenKey(stepPath, m.key) {
				c.matches(m.value, stepPath, true, scale.grammar)
			}
		}
	}
}

func (c *schemaChecker) checkGradient(value gjson.Result, path string) {
	_, fields, ok := c.object(value, path, true)
	if !ok {
		return
	}
	c.nonEmpty(fields["id"], join(path, "id"))
	c.str(fields["name"], join(path, "name"), true)
	enumMember(c, fields["type"], join(path, "type"), true, []models.GradientType{
		models.GradientLinear, models.GradientRadial, models.GradientConic,
	})
	c.number(fields["angle"], join(path, "angle"), false, 0, 360)
	c.str(fields["position"], join(path, "position"), false)

	stopsPath := join(path, "colors")
	if stops, ok := c.array(fields["colors"], stopsPath, true); ok {
		if len(stops) < 2 {
			c.fail(stopsPath, "must have at least 2 color stops")
		}
		for i, stop := range stops {
			stopPath := index(stopsPath, i)
			_, stopFields, ok := c.object(stop, stopPath, true)
			if !ok {
				continue
			}
			c.checkColorValue(stopFields["color"], join(stopPath, "color"))
			c.number(stopFields["position"], join(stopPath, "position"), true, 0, 100)
		}
	}

	if css, ok := c.str(fields["css"], join(path, "css"), true); ok {
		c.collect(join(path, "css"), css)
	}
}

func (c *schemaChecker) checkShadow(value gjson.Result, path string) {
	_, fields, ok := c.object(value, path, true)
	if !ok {
		return
	}
	c.nonEmpty(fields["id"], join(path, "id"))
	c.str(fields["name"], join(path, "name"), true)
	c.matches(fields["x"], join(path, "x"), true, signedDimensionGrammar)
	c.matches(fields["y"], join(path, "y"), true, signedDimensionGrammar)
	c.matches(fields["blur"], join(path, "blur"), true, dimensionGrammar)
	c.matches(fields["spread"], join(path, "spread"), true, signedDimensionGrammar)
	c.checkColorValue(fields["color"], join(path, "color"))
	c.boolean(fields["inset"], join(path, "inset"))
}

func (c *schemaChecker) checkBorders(value gjson.Result) {
	_, fields, ok := c.object(value, "borders", true)
	if !ok {
		return
	}
	c.matches(fields["radius"], "borders.radius", true, dimensionGrammar)
	c.matches(fields["width"], "borders.width", true, dimensionGrammar)
	enumMember(c, fields["style"], "borders.style", true, models.BorderStyles)
}

func (c *schemaChecker) checkEffects(value gjson.Result) {
	_, fields, ok := c.object(value, "effects", true)
	if !ok {
		return
	}
	c.matches(fields["blur"], "effects.blur", true, dimensionGrammar)
	c.matches(fields["backdropBlur"], "effects.backdropBlur", false, dimensionGrammar)
	c.number(fields["opacity"], "effects.opacity", true, 0, 1)
	c.number(fields["saturate"], "effects.saturate", false, 0, 200)
}

func (c *schemaChecker) checkAnimation(value gjson.Result, path string) {
	_, fields, ok := c.object(value, path, true)
	if !ok {
		return
	}
	c.matches(fields["duration"], join(path, "duration"), true, durationGrammar)
	c.matches(fields["delay"], join(path, "delay"), false, durationGrammar)
	if easing, ok := c.str(fields["easing"], join(path, "easing"), true); ok {
		if !slices.Contains(models.AnimationEasings, easing) && !cubicBezierRegex.MatchString(easing) {
			c.fail(join(path, "easing"), "must be a named easing or cubic-bezier()")
		}
	}
}

func (c *schemaChecker) checkBackground(value gjson.Result, path string) {
	_, fields, ok := c.object(value, path, true)
	if !ok {
		return
	}
	typePath := join(path, "type")
	kind, ok := c.str(fields["type"], typePath, true)
	if !ok {
		return
	}
	if !slices.Contains(models.BackgroundTypes, models.BackgroundType(kind)) {
		c.fail(typePath, "must be one of gradient, solid, image")
		return
	}

	for _, other := range models.BackgroundTypes {
		if string(other) == kind {
			continue
		}
		if fields[string(other)].Exists() {
			c.failf(join(path, string(other)), "must not be set when type is %s", kind)
		}
	}

	payloadPath := join(path, kind)
	switch models.BackgroundType(kind) {
	case models.BackgroundGradient:
		c.checkGradient(fields[kind], payloadPath)
	case models.BackgroundSolid:
		_, solid, ok := c.object(fields[kind], payloadPath, true)
		if !ok {
			return
		}
		c.checkColorValue(solid["color"], join(payloadPath, "color"))
	case models.BackgroundImage:
		_, image, ok := c.object(fields[kind], payloadPath, true)
		if !ok {
			return
		}
		urlPath := join(payloadPath, "url")
		if raw, ok := c.str(image["url"], urlPath, true); ok {
			c.collect(urlPath, raw)
			if _, dangerous := security.FindPattern(raw); !dangerous && !wellFormedURL(raw) {
				c.fail(urlPath, "must be an absolute http or https URL")
			}
		}
		c.number(image["opacity"], join(payloadPath, "opacity"), true, 0, 1)
		c.matches(image["blur"], join(payloadPath, "blur"), true, pixelGrammar)
		overlayPath := join(payloadPath, "overlay")
		if _, overlay, ok := c.object(image["overlay"], overlayPath, false); ok {
			c.checkColorValue(overlay["color"], join(overlayPath, "color"))
			c.number(overlay["opacity"], join(overlayPath, "opacity"), true, 0, 1)
		}
	}
}

func wellFormedURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func (c *schemaChecker) checkResponsive(value gjson.Result) {
	devices, _, ok := c.object(value, "responsive", false)
	if !ok {
		return
	}
	for _, m := range devices {
		devicePath := join("responsive", m.key)
		if !slices.Contains(models.DeviceTypes, models.DeviceType(m.key)) {
			c.fail(devicePath, "must be one of mobile, tablet, desktop")
			continue
		}
		_, override, ok := c.object(m.value, devicePath, true)
		if !ok {
			continue
		}
		if colors, _, ok := c.object(override["colors"], join(devicePath, "colors"), false); ok {
			c.checkColorTokens(colors, join(devicePath, "colors"))
		}
		c.checkSpacing(override["spacing"], join(devicePath, "spacing"), false)
		c.checkTypography(override["typography"], join(devicePath, "typography"), false)
	}
}

func (c *schemaChecker) checkMetadata(value gjson.Result) {
	_, fields, ok := c.object(value, "metadata", true)
	if !ok {
		return
	}
	c.str(fields["baseTheme"], "metadata.baseTheme", true)
	if tags, ok := c.array(fields["tags"], "metadata.tags", true); ok {
		for i, tag := range tags {
			c.str(tag, index("metadata.tags", i), true)
		}
	}
	if description, ok := c.str(fields["description"], "metadata.description", true); ok {
		c.collect("metadata.description", description)
	}

	// Derived sections are recomputed, but a supplied value still has to be
	// well typed so the decoder accepts it.
	if _, accessibility, ok := c.object(fields["accessibility"], "metadata.accessibility", false); ok {
		enumMember(c, accessibility["wcagLevel"], "metadata.accessibility.wcagLevel", false, models.WCAGLevels)
		c.number(accessibility["contrastRatio"], "metadata.accessibility.contrastRatio", false, 0, 21)
		c.boolean(accessibility["reducedMotion"], "metadata.accessibility.reducedMotion")
	}
	if _, performance, ok := c.object(fields["performance"], "metadata.performance", false); ok {
		enumMember(c, performance["tier"], "metadata.performance.tier", false, models.PerformanceTiers)
		c.integer(performance["estimatedSize"], "metadata.performance.estimatedSize", false, 0, float64(models.MaxDocumentBytes))
	}
}
