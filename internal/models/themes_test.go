package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestIsHexColor(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "empty", value: "", want: false},
		{name: "whitespace", value: "   ", want: false},
		{name: "missing_hash", value: "AABBCC", want: false},
		{name: "short_hex", value: "#ABC", want: true},
		{name: "alpha_hex", value: "#AABBCCDD", want: true},
		{name: "five_digits", value: "#AABBC", want: false},
		{name: "invalid_char", value: "#AABBCG", want: false},
		{name: "lowercase_hex", value: "#aabbcc", want: true},
		{name: "uppercase_hex", value: "#AABBCC", want: true},
		{name: "trimmed_hex", value: "  #AABBCC  ", want: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsHexColor(test.value); got != test.want {
				t.Fatalf("IsHexColor(%q) = %t, want %t", test.value, got, test.want)
			}
		})
	}
}

func TestMatchesColorSpace(t *testing.T) {
	tests := []struct {
		value string
		space ColorSpace
		want  bool
	}{
		{value: "rgb(255, 0, 12)", space: ColorSpaceRGB, want: true},
		{value: "rgba(255,0,12,0.5)", space: ColorSpaceRGB, want: true},
		{value: "rgb(100%, 0, 0)", space: ColorSpaceRGB, want: false},
		{value: "hsl(210, 40%, 50%)", space: ColorSpaceHSL, want: true},
		{value: "hsla(210deg, 40%, 50%, 0.3)", space: ColorSpaceHSL, want: true},
		{value: "hsl(210, 40, 50)", space: ColorSpaceHSL, want: false},
		{value: "oklch(0.7 0.1 200)", space: ColorSpaceOKLCH, want: true},
		{value: "oklch(0.7 0.1 200 / 0.5)", space: ColorSpaceOKLCH, want: true},
		{value: "oklch(0.7, 0.1, 200)", space: ColorSpaceOKLCH, want: false},
		{value: "#fff", space: ColorSpaceRGB, want: false},
	}

	for _, test := range tests {
		if got := MatchesColorSpace(test.value, test.space); got != test.want {
			t.Fatalf("MatchesColorSpace(%q, %s) = %t, want %t", test.value, test.space, got, test.want)
		}
	}
}

func TestTokenContrastRatio(t *testing.T) {
	tests := []struct {
		name string
		fg   ColorToken
		bg   ColorToken
		want float64
	}{
		{
			name: "black_on_white",
			fg:   ColorToken{Value: "#000000", Space: ColorSpaceHex},
			bg:   ColorToken{Value: "#ffffff", Space: ColorSpaceHex},
			want: 21,
		},
		{
			name: "short_hex_matches_long",
			fg:   ColorToken{Value: "#000", Space: ColorSpaceHex},
			bg:   ColorToken{Value: "#fff", Space: ColorSpaceHex},
			want: 21,
		},
		{
			name: "rgb_and_hsl",
			fg:   ColorToken{Value: "rgb(0, 0, 0)", Space: ColorSpaceRGB},
			bg:   ColorToken{Value: "hsl(0, 0%, 100%)", Space: ColorSpaceHSL},
			want: 21,
		},
		{
			name: "identical",
			fg:   ColorToken{Value: "#777777", Space: ColorSpaceHex},
			bg:   ColorToken{Value: "#777777", Space: ColorSpaceHex},
			want: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := TokenContrastRatio(test.fg, test.bg)
			if err != nil {
				t.Fatalf("TokenContrastRatio() error = %v", err)
			}
			if math.Abs(got-test.want) > 0.01 {
				t.Fatalf("TokenContrastRatio() = %.3f, want %.3f", got, test.want)
			}
		})
	}
}

func TestOKLCHLuminanceOrdering(t *testing.T) {
	dark, err := ParseColor("oklch(0.2 0.05 250)", ColorSpaceOKLCH)
	if err != nil {
		t.Fatalf("ParseColor() error = %v", err)
	}
	light, err := ParseColor("oklch(95 0.02 250)", ColorSpaceOKLCH)
	if err != nil {
		t.Fatalf("ParseColor() error = %v", err)
	}
	if RelativeLuminance(dark) >= RelativeLuminance(light) {
		t.Fatalf("expected dark oklch to have lower luminance than light oklch")
	}
}

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	var m OrderedMap[string]
	m.Set("zeta", "1")
	m.Set("alpha", "2")
	m.Set("mid", "3")
	m.Set("zeta", "4")

	if got := strings.Join(m.Keys(), ","); got != "zeta,alpha,mid" {
		t.Fatalf("keys = %s", got)
	}
	if v, _ := m.Get("zeta"); v != "4" {
		t.Fatalf("zeta = %s, want 4", v)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"zeta":"4","alpha":"2","mid":"3"}` {
		t.Fatalf("marshal = %s", data)
	}

	var decoded OrderedMap[string]
	if err := json.Unmarshal([]byte(`{"b":"1","a":"2","c":"3"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := strings.Join(decoded.Keys(), ","); got != "b,a,c" {
		t.Fatalf("decoded keys = %s", got)
	}

	decoded.Delete("a")
	if got := strings.Join(decoded.Keys(), ","); got != "b,c" {
		t.Fatalf("keys after delete = %s", got)
	}
}

func TestOrderedMapCloneIsIndependent(t *testing.T) {
	original := NewOrderedMap[string]()
	original.Set("a", "1")
	clone := original.Clone()
	clone.Set("b", "2")
	clone.Set("a", "changed")

	if original.Len() != 1 {
		t.Fatalf("original length = %d, want 1", original.Len())
	}
	if v, _ := original.Get("a"); v != "1" {
		t.Fatalf("original a = %s, want 1", v)
	}
}

func TestBackgroundJSON(t *testing.T) {
	input := `{"type":"image","image":{"url":"https://cdn.example.com/bg.png","opacity":0.8,"blur":"4px","overlay":{"color":"#000000","opacity":0.3}}}`

	var background Background
	if err := json.Unmarshal([]byte(input), &background); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if background.Type() != BackgroundImage {
		t.Fatalf("type = %s, want image", background.Type())
	}
	image, ok := background.Image()
	if !ok || image.Overlay == nil || image.Blur != "4px" {
		t.Fatalf("unexpected image payload: %+v", image)
	}
	if _, ok := background.Gradient(); ok {
		t.Fatalf("image background must not expose a gradient payload")
	}

	var missing Background
	if err := json.Unmarshal([]byte(`{"type":"gradient"}`), &missing); err == nil {
		t.Fatalf("expected error for gradient background without payload")
	}
}

func TestTimestampAcceptsEpochMillis(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`1700000000000`), &ts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.UnixMilli(1700000000000).UTC()
	if !ts.Equal(want) {
		t.Fatalf("timestamp = %s, want %s", ts.Time, want)
	}

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2023-11-14T22:13:20Z"` {
		t.Fatalf("marshal = %s", data)
	}
}

func TestParseTimestampEpochBounds(t *testing.T) {
	tests := []struct {
		name    string
		millis  float64
		wantErr bool
	}{
		{name: "last millisecond of 9999", millis: 253402300799999},
		{name: "first millisecond of 10000", millis: 253402300800000, wantErr: true},
		{name: "start of year 0", millis: -62167219200000},
		{name: "before year 0", millis: -62167219200001, wantErr: true},
		{name: "huge", millis: 1e300, wantErr: true},
		{name: "not a number", millis: math.NaN(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.millis)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", ts.Time)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp() error = %v", err)
			}

			data, err := json.Marshal(ts)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var back Timestamp
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("re-parse %s: %v", data, err)
			}
			if !back.Equal(ts.Time) {
				t.Fatalf("round trip = %s, want %s", back.Time, ts.Time)
			}
		})
	}
}

func TestIsTokenKey(t *testing.T) {
	for _, key := range []string{"primary", "2xl", "brand_accent-2", "A"} {
		if !IsTokenKey(key) {
			t.Fatalf("expected %q to be accepted", key)
		}
	}
	for _, key := range []string{"", "a b", "x:y", "a}", "--y;", "é"} {
		if IsTokenKey(key) {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestDefaultThemeCloneIsDeep(t *testing.T) {
	theme := DefaultTheme()
	clone := theme.Clone()
	clone.Colors.Set("foreground", ColorToken{Value: "#123456", Space: ColorSpaceHex})
	clone.Metadata.Tags = append(clone.Metadata.Tags, "changed")

	fg, _ := theme.Colors.Get("foreground")
	if fg.Value != "#000000" {
		t.Fatalf("clone edit leaked into original: %s", fg.Value)
	}
	if len(theme.Metadata.Tags) != 0 {
		t.Fatalf("clone tags leaked into original: %v", theme.Metadata.Tags)
	}
}
