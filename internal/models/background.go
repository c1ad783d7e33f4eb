// internal/models/background.go
package models

import (
	"encoding/json"
	"fmt"
)

type BackgroundType string

const (
	BackgroundGradient BackgroundType = "gradient"
	BackgroundSolid    BackgroundType = "solid"
	BackgroundImage    BackgroundType = "image"
)

var BackgroundTypes = []BackgroundType{BackgroundGradient, BackgroundSolid, BackgroundImage}

// Background holds exactly one of the gradient, solid or image payloads.
// The zero value has no payload and is rejected by the validator.
type Background struct {
	variant backgroundVariant
}

type backgroundVariant interface {
	backgroundType() BackgroundType
}

type GradientBackground struct {
	Gradient GradientConfig
}

type SolidBackground struct {
	Color string `json:"color"`
}

type ImageOverlay struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type ImageBackground struct {
	URL     string        `json:"url"`
	Opacity float64       `json:"opacity"`
	Blur    string        `json:"blur"`
	Overlay *ImageOverlay `json:"overlay,omitempty"`
}

func (GradientBackground) backgroundType() BackgroundType { return BackgroundGradient }
func (SolidBackground) backgroundType() BackgroundType    { return BackgroundSolid }
func (ImageBackground) backgroundType() BackgroundType    { return BackgroundImage }

func NewGradientBackground(gradient GradientConfig) Background {
	return Background{variant: GradientBackground{Gradient: gradient}}
}

func NewSolidBackground(color string) Background {
	return Background{variant: SolidBackground{Color: color}}
}

func NewImageBackground(image ImageBackground) Background {
	return Background{variant: image}
}

// Type returns the discriminant, or "" for the zero value.
func (b Background) Type() BackgroundType {
	if b.variant == nil {
		return ""
	}
	return b.variant.backgroundType()
}

func (b Background) Gradient() (GradientConfig, bool) {
	v, ok := b.variant.(GradientBackground)
	return v.Gradient, ok
}

func (b Background) Solid() (SolidBackground, bool) {
	v, ok := b.variant.(SolidBackground)
	return v, ok
}

func (b Background) Image() (ImageBackground, bool) {
	v, ok := b.variant.(ImageBackground)
	return v, ok
}

func (b Background) Clone() Background {
	switch v := b.variant.(type) {
	case GradientBackground:
		return NewGradientBackground(v.Gradient.Clone())
	case ImageBackground:
		if v.Overlay != nil {
			overlay := *v.Overlay
			v.Overlay = &overlay
		}
		return NewImageBackground(v)
	default:
		return b
	}
}

type backgroundJSON struct {
	Type     BackgroundType   `json:"type"`
	Gradient *GradientConfig  `json:"gradient,omitempty"`
	Solid    *SolidBackground `json:"solid,omitempty"`
	Image    *ImageBackground `json:"image,omitempty"`
}

func (b Background) MarshalJSON() ([]byte, error) {
	out := backgroundJSON{Type: b.Type()}
	switch v := b.variant.(type) {
	case GradientBackground:
		out.Gradient = &v.Gradient
	case SolidBackground:
		out.Solid = &v
	case ImageBackground:
		out.Image = &v
	default:
		return nil, fmt.Errorf("background has no payload")
	}
	return json.Marshal(out)
}

func (b *Background) UnmarshalJSON(data []byte) error {
	var in backgroundJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Type {
	case BackgroundGradient:
		if in.Gradient == nil {
			return fmt.Errorf("gradient background requires a gradient payload")
		}
		*b = NewGradientBackground(*in.Gradient)
	case BackgroundSolid:
		if in.Solid == nil {
			return fmt.Errorf("solid background requires a solid payload")
		}
		*b = NewSolidBackground(in.Solid.Color)
	case BackgroundImage:
		if in.Image == nil {
			return fmt.Errorf("image background requires an image payload")
		}
		*b = NewImageBackground(*in.Image)
	default:
		return fmt.Errorf("unknown background type %q", in.Type)
	}
	return nil
}
