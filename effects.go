package icoforge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/esimov/icoforge/palette"
	"github.com/esimov/icoforge/utils"
	"gopkg.in/yaml.v3"
)

// OutlineStyle selects how the outline ring is stamped.
type OutlineStyle string

// Outline styles.
const (
	OutlineSolid  OutlineStyle = "solid"
	OutlineDotted OutlineStyle = "dotted"
	OutlineWavy   OutlineStyle = "wavy"
	OutlinePixel  OutlineStyle = "pixel"
)

// Finish is a premium gradient finish painted over the subject.
type Finish string

// Finishes.
const (
	FinishNone   Finish = "none"
	FinishGold   Finish = "gold"
	FinishSilver Finish = "silver"
	FinishFoil   Finish = "foil"
	FinishHolo   Finish = "holo"
)

// Effects is the flat set of independently toggleable render parameters.
//
// Lengths (outline width, blurs, offsets) are given in pixels of a 256 pixel
// icon and scale with the target size. Intensities are percentages in the
// 0-100 range unless noted, opacities are in the 0-1 range and colours are
// CSS hex strings.
type Effects struct {
	AutoFit      bool    `json:"autoFit" yaml:"autoFit"`
	PixelArt     bool    `json:"pixelArt" yaml:"pixelArt"`
	CornerRadius float64 `json:"cornerRadius" yaml:"cornerRadius"`

	RemoveBackground bool    `json:"removeBackground" yaml:"removeBackground"`
	Lineart          bool    `json:"lineart" yaml:"lineart"`
	LineartThreshold float64 `json:"lineartThreshold" yaml:"lineartThreshold"`
	Denoise          float64 `json:"denoise" yaml:"denoise"`
	Sharpness        float64 `json:"sharpness" yaml:"sharpness"`
	EdgeClamping     float64 `json:"edgeClamping" yaml:"edgeClamping"`
	NormalizeInputs  bool    `json:"normalizeInputs" yaml:"normalizeInputs"`

	ShadowX       float64 `json:"shadowX" yaml:"shadowX"`
	ShadowY       float64 `json:"shadowY" yaml:"shadowY"`
	ShadowBlur    float64 `json:"shadowBlur" yaml:"shadowBlur"`
	ShadowColor   string  `json:"shadowColor" yaml:"shadowColor"`
	ShadowOpacity float64 `json:"shadowOpacity" yaml:"shadowOpacity"`

	LongShadowLength  float64 `json:"longShadowLength" yaml:"longShadowLength"`
	LongShadowOpacity float64 `json:"longShadowOpacity" yaml:"longShadowOpacity"`

	GlowBlur    float64 `json:"glowBlur" yaml:"glowBlur"`
	GlowColor   string  `json:"glowColor" yaml:"glowColor"`
	GlowOpacity float64 `json:"glowOpacity" yaml:"glowOpacity"`
	GlowPasses  int     `json:"glowPasses" yaml:"glowPasses"`
	GlowNoise   float64 `json:"glowNoise" yaml:"glowNoise"`

	StickerMode bool `json:"stickerMode" yaml:"stickerMode"`

	OutlineWidth   float64      `json:"outlineWidth" yaml:"outlineWidth"`
	OutlineColor   string       `json:"outlineColor" yaml:"outlineColor"`
	OutlineOpacity float64      `json:"outlineOpacity" yaml:"outlineOpacity"`
	OutlineStyle   OutlineStyle `json:"outlineStyle" yaml:"outlineStyle"`
	OutlineNoise   float64      `json:"outlineNoise" yaml:"outlineNoise"`
	WaveAmplitude  float64      `json:"waveAmplitude" yaml:"waveAmplitude"`
	WaveFrequency  float64      `json:"waveFrequency" yaml:"waveFrequency"`

	ChromaticAberration float64 `json:"chromaticAberration" yaml:"chromaticAberration"`

	// Brightness, Contrast and Saturation are percentages where 100 is neutral.
	Brightness float64 `json:"brightness" yaml:"brightness"`
	Contrast   float64 `json:"contrast" yaml:"contrast"`
	Saturation float64 `json:"saturation" yaml:"saturation"`
	// HueRotate is in degrees.
	HueRotate float64 `json:"hueRotate" yaml:"hueRotate"`

	InnerGlowBlur    float64 `json:"innerGlowBlur" yaml:"innerGlowBlur"`
	InnerGlowColor   string  `json:"innerGlowColor" yaml:"innerGlowColor"`
	InnerGlowOpacity float64 `json:"innerGlowOpacity" yaml:"innerGlowOpacity"`
	BevelSize        float64 `json:"bevelSize" yaml:"bevelSize"`

	// GlassOpacity washes the subject with blurred white, GlassBlur in effect units.
	GlassBlur    float64 `json:"glassBlur" yaml:"glassBlur"`
	GlassOpacity float64 `json:"glassOpacity" yaml:"glassOpacity"`

	Vignette          float64 `json:"vignette" yaml:"vignette"`
	SheenIntensity    float64 `json:"sheenIntensity" yaml:"sheenIntensity"`
	SheenAngle        float64 `json:"sheenAngle" yaml:"sheenAngle"`
	SparkleIntensity  float64 `json:"sparkleIntensity" yaml:"sparkleIntensity"`
	MetallicIntensity float64 `json:"metallicIntensity" yaml:"metallicIntensity"`
	HalftoneIntensity float64 `json:"halftoneIntensity" yaml:"halftoneIntensity"`
	Scanlines         float64 `json:"scanlines" yaml:"scanlines"`
	FinishType        Finish  `json:"finishType" yaml:"finishType"`
	FinishOpacity     float64 `json:"finishOpacity" yaml:"finishOpacity"`

	// Palette, when set, remaps the rendered subject onto these colours.
	Palette []string `json:"palette,omitempty" yaml:"palette,omitempty"`
	// Seed drives every randomised effect, so equal inputs render equal output.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultEffects returns the stock effect configuration: a soft drop shadow
// under an otherwise untouched, auto-fitted subject.
func DefaultEffects() Effects {
	return Effects{
		AutoFit:           true,
		LineartThreshold:  40,
		ShadowY:           4,
		ShadowBlur:        10,
		ShadowColor:       "#000000",
		ShadowOpacity:     0.3,
		LongShadowOpacity: 0.3,
		GlowColor:         "#4f46e5",
		GlowOpacity:       0.5,
		GlowPasses:        1,
		OutlineColor:      "#ffffff",
		OutlineOpacity:    1,
		OutlineStyle:      OutlineSolid,
		WaveAmplitude:     0.5,
		WaveFrequency:     6,
		Brightness:        100,
		Contrast:          100,
		Saturation:        100,
		InnerGlowColor:    "#ffffff",
		InnerGlowOpacity:  0.5,
		GlassBlur:         4,
		SheenAngle:        45,
		FinishType:        FinishNone,
		FinishOpacity:     0.8,
	}
}

// UnmarshalJSON sets defaults then decodes the JSON structure, so only the
// values present in the document override them.
func (fx *Effects) UnmarshalJSON(data []byte) error {
	*fx = DefaultEffects()
	type Alias Effects
	return json.Unmarshal(data, (*Alias)(fx))
}

// UnmarshalYAML sets defaults then decodes the YAML node.
func (fx *Effects) UnmarshalYAML(node *yaml.Node) error {
	*fx = DefaultEffects()
	type Alias Effects
	return node.Decode((*Alias)(fx))
}

// Validate reports enumerated fields holding unknown values and colours
// that do not parse as css hex strings.
func (fx Effects) Validate() error {
	switch fx.OutlineStyle {
	case "", OutlineSolid, OutlineDotted, OutlineWavy, OutlinePixel:
	default:
		return fmt.Errorf("unknown outline style %q", fx.OutlineStyle)
	}
	switch fx.FinishType {
	case "", FinishNone, FinishGold, FinishSilver, FinishFoil, FinishHolo:
	default:
		return fmt.Errorf("unknown finish %q", fx.FinishType)
	}
	if fx.GlowPasses < 0 {
		return fmt.Errorf("glow passes must not be negative, got %d", fx.GlowPasses)
	}
	for _, c := range []struct{ name, hex string }{
		{"shadow", fx.ShadowColor},
		{"glow", fx.GlowColor},
		{"outline", fx.OutlineColor},
		{"inner glow", fx.InnerGlowColor},
	} {
		if _, err := utils.ParseHex(c.hex); err != nil {
			return fmt.Errorf("%s color: %w", c.name, err)
		}
	}
	if _, err := palette.ParseHex(fx.Palette); err != nil {
		return fmt.Errorf("remap %w", err)
	}
	return nil
}

// LoadEffects reads an effect preset. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON. Missing keys keep their defaults.
func LoadEffects(path string) (Effects, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Effects{}, fmt.Errorf("reading preset: %w", err)
	}

	fx := DefaultEffects()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fx)
	default:
		err = json.Unmarshal(data, &fx)
	}
	if err != nil {
		return Effects{}, fmt.Errorf("parsing preset %s: %w", path, err)
	}
	if err := fx.Validate(); err != nil {
		return Effects{}, fmt.Errorf("preset %s: %w", path, err)
	}
	return fx, nil
}
