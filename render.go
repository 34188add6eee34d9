package icoforge

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/esimov/icoforge/imop"
	"github.com/esimov/icoforge/palette"
	"github.com/esimov/icoforge/utils"
)

const (
	// referenceSize is the icon size effect lengths are expressed in.
	referenceSize = 256
	// baseMargin is the share of the target size kept free on every side.
	baseMargin = 0.15
	// maxMargin bounds the auto-fit margin so the subject never vanishes.
	maxMargin = 0.45
	// stickerBorder is the sticker ring radius in reference pixels.
	stickerBorder = 8
)

// CropBox selects a region of the source. Bounds are fractions of the source
// dimensions on a 0-1000 scale.
type CropBox struct {
	Top, Left, Bottom, Right float64
}

func (c CropBox) rect(w, h int) Rect {
	top := utils.Clamp(c.Top, 0, 1000) / 1000 * float64(h)
	left := utils.Clamp(c.Left, 0, 1000) / 1000 * float64(w)
	bottom := utils.Clamp(c.Bottom, 0, 1000) / 1000 * float64(h)
	right := utils.Clamp(c.Right, 0, 1000) / 1000 * float64(w)
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// Margin returns the free space, in pixels, kept around the subject on each
// side of a targetSize canvas. With AutoFit the largest reach of the ring and
// blur effects is added so they stay on the canvas.
func Margin(targetSize int, fx Effects) float64 {
	size := float64(targetSize)
	margin := baseMargin * size
	if fx.AutoFit {
		reach := math.Max(fx.OutlineWidth, fx.GlowBlur)
		if fx.ShadowOpacity > 0 {
			reach = math.Max(reach, fx.ShadowBlur+math.Hypot(fx.ShadowX, fx.ShadowY))
		}
		reach = math.Max(reach, fx.LongShadowLength)
		if fx.StickerMode {
			reach = math.Max(reach, 2*stickerBorder)
		}
		margin += math.Max(0, reach) * size / referenceSize
	}
	return math.Min(margin, maxMargin*size)
}

// Render fits img, or its crop region, into a targetSize square and composes
// the effect stack over it. The steps run in a fixed order: crop, fit,
// pre-enhancement, background scrub or line art, denoise, palette, then
// shadow, glow, sticker, outline, chromatic aberration, the colour graded
// subject and finally the cosmetic overlays.
//
// Brightness, contrast, saturation and hue rotation grade the subject layer
// only. Shadow, glow, sticker border, outline, aberration fringes and the
// overlays drawn afterwards keep their configured colours.
func Render(img image.Image, targetSize int, fx Effects, crop *CropBox) (*image.NRGBA, error) {
	if img == nil {
		return nil, &DecodeError{Err: errors.New("nil image")}
	}
	if targetSize <= 0 {
		return nil, fmt.Errorf("invalid target size %d", targetSize)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}

	src := ToNRGBA(img)
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	sr := Rect{W: float64(sw), H: float64(sh)}
	if crop != nil {
		sr = crop.rect(sw, sh)
	}
	if sr.Empty() {
		return nil, fmt.Errorf("empty source region %+v", sr)
	}

	size := float64(targetSize)
	unit := size / referenceSize
	rng := rand.New(rand.NewSource(fx.Seed))

	drawSize := size - 2*Margin(targetSize, fx)
	scale := math.Min(drawSize/sr.W, drawSize/sr.H)
	dr := Rect{W: sr.W * scale, H: sr.H * scale}
	dr.X = (size - dr.W) / 2
	dr.Y = (size - dr.H) / 2

	mask := NewCanvas(targetSize, targetSize)
	DrawScaled(mask, dr, src, sr, !fx.PixelArt)
	scored := src
	if fx.NormalizeInputs && crop != nil {
		// only the cropped region feeds the fidelity score
		scored = CropF(src, sr, false)
	}
	mask = prepareMask(mask, scored, dr, fx)

	out := NewCanvas(targetSize, targetSize)

	if fx.ShadowOpacity > 0 {
		layer := Silhouette(mask, utils.HexToNRGBA(fx.ShadowColor, fx.ShadowOpacity))
		layer = Stackblur(layer, blurRadius(fx.ShadowBlur, unit))
		offset := image.Pt(int(math.Round(fx.ShadowX*unit)), int(math.Round(fx.ShadowY*unit)))
		imop.Draw(out, layer, offset, imop.DstOver, imop.Normal, 1)
	}

	if fx.GlowBlur > 0 && fx.GlowOpacity > 0 {
		glow := Silhouette(mask, utils.HexToNRGBA(fx.GlowColor, fx.GlowOpacity))
		passes := utils.Max(1, fx.GlowPasses)
		jitter := fx.GlowNoise * unit * 0.5
		for p := 0; p < passes; p++ {
			radius := fx.GlowBlur * (1 + float64(p)/float64(passes))
			var offset image.Point
			if jitter > 0 {
				offset = image.Pt(
					int(math.Round((rng.Float64()-0.5)*jitter)),
					int(math.Round((rng.Float64()-0.5)*jitter)),
				)
			}
			imop.Draw(out, Stackblur(glow, blurRadius(radius, unit)), offset, imop.SrcOver, imop.Normal, 1)
		}
	}

	if fx.StickerMode {
		border, shadow := stickerLayers(mask, unit)
		offset := image.Pt(0, int(math.Round(3*unit)))
		imop.Draw(out, shadow, offset, imop.DstOver, imop.Normal, 1)
		imop.Draw(out, border, image.Point{}, imop.SrcOver, imop.Normal, 1)
	}

	if fx.OutlineWidth > 0 && fx.OutlineOpacity > 0 {
		imop.Draw(out, outlineLayer(mask, fx, unit, rng), image.Point{}, imop.SrcOver, imop.Normal, 1)
	}

	if fx.ChromaticAberration > 0 {
		off := int(math.Round(fx.ChromaticAberration * unit * 0.5))
		imop.Draw(out, Tint(mask, 345, 0.5), image.Pt(-off, 0), imop.SrcOver, imop.Screen, 1)
		imop.Draw(out, Tint(mask, 215, 0.5), image.Pt(off, 0), imop.SrcOver, imop.Screen, 1)
	}

	core := Grade(mask, fx.Brightness, fx.Contrast, fx.Saturation, fx.HueRotate)
	imop.Draw(out, core, image.Point{}, imop.SrcOver, imop.Normal, 1)

	applyOverlays(out, mask, dr, fx, unit, rng)
	return out, nil
}

// prepareMask runs the steps shaping the subject before any effect reads it.
func prepareMask(mask, src *image.NRGBA, dr Rect, fx Effects) *image.NRGBA {
	size := mask.Bounds().Dx()
	sharpness, denoise := fx.Sharpness, fx.Denoise
	if fx.NormalizeInputs {
		k := (100 - Fidelity(src)) / 100
		sharpness *= k
		denoise *= k
	}

	if !fx.PixelArt {
		if fx.EdgeClamping > 0 {
			mask = imaging.Blur(mask, 0.5)
			mask = imaging.AdjustContrast(mask, math.Min(100, 2*fx.EdgeClamping))
		}
		if sharpness > 0 {
			mask = imaging.Sharpen(mask, 0.5+sharpness/100)
			mask = imaging.AdjustContrast(mask, math.Min(100, sharpness))
		}
	}

	if fx.CornerRadius > 0 {
		radius := utils.Clamp(fx.CornerRadius, 0, 100) / 100 * math.Min(dr.W, dr.H) / 2
		imop.Draw(mask, roundedClip(size, dr, radius), image.Point{}, imop.DstIn, imop.Normal, 1)
	}

	if fx.RemoveBackground {
		// only the drawn region carries a background worth sampling
		if sub, ok := mask.SubImage(dr.round()).(*image.NRGBA); ok {
			Isolate(sub, DefaultExtractOptions())
		}
	}
	if fx.Lineart {
		mask = Lineart(mask, fx.LineartThreshold)
	}
	if denoise > 0 {
		mask = Denoise(mask, denoise)
	}
	if len(fx.Palette) > 0 {
		// Validate has already rejected unparsable entries.
		colors, _ := palette.ParseHex(fx.Palette)
		mask = palette.Enforce(mask, colors)
	}
	return mask
}

func applyOverlays(out, mask *image.NRGBA, dr Rect, fx Effects, unit float64, rng *rand.Rand) {
	size := out.Bounds().Dx()

	if fx.InnerGlowBlur > 0 && fx.InnerGlowOpacity > 0 {
		layer := invertedSilhouette(mask, utils.HexToNRGBA(fx.InnerGlowColor, fx.InnerGlowOpacity))
		layer = Stackblur(layer, blurRadius(fx.InnerGlowBlur, unit))
		imop.Draw(layer, mask, image.Point{}, imop.DstIn, imop.Normal, 1)
		imop.Draw(out, layer, image.Point{}, imop.SrcOver, imop.Normal, 1)
	}

	if fx.BevelSize > 0 {
		d := int(math.Round(fx.BevelSize * unit / 2))
		radius := blurRadius(fx.BevelSize, unit)
		light := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x99}
		dark := color.NRGBA{A: 0x66}
		for _, s := range []struct {
			c      color.NRGBA
			offset image.Point
		}{
			{light, image.Pt(d, d)},
			{dark, image.Pt(-d, -d)},
		} {
			edge := Stackblur(invertedSilhouette(mask, s.c), radius)
			layer := NewCanvas(size, size)
			imop.Draw(layer, edge, s.offset, imop.Copy, imop.Normal, 1)
			imop.Draw(layer, mask, image.Point{}, imop.DstIn, imop.Normal, 1)
			imop.Draw(out, layer, image.Point{}, imop.SrcOver, imop.Normal, 1)
		}
	}

	if fx.HalftoneIntensity > 0 {
		halftone(out, fx.HalftoneIntensity, unit, rng)
	}
	if fx.GlassOpacity > 0 {
		wash := NewCanvas(size, size)
		imop.Fill(wash, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: utils.ClampUint8(utils.Clamp(fx.GlassOpacity, 0, 1) * 255)}, imop.Copy, imop.Normal)
		imop.Draw(out, Stackblur(wash, blurRadius(fx.GlassBlur, unit)), image.Point{}, imop.SrcAtop, imop.Normal, 1)
	}
	if fx.Scanlines > 0 {
		scanlines(out, fx.Scanlines, unit)
	}
	if fx.MetallicIntensity > 0 {
		metallic(out, dr, fx.MetallicIntensity)
	}
	if fx.FinishType != "" && fx.FinishType != FinishNone && fx.FinishOpacity > 0 {
		finish(out, dr, fx.FinishType, fx.FinishOpacity)
	}
	if fx.Vignette > 0 {
		vignette(out, fx.Vignette)
	}
	if fx.SheenIntensity > 0 {
		sheen(out, fx.SheenIntensity, fx.SheenAngle)
	}
	if fx.SparkleIntensity > 0 {
		sparkles(out, dr, fx.SparkleIntensity, unit, rng)
	}

	if fx.LongShadowLength > 0 && fx.LongShadowOpacity > 0 {
		b := mask.Bounds()
		plane := newAlphaPlane(b.Dx(), b.Dy())
		length := int(fx.LongShadowLength * unit)
		step := utils.Max(1, int(math.Round(unit)))
		for i := 1; i <= length; i += step {
			plane.stamp(mask, i, i)
		}
		layer := plane.fill(color.NRGBA{A: utils.ClampUint8(fx.LongShadowOpacity * 255)})
		imop.Draw(out, layer, image.Point{}, imop.DstOver, imop.Normal, 1)
	}
}

// blurRadius converts a reference blur length to a stack blur radius.
func blurRadius(blur, unit float64) int {
	return utils.Clamp(int(math.Round(blur*unit)), 0, maxBlurRadius)
}
