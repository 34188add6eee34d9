package icoforge

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/esimov/icoforge/utils"
)

// ringStamp unions copies of mask shifted to points on a circle of the given
// radius and paints the union with c.
type ringStamp struct {
	steps  int
	radius float64
	// radiusAt overrides the radius per angle when set.
	radiusAt func(angle float64) float64
	// snap rounds offsets to multiples of snap pixels when greater than one.
	snap   int
	jitter float64
	rng    *rand.Rand
}

func (rs ringStamp) render(mask *image.NRGBA, c color.NRGBA) *image.NRGBA {
	b := mask.Bounds()
	plane := newAlphaPlane(b.Dx(), b.Dy())
	seen := make(map[image.Point]struct{}, rs.steps)

	for i := 0; i < rs.steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(rs.steps)
		r := rs.radius
		if rs.radiusAt != nil {
			r = rs.radiusAt(angle)
		}
		ox, oy := math.Cos(angle)*r, math.Sin(angle)*r
		if rs.jitter > 0 && rs.rng != nil {
			ox += (rs.rng.Float64() - 0.5) * rs.jitter
			oy += (rs.rng.Float64() - 0.5) * rs.jitter
		}
		if rs.snap > 1 {
			s := float64(rs.snap)
			ox = math.Round(ox/s) * s
			oy = math.Round(oy/s) * s
		}
		pt := image.Pt(int(math.Round(ox)), int(math.Round(oy)))
		if _, ok := seen[pt]; ok {
			continue
		}
		seen[pt] = struct{}{}
		plane.stamp(mask, pt.X, pt.Y)
	}
	return plane.fill(c)
}

// outlineLayer builds the outline ring for mask. unit converts reference
// lengths to canvas pixels.
func outlineLayer(mask *image.NRGBA, fx Effects, unit float64, rng *rand.Rand) *image.NRGBA {
	thickness := fx.OutlineWidth * unit
	rs := ringStamp{
		steps:  36,
		radius: thickness,
		jitter: fx.OutlineNoise * unit * 0.5,
		rng:    rng,
	}

	switch fx.OutlineStyle {
	case OutlineDotted:
		rs.steps = 12
	case OutlineWavy:
		amp := utils.Clamp(fx.WaveAmplitude, 0, 1)
		freq := math.Max(1, math.Round(fx.WaveFrequency))
		rs.steps = 72
		rs.radiusAt = func(angle float64) float64 {
			return thickness * (1 + amp*math.Sin(angle*freq))
		}
	case OutlinePixel:
		rs.snap = utils.Max(1, int(math.Round(thickness/2)))
	}

	return rs.render(mask, utils.HexToNRGBA(fx.OutlineColor, fx.OutlineOpacity))
}

// stickerLayers returns the thick white sticker border and the hard shadow
// cast by it.
func stickerLayers(mask *image.NRGBA, unit float64) (border, shadow *image.NRGBA) {
	rs := ringStamp{steps: 36, radius: 8 * unit}
	border = rs.render(mask, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	shadow = Silhouette(border, color.NRGBA{A: 0x4d})
	return border, shadow
}
