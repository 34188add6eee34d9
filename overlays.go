package icoforge

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/esimov/icoforge/imop"
	"github.com/esimov/icoforge/utils"
	"github.com/fogleman/gg"
)

// gradientStop is a colour stop of a linear or radial gradient.
type gradientStop struct {
	pos float64
	c   color.Color
}

var finishStops = map[Finish][]gradientStop{
	FinishGold: {
		{0, color.NRGBA{R: 0xbf, G: 0x95, B: 0x3f, A: 0xff}},
		{0.5, color.NRGBA{R: 0xfc, G: 0xf6, B: 0xba, A: 0xff}},
		{1, color.NRGBA{R: 0xaa, G: 0x77, B: 0x1c, A: 0xff}},
	},
	FinishSilver: {
		{0, color.NRGBA{R: 0x70, G: 0x70, B: 0x70, A: 0xff}},
		{0.5, color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}},
		{1, color.NRGBA{R: 0x70, G: 0x70, B: 0x70, A: 0xff}},
	},
	FinishFoil: {
		{0, color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}},
		{0.5, color.NRGBA{R: 0x00, G: 0x80, B: 0x00, A: 0xff}},
		{1, color.NRGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}},
	},
	FinishHolo: {
		{0, color.NRGBA{R: 0xff, G: 0x00, B: 0x80, A: 0xff}},
		{0.2, color.NRGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}},
		{0.4, color.NRGBA{R: 0x00, G: 0xff, B: 0x80, A: 0xff}},
		{0.6, color.NRGBA{R: 0x00, G: 0xcf, B: 0xff, A: 0xff}},
		{0.8, color.NRGBA{R: 0x80, G: 0x40, B: 0xff, A: 0xff}},
		{1, color.NRGBA{R: 0xff, G: 0x00, B: 0x80, A: 0xff}},
	},
}

// linearGradient paints the rectangle r of a size x size canvas with a
// gradient running from (x0, y0) to (x1, y1).
func linearGradient(size int, r Rect, x0, y0, x1, y1 float64, stops []gradientStop) *image.NRGBA {
	dc := gg.NewContext(size, size)
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	for _, s := range stops {
		grad.AddColorStop(s.pos, s.c)
	}
	dc.SetFillStyle(grad)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Fill()
	return ToNRGBA(dc.Image())
}

// roundedClip returns an opaque rounded rectangle used to clip the subject.
func roundedClip(size int, r Rect, radius float64) *image.NRGBA {
	dc := gg.NewContext(size, size)
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
	dc.Fill()
	return ToNRGBA(dc.Image())
}

func vignette(dst *image.NRGBA, strength float64) {
	size := dst.Bounds().Dx()
	c := float64(size) / 2
	dc := gg.NewContext(size, size)
	grad := gg.NewRadialGradient(c, c, c/2, c, c, c)
	grad.AddColorStop(0, color.Transparent)
	grad.AddColorStop(1, color.NRGBA{A: utils.ClampUint8(strength / 100 * 255)})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()
	imop.Draw(dst, ToNRGBA(dc.Image()), image.Point{}, imop.SrcAtop, imop.Normal, 1)
}

func sheen(dst *image.NRGBA, intensity, angle float64) {
	size := dst.Bounds().Dx()
	s := float64(size)
	rad := angle * math.Pi / 180
	layer := linearGradient(size, Rect{W: s, H: s}, 0, 0, math.Cos(rad)*s, math.Sin(rad)*s, []gradientStop{
		{0, color.Transparent},
		{0.5, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: utils.ClampUint8(intensity / 100 * 255)}},
		{1, color.Transparent},
	})
	imop.Draw(dst, layer, image.Point{}, imop.SrcAtop, imop.Normal, 1)
}

func metallic(dst *image.NRGBA, r Rect, intensity float64) {
	shade := color.NRGBA{A: 0x33}
	layer := linearGradient(dst.Bounds().Dx(), r, r.X, r.Y, r.X+r.W, r.Y+r.H, []gradientStop{
		{0, shade},
		{0.5, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: utils.ClampUint8(intensity / 100 * 255)}},
		{1, shade},
	})
	imop.Draw(dst, layer, image.Point{}, imop.SrcAtop, imop.Overlay, 1)
}

func finish(dst *image.NRGBA, r Rect, kind Finish, opacity float64) {
	stops, ok := finishStops[kind]
	if !ok {
		return
	}
	layer := linearGradient(dst.Bounds().Dx(), r, r.X, r.Y, r.X+r.W, r.Y+r.H, stops)
	imop.Draw(dst, layer, image.Point{}, imop.SrcAtop, imop.Normal, opacity)
}

// sparkles scatters small four-pointed crosses over r.
func sparkles(dst *image.NRGBA, r Rect, intensity, unit float64, rng *rand.Rand) {
	size := dst.Bounds().Dx()
	layer := NewCanvas(size, size)
	thick := utils.Max(1, int(math.Round(unit)))
	star := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	for i := 0; i < int(intensity/2); i++ {
		sx := r.X + rng.Float64()*r.W
		sy := r.Y + rng.Float64()*r.H
		arm := (2 + rng.Float64()*5) * unit

		x0, y0 := int(math.Round(sx)), int(math.Round(sy))
		horiz := image.Rect(int(sx-arm), y0-thick/2, int(sx+arm), y0-thick/2+thick)
		vert := image.Rect(x0-thick/2, int(sy-arm), x0-thick/2+thick, int(sy+arm))
		fillRect(layer, horiz, star)
		fillRect(layer, vert, star)
	}
	imop.Draw(dst, layer, image.Point{}, imop.SrcOver, imop.Screen, 1)
}

// halftone darkens a dotted grid over the subject, dropping dots at random.
func halftone(dst *image.NRGBA, intensity, unit float64, rng *rand.Rand) {
	size := dst.Bounds().Dx()
	layer := NewCanvas(size, size)
	step := utils.Max(2, int(math.Round(8*unit/4)))
	dot := utils.Max(1, step/4)
	ink := color.NRGBA{A: 0x80}

	for y := 0; y < size; y += step {
		for x := 0; x < size; x += step {
			if rng.Float64() < intensity/100 {
				fillRect(layer, image.Rect(x, y, x+dot, y+dot), ink)
			}
		}
	}
	imop.Draw(dst, layer, image.Point{}, imop.SrcAtop, imop.Overlay, 1)
}

// scanlines multiplies every other row band with black.
func scanlines(dst *image.NRGBA, intensity, unit float64) {
	size := dst.Bounds().Dx()
	layer := NewCanvas(size, size)
	band := utils.Max(1, int(math.Round(unit)))
	shade := color.NRGBA{A: utils.ClampUint8(intensity / 100 * 255)}

	for y := 0; y < size; y += 2 * band {
		fillRect(layer, image.Rect(0, y, size, y+band), shade)
	}
	imop.Draw(dst, layer, image.Point{}, imop.SrcAtop, imop.Multiply, 1)
}

// fillRect paints r with c, clipped to img.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[i] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
			i += 4
		}
	}
}
