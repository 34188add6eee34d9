package icoforge

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/esimov/icoforge/utils"
	"github.com/lucasb-eyer/go-colorful"
)

// Grade applies brightness, contrast, saturation and hue rotation in that
// order. Brightness, contrast and saturation are percentages where 100 leaves
// the image unchanged; hue is in degrees. Alpha is preserved.
func Grade(img *image.NRGBA, brightness, contrast, saturation, hue float64) *image.NRGBA {
	hue = math.Mod(hue, 360)
	if brightness == 100 && contrast == 100 && saturation == 100 && hue == 0 {
		return Clone(img)
	}
	bf := math.Max(0, brightness) / 100
	cf := math.Max(0, contrast) / 100
	sf := math.Max(0, saturation) / 100
	needHSV := sf != 1 || hue != 0

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.A == 0 {
			return c
		}
		r := float64(c.R) * bf
		g := float64(c.G) * bf
		b := float64(c.B) * bf

		r = (r-127.5)*cf + 127.5
		g = (g-127.5)*cf + 127.5
		b = (b-127.5)*cf + 127.5

		if needHSV {
			col := colorful.Color{
				R: utils.Clamp(r/255, 0, 1),
				G: utils.Clamp(g/255, 0, 1),
				B: utils.Clamp(b/255, 0, 1),
			}
			h, s, v := col.Hsv()
			h = math.Mod(h+hue+360, 360)
			s = utils.Clamp(s*sf, 0, 1)
			col = colorful.Hsv(h, s, v)
			r, g, b = col.R*255, col.G*255, col.B*255
		}

		return color.NRGBA{
			R: utils.ClampUint8(r),
			G: utils.ClampUint8(g),
			B: utils.ClampUint8(b),
			A: c.A,
		}
	})
}

// Tint repaints every pixel of img with the given hue, keeping its
// luminance scaled by level and its alpha.
func Tint(img *image.NRGBA, hue, level float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.A == 0 {
			return c
		}
		v := utils.Clamp(Luminance(c)/255*level, 0, 1)
		col := colorful.Hsv(math.Mod(hue+360, 360), 1, v)
		r, g, b := col.Clamped().RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: c.A}
	})
}

// invertedSilhouette paints c wherever mask is transparent, fading with the
// mask's alpha.
func invertedSilhouette(mask *image.NRGBA, c color.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(mask.Bounds())
	ca := float64(c.A) / 255
	for i := 0; i < len(mask.Pix); i += 4 {
		dst.Pix[i] = c.R
		dst.Pix[i+1] = c.G
		dst.Pix[i+2] = c.B
		dst.Pix[i+3] = utils.ClampUint8(float64(0xff-mask.Pix[i+3]) * ca)
	}
	return dst
}
