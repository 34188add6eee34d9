package icoforge

import (
	"image"
	"image/color"
)

// Luminance returns the Rec. 601 luma of c, ignoring alpha.
func Luminance(c color.NRGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// lumaPlane returns the per-pixel luminance of src composited over white, so
// transparent regions read as paper rather than black.
func lumaPlane(src *image.NRGBA) []float64 {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	plane := make([]float64, w*h)

	for y := 0; y < h; y++ {
		i := y * src.Stride
		for x := 0; x < w; x++ {
			a := float64(src.Pix[i+3]) / 255
			lum := Luminance(color.NRGBA{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2]})
			plane[y*w+x] = lum*a + 255*(1-a)
			i += 4
		}
	}
	return plane
}

// Grayscale converts the image to grayscale, keeping the alpha channel.
func Grayscale(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	for i := 0; i < len(src.Pix); i += 4 {
		lum := uint8(Luminance(color.NRGBA{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2]}) + 0.5)
		dst.Pix[i] = lum
		dst.Pix[i+1] = lum
		dst.Pix[i+2] = lum
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}
