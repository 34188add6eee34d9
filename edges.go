package icoforge

import (
	"image"
	"math"
)

// Lineart traces the edges of src. A pixel whose 4-neighbour luminance
// gradient exceeds threshold becomes opaque black, every other pixel becomes
// transparent. Transparent source pixels are read as white.
func Lineart(src *image.NRGBA, threshold float64) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := NewCanvas(w, h)
	lum := lumaPlane(src)

	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return lum[y*w+x]
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y) - at(x-1, y)
			gy := at(x, y+1) - at(x, y-1)
			if math.Hypot(gx, gy) > threshold {
				i := dst.PixOffset(x, y)
				dst.Pix[i+3] = 0xff
			}
		}
	}
	return dst
}
