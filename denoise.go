package icoforge

import (
	"image"
	"math"
)

// Denoise smooths flat regions while preserving edges. Each visible pixel is
// replaced by the average of its 3x3 neighbourhood, skipping neighbours whose
// colour differs by more than a threshold derived from intensity (0-100).
func Denoise(src *image.NRGBA, intensity float64) *image.NRGBA {
	dst := Clone(src)
	if intensity <= 0 {
		return dst
	}
	threshold := 10 + 0.9*math.Min(intensity, 100)
	t2 := threshold * threshold

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			if src.Pix[i+3] == 0 {
				continue
			}
			r0, g0, b0 := src.Pix[i], src.Pix[i+1], src.Pix[i+2]

			var sr, sg, sb, n float64
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					j := src.PixOffset(b.Min.X+nx, b.Min.Y+ny)
					if src.Pix[j+3] == 0 {
						continue
					}
					if rgbDist2(src.Pix[j], src.Pix[j+1], src.Pix[j+2], r0, g0, b0) > t2 {
						continue
					}
					sr += float64(src.Pix[j])
					sg += float64(src.Pix[j+1])
					sb += float64(src.Pix[j+2])
					n++
				}
			}
			k := dst.PixOffset(x, y)
			dst.Pix[k] = uint8(sr/n + 0.5)
			dst.Pix[k+1] = uint8(sg/n + 0.5)
			dst.Pix[k+2] = uint8(sb/n + 0.5)
		}
	}
	return dst
}
