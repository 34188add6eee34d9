package icoforge

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Fidelity estimates how much native detail img carries, from 0 (a tiny or
// blurry source) to 100. Half of the score comes from the resolution of the
// shorter side, half from the variance of the Laplacian of its luminance.
func Fidelity(img image.Image) float64 {
	src := ToNRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0
	}
	sizeScore := math.Min(1, float64(min(w, h))/512) * 50
	if w < 3 || h < 3 {
		return sizeScore
	}

	lum := lumaPlane(src)
	lap := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			lap = append(lap, lum[i-1]+lum[i+1]+lum[i-w]+lum[i+w]-4*lum[i])
		}
	}
	if len(lap) < 2 {
		return sizeScore
	}
	detailScore := math.Min(1, stat.Variance(lap, nil)/500) * 50

	return sizeScore + detailScore
}
