// Stackblur implementation based on the algorithm described here:
// http://incubator.quasimondo.com/processing/fast_blur_deluxe.php

package icoforge

import (
	"image"

	"github.com/esimov/icoforge/utils"
)

// maxBlurRadius is the largest radius covered by the lookup tables.
const maxBlurRadius = 254

var mulTable = [...]uint64{
	512, 512, 456, 512, 328, 456, 335, 512, 405, 328, 271, 456, 388, 335, 292, 512,
	454, 405, 364, 328, 298, 271, 496, 456, 420, 388, 360, 335, 312, 292, 273, 512,
	482, 454, 428, 405, 383, 364, 345, 328, 312, 298, 284, 271, 259, 496, 475, 456,
	437, 420, 404, 388, 374, 360, 347, 335, 323, 312, 302, 292, 282, 273, 265, 512,
	497, 482, 468, 454, 441, 428, 417, 405, 394, 383, 373, 364, 354, 345, 337, 328,
	320, 312, 305, 298, 291, 284, 278, 271, 265, 259, 507, 496, 485, 475, 465, 456,
	446, 437, 428, 420, 412, 404, 396, 388, 381, 374, 367, 360, 354, 347, 341, 335,
	329, 323, 318, 312, 307, 302, 297, 292, 287, 282, 278, 273, 269, 265, 261, 512,
	505, 497, 489, 482, 475, 468, 461, 454, 447, 441, 435, 428, 422, 417, 411, 405,
	399, 394, 389, 383, 378, 373, 368, 364, 359, 354, 350, 345, 341, 337, 332, 328,
	324, 320, 316, 312, 309, 305, 301, 298, 294, 291, 287, 284, 281, 278, 274, 271,
	268, 265, 262, 259, 257, 507, 501, 496, 491, 485, 480, 475, 470, 465, 460, 456,
	451, 446, 442, 437, 433, 428, 424, 420, 416, 412, 408, 404, 400, 396, 392, 388,
	385, 381, 377, 374, 370, 367, 363, 360, 357, 354, 350, 347, 344, 341, 338, 335,
	332, 329, 326, 323, 320, 318, 315, 312, 310, 307, 304, 302, 299, 297, 294, 292,
	289, 287, 285, 282, 280, 278, 275, 273, 271, 269, 267, 265, 263, 261, 259,
}

var shgTable = [...]uint64{
	9, 11, 12, 13, 13, 14, 14, 15, 15, 15, 15, 16, 16, 16, 16, 17,
	17, 17, 17, 17, 17, 17, 18, 18, 18, 18, 18, 18, 18, 18, 18, 19,
	19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 20, 20, 20,
	20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 21,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
}

// Stackblur returns a blurred copy of img. The radius is clamped to
// [0, 254]; a zero radius returns an unmodified copy.
//
// Channels are averaged without premultiplication, so the colour of fully
// transparent pixels leaks into the result. Blur silhouettes, whose colour is
// constant, rather than arbitrary artwork.
func Stackblur(img *image.NRGBA, radius int) *image.NRGBA {
	dst := Clone(img)
	radius = utils.Clamp(radius, 0, maxBlurRadius)
	if radius == 0 {
		return dst
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	if w == 0 || h == 0 {
		return dst
	}

	line := make([][4]uint64, utils.Max(w, h))
	stack := make([][4]uint64, 2*radius+1)

	for y := 0; y < h; y++ {
		off := y * dst.Stride
		blurLine(dst.Pix, off, 4, w, radius, line, stack)
	}
	for x := 0; x < w; x++ {
		blurLine(dst.Pix, x*4, dst.Stride, h, radius, line, stack)
	}
	return dst
}

// blurLine runs one stack blur pass over n pixels starting at pix[off],
// stepping step bytes between pixels.
func blurLine(pix []uint8, off, step, n, radius int, line, stack [][4]uint64) {
	for i := 0; i < n; i++ {
		p := off + i*step
		line[i] = [4]uint64{uint64(pix[p]), uint64(pix[p+1]), uint64(pix[p+2]), uint64(pix[p+3])}
	}

	var sum, inSum, outSum [4]uint64
	div := 2*radius + 1
	mul, shg := mulTable[radius], shgTable[radius]

	first := line[0]
	for i := 0; i <= radius; i++ {
		stack[i] = first
		for c := 0; c < 4; c++ {
			sum[c] += first[c] * uint64(i+1)
			outSum[c] += first[c]
		}
	}
	for i := 1; i <= radius; i++ {
		px := line[utils.Min(i, n-1)]
		stack[i+radius] = px
		for c := 0; c < 4; c++ {
			sum[c] += px[c] * uint64(radius+1-i)
			inSum[c] += px[c]
		}
	}

	sp := radius
	for x := 0; x < n; x++ {
		p := off + x*step
		for c := 0; c < 4; c++ {
			pix[p+c] = uint8((sum[c] * mul) >> shg)
			sum[c] -= outSum[c]
		}

		start := sp + div - radius
		if start >= div {
			start -= div
		}
		for c := 0; c < 4; c++ {
			outSum[c] -= stack[start][c]
		}

		px := line[utils.Min(x+radius+1, n-1)]
		stack[start] = px
		for c := 0; c < 4; c++ {
			inSum[c] += px[c]
			sum[c] += inSum[c]
		}

		sp++
		if sp >= div {
			sp = 0
		}
		for c := 0; c < 4; c++ {
			outSum[c] += stack[sp][c]
			inSum[c] -= stack[sp][c]
		}
	}
}
