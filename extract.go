package icoforge

import (
	"image"
	"image/color"
	"sort"

	"github.com/esimov/icoforge/utils"
)

// ExtractOptions configures background removal.
type ExtractOptions struct {
	// Tolerance is the Euclidean RGB distance, on a 0-441 scale, under which
	// a pixel is considered background.
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	// Stride is the spacing between border samples.
	Stride int `json:"stride" yaml:"stride"`
	// AlphaFloor marks pixels whose alpha is below it as background.
	AlphaFloor uint8 `json:"alphaFloor" yaml:"alphaFloor"`
	// CanvasSize is the side of the square produced by IsolateAndRecenter.
	CanvasSize int `json:"canvasSize" yaml:"canvasSize"`
	// Fill is the fraction of the canvas covered by the subject's longer side.
	Fill float64 `json:"fill" yaml:"fill"`
	// KeepInterior removes only background connected to the image border.
	KeepInterior bool `json:"keepInterior" yaml:"keepInterior"`
}

// DefaultExtractOptions returns the options used when none are given.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Tolerance:  100,
		Stride:     4,
		AlphaFloor: 10,
		CanvasSize: 1024,
		Fill:       0.9,
	}
}

func (o ExtractOptions) normalize() ExtractOptions {
	def := DefaultExtractOptions()
	if o.Tolerance <= 0 {
		o.Tolerance = def.Tolerance
	}
	if o.Stride <= 0 {
		o.Stride = def.Stride
	}
	if o.CanvasSize <= 0 {
		o.CanvasSize = def.CanvasSize
	}
	if o.Fill <= 0 || o.Fill > 1 {
		o.Fill = def.Fill
	}
	return o
}

// EstimateBackground samples the four borders of img every stride pixels and
// returns the median sample, ordered by the sum of its RGB channels. The
// median keeps a few outliers from skewing the estimate.
func EstimateBackground(img *image.NRGBA, stride int) color.NRGBA {
	b := img.Bounds()
	if b.Empty() {
		return color.NRGBA{}
	}
	stride = utils.Max(1, stride)

	samples := make([]color.NRGBA, 0, 2*(b.Dx()+b.Dy())/stride+4)
	for x := b.Min.X; x < b.Max.X; x += stride {
		samples = append(samples, img.NRGBAAt(x, b.Min.Y), img.NRGBAAt(x, b.Max.Y-1))
	}
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		samples = append(samples, img.NRGBAAt(b.Min.X, y), img.NRGBAAt(b.Max.X-1, y))
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return rgbSum(samples[i]) < rgbSum(samples[j])
	})
	return samples[len(samples)/2]
}

func rgbSum(c color.NRGBA) int {
	return int(c.R) + int(c.G) + int(c.B)
}

// rgbDist2 returns the squared Euclidean distance between the RGB channels.
func rgbDist2(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := float64(r1) - float64(r2)
	dg := float64(g1) - float64(g2)
	db := float64(b1) - float64(b2)
	return dr*dr + dg*dg + db*db
}

// Isolate zeroes the alpha of every background pixel of img in place and
// removes isolated opaque pixels left behind. It returns the bounding box of
// the surviving pixels, or false when nothing survived.
func Isolate(img *image.NRGBA, opts ExtractOptions) (image.Rectangle, bool) {
	opts = opts.normalize()
	b := img.Bounds()
	if b.Empty() {
		return image.Rectangle{}, false
	}
	w, h := b.Dx(), b.Dy()
	bg := EstimateBackground(img, opts.Stride)
	tol2 := opts.Tolerance * opts.Tolerance

	isBackground := func(x, y int) bool {
		i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
		p := img.Pix[i : i+4 : i+4]
		return p[3] < opts.AlphaFloor || rgbDist2(p[0], p[1], p[2], bg.R, bg.G, bg.B) < tol2
	}

	if opts.KeepInterior {
		for _, idx := range floodBorder(w, h, isBackground) {
			img.Pix[img.PixOffset(b.Min.X+idx%w, b.Min.Y+idx/w)+3] = 0
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
				if img.Pix[i+3] < opts.AlphaFloor {
					img.Pix[i+3] = 0
				}
			}
		}
	} else {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if isBackground(x, y) {
					img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3] = 0
				}
			}
		}
	}

	removeIslands(img)
	return OpaqueBounds(img, 0)
}

// floodBorder returns the indices of background pixels 4-connected to the
// image border.
func floodBorder(w, h int, isBackground func(x, y int) bool) []int {
	seen := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))
	var out []int

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		idx := y*w + x
		if seen[idx] {
			return
		}
		seen[idx] = true
		if isBackground(x, y) {
			queue = append(queue, idx)
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(queue) > 0 {
		idx := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		out = append(out, idx)

		x, y := idx%w, idx/w
		push(x+1, y)
		push(x-1, y)
		push(x, y+1)
		push(x, y-1)
	}
	return out
}

// removeIslands clears opaque pixels that have no opaque 4-connected neighbour.
func removeIslands(img *image.NRGBA) {
	b := img.Bounds()
	opaque := func(x, y int) bool {
		if x < b.Min.X || y < b.Min.Y || x >= b.Max.X || y >= b.Max.Y {
			return false
		}
		return img.Pix[img.PixOffset(x, y)+3] > 0
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !opaque(x, y) {
				continue
			}
			if !opaque(x+1, y) && !opaque(x-1, y) && !opaque(x, y+1) && !opaque(x, y-1) {
				img.Pix[img.PixOffset(x, y)+3] = 0
			}
		}
	}
}

// IsolateAndRecenter removes the background of a copy of img, crops it to the
// subject and scales the subject uniformly so its longer side covers Fill of
// a CanvasSize square, centred. Resampling picks the nearest pixel so no
// blurred background halo comes back. When no subject is found the isolated,
// fully transparent copy is returned as is.
func IsolateAndRecenter(img image.Image, opts ExtractOptions) *image.NRGBA {
	out, _ := isolateAndRecenter(img, opts)
	return out
}

func isolateAndRecenter(img image.Image, opts ExtractOptions) (*image.NRGBA, bool) {
	opts = opts.normalize()
	src := Clone(img)

	bbox, ok := Isolate(src, opts)
	if !ok {
		return src, false
	}

	size := float64(opts.CanvasSize)
	bw, bh := float64(bbox.Dx()), float64(bbox.Dy())
	scale := opts.Fill * size / max(bw, bh)
	dw, dh := bw*scale, bh*scale

	dst := NewCanvas(opts.CanvasSize, opts.CanvasSize)
	DrawScaled(dst,
		Rect{X: (size - dw) / 2, Y: (size - dh) / 2, W: dw, H: dh},
		src,
		Rect{X: float64(bbox.Min.X), Y: float64(bbox.Min.Y), W: bw, H: bh},
		false,
	)
	return dst, true
}
