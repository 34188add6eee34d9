// Package palette extracts representative colours from an image and remaps
// images onto a fixed colour scheme.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/esimov/icoforge/utils"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Method selects the extraction algorithm.
type Method int

const (
	Dominant Method = iota
	KMeans
)

func (m Method) String() string {
	switch m {
	case KMeans:
		return "kmeans"
	default:
		return "dominant"
	}
}

// ParseMethod returns the method named s.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "", "dominant", "dominantcolor":
		return Dominant, nil
	case "kmeans", "k-means":
		return KMeans, nil
	}
	return Dominant, fmt.Errorf("unknown palette method %q", s)
}

type weighted struct {
	col colorful.Color
	w   float64
}

// Extract returns up to k colours representing img, strongest first. The
// k-means method falls back to dominant colours when clustering fails.
func Extract(img image.Image, k int, method Method) []color.NRGBA {
	var cols []colorful.Color
	if method == KMeans {
		cols = kmeansColors(img, k)
	}
	if len(cols) == 0 {
		cols = dominantColors(img, k)
	}

	out := make([]color.NRGBA, 0, len(cols))
	for _, c := range cols {
		out = append(out, toNRGBA(c))
	}
	return out
}

func dominantColors(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1,
		})
	}

	ws := make([]weighted, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		ws = append(ws, weighted{col: col.Clamped(), w: max(c.Weight, 1e-6)})
	}
	return diverse(ws, k)
}

func kmeansColors(img image.Image, k int) []colorful.Color {
	b := img.Bounds()
	if k <= 0 || b.Empty() {
		return nil
	}

	const maxSamples = 12000
	step := 1
	if b.Dx()*b.Dy() > maxSamples {
		step = int(math.Sqrt(float64(b.Dx()*b.Dy())/maxSamples)) + 1
	}

	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			// unpremultiply so translucent edges cluster with their colour
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / float64(a),
				float64(g) / float64(a),
				float64(bl) / float64(a),
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	cc, err := kmeans.New().Partition(dataset, min(k*4, len(dataset)))
	if err != nil || len(cc) == 0 {
		return nil
	}

	ws := make([]weighted, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		ws = append(ws, weighted{col: col, w: float64(len(c.Observations))})
	}
	return diverse(ws, k)
}

// diverse greedily picks k colours, seeded with the heaviest one, trading Lab
// distance to the colours already picked against weight.
func diverse(cands []weighted, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))

	maxW := 0.0
	seed := 0
	for i, c := range cands {
		if c.w > maxW {
			maxW, seed = c.w, i
		}
	}

	picked := []int{seed}
	used := make([]bool, len(cands))
	used[seed] = true

	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, p := range picked {
				minD = min(minD, c.col.DistanceLab(cands[p].col))
			}
			score := minD * (0.55 + 0.45*math.Sqrt(c.w/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, 0, len(picked))
	for _, i := range picked {
		out = append(out, cands[i].col)
	}
	return out
}

// ParseHex converts CSS hex colours to NRGBA.
func ParseHex(hexes []string) ([]color.NRGBA, error) {
	out := make([]color.NRGBA, 0, len(hexes))
	for _, h := range hexes {
		c, err := utils.ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Hex formats c as a CSS hex colour.
func Hex(c color.NRGBA) string {
	col, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	return col.Hex()
}

// SortByLuminance orders colours from darkest to brightest.
func SortByLuminance(cols []color.NRGBA) {
	slices.SortStableFunc(cols, func(a, b color.NRGBA) int {
		la, lb := luminance(a), luminance(b)
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
}

// Enforce remaps img onto the colour scheme: every pixel's luminance picks a
// position on a ramp running from the darkest to the brightest scheme colour,
// blended in Lab space. A single colour tints the image from black. Alpha is
// kept.
func Enforce(img image.Image, scheme []color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if len(scheme) == 0 {
		return dst
	}

	ramp := slices.Clone(scheme)
	SortByLuminance(ramp)
	if len(ramp) == 1 {
		ramp = append([]color.NRGBA{{A: 0xff}}, ramp...)
	}
	stops := make([]colorful.Color, len(ramp))
	for i, c := range ramp {
		stops[i], _ = colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	}

	// 256 luminance levels are enough to cache the whole mapping.
	var lut [256]color.NRGBA
	for l := range lut {
		t := float64(l) / 255 * float64(len(stops)-1)
		i := min(int(t), len(stops)-2)
		lut[l] = toNRGBA(stops[i].BlendLab(stops[i+1], t-float64(i)))
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			m := lut[uint8(luminance(c)+0.5)]
			m.A = c.A
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, m)
		}
	}
	return dst
}

func luminance(c color.NRGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
