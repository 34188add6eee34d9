package icoforge

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/esimov/icoforge/utils"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Rect is a rectangle with fractional coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// bounds returns the smallest integer rectangle enclosing r.
func (r Rect) bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	)
}

// round returns r snapped to the nearest integer rectangle.
func (r Rect) round() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
	)
}

// NewCanvas returns a fully transparent canvas.
func NewCanvas(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// ToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
// The returned image shares memory with img when no conversion is needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.RGBA:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				a := src.Pix[si+3]
				dst.Pix[di+3] = a
				switch a {
				case 0:
				case 0xff:
					copy(dst.Pix[di:di+3], src.Pix[si:si+3])
				default:
					for c := 0; c < 3; c++ {
						dst.Pix[di+c] = uint8((uint32(src.Pix[si+c])*0xff + uint32(a)/2) / uint32(a))
					}
				}
				di += 4
				si += 4
			}
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}

// Clone returns a deep copy of img.
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// DrawScaled resamples the fractional source region sr of src into the
// fractional destination region dr of dst, composing with source-over.
// Nothing outside dr is touched. With smooth disabled both regions snap to
// whole pixels and the nearest neighbour is sampled, which keeps pixel art
// crisp and avoids blurred halos.
func DrawScaled(dst *image.NRGBA, dr Rect, src image.Image, sr Rect, smooth bool) {
	if dr.Empty() || sr.Empty() {
		return
	}
	sb := src.Bounds()
	sr.X += float64(sb.Min.X)
	sr.Y += float64(sb.Min.Y)

	clip := dr.round().Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}
	target := dst.SubImage(clip).(*image.NRGBA)

	if !smooth {
		drawNearest(target, dr.round(), src, sr.round())
		return
	}

	srcRect := sr.bounds().Intersect(sb)
	if srcRect.Empty() {
		return
	}
	sx := dr.W / sr.W
	sy := dr.H / sr.H
	s2d := f64.Aff3{
		sx, 0, dr.X - sr.X*sx,
		0, sy, dr.Y - sr.Y*sy,
	}
	xdraw.CatmullRom.Transform(target, s2d, src, srcRect, xdraw.Over, nil)
}

// drawNearest copies the whole-pixel region sr of src into dr of dst.
// Parts of sr lying outside src stay transparent.
func drawNearest(dst *image.NRGBA, dr image.Rectangle, src image.Image, sr image.Rectangle) {
	if dr.Empty() || sr.Empty() {
		return
	}
	if dr.Size() == sr.Size() {
		xdraw.Draw(dst, dr, src, sr.Min, xdraw.Over)
		return
	}

	in := sr.Intersect(src.Bounds())
	if in.Empty() {
		return
	}
	region := NewCanvas(sr.Dx(), sr.Dy())
	xdraw.Draw(region, in.Sub(sr.Min), src, in.Min, xdraw.Src)

	scaled := imaging.Resize(region, dr.Dx(), dr.Dy(), imaging.NearestNeighbor)
	xdraw.Draw(dst, dr, scaled, image.Point{}, xdraw.Over)
}

// CropF copies the fractional region r of img into a new image sized to the
// rounded region. Regions reaching past the image stay transparent there.
func CropF(img image.Image, r Rect, smooth bool) *image.NRGBA {
	w := utils.Max(1, int(math.Round(r.W)))
	h := utils.Max(1, int(math.Round(r.H)))
	dst := NewCanvas(w, h)
	DrawScaled(dst, Rect{W: float64(w), H: float64(h)}, img, r, smooth)
	return dst
}

// Silhouette returns an image shaped like mask and painted with c. Every pixel
// carries the colour, only alpha varies, so blurring it never bleeds black.
func Silhouette(mask *image.NRGBA, c color.NRGBA) *image.NRGBA {
	b := mask.Bounds()
	dst := image.NewNRGBA(b)
	ca := float64(c.A) / 255
	for i := 0; i < len(mask.Pix); i += 4 {
		dst.Pix[i] = c.R
		dst.Pix[i+1] = c.G
		dst.Pix[i+2] = c.B
		dst.Pix[i+3] = utils.ClampUint8(float64(mask.Pix[i+3]) * ca)
	}
	return dst
}

// OpaqueBounds returns the bounding box of pixels with alpha above threshold.
// The second return value is false when no such pixel exists.
func OpaqueBounds(img *image.NRGBA, threshold uint8) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[i+3] > threshold {
				minX = utils.Min(minX, x)
				maxX = utils.Max(maxX, x)
				minY = utils.Min(minY, y)
				maxY = utils.Max(maxY, y)
			}
			i += 4
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// OpaqueArea counts the pixels with alpha above threshold.
func OpaqueArea(img *image.NRGBA, threshold uint8) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > threshold {
			n++
		}
	}
	return n
}

// alphaPlane is a single channel coverage buffer used to build stamped unions.
type alphaPlane struct {
	w, h int
	a    []uint8
}

func newAlphaPlane(w, h int) *alphaPlane {
	return &alphaPlane{w: w, h: h, a: make([]uint8, w*h)}
}

// stamp unions the alpha of mask, shifted by (dx, dy), into the plane.
func (p *alphaPlane) stamp(mask *image.NRGBA, dx, dy int) {
	for y := 0; y < p.h; y++ {
		sy := y - dy
		if sy < 0 || sy >= p.h {
			continue
		}
		for x := 0; x < p.w; x++ {
			sx := x - dx
			if sx < 0 || sx >= p.w {
				continue
			}
			m := mask.Pix[sy*mask.Stride+sx*4+3]
			if m == 0 {
				continue
			}
			a := p.a[y*p.w+x]
			p.a[y*p.w+x] = uint8(int(a) + int(m) - int(a)*int(m)/255)
		}
	}
}

// fill paints the plane's coverage with c, scaling c's alpha.
func (p *alphaPlane) fill(c color.NRGBA) *image.NRGBA {
	dst := NewCanvas(p.w, p.h)
	ca := float64(c.A) / 255
	for i, a := range p.a {
		if a == 0 {
			continue
		}
		j := i * 4
		dst.Pix[j] = c.R
		dst.Pix[j+1] = c.G
		dst.Pix[j+2] = c.B
		dst.Pix[j+3] = utils.ClampUint8(float64(a) * ca)
	}
	return dst
}
