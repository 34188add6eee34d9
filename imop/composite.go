// Package imop implements the Porter-Duff composition operations together with
// the separable blend modes used for mixing a graphic element with its backdrop.
// The image/draw core package implements only source-over and source; the icon
// effects need source-in, source-atop, destination-over and the screen and overlay
// blends, so each pixel is mixed by an explicit function instead of a drawing
// context flag.
package imop

import (
	"image"
	"image/color"

	"github.com/esimov/icoforge/utils"
)

// Op is a Porter-Duff composition operator.
type Op string

const (
	Clear   Op = "clear"
	Copy    Op = "copy"
	Dst     Op = "dst"
	SrcOver Op = "src_over"
	DstOver Op = "dst_over"
	SrcIn   Op = "src_in"
	DstIn   Op = "dst_in"
	SrcOut  Op = "src_out"
	DstOut  Op = "dst_out"
	SrcAtop Op = "src_atop"
	DstAtop Op = "dst_atop"
	Xor     Op = "xor"
)

var ops = []Op{Clear, Copy, Dst, SrcOver, DstOver, SrcIn, DstIn, SrcOut, DstOut, SrcAtop, DstAtop, Xor}

// Valid reports whether op is one of the supported operators.
func (op Op) Valid() bool {
	for _, v := range ops {
		if v == op {
			return true
		}
	}
	return false
}

// factors returns the Fa and Fb coefficients of the operator for the given
// source and backdrop alpha.
func (op Op) factors(as, ab float64) (fa, fb float64) {
	switch op {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	default:
		return 1, 1 - as
	}
}

// Mix composes the source pixel onto the backdrop pixel. The source alpha is
// scaled by opacity, the source colour is first blended with the backdrop
// using mode, then the operator decides how much of each survives.
func Mix(backdrop, source color.NRGBA, op Op, mode Mode, opacity float64) color.NRGBA {
	as := float64(source.A) / 255 * utils.Clamp(opacity, 0, 1)
	ab := float64(backdrop.A) / 255

	sr, sg, sb := float64(source.R)/255, float64(source.G)/255, float64(source.B)/255
	br, bg, bb := float64(backdrop.R)/255, float64(backdrop.G)/255, float64(backdrop.B)/255

	if mode != "" && mode != Normal && ab > 0 {
		sr = (1-ab)*sr + ab*blendChannel(mode, br, sr)
		sg = (1-ab)*sg + ab*blendChannel(mode, bg, sg)
		sb = (1-ab)*sb + ab*blendChannel(mode, bb, sb)
	}

	fa, fb := op.factors(as, ab)
	ao := as*fa + ab*fb
	if ao <= 0 {
		return color.NRGBA{}
	}

	// Premultiplied result, divided back by the output alpha.
	ro := (sr*as*fa + br*ab*fb) / ao
	gro := (sg*as*fa + bg*ab*fb) / ao
	bo := (sb*as*fa + bb*ab*fb) / ao

	return color.NRGBA{
		R: utils.ClampUint8(ro * 255),
		G: utils.ClampUint8(gro * 255),
		B: utils.ClampUint8(bo * 255),
		A: utils.ClampUint8(ao * 255),
	}
}

// Draw composes src onto dst, with the source's top-left corner placed at
// offset. Only the overlapping region is visited unless the operator also
// affects backdrop pixels not covered by the source (src_in, dst_in, src_out,
// dst_atop, copy and clear), in which case the uncovered backdrop is mixed
// with a transparent source as well.
func Draw(dst, src *image.NRGBA, offset image.Point, op Op, mode Mode, opacity float64) {
	db := dst.Bounds()
	sb := src.Bounds()
	area := sb.Sub(sb.Min).Add(offset).Intersect(db)

	for y := area.Min.Y; y < area.Max.Y; y++ {
		si := src.PixOffset(sb.Min.X+area.Min.X-offset.X, sb.Min.Y+y-offset.Y)
		di := dst.PixOffset(area.Min.X, y)
		for x := area.Min.X; x < area.Max.X; x++ {
			s := color.NRGBA{R: src.Pix[si], G: src.Pix[si+1], B: src.Pix[si+2], A: src.Pix[si+3]}
			b := color.NRGBA{R: dst.Pix[di], G: dst.Pix[di+1], B: dst.Pix[di+2], A: dst.Pix[di+3]}
			if s.A != 0 || op.touchesUncovered() {
				setPix(dst.Pix[di:di+4], Mix(b, s, op, mode, opacity))
			}
			si += 4
			di += 4
		}
	}

	if !op.touchesUncovered() {
		return
	}
	for y := db.Min.Y; y < db.Max.Y; y++ {
		for x := db.Min.X; x < db.Max.X; x++ {
			if image.Pt(x, y).In(area) {
				continue
			}
			di := dst.PixOffset(x, y)
			b := color.NRGBA{R: dst.Pix[di], G: dst.Pix[di+1], B: dst.Pix[di+2], A: dst.Pix[di+3]}
			setPix(dst.Pix[di:di+4], Mix(b, color.NRGBA{}, op, mode, opacity))
		}
	}
}

// Fill composes a uniform colour over the whole of dst.
func Fill(dst *image.NRGBA, c color.NRGBA, op Op, mode Mode) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		di := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			px := color.NRGBA{R: dst.Pix[di], G: dst.Pix[di+1], B: dst.Pix[di+2], A: dst.Pix[di+3]}
			setPix(dst.Pix[di:di+4], Mix(px, c, op, mode, 1))
			di += 4
		}
	}
}

// touchesUncovered reports whether a transparent source changes the backdrop.
func (op Op) touchesUncovered() bool {
	switch op {
	case Clear, Copy, SrcIn, DstIn, SrcOut, DstAtop:
		return true
	}
	return false
}

func setPix(p []uint8, c color.NRGBA) {
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}
