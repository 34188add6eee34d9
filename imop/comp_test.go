package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComp_Basic(t *testing.T) {
	assert := assert.New(t)

	assert.True(SrcAtop.Valid())
	assert.True(DstOver.Valid())
	assert.False(Op("unsupported_composite_operation").Valid())
}

func TestComp_Ops(t *testing.T) {
	transparent := color.NRGBA{}
	cyan := color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	magenta := color.NRGBA{R: 233, G: 30, B: 99, A: 255}

	rect := image.Rect(0, 0, 10, 10)
	source := image.NewNRGBA(rect)
	draw.Draw(source, image.Rect(0, 4, 6, 10), &image.Uniform{cyan}, image.Point{}, draw.Src)

	// Pick three representative pixels from the generated output. Depending on
	// the operator they hold the source colour, the backdrop colour or nothing.
	testCases := []struct {
		op                            Op
		topRight, bottomLeft, center color.NRGBA
	}{
		{SrcOver, magenta, cyan, cyan},
		{Clear, transparent, transparent, transparent},
		{Copy, transparent, cyan, cyan},
		{Dst, magenta, transparent, magenta},
		{DstOver, magenta, cyan, magenta},
		{SrcIn, transparent, transparent, cyan},
		{DstIn, transparent, transparent, magenta},
		{SrcOut, transparent, cyan, transparent},
		{DstOut, magenta, transparent, transparent},
		{SrcAtop, magenta, transparent, cyan},
		{DstAtop, transparent, cyan, magenta},
		{Xor, magenta, cyan, transparent},
	}

	for _, tc := range testCases {
		t.Run(string(tc.op), func(t *testing.T) {
			backdrop := image.NewNRGBA(rect)
			draw.Draw(backdrop, image.Rect(4, 0, 10, 6), &image.Uniform{magenta}, image.Point{}, draw.Src)

			Draw(backdrop, source, image.Point{}, tc.op, Normal, 1)

			assert.Equal(t, tc.topRight, backdrop.NRGBAAt(9, 0))
			assert.Equal(t, tc.bottomLeft, backdrop.NRGBAAt(0, 9))
			assert.Equal(t, tc.center, backdrop.NRGBAAt(5, 5))
		})
	}
}

func TestComp_DrawOffsetClipsToBounds(t *testing.T) {
	assert := assert.New(t)

	red := color.NRGBA{R: 255, A: 255}
	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	draw.Draw(src, src.Bounds(), &image.Uniform{red}, image.Point{}, draw.Src)

	Draw(dst, src, image.Pt(2, -1), SrcOver, Normal, 1)

	assert.Equal(red, dst.NRGBAAt(2, 0))
	assert.Equal(red, dst.NRGBAAt(3, 1))
	assert.Equal(color.NRGBA{}, dst.NRGBAAt(3, 2))
	assert.Equal(color.NRGBA{}, dst.NRGBAAt(1, 0))
}

func TestComp_Opacity(t *testing.T) {
	black := color.NRGBA{A: 255}
	out := Mix(color.NRGBA{}, black, SrcOver, Normal, 0.5)

	assert.Equal(t, uint8(128), out.A)
	assert.Equal(t, uint8(0), out.R)
}

func TestComp_Fill(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	dst.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 10, B: 10, A: 255})

	Fill(dst, color.NRGBA{R: 255, A: 255}, SrcIn, Normal)

	assert.Equal(t, color.NRGBA{R: 255, A: 255}, dst.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(1, 0))
}
