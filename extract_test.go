package icoforge

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
	black = color.NRGBA{A: 0xff}
)

func fillImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := NewCanvas(w, h)
	fillRect(img, img.Bounds(), c)
	return img
}

func TestExtract_EstimateBackgroundIgnoresOutliers(t *testing.T) {
	img := fillImage(40, 40, white)
	img.SetNRGBA(0, 0, black)
	img.SetNRGBA(8, 0, red)

	bg := EstimateBackground(img, 4)
	assert.Equal(t, white, bg)
}

func TestExtract_IsolateClearsBackground(t *testing.T) {
	img := fillImage(64, 64, white)
	fillRect(img, image.Rect(22, 22, 42, 42), red)

	bbox, ok := Isolate(img, DefaultExtractOptions())
	require.True(t, ok)
	assert.Equal(t, image.Rect(22, 22, 42, 42), bbox)

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := img.NRGBAAt(x, y)
			if image.Pt(x, y).In(bbox) {
				assert.Equal(t, uint8(0xff), c.A)
			} else {
				assert.Equal(t, uint8(0), c.A, "pixel (%d,%d) should be transparent", x, y)
			}
		}
	}
}

func TestExtract_IsolateRemovesIslands(t *testing.T) {
	img := fillImage(32, 32, white)
	fillRect(img, image.Rect(10, 10, 20, 20), black)
	img.SetNRGBA(3, 3, black)

	bbox, ok := Isolate(img, DefaultExtractOptions())
	require.True(t, ok)
	assert.Equal(t, uint8(0), img.NRGBAAt(3, 3).A)
	assert.Equal(t, image.Rect(10, 10, 20, 20), bbox)
}

func TestExtract_KeepInterior(t *testing.T) {
	build := func() *image.NRGBA {
		img := fillImage(48, 48, white)
		fillRect(img, image.Rect(8, 8, 40, 40), black)
		fillRect(img, image.Rect(18, 18, 30, 30), white)
		return img
	}

	opts := DefaultExtractOptions()
	img := build()
	_, ok := Isolate(img, opts)
	require.True(t, ok)
	assert.Equal(t, uint8(0), img.NRGBAAt(24, 24).A)

	opts.KeepInterior = true
	img = build()
	_, ok = Isolate(img, opts)
	require.True(t, ok)
	assert.Equal(t, uint8(0xff), img.NRGBAAt(24, 24).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(2, 2).A)
}

func TestExtract_IsolateAndRecenter(t *testing.T) {
	img := fillImage(64, 64, white)
	fillRect(img, image.Rect(22, 22, 42, 42), red)

	out := IsolateAndRecenter(img, DefaultExtractOptions())
	require.Equal(t, image.Rect(0, 0, 1024, 1024), out.Bounds())

	bbox, ok := OpaqueBounds(out, 0)
	require.True(t, ok)
	assert.InDelta(t, 922, bbox.Dx(), 2)
	assert.InDelta(t, 922, bbox.Dy(), 2)

	left, right := bbox.Min.X, 1024-bbox.Max.X
	top, bottom := bbox.Min.Y, 1024-bbox.Max.Y
	assert.InDelta(t, left, right, 1)
	assert.InDelta(t, top, bottom, 1)

	assert.Equal(t, red, out.NRGBAAt(512, 512))
	assert.Equal(t, uint8(0), out.NRGBAAt(10, 10).A)
	// the source is left untouched
	assert.Equal(t, white, img.NRGBAAt(0, 0))
}

func TestExtract_NothingSurvives(t *testing.T) {
	img := fillImage(16, 12, white)

	out := IsolateAndRecenter(img, DefaultExtractOptions())
	assert.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, 0, OpaqueArea(out, 0))
}
