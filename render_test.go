package icoforge

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainEffects disables every effect that is on by default.
func plainEffects() Effects {
	fx := DefaultEffects()
	fx.AutoFit = false
	fx.ShadowOpacity = 0
	return fx
}

func TestRender_FitsSubjectInsideMargin(t *testing.T) {
	src := fillImage(10, 10, red)

	out, err := Render(src, 256, plainEffects(), nil)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 256, 256), out.Bounds())

	bbox, ok := OpaqueBounds(out, 0)
	require.True(t, ok)
	assert.Equal(t, image.Rect(38, 38, 218, 218), bbox)
	assert.Equal(t, red, out.NRGBAAt(128, 128))
}

func TestRender_AutoFitGrowsMargin(t *testing.T) {
	fx := plainEffects()
	fx.OutlineWidth = 20
	assert.InDelta(t, 38.4, Margin(256, fx), 1e-9)

	fx.AutoFit = true
	assert.InDelta(t, 58.4, Margin(256, fx), 1e-9)
	assert.InDelta(t, 2*58.4, Margin(512, fx), 1e-9)

	fx.OutlineWidth = 1000
	assert.InDelta(t, 0.45*256, Margin(256, fx), 1e-9)
}

func TestRender_OutlineGrowsArea(t *testing.T) {
	src := fillImage(10, 10, red)
	fx := plainEffects()
	fx.OutlineColor = "#00ff00"

	prev := -1
	for _, width := range []float64{0, 2, 4, 8, 16, 24} {
		fx.OutlineWidth = width
		out, err := Render(src, 256, fx, nil)
		require.NoError(t, err)

		area := OpaqueArea(out, 0)
		assert.Greater(t, area, prev, "outline width %v", width)
		prev = area
	}
}

func TestRender_OutlineStyles(t *testing.T) {
	src := fillImage(10, 10, red)
	fx := plainEffects()
	fx.OutlineWidth = 6
	fx.OutlineNoise = 4
	fx.Seed = 7

	for _, style := range []OutlineStyle{OutlineSolid, OutlineDotted, OutlineWavy, OutlinePixel} {
		t.Run(string(style), func(t *testing.T) {
			fx.OutlineStyle = style
			out, err := Render(src, 128, fx, nil)
			require.NoError(t, err)

			base, err := Render(src, 128, plainEffects(), nil)
			require.NoError(t, err)
			assert.Greater(t, OpaqueArea(out, 0), OpaqueArea(base, 0))
		})
	}
}

func TestRender_Shadow(t *testing.T) {
	src := fillImage(10, 10, red)
	fx := plainEffects()
	fx.ShadowOpacity = 1
	fx.ShadowBlur = 0
	fx.ShadowY = 10

	out, err := Render(src, 256, fx, nil)
	require.NoError(t, err)
	assert.Equal(t, red, out.NRGBAAt(128, 128))
	assert.Equal(t, black, out.NRGBAAt(128, 222))
	assert.Equal(t, uint8(0), out.NRGBAAt(128, 30).A)
}

func TestRender_CropBox(t *testing.T) {
	src := fillImage(20, 10, red)
	fillRect(src, image.Rect(10, 0, 20, 10), color.NRGBA{B: 0xff, A: 0xff})

	out, err := Render(src, 64, plainEffects(), &CropBox{Top: 0, Left: 500, Bottom: 1000, Right: 1000})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{B: 0xff, A: 0xff}, out.NRGBAAt(32, 32))

	_, err = Render(src, 64, plainEffects(), &CropBox{Top: 500, Left: 500, Bottom: 500, Right: 1000})
	assert.Error(t, err)
}

func TestRender_PixelArtKeepsPalette(t *testing.T) {
	src := NewCanvas(2, 2)
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, black)
	src.SetNRGBA(0, 1, black)
	src.SetNRGBA(1, 1, red)

	fx := plainEffects()
	fx.PixelArt = true
	out, err := Render(src, 100, fx, nil)
	require.NoError(t, err)

	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := out.NRGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			assert.True(t, c == red || c == black, "unexpected colour %v at (%d,%d)", c, x, y)
		}
	}
}

func TestRender_CornerRadiusClipsCorners(t *testing.T) {
	src := fillImage(10, 10, red)
	fx := plainEffects()
	fx.CornerRadius = 100

	out, err := Render(src, 256, fx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.NRGBAAt(40, 40).A)
	assert.Equal(t, red, out.NRGBAAt(128, 128))
	assert.Equal(t, red, out.NRGBAAt(128, 40))
}

func TestRender_Lineart(t *testing.T) {
	src := fillImage(40, 40, white)
	fillRect(src, image.Rect(10, 10, 30, 30), black)

	fx := plainEffects()
	fx.Lineart = true
	out, err := Render(src, 128, fx, nil)
	require.NoError(t, err)

	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i+3] == 0 {
			continue
		}
		assert.Equal(t, []uint8{0, 0, 0}, out.Pix[i:i+3])
	}
	assert.Greater(t, OpaqueArea(out, 0), 0)
	assert.Equal(t, uint8(0), out.NRGBAAt(64, 64).A)
}

func TestRender_RemoveBackground(t *testing.T) {
	src := fillImage(40, 40, white)
	fillRect(src, image.Rect(15, 15, 25, 25), red)

	fx := plainEffects()
	fx.RemoveBackground = true
	out, err := Render(src, 128, fx, nil)
	require.NoError(t, err)
	// (30, 30) lies inside the drawn area, on the white background
	assert.Equal(t, uint8(0), out.NRGBAAt(30, 30).A)
	assert.Equal(t, red, out.NRGBAAt(64, 64))
}

func TestRender_IsDeterministic(t *testing.T) {
	src := fillImage(16, 16, red)
	fx := DefaultEffects()
	fx.GlowBlur = 6
	fx.GlowNoise = 8
	fx.GlowPasses = 2
	fx.OutlineWidth = 3
	fx.OutlineNoise = 3
	fx.SparkleIntensity = 40
	fx.HalftoneIntensity = 50
	fx.Seed = 42

	a, err := Render(src, 128, fx, nil)
	require.NoError(t, err)
	b, err := Render(src, 128, fx, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestRender_EveryEffect(t *testing.T) {
	src := fillImage(24, 24, white)
	fillRect(src, image.Rect(4, 4, 20, 20), color.NRGBA{R: 0x30, G: 0x90, B: 0xd0, A: 0xff})

	fx := DefaultEffects()
	fx.CornerRadius = 20
	fx.Sharpness = 40
	fx.EdgeClamping = 20
	fx.NormalizeInputs = true
	fx.RemoveBackground = true
	fx.Denoise = 30
	fx.LongShadowLength = 12
	fx.GlowBlur = 8
	fx.StickerMode = true
	fx.OutlineWidth = 4
	fx.OutlineStyle = OutlineWavy
	fx.ChromaticAberration = 4
	fx.Brightness = 110
	fx.Contrast = 120
	fx.Saturation = 80
	fx.HueRotate = 30
	fx.InnerGlowBlur = 6
	fx.BevelSize = 4
	fx.Vignette = 40
	fx.SheenIntensity = 50
	fx.SparkleIntensity = 20
	fx.MetallicIntensity = 40
	fx.HalftoneIntensity = 30
	fx.Scanlines = 30
	fx.FinishType = FinishHolo
	fx.Palette = []string{"#1e1b4b", "#f59e0b"}

	out, err := Render(src, 96, fx, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 96, 96), out.Bounds())
	assert.Greater(t, OpaqueArea(out, 0), 0)
}

// subjectColor is a mid tone that lighter and darker overlays both move.
var subjectColor = color.NRGBA{R: 0x80, G: 0x60, B: 0x40, A: 0xff}

// renderSubject renders a flat 10x10 subject at 256px; with plainEffects it
// covers [38, 218) on both axes.
func renderSubject(t *testing.T, fx Effects) *image.NRGBA {
	t.Helper()
	out, err := Render(fillImage(10, 10, subjectColor), 256, fx, nil)
	require.NoError(t, err)
	return out
}

// assertTransparentOutside checks that every pixel transparent in base stays transparent in out.
func assertTransparentOutside(t *testing.T, base, out *image.NRGBA) {
	t.Helper()
	w := base.Bounds().Dx()
	for i := 3; i < len(base.Pix); i += 4 {
		if base.Pix[i] == 0 && out.Pix[i] != 0 {
			t.Fatalf("pixel (%d,%d) became visible", (i/4)%w, (i/4)/w)
		}
	}
}

func TestRender_GlowPassesWiden(t *testing.T) {
	fx := plainEffects()
	fx.GlowBlur = 8
	fx.GlowOpacity = 1
	fx.GlowPasses = 1
	single := renderSubject(t, fx)

	fx.GlowPasses = 3
	multi := renderSubject(t, fx)

	assert.Greater(t, OpaqueArea(single, 0), OpaqueArea(renderSubject(t, plainEffects()), 0))
	assert.Greater(t, OpaqueArea(multi, 0), OpaqueArea(single, 0))
	assert.Equal(t, subjectColor, multi.NRGBAAt(128, 128))
}

func TestRender_GlowJitterFollowsSeed(t *testing.T) {
	fx := plainEffects()
	fx.GlowBlur = 6
	fx.GlowOpacity = 1
	fx.GlowPasses = 2
	fx.GlowNoise = 40
	fx.Seed = 1
	a := renderSubject(t, fx)
	b := renderSubject(t, fx)
	assert.Equal(t, a.Pix, b.Pix)

	fx.Seed = 2
	c := renderSubject(t, fx)
	assert.NotEqual(t, a.Pix, c.Pix)
}

func TestRender_ChromaticAberrationFringes(t *testing.T) {
	fx := plainEffects()
	fx.ChromaticAberration = 8 // offsets of 4px at 256
	out := renderSubject(t, fx)

	left := out.NRGBAAt(36, 128)
	right := out.NRGBAAt(220, 128)
	require.NotZero(t, left.A)
	require.NotZero(t, right.A)
	assert.Greater(t, left.R, left.B, "left fringe is red shifted")
	assert.Greater(t, right.B, right.R, "right fringe is blue shifted")

	assert.Zero(t, out.NRGBAAt(33, 128).A)
	assert.Zero(t, out.NRGBAAt(222, 128).A)
	assert.Equal(t, subjectColor, out.NRGBAAt(128, 128))
}

func TestRender_InnerGlowLightensEdges(t *testing.T) {
	fx := plainEffects()
	fx.InnerGlowBlur = 8
	fx.InnerGlowOpacity = 1
	out := renderSubject(t, fx)

	edge := out.NRGBAAt(39, 128)
	assert.Greater(t, edge.G, subjectColor.G)
	assert.Equal(t, subjectColor, out.NRGBAAt(128, 128))
	assertTransparentOutside(t, renderSubject(t, plainEffects()), out)
}

func TestRender_BevelLightsTopLeftAndShadesBottomRight(t *testing.T) {
	fx := plainEffects()
	fx.BevelSize = 8
	out := renderSubject(t, fx)

	assert.Greater(t, out.NRGBAAt(40, 128).G, subjectColor.G)
	assert.Greater(t, out.NRGBAAt(128, 40).G, subjectColor.G)
	assert.Less(t, out.NRGBAAt(216, 128).G, subjectColor.G)
	assert.Less(t, out.NRGBAAt(128, 216).G, subjectColor.G)
	assert.Equal(t, subjectColor, out.NRGBAAt(128, 128))
	assertTransparentOutside(t, renderSubject(t, plainEffects()), out)
}

func TestRender_VignetteDarkensCorners(t *testing.T) {
	fx := plainEffects()
	fx.Vignette = 80
	out := renderSubject(t, fx)

	corner := out.NRGBAAt(40, 40)
	assert.Less(t, corner.G, subjectColor.G)
	assert.Equal(t, uint8(0xff), corner.A)
	assert.Equal(t, subjectColor, out.NRGBAAt(128, 128))
	assertTransparentOutside(t, renderSubject(t, plainEffects()), out)
}

func TestRender_SheenBandFollowsAngle(t *testing.T) {
	fx := plainEffects()
	fx.SheenIntensity = 80
	fx.SheenAngle = 45
	out := renderSubject(t, fx)

	// the band peaks where x+y is about 181 and fades out past x+y = 362
	assert.Greater(t, out.NRGBAAt(90, 91).G, subjectColor.G)
	assert.Equal(t, subjectColor, out.NRGBAAt(212, 212))
	assertTransparentOutside(t, renderSubject(t, plainEffects()), out)
}

func TestRender_MetallicHighlightsCentre(t *testing.T) {
	fx := plainEffects()
	fx.MetallicIntensity = 80
	out := renderSubject(t, fx)

	assert.Greater(t, out.NRGBAAt(128, 128).G, subjectColor.G)
	assert.Equal(t, uint8(0xff), out.NRGBAAt(128, 128).A)
	assertTransparentOutside(t, renderSubject(t, plainEffects()), out)
}

func TestRender_FinishRecoloursSubjectOnly(t *testing.T) {
	base := renderSubject(t, plainEffects())
	for _, kind := range []Finish{FinishGold, FinishSilver, FinishFoil, FinishHolo} {
		t.Run(string(kind), func(t *testing.T) {
			fx := plainEffects()
			fx.FinishType = kind
			fx.FinishOpacity = 0.8
			out := renderSubject(t, fx)

			assert.NotEqual(t, subjectColor, out.NRGBAAt(128, 128))
			assert.Equal(t, OpaqueArea(base, 0), OpaqueArea(out, 0))
			assertTransparentOutside(t, base, out)
		})
	}
}

func TestRender_HalftoneDotsDarken(t *testing.T) {
	fx := plainEffects()
	fx.HalftoneIntensity = 100 // every grid dot is kept
	out := renderSubject(t, fx)

	// dots are 1px wide on a 2px grid at 256
	assert.Less(t, out.NRGBAAt(128, 128).G, subjectColor.G)
	assert.Equal(t, subjectColor, out.NRGBAAt(129, 129))
	assertTransparentOutside(t, renderSubject(t, plainEffects()), out)
}

func TestRender_ScanlinesShadeAlternateRows(t *testing.T) {
	fx := plainEffects()
	fx.Scanlines = 100
	out := renderSubject(t, fx)

	assert.Equal(t, black, out.NRGBAAt(128, 128))
	assert.Equal(t, subjectColor, out.NRGBAAt(128, 129))
	assertTransparentOutside(t, renderSubject(t, plainEffects()), out)
}

func TestRender_LongShadowFallsDownRight(t *testing.T) {
	base := renderSubject(t, plainEffects())
	bbox, ok := OpaqueBounds(base, 0)
	require.True(t, ok)

	fx := plainEffects()
	fx.LongShadowLength = 20
	fx.LongShadowOpacity = 1
	out := renderSubject(t, fx)

	assert.Equal(t, subjectColor, out.NRGBAAt(128, 128))
	assert.Equal(t, uint8(0xff), out.NRGBAAt(230, 230).A)
	assert.Zero(t, out.NRGBAAt(30, 30).A)
	assert.Zero(t, out.NRGBAAt(230, 30).A)

	added := 0
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if base.NRGBAAt(x, y).A != 0 || out.NRGBAAt(x, y).A == 0 {
				continue
			}
			added++
			if x <= bbox.Min.X || y <= bbox.Min.Y {
				t.Fatalf("shadow pixel (%d,%d) lies up or left of the subject", x, y)
			}
		}
	}
	assert.Greater(t, added, 0)
}

func TestRender_GlassWashesSubject(t *testing.T) {
	fx := plainEffects()
	fx.GlassOpacity = 0.5
	fx.GlassBlur = 4
	out := renderSubject(t, fx)

	centre := out.NRGBAAt(128, 128)
	assert.Greater(t, centre.R, subjectColor.R)
	assert.Greater(t, centre.G, subjectColor.G)
	assert.Greater(t, centre.B, subjectColor.B)
	assert.Equal(t, uint8(0xff), centre.A)
	assertTransparentOutside(t, renderSubject(t, plainEffects()), out)
}

func TestRender_GradeSkipsOutline(t *testing.T) {
	fx := plainEffects()
	fx.OutlineWidth = 4
	fx.OutlineColor = "#00ff00"
	fx.Brightness = 50
	out := renderSubject(t, fx)

	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, out.NRGBAAt(128, 36))
	assert.Less(t, out.NRGBAAt(128, 128).G, subjectColor.G)
}

func TestRender_Errors(t *testing.T) {
	src := fillImage(4, 4, red)

	_, err := Render(src, 0, plainEffects(), nil)
	assert.Error(t, err)

	_, err = Render(nil, 64, plainEffects(), nil)
	var decErr *DecodeError
	assert.True(t, errors.As(err, &decErr))

	fx := plainEffects()
	fx.OutlineStyle = "zigzag"
	_, err = Render(src, 64, fx, nil)
	assert.Error(t, err)

	fx = plainEffects()
	fx.Palette = []string{"#000", "#zzz"}
	_, err = Render(src, 64, fx, nil)
	assert.Error(t, err)
}
