package icoforge

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/esimov/icoforge/ico"
	"github.com/esimov/icoforge/palette"
	"github.com/esimov/icoforge/utils"
)

// Processor options
type Processor struct {
	// Size is the side of the square output icon.
	Size    int
	Effects Effects
	Crop    *CropBox
	// Isolate removes the background and recentres the subject before rendering.
	Isolate bool
	Extract ExtractOptions
	// Format selects the output encoding. An empty value writes PNG.
	Format  Format
	Spinner *utils.Spinner
}

// NewProcessor returns a processor rendering size pixel icons with the default effects.
func NewProcessor(size int) *Processor {
	return &Processor{
		Size:    size,
		Effects: DefaultEffects(),
		Extract: DefaultExtractOptions(),
		Format:  PNG,
	}
}

// ProcessImage runs the isolation step, when enabled, and renders img.
func (p *Processor) ProcessImage(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, &DecodeError{Err: fmt.Errorf("nil source image")}
	}
	if p.Isolate {
		opts := p.Extract
		if opts.CanvasSize <= 0 {
			opts.CanvasSize = utils.Max(p.Size, 1)
		}
		out, ok := isolateAndRecenter(img, opts)
		if !ok {
			return nil, ErrNoSubject
		}
		img = out
	}
	return Render(img, p.Size, p.Effects, p.Crop)
}

// Process decodes the source image read from r, renders it and writes the
// encoded icon into w. Any reader and writer pair works, so files, pipes
// and in-memory buffers are all valid endpoints.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	src, err := DecodeReader(r)
	if err != nil {
		return err
	}
	out, err := p.ProcessImage(src)
	if err != nil {
		return err
	}
	return EncodeImage(w, out, p.Format, p.entry())
}

// Slice decodes the grid image read from r and cuts it into cells.
func (p *Processor) Slice(r io.Reader, req SliceRequest) ([]Cell, error) {
	grid, err := DecodeReader(r)
	if err != nil {
		return nil, err
	}
	if req.OutputSize <= 0 {
		req.OutputSize = p.Size
	}
	return Slice(grid, req)
}

// Palette decodes the image read from r and returns its k representative colours.
func (p *Processor) Palette(r io.Reader, k int, method palette.Method) ([]color.NRGBA, error) {
	img, err := DecodeReader(r)
	if err != nil {
		return nil, err
	}
	return palette.Extract(img, k, method), nil
}

func (p *Processor) entry() *ico.EncodeOptions {
	return &ico.EncodeOptions{Width: p.Size, Height: p.Size}
}
