package icoforge

import (
	"fmt"
	"image"
)

// SliceRequest describes how a grid image is cut into icons.
type SliceRequest struct {
	Rows, Cols int
	// OutputSize is the side of every square cell image.
	OutputSize int
	// Labels name the cells in row-major order. Missing labels get a
	// generated placeholder.
	Labels []string
	// Pad is trimmed from every side of a cell to keep grid lines out.
	Pad float64
	// Isolate routes every cell through background removal.
	Isolate bool
	Extract ExtractOptions
}

// Cell is one icon cut from a grid image.
type Cell struct {
	Label    string
	Row, Col int
	// Source is the region of the grid image the cell was cropped from.
	Source Rect
	Image  *image.NRGBA
}

// CellLabel returns the label of cell (r, c) in a grid with cols columns.
func CellLabel(labels []string, r, c, cols int) string {
	if i := r*cols + c; i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("Extracted_%d_%d", r, c)
}

// Slice cuts grid into Rows x Cols cells of equal, possibly fractional size
// and resamples every cell into an OutputSize square. It always returns
// exactly Rows*Cols cells in row-major order.
func Slice(grid image.Image, req SliceRequest) ([]Cell, error) {
	b := grid.Bounds()
	w, h := b.Dx(), b.Dy()
	if req.Rows <= 0 || req.Cols <= 0 || w < req.Cols || h < req.Rows {
		return nil, &SliceConfigError{Rows: req.Rows, Cols: req.Cols, Width: w, Height: h}
	}
	if req.OutputSize <= 0 {
		return nil, fmt.Errorf("invalid output size %d", req.OutputSize)
	}

	src := ToNRGBA(grid)
	cellW := float64(w) / float64(req.Cols)
	cellH := float64(h) / float64(req.Rows)
	pad := max(0, min(req.Pad, cellW/2-0.5, cellH/2-0.5))
	size := float64(req.OutputSize)

	cells := make([]Cell, 0, req.Rows*req.Cols)
	for r := 0; r < req.Rows; r++ {
		for c := 0; c < req.Cols; c++ {
			sr := Rect{
				X: float64(c)*cellW + pad,
				Y: float64(r)*cellH + pad,
				W: cellW - 2*pad,
				H: cellH - 2*pad,
			}
			img := NewCanvas(req.OutputSize, req.OutputSize)
			DrawScaled(img, Rect{W: size, H: size}, src, sr, true)

			if req.Isolate {
				opts := req.Extract
				if opts.CanvasSize <= 0 {
					opts.CanvasSize = req.OutputSize
				}
				img = IsolateAndRecenter(img, opts)
			}

			cells = append(cells, Cell{
				Label:  CellLabel(req.Labels, r, c, req.Cols),
				Row:    r,
				Col:    c,
				Source: sr,
				Image:  img,
			})
		}
	}
	return cells, nil
}
