package icoforge

import "fmt"

// DecodeError reports bytes that could not be interpreted as a raster image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("icoforge: cannot decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodingError reports a failure while producing output bytes.
type EncodingError struct {
	Format Format
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("icoforge: cannot encode %s: %v", e.Format, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// SliceConfigError reports an unusable sprite sheet request.
type SliceConfigError struct {
	Rows, Cols    int
	Width, Height int
}

func (e *SliceConfigError) Error() string {
	if e.Rows <= 0 || e.Cols <= 0 {
		return fmt.Sprintf("icoforge: invalid grid %dx%d: rows and columns must be positive", e.Rows, e.Cols)
	}
	return fmt.Sprintf("icoforge: %dx%d image is smaller than a %dx%d grid", e.Width, e.Height, e.Cols, e.Rows)
}
