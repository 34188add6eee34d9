package icoforge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/esimov/icoforge/ico"
	goico "github.com/sergeymakinen/go-ico"
	"golang.org/x/image/bmp"
)

// Format is an output encoding.
type Format string

// Supported output formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	ICO  Format = "ico"
)

var errUnsupportedFormat = errors.New("unsupported image format")

// ParseFormat maps a format name or a file extension to a Format.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	switch name {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "ico":
		return ICO, nil
	}
	return "", fmt.Errorf("%w: %q", errUnsupportedFormat, name)
}

// FormatFromPath returns the output format implied by the file extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Ext returns the canonical file extension, including the leading dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// DecodeImage decodes raster bytes into an NRGBA image. Icon containers are
// unwrapped first: a PNG payload is decoded directly, a DIB payload is
// rewrapped alone and handed to the icon pixel decoder, so both kinds come
// from the same selected entry.
func DecodeImage(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}
	raw := data
	if payload, err := ico.Decode(data); err == nil {
		switch payload.Kind {
		case ico.KindPNG:
			raw = payload.Data
		case ico.KindDIB:
			img, err := goico.Decode(bytes.NewReader(payload.Container()))
			if err != nil {
				return nil, &DecodeError{Err: fmt.Errorf("icon payload: %w", err)}
			}
			return ToNRGBA(img), nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return ToNRGBA(img), nil
}

// DecodeReader reads r to the end and decodes its content with DecodeImage.
func DecodeReader(r io.Reader) (*image.NRGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return DecodeImage(data)
}

// EncodeImage writes img to w using the requested format. Icon output wraps a
// PNG encoding into a single entry container described by entry.
func EncodeImage(w io.Writer, img image.Image, format Format, entry *ico.EncodeOptions) error {
	var err error
	switch format {
	case PNG, "":
		err = imaging.Encode(w, img, imaging.PNG)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case GIF:
		err = imaging.Encode(w, img, imaging.GIF)
	case BMP:
		err = bmp.Encode(w, img)
	case ICO:
		var buf bytes.Buffer
		if err = png.Encode(&buf, img); err != nil {
			break
		}
		var out []byte
		if out, err = ico.Encode(buf.Bytes(), entry); err != nil {
			break
		}
		_, err = w.Write(out)
	default:
		err = errUnsupportedFormat
	}
	if err != nil {
		return &EncodingError{Format: format, Err: err}
	}
	return nil
}
