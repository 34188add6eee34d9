package utils

import (
	"fmt"
	"image/color"
	"net/http"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DetectContentType detects the content type by sniffing the first 512 bytes of data.
// It always returns a valid content-type and "application/octet-stream" if no others seemed to match.
func DetectContentType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

// DetectFileContentType detects the file type by reading MIME type information of the file content.
func DetectFileContentType(fname string) (string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil {
		return "", err
	}
	return DetectContentType(buffer[:n]), nil
}

// IsImage reports whether the sniffed content type is an image type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// ParseHex converts a css hex color (#rgb or #rrggbb, the hash being optional) to an opaque color.NRGBA.
func ParseHex(in string) (color.NRGBA, error) {
	hex := strings.TrimSpace(in)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) == 4 {
		hex = string([]byte{'#', hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	if len(hex) != 7 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", in)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", in)
	}
	r, g, b := c.Clamped().RGB255()

	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// HexToNRGBA converts a css hex color to color.NRGBA with the given opacity.
// Invalid values fall back to black; Effects.Validate rejects them before rendering.
func HexToNRGBA(hex string, opacity float64) color.NRGBA {
	c, _ := ParseHex(hex)
	c.A = ClampUint8(Clamp(opacity, 0, 1) * 255)
	return c
}
