// Package ico reads and writes the legacy multi-resolution icon container.
//
// A container starts with a 6 byte header (reserved, type, entry count) followed
// by one 16 byte directory entry per embedded image. All integers are little endian.
// The decoder only extracts the payload of the best entry; it does not decode pixels.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	headerSize = 6
	entrySize  = 16

	typeIcon = 1
)

var pngMagic = []byte{0x89, 0x50, 0x4e, 0x47}

// ErrTooLarge is returned by Encode when the payload does not fit the 32 bit size field.
var ErrTooLarge = errors.New("ico: payload exceeds 4GiB")

// FormatError reports an invalid container header.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "ico: invalid container: " + e.Reason
}

// Kind tags the bytes carried by a Payload.
type Kind int

const (
	// KindRaw means no entry qualified and the payload is the unmodified input.
	KindRaw Kind = iota
	// KindPNG is a PNG stream embedded in the container.
	KindPNG
	// KindDIB is a headerless bitmap embedded in the container.
	KindDIB
)

func (k Kind) String() string {
	switch k {
	case KindPNG:
		return "png"
	case KindDIB:
		return "dib"
	default:
		return "raw"
	}
}

// Entry is a decoded directory entry. Width and Height are already resolved,
// so a literal 0 in the container reads as 256.
type Entry struct {
	Width        int
	Height       int
	ColorCount   int
	Planes       int
	BitsPerPixel int
	Size         uint32
	Offset       uint32
}

// fits reports whether the entry's payload lies inside a container of length n.
func (e Entry) fits(n int) bool {
	return e.Size > 0 && uint64(e.Offset)+uint64(e.Size) <= uint64(n)
}

// Payload is the image data selected from a container.
type Payload struct {
	Data  []byte
	Kind  Kind
	Entry *Entry
}

// ParseDirectory reads the header and every directory entry fully contained in data.
// It returns the entry count announced by the header, which may be larger than
// the number of entries returned for a truncated container.
func ParseDirectory(data []byte) (int, []Entry, error) {
	if len(data) < headerSize {
		return 0, nil, &FormatError{Reason: fmt.Sprintf("header needs %d bytes, got %d", headerSize, len(data))}
	}
	if typ := binary.LittleEndian.Uint16(data[2:]); typ != typeIcon {
		return 0, nil, &FormatError{Reason: fmt.Sprintf("type field is %d, want %d", typ, typeIcon)}
	}
	count := int(binary.LittleEndian.Uint16(data[4:]))

	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		base := headerSize + i*entrySize
		if base+entrySize > len(data) {
			break
		}
		entries = append(entries, parseEntry(data[base:base+entrySize]))
	}
	return count, entries, nil
}

func parseEntry(b []byte) Entry {
	w, h := int(b[0]), int(b[1])
	if w == 0 {
		w = 256
	}
	if h == 0 {
		h = 256
	}
	return Entry{
		Width:        w,
		Height:       h,
		ColorCount:   int(b[2]),
		Planes:       int(binary.LittleEndian.Uint16(b[4:])),
		BitsPerPixel: int(binary.LittleEndian.Uint16(b[6:])),
		Size:         binary.LittleEndian.Uint32(b[8:]),
		Offset:       binary.LittleEndian.Uint32(b[12:]),
	}
}

// Decode selects the widest embedded image, preferring the larger payload on ties,
// and returns its bytes. When no entry qualifies the input is returned unchanged
// with KindRaw; only an invalid header is an error.
func Decode(data []byte) (*Payload, error) {
	_, entries, err := ParseDirectory(data)
	if err != nil {
		return nil, err
	}

	best := -1
	for i, e := range entries {
		if !e.fits(len(data)) {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := entries[best]
		if e.Width > b.Width || (e.Width == b.Width && e.Size > b.Size) {
			best = i
		}
	}
	if best < 0 {
		return &Payload{Data: data, Kind: KindRaw}, nil
	}

	e := entries[best]
	payload := data[e.Offset : e.Offset+e.Size]
	kind := KindDIB
	if bytes.HasPrefix(payload, pngMagic) {
		kind = KindPNG
	}
	return &Payload{Data: payload, Kind: kind, Entry: &e}, nil
}

// EncodeOptions controls the directory entry written by Encode.
// A zero Width or Height, or any value of 256 and above, is written as 0 (meaning 256).
type EncodeOptions struct {
	Width  int
	Height int
}

// Encode wraps a PNG stream into a single entry container:
// header, one directory entry and the raw PNG bytes. A nil opts writes 0 for both
// dimension bytes regardless of the real resolution.
func Encode(png []byte, opts *EncodeOptions) ([]byte, error) {
	if uint64(len(png)) > math.MaxUint32-headerSize-entrySize {
		return nil, ErrTooLarge
	}
	if opts == nil {
		opts = &EncodeOptions{}
	}
	return container(Entry{
		Width:        opts.Width,
		Height:       opts.Height,
		Planes:       1,
		BitsPerPixel: 32,
	}, png), nil
}

// Container wraps the payload alone into a single entry container carrying
// the original directory fields, so a pixel decoder reading it cannot pick
// another entry.
func (p *Payload) Container() []byte {
	var e Entry
	if p.Entry != nil {
		e = *p.Entry
	}
	return container(e, p.Data)
}

// container lays out the header, the directory entry e and data. The size and
// offset fields are derived from data.
func container(e Entry, data []byte) []byte {
	buf := make([]byte, headerSize+entrySize+len(data))
	binary.LittleEndian.PutUint16(buf[0:], 0)
	binary.LittleEndian.PutUint16(buf[2:], typeIcon)
	binary.LittleEndian.PutUint16(buf[4:], 1)

	dir := buf[headerSize:]
	dir[0] = sizeByte(e.Width)
	dir[1] = sizeByte(e.Height)
	dir[2] = byte(e.ColorCount)
	dir[3] = 0
	binary.LittleEndian.PutUint16(dir[4:], uint16(e.Planes))
	binary.LittleEndian.PutUint16(dir[6:], uint16(e.BitsPerPixel))
	binary.LittleEndian.PutUint32(dir[8:], uint32(len(data)))
	binary.LittleEndian.PutUint32(dir[12:], headerSize+entrySize)

	copy(buf[headerSize+entrySize:], data)
	return buf
}

func sizeByte(n int) byte {
	if n <= 0 || n >= 256 {
		return 0
	}
	return byte(n)
}
