package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	w, h byte
	data []byte
}

// buildContainer lays out a container with the payloads following the directory.
func buildContainer(entries ...testEntry) []byte {
	var buf bytes.Buffer
	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(hdr[2:], 1)
	binary.LittleEndian.PutUint16(hdr[4:], uint16(len(entries)))
	buf.Write(hdr)

	offset := headerSize + entrySize*len(entries)
	for _, e := range entries {
		dir := make([]byte, entrySize)
		dir[0], dir[1] = e.w, e.h
		binary.LittleEndian.PutUint16(dir[4:], 1)
		binary.LittleEndian.PutUint16(dir[6:], 32)
		binary.LittleEndian.PutUint32(dir[8:], uint32(len(e.data)))
		binary.LittleEndian.PutUint32(dir[12:], uint32(offset))
		buf.Write(dir)
		offset += len(e.data)
	}
	for _, e := range entries {
		buf.Write(e.data)
	}
	return buf.Bytes()
}

func payload(n int, fill byte) []byte {
	return bytes.Repeat([]byte{fill}, n)
}

func TestDecode_SelectsLargestEntry(t *testing.T) {
	assert := assert.New(t)

	small := payload(400, 1)
	large := payload(3000, 2)
	data := buildContainer(testEntry{16, 16, small}, testEntry{0, 0, large})

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(large, p.Data)
	assert.Equal(KindDIB, p.Kind)
	require.NotNil(t, p.Entry)
	assert.Equal(256, p.Entry.Width)
	assert.Equal(256, p.Entry.Height)
}

func TestDecode_TieBrokenBySize(t *testing.T) {
	a := payload(100, 1)
	b := payload(300, 2)
	c := payload(200, 3)
	data := buildContainer(testEntry{48, 48, a}, testEntry{48, 48, b}, testEntry{32, 32, c})

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, b, p.Data)
}

func TestDecode_WidestWinsOverLarger(t *testing.T) {
	wide := payload(10, 1)
	heavy := payload(900, 2)
	data := buildContainer(testEntry{64, 64, heavy}, testEntry{128, 128, wide})

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, wide, p.Data)
}

func TestDecode_TagsPNGPayload(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, payload(32, 7)...)
	data := buildContainer(testEntry{32, 32, png})

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, KindPNG, p.Kind)
	assert.Equal(t, png, p.Data)
}

func TestDecode_NoEntriesReturnsInput(t *testing.T) {
	data := buildContainer()

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, KindRaw, p.Kind)
	assert.Nil(t, p.Entry)
	assert.Equal(t, data, p.Data)
}

func TestDecode_OutOfBoundsEntryIgnored(t *testing.T) {
	data := buildContainer(testEntry{32, 32, payload(50, 1)})
	// Announce a payload running past the end of the container.
	binary.LittleEndian.PutUint32(data[headerSize+8:], 5000)

	p, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, KindRaw, p.Kind)
	assert.Equal(t, data, p.Data)
}

func TestDecode_TruncatedDirectory(t *testing.T) {
	data := buildContainer(testEntry{32, 32, payload(50, 1)})
	binary.LittleEndian.PutUint16(data[4:], 9)

	count, entries, err := ParseDirectory(data)
	require.NoError(t, err)
	assert.Equal(t, 9, count)
	assert.Less(t, len(entries), 9)

	_, err = Decode(data)
	assert.NoError(t, err)
}

func TestDecode_FormatErrors(t *testing.T) {
	var ferr *FormatError

	_, err := Decode([]byte{0, 0, 1})
	require.Error(t, err)
	assert.True(t, errors.As(err, &ferr))

	cur := []byte{0, 0, 2, 0, 0, 0}
	_, err = Decode(cur)
	require.Error(t, err)
	assert.True(t, errors.As(err, &ferr))
	assert.Contains(t, ferr.Error(), "type field is 2")
}

func TestEncode_Layout(t *testing.T) {
	assert := assert.New(t)

	png := append([]byte{0x89, 'P', 'N', 'G'}, payload(123, 9)...)
	out, err := Encode(png, nil)
	require.NoError(t, err)

	assert.Len(out, 22+len(png))
	assert.Equal([]byte{0, 0, 1, 0, 1, 0}, out[:6])
	assert.Equal(byte(0), out[6])
	assert.Equal(byte(0), out[7])
	assert.Equal(uint16(1), binary.LittleEndian.Uint16(out[10:]))
	assert.Equal(uint16(32), binary.LittleEndian.Uint16(out[12:]))
	assert.Equal(uint32(len(png)), binary.LittleEndian.Uint32(out[14:]))
	assert.Equal(uint32(22), binary.LittleEndian.Uint32(out[18:]))
	assert.Equal(png, out[22:])
}

func TestEncode_TrueSize(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G'}, payload(8, 0)...)

	out, err := Encode(png, &EncodeOptions{Width: 48, Height: 32})
	require.NoError(t, err)
	assert.Equal(t, byte(48), out[6])
	assert.Equal(t, byte(32), out[7])

	out, err = Encode(png, &EncodeOptions{Width: 1024, Height: 256})
	require.NoError(t, err)
	assert.Equal(t, byte(0), out[6])
	assert.Equal(t, byte(0), out[7])
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 4, 977} {
		png := append([]byte{0x89, 'P', 'N', 'G'}, payload(n, byte(n))...)
		out, err := Encode(png, nil)
		require.NoError(t, err)

		p, err := Decode(out)
		require.NoError(t, err)
		assert.Equal(t, png, p.Data)
		assert.Equal(t, KindPNG, p.Kind)
	}
}

func TestPayload_ContainerKeepsSelectedEntry(t *testing.T) {
	small := payload(400, 1)
	large := payload(3000, 2)
	data := buildContainer(testEntry{16, 16, small}, testEntry{48, 48, large})

	p, err := Decode(data)
	require.NoError(t, err)

	wrapped := p.Container()
	count, entries, err := ParseDirectory(wrapped)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{
		Width:        48,
		Height:       48,
		Planes:       1,
		BitsPerPixel: 32,
		Size:         uint32(len(large)),
		Offset:       headerSize + entrySize,
	}, entries[0])

	again, err := Decode(wrapped)
	require.NoError(t, err)
	assert.Equal(t, large, again.Data)
}
