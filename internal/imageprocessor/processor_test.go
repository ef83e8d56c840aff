package imageprocessor

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestPrepareKeepsSmallImage(t *testing.T) {
	p := NewProcessor(1<<20, 100, 0, 85)
	img, err := p.Prepare(pngDataURI(t, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, 20, img.Width)
	assert.Equal(t, 10, img.Height)
}

func TestPrepareDownscalesLargeImage(t *testing.T) {
	p := NewProcessor(1<<20, 50, 0, 85)
	img, err := p.Prepare(pngDataURI(t, 200, 100))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Width)
	assert.Equal(t, 25, img.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 50, cfg.Width)
}

func TestPrepareRejectsBadInput(t *testing.T) {
	p := NewProcessor(64, 100, 0, 85)

	_, err := p.Prepare("not a data uri")
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = p.Prepare("data:image/png;base64,!!!")
	assert.ErrorIs(t, err, ErrInvalidImage)

	fake := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))
	_, err = p.Prepare(fake)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = p.Prepare(pngDataURI(t, 40, 40))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

// headerOnlyPNG builds a PNG whose IHDR declares w x h RGBA pixels but
// whose IDAT carries no data.
func headerOnlyPNG(w, h uint32) []byte {
	chunk := func(kind string, data []byte) []byte {
		out := make([]byte, 4, 12+len(data))
		binary.BigEndian.PutUint32(out, uint32(len(data)))
		out = append(out, kind...)
		out = append(out, data...)
		crc := crc32.NewIEEE()
		crc.Write([]byte(kind))
		crc.Write(data)
		return binary.BigEndian.AppendUint32(out, crc.Sum32())
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	data := []byte("\x89PNG\r\n\x1a\n")
	data = append(data, chunk("IHDR", ihdr)...)
	data = append(data, chunk("IDAT", nil)...)
	return append(data, chunk("IEND", nil)...)
}

func TestPrepareRejectsHugeDeclaredDimensions(t *testing.T) {
	p := NewProcessor(1<<20, 100, 1_000_000, 85)

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(headerOnlyPNG(40000, 40000))
	_, err := p.Prepare(uri)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	// within the pixel budget the truncated body is still rejected
	uri = "data:image/png;base64," + base64.StdEncoding.EncodeToString(headerOnlyPNG(500, 500))
	_, err = p.Prepare(uri)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestNewProcessorDefaultsPixelBudget(t *testing.T) {
	p := NewProcessor(1<<20, 100, 0, 85)
	assert.EqualValues(t, DefaultMaxPixels, p.maxPixels)
}
