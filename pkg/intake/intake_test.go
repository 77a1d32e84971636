package intake

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFile(t *testing.T, name string, w, h int) File {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 5 {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return NewFile(name, buf.Bytes())
}

// pngHeader returns a PNG that declares w x h pixels but carries no image data,
// enough for DecodeConfig and far from enough to decode.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth, grayscale, no interlace

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func decodedSize(t *testing.T, dataURL string) (int, int) {
	t.Helper()
	data, mediaType, err := DecodeDataURL(dataURL)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mediaType)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestScaleDimensions(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"landscape shrinks", 2048, 1536, 1024, 768},
		{"portrait shrinks", 500, 3000, 171, 1024},
		{"square shrinks", 4000, 4000, 1024, 1024},
		{"small is untouched", 800, 600, 800, 600},
		{"exact bound is untouched", 1024, 300, 1024, 300},
		{"thin strip keeps one pixel", 5000, 2, 1024, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ScaleDimensions(tt.w, tt.h, 1024)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.LessOrEqual(t, max(w, h), 1024)
		})
	}
}

func TestCompress_BoundsLongerSide(t *testing.T) {
	encoded, err := Compress(context.Background(), pngFile(t, "wide.png", 2000, 1000), DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, encoded, DataURLPrefix)
	w, h := decodedSize(t, encoded)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 512, h)
}

func TestCompress_NeverUpscales(t *testing.T) {
	encoded, err := Compress(context.Background(), pngFile(t, "small.png", 320, 240), DefaultOptions())
	require.NoError(t, err)

	w, h := decodedSize(t, encoded)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestCompress_DecodeFailure(t *testing.T) {
	_, err := Compress(context.Background(), NewFile("notes.txt", []byte("not an image")), DefaultOptions())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "notes.txt")
}

func TestCompress_RejectsTooManyPixels(t *testing.T) {
	_, err := Compress(context.Background(), NewFile("wall.png", pngHeader(16000, 16000)), DefaultOptions())
	assert.ErrorIs(t, err, ErrTooManyPixels)
	assert.Contains(t, err.Error(), "wall.png")
}

func TestCompress_PixelLimitBoundary(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPixels = 100

	_, err := Compress(context.Background(), pngFile(t, "exact.png", 10, 10), opts)
	assert.NoError(t, err)

	_, err = Compress(context.Background(), pngFile(t, "over.png", 11, 10), opts)
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestCompress_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compress(ctx, pngFile(t, "a.png", 10, 10), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodedSize(t *testing.T) {
	assert.Equal(t, int64(3), EncodedSize("data:image/jpeg;base64,QUJD"))
	assert.Equal(t, int64(2), EncodedSize("data:image/jpeg;base64,QUI="))
	assert.Equal(t, int64(1), EncodedSize("data:image/jpeg;base64,QQ=="))
	assert.Equal(t, int64(0), EncodedSize("data:image/jpeg;base64,"))
}

func TestPipeline_Process_PreservesOrder(t *testing.T) {
	p := NewPipeline(Options{Workers: 2}, zerolog.Nop())
	files := []File{
		pngFile(t, "one.png", 100, 50),
		pngFile(t, "two.png", 60, 90),
		pngFile(t, "three.png", 1500, 1500),
	}

	out, err := p.Process(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, out, 3)

	sizes := [][2]int{{100, 50}, {60, 90}, {1024, 1024}}
	for i, encoded := range out {
		w, h := decodedSize(t, encoded)
		assert.Equal(t, sizes[i], [2]int{w, h}, "file %d", i)
	}
}

func TestPipeline_Process_RejectsOversizedBeforeCompression(t *testing.T) {
	p := NewPipeline(DefaultOptions(), zerolog.Nop())
	big := File{Name: "huge.jpg", Size: 6 * MiB, Data: []byte("never decoded")}

	out, err := p.Process(context.Background(), []File{pngFile(t, "ok.png", 10, 10), big})
	assert.Nil(t, out)

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, KindFileTooLarge, ie.Kind)
	assert.Equal(t, []string{"huge.jpg"}, ie.Files)
}

func TestPipeline_Process_FirstFailureWins(t *testing.T) {
	p := NewPipeline(DefaultOptions(), zerolog.Nop())
	files := []File{
		pngFile(t, "ok.png", 40, 40),
		NewFile("broken.jpg", []byte{0xff, 0xd8, 0x00}),
	}

	out, err := p.Process(context.Background(), files)
	assert.Nil(t, out)
	assert.Equal(t, KindCompression, KindOf(err))
}

func TestPipeline_Process_RejectsHugeDimensionsBeforeDecoding(t *testing.T) {
	p := NewPipeline(DefaultOptions(), zerolog.Nop())
	wall := NewFile("wall.png", pngHeader(16000, 16000))
	require.NoError(t, p.Validate([]File{wall}), "small on disk")

	out, err := p.Process(context.Background(), []File{pngFile(t, "ok.png", 20, 20), wall})
	assert.Nil(t, out)
	assert.Equal(t, KindCompression, KindOf(err))
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestPipeline_Process_LeavesFailureLoggingToCaller(t *testing.T) {
	var buf bytes.Buffer
	p := NewPipeline(DefaultOptions(), zerolog.New(&buf))

	_, err := p.Process(context.Background(), []File{NewFile("broken.jpg", []byte{0xff, 0xd8, 0x00})})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestPipeline_Process_RejectsOversizedAfterCompression(t *testing.T) {
	p := NewPipeline(Options{MaxEncodedSize: 64}, zerolog.Nop())

	out, err := p.Process(context.Background(), []File{pngFile(t, "busy.png", 400, 400)})
	assert.Nil(t, out)

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, KindTooLargeAfterCompression, ie.Kind)
	assert.Equal(t, []string{"busy.png"}, ie.Files)
}

func TestPipeline_Process_EmptyBatch(t *testing.T) {
	p := NewPipeline(DefaultOptions(), zerolog.Nop())
	out, err := p.Process(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}
