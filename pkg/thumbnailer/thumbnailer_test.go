package thumbnailer

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image_thumbnailer/entity"
)

func testSpec() entity.ThumbnailSpec {
	return entity.ThumbnailSpec{
		MaxWidth:    200,
		MaxHeight:   200,
		JPEGQuality: 85,
	}
}

func makeImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestGenerate_FitsBoundingBox(t *testing.T) {
	cases := []struct {
		name       string
		srcW, srcH int
		wantW      int
		wantH      int
	}{
		{"landscape 4:3", 400, 300, 200, 150},
		{"portrait 3:4", 300, 400, 150, 200},
		{"square", 500, 500, 200, 200},
		{"wide panorama", 1000, 200, 200, 40},
		{"tall strip", 120, 600, 40, 200},
		{"exactly at bounds", 200, 200, 200, 200},
	}

	tn := New()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := encodeJPEG(t, makeImage(tc.srcW, tc.srcH))

			thumb, err := tn.Generate(src, testSpec())
			require.NoError(t, err)

			assert.Equal(t, tc.wantW, thumb.Width)
			assert.Equal(t, tc.wantH, thumb.Height)
			assert.Equal(t, entity.FormatJPEG, thumb.Format)

			decoded, _, err := image.Decode(bytes.NewReader(thumb.Bytes))
			require.NoError(t, err)
			assert.Equal(t, tc.wantW, decoded.Bounds().Dx())
			assert.Equal(t, tc.wantH, decoded.Bounds().Dy())
		})
	}
}

func TestGenerate_NeverUpscales(t *testing.T) {
	tn := New()
	src := encodeJPEG(t, makeImage(100, 50))

	thumb, err := tn.Generate(src, testSpec())
	require.NoError(t, err)

	assert.Equal(t, 100, thumb.Width)
	assert.Equal(t, 50, thumb.Height)
}

func TestGenerate_KeepsSourceFormat(t *testing.T) {
	tn := New()

	t.Run("png stays png", func(t *testing.T) {
		thumb, err := tn.Generate(encodePNG(t, makeImage(400, 400)), testSpec())
		require.NoError(t, err)

		assert.Equal(t, entity.FormatPNG, thumb.Format)
		assert.Equal(t, "image/png", thumb.Format.ContentType())

		_, name, err := image.Decode(bytes.NewReader(thumb.Bytes))
		require.NoError(t, err)
		assert.Equal(t, "png", name)
	})

	t.Run("gif stays gif", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, gif.Encode(buf, makeImage(300, 300), nil))

		thumb, err := tn.Generate(buf.Bytes(), testSpec())
		require.NoError(t, err)

		assert.Equal(t, entity.FormatGIF, thumb.Format)
	})
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	tn := New()

	_, err := tn.Generate([]byte("definitely not an image"), testSpec())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
	assert.False(t, entity.Retryable(err))
}

func TestGenerate_Idempotent(t *testing.T) {
	tn := New()
	src := encodeJPEG(t, makeImage(640, 480))

	first, err := tn.Generate(src, testSpec())
	require.NoError(t, err)

	second, err := tn.Generate(src, testSpec())
	require.NoError(t, err)

	assert.Equal(t, first.Width, second.Width)
	assert.Equal(t, first.Height, second.Height)
	assert.Equal(t, first.Format, second.Format)
}

func TestFitBox(t *testing.T) {
	cases := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{4000, 3000, 200, 200, 200, 150},
		{100, 50, 200, 200, 100, 50},
		{200, 200, 200, 200, 200, 200},
		{201, 201, 200, 200, 200, 200},
		{3, 1000, 200, 200, 1, 200},
		{1000, 3, 200, 200, 200, 1},
	}

	for _, tc := range cases {
		gotW, gotH := fitBox(tc.w, tc.h, tc.maxW, tc.maxH)
		assert.Equal(t, tc.wantW, gotW, "width for %dx%d", tc.w, tc.h)
		assert.Equal(t, tc.wantH, gotH, "height for %dx%d", tc.w, tc.h)
	}
}
