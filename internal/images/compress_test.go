package images

// Тесты даунскейла изображений (internal/images/compress.go).
//
// Подготовка окружения:
//   go test ./internal/images -v -race -count=1

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestDownscale_ShrinksLargePNG(t *testing.T) {
	src := encodePNG(t, 1800, 900)

	out, contentType, err := Downscale(src, "image/png", 900)
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)

	w, h := decodeSize(t, out)
	require.Equal(t, 900, w)
	require.Equal(t, 450, h)
}

func TestDownscale_ShrinksPortraitJPEG(t *testing.T) {
	src := encodeJPEG(t, 600, 1200)

	out, contentType, err := Downscale(src, "image/jpeg", 900)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", contentType)

	w, h := decodeSize(t, out)
	require.Equal(t, 450, w)
	require.Equal(t, 900, h)
}

// Изображение в пределах лимита возвращается без перекодирования.
func TestDownscale_SmallImageUntouched(t *testing.T) {
	src := encodePNG(t, 100, 100)

	out, contentType, err := Downscale(src, "image/png", 900)
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)
	require.Equal(t, src, out)
}

// webp и нераспознанные форматы пропускаются как есть.
func TestDownscale_PassthroughFormats(t *testing.T) {
	webp := []byte("RIFF....WEBPVP8 ")

	out, contentType, err := Downscale(webp, "image/webp", 900)
	require.NoError(t, err)
	require.Equal(t, "image/webp", contentType)
	require.Equal(t, webp, out)

	// Заявленный jpeg, который не декодируется, тоже не ошибка.
	garbage := []byte("not an image at all")
	out, contentType, err = Downscale(garbage, "image/jpeg", 900)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", contentType)
	require.Equal(t, garbage, out)
}

func TestDownscale_DisabledWhenMaxDimZero(t *testing.T) {
	src := encodePNG(t, 1800, 900)

	out, contentType, err := Downscale(src, "image/png", 0)
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)
	require.Equal(t, src, out)
}
