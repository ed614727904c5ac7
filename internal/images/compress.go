// images — даунскейл изображений перед превью/загрузкой.
// Уменьшает сторону до максимума из конфига и перекодирует jpeg/png;
// webp и нераспознанные форматы возвращаются без изменений.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

const jpegQuality = 85

// Downscale уменьшает изображение так, чтобы большая сторона не превышала maxDim.
// Возвращает (возможно новые) байты и итоговый content type.
// Формат, который декодировать не удалось, пропускается как есть — ограничение
// размера всё равно проверяется на уровне гейтвея.
func Downscale(data []byte, contentType string, maxDim int) ([]byte, string, error) {
	const op = "images/Downscale"

	if maxDim <= 0 {
		return data, contentType, nil
	}

	switch contentType {
	case "image/jpeg", "image/png":
	default:
		return data, contentType, nil
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, contentType, nil
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return data, contentType, nil
	}

	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&out, dst); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		return out.Bytes(), "image/png", nil
	default:
		if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		return out.Bytes(), "image/jpeg", nil
	}
}
