package infrastructure

import (
	"strings"

	"github.com/DRSN-tech/beauty-backend/pkg/e"
)

// GetExtensionFromMIME возвращает расширение файла по MIME-типу изображения.
// Поддерживает jpeg, png, gif, bmp, webp — ровно то, что умеет декодер.
// Для остальных image/* возвращает e.ErrUnsupportedMediaType.
func GetExtensionFromMIME(mime string) (string, error) {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/gif":
		return "gif", nil
	case "image/bmp", "image/x-ms-bmp":
		return "bmp", nil
	case "image/webp":
		return "webp", nil
	default:
		return "bin", e.ErrUnsupportedMediaType
	}
}

// IsImageMIME — MIME-тип из семейства image/*.
func IsImageMIME(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}
