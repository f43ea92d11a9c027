package domain

import "image"

// CapturedImage — кадр, пришедший от клиента в multipart/form-data.
type CapturedImage struct {
	Data     []byte // байты изображения
	MimeType string // определённый по содержимому Content-Type
	Size     int64
	Name     string // оригинальное имя файла (для логов)
}

func NewCapturedImage(data []byte, mimeType string, name string) *CapturedImage {
	return &CapturedImage{
		Data:     data,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Name:     name,
	}
}

// DecodedImage — декодированный кадр. Живёт только в рамках одного запроса.
type DecodedImage struct {
	Image  image.Image
	Format string // jpeg, png, gif, webp, bmp
	Source *CapturedImage
}

func NewDecodedImage(img image.Image, format string, src *CapturedImage) *DecodedImage {
	return &DecodedImage{
		Image:  img,
		Format: format,
		Source: src,
	}
}

func (d *DecodedImage) Width() int { return d.Image.Bounds().Dx() }

func (d *DecodedImage) Height() int { return d.Image.Bounds().Dy() }
