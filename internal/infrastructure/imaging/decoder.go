package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels ограничивает размер кадра до декодирования пикселей.
const DefaultMaxPixels = 40_000_000

// MaxAspectRatio — предельное отношение длинной стороны к короткой. Кадр с камеры
// не бывает полосой в один пиксель.
const MaxAspectRatio = 32

// Decoder декодирует загруженный кадр в image.Image.
type Decoder struct {
	maxPixels int
}

func NewDecoder(maxPixels int) *Decoder {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	return &Decoder{maxPixels: maxPixels}
}

// Decode возвращает ErrDecode для нечитаемых байтов и ErrDegenerateImage для кадра нулевой площади
// или вытянутого сильнее MaxAspectRatio.
func (d *Decoder) Decode(img *domain.CapturedImage) (*domain.DecodedImage, error) {
	const op = "Decoder.Decode"

	if img == nil || len(img.Data) == 0 {
		return nil, e.Wrap(op, e.ErrNoImages)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrDecode, err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, e.Wrap(op, e.ErrDegenerateImage)
	}
	if max(cfg.Width, cfg.Height) > MaxAspectRatio*min(cfg.Width, cfg.Height) {
		return nil, e.Wrap(op, fmt.Errorf("%w: %dx%d aspect ratio exceeds %d", e.ErrDegenerateImage,
			cfg.Width, cfg.Height, MaxAspectRatio))
	}
	if cfg.Width*cfg.Height > d.maxPixels {
		return nil, e.Wrap(op, fmt.Errorf("%w: %dx%d exceeds %d pixels", e.ErrDecode, cfg.Width, cfg.Height, d.maxPixels))
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrDecode, err))
	}
	if err := checkArea(decoded); err != nil {
		return nil, e.Wrap(op, err)
	}

	return domain.NewDecodedImage(decoded, format, img), nil
}

func checkArea(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return e.ErrDegenerateImage
	}

	return nil
}
