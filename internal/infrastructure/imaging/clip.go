package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// CLIPSize — сторона входа CLIP ViT-B/32.
const CLIPSize = 224

var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// PreprocessCLIP готовит тензор pixel_values для CLIP: RGB, короткая сторона до size (Catmull-Rom),
// центральный кроп size×size, [0,1], нормализация mean/std. Раскладка CHW, float32.
func PreprocessCLIP(img image.Image, size int) []float32 {
	resized := cropResize(img, size)

	plane := size * size
	out := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := resized.PixOffset(x, y)
			px := resized.Pix[i : i+3 : i+3]
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 255
				out[c*plane+y*size+x] = (v - clipMean[c]) / clipStd[c]
			}
		}
	}

	return out
}

// cropResize вырезает центральный квадрат в координатах исходника и масштабирует его в size×size.
// Это тот же кадр, что даёт resize по короткой стороне с последующим кропом, но буфер
// назначения не зависит от пропорций входа. Альфа отбрасывается.
func cropResize(img image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, centerSquare(img.Bounds()), draw.Src, nil)

	return dst
}

// centerSquare — наибольший квадрат с центром в центре r.
func centerSquare(r image.Rectangle) image.Rectangle {
	side := min(r.Dx(), r.Dy())
	left := r.Min.X + (r.Dx()-side)/2
	top := r.Min.Y + (r.Dy()-side)/2

	return image.Rect(left, top, left+side, top+side)
}
