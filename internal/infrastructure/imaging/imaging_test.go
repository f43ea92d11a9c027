package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestDecodePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 16))
	data := encodePNG(t, src)

	got, err := NewDecoder(0).Decode(domain.NewCapturedImage(data, "image/png", "frame.png"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Format != "png" || got.Width() != 32 || got.Height() != 16 {
		t.Errorf("decoded %s %dx%d", got.Format, got.Width(), got.Height())
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := NewDecoder(0).Decode(domain.NewCapturedImage([]byte("definitely not an image"), "text/plain", "x.txt"))
	if !errors.Is(err, e.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 64, 64)))

	_, err := NewDecoder(0).Decode(domain.NewCapturedImage(data[:len(data)/2], "image/png", "half.png"))
	if !errors.Is(err, e.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestDecodeTooManyPixels(t *testing.T) {
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 100, 100)))

	_, err := NewDecoder(50*50).Decode(domain.NewCapturedImage(data, "image/png", "big.png"))
	if !errors.Is(err, e.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestCheckAreaDegenerate(t *testing.T) {
	err := checkArea(image.NewRGBA(image.Rect(0, 0, 0, 10)))
	if !errors.Is(err, e.ErrDegenerateImage) || !errors.Is(err, e.ErrExtraction) {
		t.Fatalf("err = %v, want ErrDegenerateImage", err)
	}
	if err := checkArea(image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("1x1 image: %v", err)
	}
}

func TestPreprocessCLIPConstantColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 500))
	fill(img, img.Bounds(), color.RGBA{R: 255, G: 128, B: 0, A: 255})

	out := PreprocessCLIP(img, CLIPSize)
	if len(out) != 3*CLIPSize*CLIPSize {
		t.Fatalf("len = %d", len(out))
	}

	plane := CLIPSize * CLIPSize
	want := [3]float32{
		(1 - clipMean[0]) / clipStd[0],
		(128.0/255 - clipMean[1]) / clipStd[1],
		(0 - clipMean[2]) / clipStd[2],
	}
	for c := 0; c < 3; c++ {
		for _, i := range []int{0, plane / 2, plane - 1} {
			if got := out[c*plane+i]; math.Abs(float64(got-want[c])) > 1e-2 {
				t.Errorf("channel %d [%d] = %v, want %v", c, i, got, want[c])
			}
		}
	}
}

func TestPreprocessCLIPCenterCrop(t *testing.T) {
	// ширина вдвое больше высоты: после кропа остаётся середина, левая половина красная, правая синяя
	img := image.NewRGBA(image.Rect(0, 0, 2*CLIPSize, CLIPSize))
	fill(img, image.Rect(0, 0, CLIPSize, CLIPSize), color.RGBA{R: 255, A: 255})
	fill(img, image.Rect(CLIPSize, 0, 2*CLIPSize, CLIPSize), color.RGBA{B: 255, A: 255})

	out := PreprocessCLIP(img, CLIPSize)

	plane := CLIPSize * CLIPSize
	red := func(x, y int) float32 { return out[0*plane+y*CLIPSize+x] }
	blue := func(x, y int) float32 { return out[2*plane+y*CLIPSize+x] }

	hi := [3]float32{(1 - clipMean[0]) / clipStd[0], 0, (1 - clipMean[2]) / clipStd[2]}
	lo := [3]float32{(0 - clipMean[0]) / clipStd[0], 0, (0 - clipMean[2]) / clipStd[2]}

	near := func(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-2 }
	if !near(red(10, 100), hi[0]) || !near(blue(10, 100), lo[2]) {
		t.Errorf("left side is not red: r=%v b=%v", red(10, 100), blue(10, 100))
	}
	if !near(red(CLIPSize-10, 100), lo[0]) || !near(blue(CLIPSize-10, 100), hi[2]) {
		t.Errorf("right side is not blue: r=%v b=%v", red(CLIPSize-10, 100), blue(CLIPSize-10, 100))
	}
}

func TestPreprocessCLIPDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 97, 61))
	for y := 0; y < 61; y++ {
		for x := 0; x < 97; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}

	a := PreprocessCLIP(img, CLIPSize)
	b := PreprocessCLIP(img, CLIPSize)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestDecodeExtremeAspectRatio(t *testing.T) {
	cases := []image.Rectangle{
		image.Rect(0, 0, 1, 20000),
		image.Rect(0, 0, 20000, 1),
		image.Rect(0, 0, 10, 10*MaxAspectRatio+1),
	}
	for _, r := range cases {
		data := encodePNG(t, image.NewGray(r))

		_, err := NewDecoder(0).Decode(domain.NewCapturedImage(data, "image/png", "strip.png"))
		if !errors.Is(err, e.ErrDegenerateImage) {
			t.Errorf("%dx%d: err = %v, want ErrDegenerateImage", r.Dx(), r.Dy(), err)
		}
	}

	data := encodePNG(t, image.NewGray(image.Rect(0, 0, 10, 10*MaxAspectRatio)))
	if _, err := NewDecoder(0).Decode(domain.NewCapturedImage(data, "image/png", "tall.png")); err != nil {
		t.Fatalf("ratio at the bound: %v", err)
	}
}

func TestPreprocessCLIPBufferIndependentOfAspect(t *testing.T) {
	// полоса, которую декодер отверг бы; предобработка всё равно не выделяет больше size×size
	for _, r := range []image.Rectangle{image.Rect(0, 0, 1, 200000), image.Rect(0, 0, 200000, 3)} {
		img := image.NewRGBA(r)
		fill(img, r, color.RGBA{G: 255, A: 255})

		resized := cropResize(img, CLIPSize)
		if b := resized.Bounds(); b.Dx() != CLIPSize || b.Dy() != CLIPSize {
			t.Fatalf("%dx%d: resized to %dx%d", r.Dx(), r.Dy(), b.Dx(), b.Dy())
		}
		if got := len(PreprocessCLIP(img, CLIPSize)); got != 3*CLIPSize*CLIPSize {
			t.Fatalf("%dx%d: len = %d", r.Dx(), r.Dy(), got)
		}
	}
}

func TestCenterSquare(t *testing.T) {
	cases := []struct {
		in, want image.Rectangle
	}{
		{image.Rect(0, 0, 400, 200), image.Rect(100, 0, 300, 200)},
		{image.Rect(0, 0, 200, 401), image.Rect(0, 100, 200, 300)},
		{image.Rect(10, 20, 60, 70), image.Rect(10, 20, 60, 70)},
	}
	for _, tc := range cases {
		if got := centerSquare(tc.in); got != tc.want {
			t.Errorf("centerSquare(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
