package onnx

import (
	"context"
	"errors"
	"image"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/infrastructure/imaging"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
)

type fakeRunner struct {
	dim       int
	err       error
	delay     time.Duration
	active    *int32
	maxActive *int32
	destroyed bool
}

func (f *fakeRunner) Run(pixels []float32) ([]float32, error) {
	if f.active != nil {
		n := atomic.AddInt32(f.active, 1)
		defer atomic.AddInt32(f.active, -1)
		for {
			m := atomic.LoadInt32(f.maxActive)
			if n <= m || atomic.CompareAndSwapInt32(f.maxActive, m, n) {
				break
			}
		}
	}
	time.Sleep(f.delay)
	if f.err != nil {
		return nil, f.err
	}
	if len(pixels) != 3*imaging.CLIPSize*imaging.CLIPSize {
		return nil, errors.New("unexpected input size")
	}
	out := make([]float32, f.dim)
	out[0] = pixels[0]
	return out, nil
}

func (f *fakeRunner) Destroy() error {
	f.destroyed = true
	return nil
}

func decoded() *domain.DecodedImage {
	return domain.NewDecodedImage(image.NewRGBA(image.Rect(0, 0, 40, 30)), "png", nil)
}

func TestExtract(t *testing.T) {
	x := newExtractor([]runner{&fakeRunner{dim: 512}}, 512, "clip-vit-b32.onnx", logger.Nop{})

	emb, err := x.Extract(context.Background(), decoded())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if emb.Vector.Dim() != 512 || emb.ModelVersion != "clip-vit-b32.onnx" {
		t.Errorf("embedding dim=%d version=%q", emb.Vector.Dim(), emb.ModelVersion)
	}
}

func TestExtractWrongDimension(t *testing.T) {
	x := newExtractor([]runner{&fakeRunner{dim: 768}}, 512, "m", logger.Nop{})

	_, err := x.Extract(context.Background(), decoded())
	if !errors.Is(err, e.ErrVectorSize) {
		t.Fatalf("err = %v, want ErrVectorSize", err)
	}
}

func TestExtractRunFailure(t *testing.T) {
	x := newExtractor([]runner{&fakeRunner{dim: 512, err: errors.New("bad input")}}, 512, "m", logger.Nop{})

	_, err := x.Extract(context.Background(), decoded())
	if !errors.Is(err, e.ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}

	// сессия возвращается в пул и после ошибки
	if len(x.pool) != 1 {
		t.Errorf("pool has %d sessions, want 1", len(x.pool))
	}
}

func TestExtractWaitsForSessionWithContext(t *testing.T) {
	x := newExtractor([]runner{&fakeRunner{dim: 512}}, 512, "m", logger.Nop{})
	r := <-x.pool // занимаем единственную сессию
	defer func() { x.pool <- r }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := x.Extract(ctx, decoded())
	if !errors.Is(err, e.ErrExtraction) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestExtractPoolBoundsConcurrency(t *testing.T) {
	var active, maxActive int32
	runners := []runner{
		&fakeRunner{dim: 4, delay: 10 * time.Millisecond, active: &active, maxActive: &maxActive},
		&fakeRunner{dim: 4, delay: 10 * time.Millisecond, active: &active, maxActive: &maxActive},
	}
	x := newExtractor(runners, 4, "m", logger.Nop{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := x.Extract(context.Background(), decoded()); err != nil {
				t.Errorf("Extract: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&maxActive); got > 2 {
		t.Errorf("max concurrent sessions = %d, want <= 2", got)
	}
}

func TestClose(t *testing.T) {
	a, b := &fakeRunner{}, &fakeRunner{}
	x := newExtractor([]runner{a, b}, 4, "m", logger.Nop{})

	if err := x.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.destroyed || !b.destroyed {
		t.Error("not all sessions destroyed")
	}
}

// TestRealModel прогоняет настоящую модель, если она есть в окружении.
func TestRealModel(t *testing.T) {
	model := os.Getenv("ONNX_MODEL_PATH")
	if model == "" {
		t.Skip("ONNX_MODEL_PATH is not set")
	}

	x, err := NewExtractor(Config{
		ModelPath:  model,
		LibPath:    os.Getenv("ONNXRUNTIME_LIB"),
		InputName:  "pixel_values",
		OutputName: "image_embeds",
		PoolSize:   1,
		VectorSize: 512,
	}, logger.Nop{})
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	defer x.Close()

	a, err := x.Extract(context.Background(), decoded())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	b, err := x.Extract(context.Background(), decoded())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			t.Fatalf("embedding is not deterministic at %d", i)
		}
	}
}
