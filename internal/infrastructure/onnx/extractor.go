package onnx

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/infrastructure/imaging"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	ort "github.com/yalue/onnxruntime_go"
)

type Config struct {
	ModelPath  string // экспортированная визуальная часть CLIP
	LibPath    string // путь к libonnxruntime; пусто — системный по умолчанию
	InputName  string // pixel_values
	OutputName string // image_embeds
	PoolSize   int
	VectorSize int
}

// runner — одна сессия ONNX Runtime с заранее выделенными тензорами.
type runner interface {
	Run(pixels []float32) ([]float32, error)
	Destroy() error
}

// Extractor считает CLIP-эмбеддинг в процессе. Пул сессий ограничивает параллелизм:
// сессия с привязанными тензорами не может обслуживать два запроса одновременно.
type Extractor struct {
	pool         chan runner
	all          []runner
	vectorSize   int
	modelVersion string
	logger       logger.Logger
	closeOnce    sync.Once
}

var initEnv sync.Once
var initErr error

// NewExtractor инициализирует окружение ONNX Runtime и создаёт PoolSize сессий.
func NewExtractor(cfg Config, log logger.Logger) (*Extractor, error) {
	const op = "onnx.NewExtractor"

	initEnv.Do(func() {
		if cfg.LibPath != "" {
			ort.SetSharedLibraryPath(cfg.LibPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: onnxruntime: %w", e.ErrModelLoad, initErr))
	}

	runners := make([]runner, 0, cfg.PoolSize)
	for i := 0; i < max(cfg.PoolSize, 1); i++ {
		r, err := newSession(cfg)
		if err != nil {
			for _, created := range runners {
				_ = created.Destroy()
			}
			return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrModelLoad, err))
		}
		runners = append(runners, r)
	}
	log.Infof("onnx extractor ready: model=%s sessions=%d dim=%d", cfg.ModelPath, len(runners), cfg.VectorSize)

	return newExtractor(runners, cfg.VectorSize, filepath.Base(cfg.ModelPath), log), nil
}

func newExtractor(runners []runner, vectorSize int, modelVersion string, log logger.Logger) *Extractor {
	pool := make(chan runner, len(runners))
	for _, r := range runners {
		pool <- r
	}

	return &Extractor{
		pool:         pool,
		all:          runners,
		vectorSize:   vectorSize,
		modelVersion: modelVersion,
		logger:       log,
	}
}

// Extract ждёт свободную сессию не дольше, чем живёт ctx.
func (x *Extractor) Extract(ctx context.Context, img *domain.DecodedImage) (*domain.Embedding, error) {
	const op = "onnx.Extractor.Extract"

	pixels := imaging.PreprocessCLIP(img.Image, imaging.CLIPSize)

	var r runner
	select {
	case r = <-x.pool:
	case <-ctx.Done():
		return nil, e.Wrap(op, fmt.Errorf("%w: waiting for session: %w", e.ErrExtraction, ctx.Err()))
	}
	defer func() { x.pool <- r }()

	out, err := r.Run(pixels)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrExtraction, err))
	}
	if len(out) != x.vectorSize {
		return nil, e.Wrap(op, fmt.Errorf("%w: got %d, want %d", e.ErrVectorSize, len(out), x.vectorSize))
	}

	vec := make(domain.FeatureVector, len(out))
	copy(vec, out)

	return domain.NewEmbedding(vec, x.modelVersion), nil
}

// Close освобождает все сессии. Вызывать после остановки HTTP-сервера.
func (x *Extractor) Close() error {
	var errs []error
	x.closeOnce.Do(func() {
		for _, r := range x.all {
			if err := r.Destroy(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}

type session struct {
	s      *ort.AdvancedSession
	input  *ort.Tensor[float32]
	output *ort.Tensor[float32]
}

func newSession(cfg Config) (*session, error) {
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, imaging.CLIPSize, imaging.CLIPSize))
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.VectorSize)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("output tensor: %w", err)
	}

	s, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("session %s: %w", cfg.ModelPath, err)
	}

	return &session{s: s, input: input, output: output}, nil
}

func (s *session) Run(pixels []float32) ([]float32, error) {
	copy(s.input.GetData(), pixels)
	if err := s.s.Run(); err != nil {
		return nil, err
	}

	return s.output.GetData(), nil
}

func (s *session) Destroy() error {
	err := s.s.Destroy()
	s.input.Destroy()
	s.output.Destroy()

	return err
}
